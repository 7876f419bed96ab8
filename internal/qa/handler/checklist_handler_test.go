package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/deul428/QA-checklist/internal/config"
	"github.com/deul428/QA-checklist/internal/qa/entity"
	"github.com/deul428/QA-checklist/internal/qa/repository"
	"github.com/deul428/QA-checklist/internal/qa/service"
	"github.com/deul428/QA-checklist/internal/qa/testutil"
)

func newTestHandlers(db *gorm.DB) *Handlers {
	cfg := &config.Config{}
	cfg.JWT.Secret = testutil.JWTSecret
	cfg.JWT.Issuer = "qa-checklist"

	repos := repository.NewRepositories(db)
	svc := service.NewServices(repos, nil, cfg, zap.NewNop())
	return NewHandlers(svc, cfg)
}

func setupChecklistTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	testutil.SeedTestUser(t, db, "user-a", "김점검", "a@test.com", false)
	testutil.SeedTestUser(t, db, "user-b", "이담당", "b@test.com", false)
	testutil.SeedTestSystem(t, db, "sys-1", "결제 시스템", true, false, true)
	testutil.SeedTestCheckItem(t, db, "item-1", "sys-1", "배치 정상 종료 확인", 1)
	testutil.SeedTestCheckItem(t, db, "item-2", "sys-1", "에러 로그 확인", 2)
	testutil.SeedTestAssignment(t, db, "asg-1", "user-a", "sys-1", "item-1", entity.EnvPrd)
	testutil.SeedTestAssignment(t, db, "asg-2", "user-a", "sys-1", "item-2", entity.EnvPrd)
	testutil.SeedTestAssignment(t, db, "asg-3", "user-b", "sys-1", "item-1", entity.EnvPrd)

	h := newTestHandlers(db)
	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api")
	api.GET("/systems/:id/check-items", h.Checklist.CheckItems)
	api.GET("/checklist/today", h.Checklist.Today)
	api.POST("/checklist/submit", h.Checklist.Submit)
	api.GET("/checklist/unchecked", h.Checklist.Unchecked)

	return router, db
}

func tokenFor(userID, name string) string {
	return testutil.GenerateTestToken(userID, name, userID+"@test.com", false)
}

func submitItems(items ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"items": items}
}

func TestCheckItemsByEnvironment(t *testing.T) {
	router, _ := setupChecklistTest(t)
	token := tokenFor("user-a", "김점검")

	w := testutil.DoRequest(router, "GET", "/api/systems/sys-1/check-items?environment=prd", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("Expected 2 check items, got %d", len(items))
	}

	// stg는 이 시스템이 지원하지 않는다
	w = testutil.DoRequest(router, "GET", "/api/systems/sys-1/check-items?environment=stg", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for unsupported environment, got %d", w.Code)
	}

	w = testutil.DoRequest(router, "GET", "/api/systems/no-such/check-items?environment=prd", nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown system, got %d", w.Code)
	}
}

func TestSubmitCreateUpdateSkip(t *testing.T) {
	router, _ := setupChecklistTest(t)
	token := tokenFor("user-a", "김점검")

	// 최초 제출은 신규 생성
	w := testutil.DoRequest(router, "POST", "/api/checklist/submit", submitItems(
		map[string]interface{}{"check_item_id": "item-1", "environment": "prd", "status": "PASS"},
	), token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["created"].(float64) != 1 {
		t.Fatalf("Expected created=1, got %v", data["created"])
	}

	// 같은 값 재제출은 변경 없음
	w = testutil.DoRequest(router, "POST", "/api/checklist/submit", submitItems(
		map[string]interface{}{"check_item_id": "item-1", "environment": "prd", "status": "PASS"},
	), token)
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["skipped"].(float64) != 1 {
		t.Fatalf("Expected skipped=1, got %v", data["skipped"])
	}

	// 상태 변경은 수정
	w = testutil.DoRequest(router, "POST", "/api/checklist/submit", submitItems(
		map[string]interface{}{"check_item_id": "item-1", "environment": "prd", "status": "FAIL", "fail_notes": "배치 지연"},
	), token)
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["updated"].(float64) != 1 {
		t.Fatalf("Expected updated=1, got %v", data["updated"])
	}
}

func TestSubmitFailRequiresNotes(t *testing.T) {
	router, _ := setupChecklistTest(t)
	token := tokenFor("user-a", "김점검")

	w := testutil.DoRequest(router, "POST", "/api/checklist/submit", submitItems(
		map[string]interface{}{"check_item_id": "item-1", "environment": "prd", "status": "FAIL", "fail_notes": "   "},
	), token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for FAIL without notes, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSubmitRequiresSystemAssignment(t *testing.T) {
	router, db := setupChecklistTest(t)

	// sys-1 담당이 아닌 사용자
	testutil.SeedTestUser(t, db, "user-x", "박외부", "x@test.com", false)
	token := tokenFor("user-x", "박외부")

	w := testutil.DoRequest(router, "POST", "/api/checklist/submit", submitItems(
		map[string]interface{}{"check_item_id": "item-1", "environment": "prd", "status": "PASS"},
	), token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for unassigned user, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&entity.ChecklistRecord{}).Count(&count)
	if count != 0 {
		t.Fatalf("Expected no record created, got %d", count)
	}
}

func TestRecordSharedAcrossAssignees(t *testing.T) {
	router, db := setupChecklistTest(t)
	tokenA := tokenFor("user-a", "김점검")
	tokenB := tokenFor("user-b", "이담당")

	w := testutil.DoRequest(router, "POST", "/api/checklist/submit", submitItems(
		map[string]interface{}{"check_item_id": "item-1", "environment": "prd", "status": "PASS"},
	), tokenA)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 공동 담당자도 같은 기록을 본다
	w = testutil.DoRequest(router, "GET", "/api/checklist/today?environment=prd", nil, tokenB)
	resp := testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected co-assignee to see 1 record, got %d", len(items))
	}

	// 공동 담당자의 재제출은 새 기록이 아니라 기존 기록 수정
	w = testutil.DoRequest(router, "POST", "/api/checklist/submit", submitItems(
		map[string]interface{}{"check_item_id": "item-1", "environment": "prd", "status": "FAIL", "fail_notes": "재확인 필요"},
	), tokenB)
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["updated"].(float64) != 1 {
		t.Fatalf("Expected updated=1 from co-assignee, got %v", data["updated"])
	}

	var count int64
	db.Model(&entity.ChecklistRecord{}).Count(&count)
	if count != 1 {
		t.Fatalf("Expected a single shared record, got %d", count)
	}

	var record entity.ChecklistRecord
	db.First(&record)
	if record.UserID != "user-b" {
		t.Fatalf("Expected last checker user-b, got %s", record.UserID)
	}
	if record.Status != entity.StatusFail {
		t.Fatalf("Expected status FAIL, got %s", record.Status)
	}
}

func TestUncheckedItems(t *testing.T) {
	router, _ := setupChecklistTest(t)
	token := tokenFor("user-a", "김점검")

	w := testutil.DoRequest(router, "GET", "/api/checklist/unchecked?environment=prd", nil, token)
	resp := testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("Expected 2 unchecked items, got %d", len(items))
	}

	testutil.DoRequest(router, "POST", "/api/checklist/submit", submitItems(
		map[string]interface{}{"check_item_id": "item-1", "environment": "prd", "status": "PASS"},
	), token)

	w = testutil.DoRequest(router, "GET", "/api/checklist/unchecked?environment=prd", nil, token)
	resp = testutil.ParseResponse(w)
	items = resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected 1 unchecked item after submit, got %d", len(items))
	}
}

func TestChecklistRequiresAuth(t *testing.T) {
	router, _ := setupChecklistTest(t)

	w := testutil.DoRequest(router, "GET", "/api/checklist/today", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without token, got %d", w.Code)
	}
}

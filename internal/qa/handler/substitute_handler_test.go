package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/deul428/QA-checklist/internal/qa/entity"
	"github.com/deul428/QA-checklist/internal/qa/service"
	"github.com/deul428/QA-checklist/internal/qa/testutil"
)

func setupSubstituteTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	testutil.SeedTestUser(t, db, "user-a", "김점검", "a@test.com", false)
	testutil.SeedTestUser(t, db, "user-b", "이대체", "b@test.com", false)
	testutil.SeedTestUser(t, db, "user-c", "최방해", "c@test.com", false)
	testutil.SeedTestSystem(t, db, "sys-1", "포털", false, false, true)
	testutil.SeedTestSystem(t, db, "sys-2", "결제", false, false, true)
	testutil.SeedTestCheckItem(t, db, "item-1", "sys-1", "로그인 확인", 1)
	testutil.SeedTestCheckItem(t, db, "item-2", "sys-2", "승인 확인", 1)
	testutil.SeedTestAssignment(t, db, "asg-1", "user-a", "sys-1", "item-1", entity.EnvPrd)
	testutil.SeedTestAssignment(t, db, "asg-2", "user-a", "sys-2", "item-2", entity.EnvPrd)

	h := newTestHandlers(db)
	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api")
	api.POST("/substitute/create", h.Substitute.Create)
	api.GET("/substitute/list", h.Substitute.List)
	api.GET("/substitute/active", h.Substitute.Active)
	api.DELETE("/substitute/:id", h.Substitute.Delete)
	api.GET("/checklist/unchecked", h.Checklist.Unchecked)
	api.POST("/checklist/submit", h.Checklist.Submit)

	return router, db
}

func TestCreateSubstituteValidation(t *testing.T) {
	router, _ := setupSubstituteTest(t)
	token := tokenFor("user-a", "김점검")
	today := service.TodayKST()

	// 본인 지정 불가
	w := testutil.DoRequest(router, "POST", "/api/substitute/create", map[string]interface{}{
		"substitute_user_id": "user-a",
		"system_id":          "sys-1",
		"start_date":         today,
		"end_date":           today,
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for self substitute, got %d", w.Code)
	}

	// system_id 누락 불가
	w = testutil.DoRequest(router, "POST", "/api/substitute/create", map[string]interface{}{
		"substitute_user_id": "user-b",
		"start_date":         today,
		"end_date":           today,
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for missing system_id, got %d", w.Code)
	}

	// 종료일이 시작일보다 빠르면 불가
	w = testutil.DoRequest(router, "POST", "/api/substitute/create", map[string]interface{}{
		"substitute_user_id": "user-b",
		"system_id":          "sys-1",
		"start_date":         "2026-03-10",
		"end_date":           "2026-03-01",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for inverted range, got %d", w.Code)
	}

	// 정상 생성
	w = testutil.DoRequest(router, "POST", "/api/substitute/create", map[string]interface{}{
		"substitute_user_id": "user-b",
		"system_id":          "sys-1",
		"start_date":         "2026-03-01",
		"end_date":           "2026-03-10",
		"reason":             "휴가",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// 같은 시스템, 같은 대체자의 겹치는 기간은 불가
	w = testutil.DoRequest(router, "POST", "/api/substitute/create", map[string]interface{}{
		"substitute_user_id": "user-b",
		"system_id":          "sys-1",
		"start_date":         "2026-03-05",
		"end_date":           "2026-03-20",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for overlapping period, got %d", w.Code)
	}
}

func TestCreateSubstituteRequiresSystemOwnership(t *testing.T) {
	router, _ := setupSubstituteTest(t)
	tokenC := tokenFor("user-c", "최방해")
	today := service.TodayKST()

	// user-c는 sys-1 담당자가 아니다
	w := testutil.DoRequest(router, "POST", "/api/substitute/create", map[string]interface{}{
		"substitute_user_id": "user-b",
		"system_id":          "sys-1",
		"start_date":         today,
		"end_date":           today,
	}, tokenC)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for non-owner, got %d: %s", w.Code, w.Body.String())
	}
}

func TestParallelSubstitutesOnDifferentSystems(t *testing.T) {
	router, _ := setupSubstituteTest(t)
	tokenA := tokenFor("user-a", "김점검")

	// 같은 기간이라도 시스템이 다르면 동시에 지정할 수 있다
	w := testutil.DoRequest(router, "POST", "/api/substitute/create", map[string]interface{}{
		"substitute_user_id": "user-b",
		"system_id":          "sys-1",
		"start_date":         "2026-03-01",
		"end_date":           "2026-03-10",
	}, tokenA)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 for sys-1, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "POST", "/api/substitute/create", map[string]interface{}{
		"substitute_user_id": "user-c",
		"system_id":          "sys-2",
		"start_date":         "2026-03-01",
		"end_date":           "2026-03-10",
	}, tokenA)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 for sys-2, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSubstituteSeesOnlySubstitutedSystem(t *testing.T) {
	router, _ := setupSubstituteTest(t)
	tokenA := tokenFor("user-a", "김점검")
	tokenB := tokenFor("user-b", "이대체")
	today := service.TodayKST()

	// 대체 지정 전에는 user-b에게 미점검 항목이 없다
	w := testutil.DoRequest(router, "GET", "/api/checklist/unchecked", nil, tokenB)
	items := testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 0 {
		t.Fatalf("Expected no unchecked items before substitution, got %d", len(items))
	}

	w = testutil.DoRequest(router, "POST", "/api/substitute/create", map[string]interface{}{
		"substitute_user_id": "user-b",
		"system_id":          "sys-1",
		"start_date":         today,
		"end_date":           today,
	}, tokenA)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// 오늘 활성인 대체 지정이 조회된다
	w = testutil.DoRequest(router, "GET", "/api/substitute/active", nil, tokenB)
	items = testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected 1 active substitution for user-b, got %d", len(items))
	}

	// 원 담당자는 sys-1, sys-2 두 시스템을 맡지만 대체자는 sys-1만 본다
	w = testutil.DoRequest(router, "GET", "/api/checklist/unchecked", nil, tokenB)
	items = testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected substitute to see 1 unchecked item, got %d", len(items))
	}
	first := items[0].(map[string]interface{})
	if first["system_id"] != "sys-1" {
		t.Fatalf("Expected substituted system only, got %v", first["system_id"])
	}

	// 대체자가 대신 제출할 수 있다
	w = testutil.DoRequest(router, "POST", "/api/checklist/submit", submitItems(
		map[string]interface{}{"check_item_id": "item-1", "environment": "prd", "status": "PASS"},
	), tokenB)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 submitting as substitute, got %d: %s", w.Code, w.Body.String())
	}

	// 대체받지 않은 시스템의 항목은 제출할 수 없다
	w = testutil.DoRequest(router, "POST", "/api/checklist/submit", submitItems(
		map[string]interface{}{"check_item_id": "item-2", "environment": "prd", "status": "PASS"},
	), tokenB)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 submitting outside substituted system, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDeleteSubstituteOwnerOnly(t *testing.T) {
	router, _ := setupSubstituteTest(t)
	tokenA := tokenFor("user-a", "김점검")
	tokenC := tokenFor("user-c", "최방해")

	w := testutil.DoRequest(router, "POST", "/api/substitute/create", map[string]interface{}{
		"substitute_user_id": "user-b",
		"system_id":          "sys-1",
		"start_date":         "2026-04-01",
		"end_date":           "2026-04-05",
	}, tokenA)
	subID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(router, "DELETE", "/api/substitute/"+subID, nil, tokenC)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 deleting someone else's substitution, got %d", w.Code)
	}

	w = testutil.DoRequest(router, "DELETE", "/api/substitute/"+subID, nil, tokenA)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for owner delete, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "GET", "/api/substitute/list", nil, tokenA)
	items := testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 0 {
		t.Fatalf("Expected empty list after delete, got %d", len(items))
	}
}

package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/deul428/QA-checklist/internal/qa/entity"
	"github.com/deul428/QA-checklist/internal/qa/testutil"
)

func setupAdminTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	testutil.SeedTestUser(t, db, "console-1", "박관리", "c@test.com", true)
	testutil.SeedTestUser(t, db, "user-a", "김점검", "a@test.com", false)
	testutil.SeedTestUser(t, db, "user-b", "이담당", "b@test.com", false)
	testutil.SeedTestSystem(t, db, "sys-1", "포털", true, true, false)
	testutil.SeedTestCheckItem(t, db, "item-1", "sys-1", "로그인 확인", 1)

	h := newTestHandlers(db)
	router := testutil.SetupRouter()
	list := testutil.ConsoleGroup(router, "/api/list")
	list.GET("/systems", h.AdminList.Systems)
	list.GET("/users", h.AdminList.Users)
	list.GET("/check-items", h.AdminList.CheckItems)
	list.POST("/check-items", h.AdminList.CreateCheckItem)
	list.PUT("/check-items/:id", h.AdminList.UpdateCheckItem)
	list.DELETE("/check-items/:id", h.AdminList.DeleteCheckItem)
	list.GET("/assignments", h.AdminList.Assignments)
	list.POST("/assignments", h.AdminList.CreateAssignments)
	list.DELETE("/assignments/:id", h.AdminList.DeleteAssignment)

	return router, db
}

func TestCreateCheckItem(t *testing.T) {
	router, db := setupAdminTest(t)
	token := consoleToken()

	w := testutil.DoRequest(router, "POST", "/api/list/check-items", map[string]interface{}{
		"system_id":  "sys-1",
		"check_item": "메인 페이지 응답 확인",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["order_index"].(float64) != 2 {
		t.Fatalf("Expected order_index 2 after existing item, got %v", data["order_index"])
	}

	// 같은 시스템 안에서 활성 항목 이름은 중복 불가
	w = testutil.DoRequest(router, "POST", "/api/list/check-items", map[string]interface{}{
		"system_id":  "sys-1",
		"check_item": "메인 페이지 응답 확인",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for duplicate name, got %d", w.Code)
	}

	// 관리 작업은 감사 로그를 남긴다
	var logCount int64
	db.Model(&entity.AdminLog{}).Count(&logCount)
	if logCount == 0 {
		t.Fatalf("Expected admin log entries")
	}
}

func TestUpdateCheckItem(t *testing.T) {
	router, _ := setupAdminTest(t)
	token := consoleToken()

	name := "로그인/로그아웃 확인"
	w := testutil.DoRequest(router, "PUT", "/api/list/check-items/item-1", map[string]interface{}{
		"check_item": name,
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["check_item"].(string) != name {
		t.Fatalf("Expected updated name, got %v", data["check_item"])
	}

	w = testutil.DoRequest(router, "PUT", "/api/list/check-items/no-such", map[string]interface{}{
		"check_item": "x",
	}, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown item, got %d", w.Code)
	}
}

func TestDeleteCheckItemIsSoftDelete(t *testing.T) {
	router, db := setupAdminTest(t)
	token := consoleToken()

	w := testutil.DoRequest(router, "DELETE", "/api/list/check-items/item-1", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 목록에서는 빠진다
	w = testutil.DoRequest(router, "GET", "/api/list/check-items?system_id=sys-1", nil, token)
	items := testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 0 {
		t.Fatalf("Expected no active items after delete, got %d", len(items))
	}

	// 행은 남는다 (과거 기록 참조 유지)
	var item entity.CheckItem
	if err := db.First(&item, "id = ?", "item-1").Error; err != nil {
		t.Fatalf("Expected soft-deleted row to remain: %v", err)
	}
	if item.Status != entity.CheckItemDeleted {
		t.Fatalf("Expected status deleted, got %s", item.Status)
	}

	// 삭제 후에는 같은 이름으로 다시 만들 수 있다
	w = testutil.DoRequest(router, "POST", "/api/list/check-items", map[string]interface{}{
		"system_id":  "sys-1",
		"check_item": "로그인 확인",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 recreating deleted name, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateAssignments(t *testing.T) {
	router, db := setupAdminTest(t)
	token := consoleToken()

	// user-a는 이미 배정되어 있어 건너뛴다
	testutil.SeedTestAssignment(t, db, "asg-1", "user-a", "sys-1", "item-1", entity.EnvDev)

	w := testutil.DoRequest(router, "POST", "/api/list/assignments", map[string]interface{}{
		"user_ids":      []string{"user-a", "user-b"},
		"system_id":     "sys-1",
		"check_item_id": "item-1",
		"environment":   "dev",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["created"].(float64) != 1 || data["skipped"].(float64) != 1 {
		t.Fatalf("Expected created=1 skipped=1, got %v", data)
	}

	// 지원하지 않는 환경은 거부
	w = testutil.DoRequest(router, "POST", "/api/list/assignments", map[string]interface{}{
		"user_ids":      []string{"user-b"},
		"system_id":     "sys-1",
		"check_item_id": "item-1",
		"environment":   "prd",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for unsupported environment, got %d", w.Code)
	}

	// 빈 사용자 목록은 거부
	w = testutil.DoRequest(router, "POST", "/api/list/assignments", map[string]interface{}{
		"user_ids":      []string{},
		"system_id":     "sys-1",
		"check_item_id": "item-1",
		"environment":   "dev",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for empty user_ids, got %d", w.Code)
	}
}

func TestDeleteAssignment(t *testing.T) {
	router, db := setupAdminTest(t)
	token := consoleToken()

	testutil.SeedTestAssignment(t, db, "asg-1", "user-a", "sys-1", "item-1", entity.EnvDev)

	w := testutil.DoRequest(router, "DELETE", "/api/list/assignments/asg-1", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&entity.Assignment{}).Count(&count)
	if count != 0 {
		t.Fatalf("Expected assignment removed, got %d rows", count)
	}

	w = testutil.DoRequest(router, "DELETE", "/api/list/assignments/asg-1", nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 deleting twice, got %d", w.Code)
	}
}

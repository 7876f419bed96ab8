package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/deul428/QA-checklist/internal/qa/entity"
	"github.com/deul428/QA-checklist/internal/qa/service"
	"github.com/deul428/QA-checklist/internal/qa/testutil"
)

func setupConsoleTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	testutil.SeedTestUser(t, db, "user-a", "김점검", "a@test.com", false)
	testutil.SeedTestUser(t, db, "console-1", "박관리", "c@test.com", true)
	testutil.SeedTestSystem(t, db, "sys-1", "정산 시스템", false, false, true)
	testutil.SeedTestCheckItem(t, db, "item-1", "sys-1", "정산 배치 확인", 1)
	testutil.SeedTestCheckItem(t, db, "item-2", "sys-1", "정산 오류 건수 확인", 2)
	testutil.SeedTestAssignment(t, db, "asg-1", "user-a", "sys-1", "item-1", entity.EnvPrd)

	h := newTestHandlers(db)
	router := testutil.SetupRouter()

	api := testutil.AuthGroup(router, "/api")
	api.POST("/checklist/submit", h.Checklist.Submit)

	console := testutil.ConsoleGroup(router, "/api/console")
	console.GET("/stats", h.Console.Stats)
	console.GET("/fail-items", h.Console.FailItems)
	console.GET("/all-items", h.Console.AllItems)
	console.POST("/export-excel", h.Console.ExportExcel)

	return router, db
}

func consoleToken() string {
	return testutil.GenerateTestToken("console-1", "박관리", "c@test.com", true)
}

func TestConsoleRequiresConsoleRole(t *testing.T) {
	router, _ := setupConsoleTest(t)

	plain := testutil.GenerateTestToken("user-a", "김점검", "a@test.com", false)
	w := testutil.DoRequest(router, "GET", "/api/console/stats", nil, plain)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 without console role, got %d", w.Code)
	}

	w = testutil.DoRequest(router, "GET", "/api/console/stats", nil, consoleToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 with console role, got %d: %s", w.Code, w.Body.String())
	}
}

func TestConsoleStats(t *testing.T) {
	router, _ := setupConsoleTest(t)
	token := consoleToken()
	checker := testutil.GenerateTestToken("user-a", "김점검", "a@test.com", false)

	w := testutil.DoRequest(router, "GET", "/api/console/stats", nil, token)
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["total"].(float64) != 2 || data["unchecked"].(float64) != 2 {
		t.Fatalf("Expected total=2 unchecked=2 before any submit, got %v", data)
	}

	testutil.DoRequest(router, "POST", "/api/checklist/submit", submitItems(
		map[string]interface{}{"check_item_id": "item-1", "environment": "prd", "status": "FAIL", "fail_notes": "정산 지연"},
	), checker)

	w = testutil.DoRequest(router, "GET", "/api/console/stats", nil, token)
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["fail"].(float64) != 1 || data["unchecked"].(float64) != 1 {
		t.Fatalf("Expected fail=1 unchecked=1 after FAIL submit, got %v", data)
	}
	if data["systems"].(float64) != 1 {
		t.Fatalf("Expected systems=1, got %v", data["systems"])
	}
}

func TestConsoleFailItemsResolution(t *testing.T) {
	router, _ := setupConsoleTest(t)
	token := consoleToken()
	checker := testutil.GenerateTestToken("user-a", "김점검", "a@test.com", false)

	testutil.DoRequest(router, "POST", "/api/checklist/submit", submitItems(
		map[string]interface{}{"check_item_id": "item-1", "environment": "prd", "status": "FAIL", "fail_notes": "정산 지연"},
	), checker)

	w := testutil.DoRequest(router, "GET", "/api/console/fail-items", nil, token)
	items := testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected 1 fail item, got %d", len(items))
	}
	item := items[0].(map[string]interface{})
	if item["resolved"].(bool) {
		t.Fatalf("Expected unresolved fail item")
	}
	if item["fail_time"] == nil {
		t.Fatalf("Expected fail_time to be set")
	}

	// PASS로 바꾸면 해결 처리
	testutil.DoRequest(router, "POST", "/api/checklist/submit", submitItems(
		map[string]interface{}{"check_item_id": "item-1", "environment": "prd", "status": "PASS"},
	), checker)

	w = testutil.DoRequest(router, "GET", "/api/console/fail-items", nil, token)
	items = testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected fail item to remain listed after resolution, got %d", len(items))
	}
	item = items[0].(map[string]interface{})
	if !item["resolved"].(bool) || item["resolved_time"] == nil {
		t.Fatalf("Expected resolved fail item with resolved_time, got %v", item)
	}

	// 다시 FAIL이 나면 해결 상태가 풀린다
	testutil.DoRequest(router, "POST", "/api/checklist/submit", submitItems(
		map[string]interface{}{"check_item_id": "item-1", "environment": "prd", "status": "FAIL", "fail_notes": "재발"},
	), checker)

	w = testutil.DoRequest(router, "GET", "/api/console/fail-items", nil, token)
	items = testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	item = items[0].(map[string]interface{})
	if item["resolved"].(bool) {
		t.Fatalf("Expected re-failed item to be unresolved, got %v", item)
	}
}

func TestConsoleAllItems(t *testing.T) {
	router, _ := setupConsoleTest(t)
	token := consoleToken()
	checker := testutil.GenerateTestToken("user-a", "김점검", "a@test.com", false)

	testutil.DoRequest(router, "POST", "/api/checklist/submit", submitItems(
		map[string]interface{}{"check_item_id": "item-1", "environment": "prd", "status": "PASS"},
	), checker)

	w := testutil.DoRequest(router, "GET", "/api/console/all-items", nil, token)
	rows := testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows (items × prd), got %d", len(rows))
	}

	statuses := map[string]string{}
	for _, raw := range rows {
		row := raw.(map[string]interface{})
		statuses[row["check_item_id"].(string)] = row["status"].(string)
		if row["check_item_id"] == "item-1" {
			assignees := row["assignees"].([]interface{})
			if len(assignees) != 1 || assignees[0].(string) != "김점검" {
				t.Fatalf("Expected assignee 김점검 for item-1, got %v", assignees)
			}
		}
	}
	if statuses["item-1"] != "PASS" {
		t.Fatalf("Expected item-1 PASS, got %s", statuses["item-1"])
	}
	if statuses["item-2"] != "미점검" {
		t.Fatalf("Expected item-2 미점검, got %s", statuses["item-2"])
	}
}

func TestConsoleAllItemsFailTimestamps(t *testing.T) {
	router, _ := setupConsoleTest(t)
	token := consoleToken()
	checker := testutil.GenerateTestToken("user-a", "김점검", "a@test.com", false)

	testutil.DoRequest(router, "POST", "/api/checklist/submit", submitItems(
		map[string]interface{}{"check_item_id": "item-1", "environment": "prd", "status": "FAIL", "fail_notes": "정산 지연"},
	), checker)
	testutil.DoRequest(router, "POST", "/api/checklist/submit", submitItems(
		map[string]interface{}{"check_item_id": "item-1", "environment": "prd", "status": "PASS"},
	), checker)

	w := testutil.DoRequest(router, "GET", "/api/console/all-items", nil, token)
	rows := testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	for _, raw := range rows {
		row := raw.(map[string]interface{})
		switch row["check_item_id"] {
		case "item-1":
			// FAIL 후 PASS: 발생/해소 시각이 모두 남는다
			if row["fail_time"] == nil {
				t.Fatalf("Expected fail_time on previously failed row, got %v", row)
			}
			if !row["resolved"].(bool) || row["resolved_time"] == nil {
				t.Fatalf("Expected resolved row with resolved_time, got %v", row)
			}
		case "item-2":
			if row["fail_time"] != nil || row["resolved"].(bool) {
				t.Fatalf("Expected clean row for never-failed item, got %v", row)
			}
		}
	}
}

func TestConsoleExportExcel(t *testing.T) {
	router, _ := setupConsoleTest(t)
	token := consoleToken()
	today := service.TodayKST()

	w := testutil.DoRequest(router, "POST", "/api/console/export-excel", map[string]interface{}{
		"start_date": today,
		"end_date":   today,
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if disposition := w.Header().Get("Content-Disposition"); !strings.Contains(disposition, "filename*=UTF-8''") {
		t.Fatalf("Expected RFC 5987 filename in disposition, got %q", disposition)
	}
	if w.Body.Len() == 0 {
		t.Fatalf("Expected non-empty xlsx body")
	}
}

func TestConsoleExportExcelInvalidRange(t *testing.T) {
	router, _ := setupConsoleTest(t)
	token := consoleToken()

	// 기간 누락
	w := testutil.DoRequest(router, "POST", "/api/console/export-excel", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 without date range, got %d", w.Code)
	}

	// 시작일이 종료일보다 늦음
	w = testutil.DoRequest(router, "POST", "/api/console/export-excel", map[string]interface{}{
		"start_date": "2026-03-10",
		"end_date":   "2026-03-01",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for inverted range, got %d", w.Code)
	}

	// 날짜 형식 오류
	w = testutil.DoRequest(router, "POST", "/api/console/export-excel", map[string]interface{}{
		"start_date": "03/01/2026",
		"end_date":   "03/10/2026",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for malformed dates, got %d", w.Code)
	}
}

// Package client QA 체크리스트 서버의 REST API 클라이언트
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnauthorized 인증 실패 (토큰 만료/무효). 호출자는 저장된
// 세션을 비우고 로그인 화면으로 돌아가야 한다.
var ErrUnauthorized = errors.New("unauthorized")

// APIError 서버가 내려준 에러 응답
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

// Client REST API 클라이언트
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string

	// 401 수신 시 호출 (저장된 세션 정리용)
	onUnauthorized func()
}

// New 클라이언트 생성
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken 액세스 토큰 설정
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token 현재 토큰
func (c *Client) Token() string {
	return c.token
}

// OnUnauthorized 401 콜백 등록
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// envelope 서버 공통 응답
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 400 || env.Code != 0 {
		return &APIError{Code: env.Code, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	return c.do(ctx, http.MethodPost, path, reader, "application/json", out)
}

func (c *Client) putJSON(ctx context.Context, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, bytes.NewReader(data), "application/json", out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil)
}

// User 사용자
type User struct {
	ID                  string  `json:"id"`
	EmployeeID          string  `json:"employee_id"`
	Name                string  `json:"name"`
	Email               string  `json:"email"`
	Division            string  `json:"division"`
	GeneralHeadquarters string  `json:"general_headquarters"`
	Department          *string `json:"department"`
	Position            string  `json:"position"`
	Role                string  `json:"role"`
	ConsoleRole         bool    `json:"console_role"`
}

// System 시스템
type System struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	HasDev      bool   `json:"has_dev"`
	HasStg      bool   `json:"has_stg"`
	HasPrd      bool   `json:"has_prd"`
}

// CheckItem 점검 항목
type CheckItem struct {
	ID          string  `json:"id"`
	SystemID    string  `json:"system_id"`
	Name        string  `json:"check_item"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	OrderIndex  int     `json:"order_index"`
	System      *System `json:"system,omitempty"`
}

// ChecklistRecord 점검 기록
type ChecklistRecord struct {
	ID          string    `json:"id"`
	CheckItemID string    `json:"check_item_id"`
	CheckDate   string    `json:"check_date"`
	Environment string    `json:"environment"`
	SystemID    string    `json:"system_id"`
	UserID      string    `json:"user_id"`
	Status      string    `json:"status"`
	FailNotes   string    `json:"fail_notes"`
	CheckedAt   time.Time `json:"checked_at"`
}

// LoginResult 로그인 결과
type LoginResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	User         User   `json:"user"`
}

// Login 사번 + 비밀번호 로그인 (form-encoded)
func (c *Client) Login(ctx context.Context, employeeID, password string) (*LoginResult, error) {
	form := url.Values{}
	form.Set("username", employeeID)
	form.Set("password", password)

	var result LoginResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &result)
	if err != nil {
		return nil, err
	}
	c.token = result.AccessToken
	return &result, nil
}

// Me 현재 사용자 조회
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "/api/user/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword 비밀번호 변경
func (c *Client) ChangePassword(ctx context.Context, current, updated string) error {
	return c.postJSON(ctx, "/api/user/change-password", map[string]string{
		"current_password": current,
		"new_password":     updated,
	}, nil)
}

// itemsPayload {"items": [...]} 응답
type itemsPayload[T any] struct {
	Items []T `json:"items"`
}

// MySystems 담당 시스템 목록
func (c *Client) MySystems(ctx context.Context) ([]System, error) {
	var payload itemsPayload[System]
	if err := c.getJSON(ctx, "/api/user/systems", &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// SearchUsers 사용자 검색
func (c *Client) SearchUsers(ctx context.Context, query string) ([]User, error) {
	var payload itemsPayload[User]
	path := "/api/user/search?query=" + url.QueryEscape(query)
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

func envQuery(environment string) string {
	if environment == "" {
		return ""
	}
	return "?environment=" + url.QueryEscape(environment)
}

// CheckItems 시스템의 점검 항목 목록
func (c *Client) CheckItems(ctx context.Context, systemID, environment string) ([]CheckItem, error) {
	var payload itemsPayload[CheckItem]
	path := "/api/systems/" + url.PathEscape(systemID) + "/check-items" + envQuery(environment)
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// TodayRecords 오늘의 점검 기록
func (c *Client) TodayRecords(ctx context.Context, environment string) ([]ChecklistRecord, error) {
	var payload struct {
		Items []ChecklistRecord `json:"items"`
		Date  string            `json:"date"`
	}
	if err := c.getJSON(ctx, "/api/checklist/today"+envQuery(environment), &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// SubmitItem 제출 항목
type SubmitItem struct {
	CheckItemID string `json:"check_item_id"`
	Environment string `json:"environment"`
	Status      string `json:"status"`
	FailNotes   string `json:"fail_notes"`
}

// SubmitResult 제출 결과
type SubmitResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Submit 점검 결과 일괄 제출
func (c *Client) Submit(ctx context.Context, items []SubmitItem) (*SubmitResult, error) {
	var result SubmitResult
	err := c.postJSON(ctx, "/api/checklist/submit", map[string]interface{}{"items": items}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UncheckedItem 미점검 항목
type UncheckedItem struct {
	SystemID        string `json:"system_id"`
	SystemName      string `json:"system_name"`
	CheckItemID     string `json:"check_item_id"`
	CheckItemName   string `json:"check_item"`
	Environment     string `json:"environment"`
	EnvironmentName string `json:"environment_name"`
}

// Unchecked 미점검 항목 목록
func (c *Client) Unchecked(ctx context.Context, environment string) ([]UncheckedItem, error) {
	var payload struct {
		Items []UncheckedItem `json:"items"`
		Date  string          `json:"date"`
	}
	if err := c.getJSON(ctx, "/api/checklist/unchecked"+envQuery(environment), &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// ConsoleStats 콘솔 통계
type ConsoleStats struct {
	Date        string `json:"date"`
	Environment string `json:"environment"`
	Total       int    `json:"total"`
	Pass        int    `json:"pass"`
	Fail        int    `json:"fail"`
	Unchecked   int    `json:"unchecked"`
	Systems     int    `json:"systems"`
}

// Stats 콘솔 통계 조회
func (c *Client) Stats(ctx context.Context, environment string) (*ConsoleStats, error) {
	var stats ConsoleStats
	if err := c.getJSON(ctx, "/api/console/stats"+envQuery(environment), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// FailItem FAIL 항목
type FailItem struct {
	CheckItemID     string     `json:"check_item_id"`
	CheckItemName   string     `json:"check_item"`
	SystemID        string     `json:"system_id"`
	SystemName      string     `json:"system_name"`
	Environment     string     `json:"environment"`
	EnvironmentName string     `json:"environment_name"`
	FailNotes       string     `json:"fail_notes"`
	FailTime        *time.Time `json:"fail_time"`
	Resolved        bool       `json:"resolved"`
	ResolvedTime    *time.Time `json:"resolved_time"`
	CheckedBy       string     `json:"checked_by"`
}

// FailItems 오늘 FAIL 항목 목록
func (c *Client) FailItems(ctx context.Context, environment string) ([]FailItem, error) {
	var payload itemsPayload[FailItem]
	if err := c.getJSON(ctx, "/api/console/fail-items"+envQuery(environment), &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// AllItemRow 전체 항목 현황 행. 오늘 FAIL이 있었던 행은 최초 발생
// 시각과 해소 시각을 함께 담아, 필터된 목록을 시각 컬럼으로도
// 정렬할 수 있게 한다.
type AllItemRow struct {
	CheckItemID     string     `json:"check_item_id"`
	CheckItemName   string     `json:"check_item"`
	SystemID        string     `json:"system_id"`
	SystemName      string     `json:"system_name"`
	Environment     string     `json:"environment"`
	EnvironmentName string     `json:"environment_name"`
	Status          string     `json:"status"`
	FailNotes       string     `json:"fail_notes"`
	Assignees       []string   `json:"assignees"`
	CheckedBy       string     `json:"checked_by"`
	CheckedAt       *time.Time `json:"checked_at"`
	FailTime        *time.Time `json:"fail_time"`
	Resolved        bool       `json:"resolved"`
	ResolvedTime    *time.Time `json:"resolved_time"`
}

// AllItems 전체 항목 현황
func (c *Client) AllItems(ctx context.Context, environment string) ([]AllItemRow, error) {
	var payload itemsPayload[AllItemRow]
	if err := c.getJSON(ctx, "/api/console/all-items"+envQuery(environment), &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// ExportExcel 기간의 점검 기록을 엑셀로 내려받아 w에 쓴다.
func (c *Client) ExportExcel(ctx context.Context, startDate, endDate, environment string, w io.Writer) error {
	body, err := json.Marshal(map[string]string{
		"start_date": startDate,
		"end_date":   endDate,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/console/export-excel"+envQuery(environment), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err == nil {
			return &APIError{Code: env.Code, Message: env.Message}
		}
		return fmt.Errorf("export failed: status %d", resp.StatusCode)
	}

	_, err = io.Copy(w, resp.Body)
	return err
}

// ListSystems 전체 시스템 목록 (관리)
func (c *Client) ListSystems(ctx context.Context) ([]System, error) {
	var payload itemsPayload[System]
	if err := c.getJSON(ctx, "/api/list/systems", &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// ListUsers 전체 사용자 목록 (관리)
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var payload itemsPayload[User]
	if err := c.getJSON(ctx, "/api/list/users", &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// ListCheckItems 점검 항목 목록 (관리)
func (c *Client) ListCheckItems(ctx context.Context, systemID string) ([]CheckItem, error) {
	path := "/api/list/check-items"
	if systemID != "" {
		path += "?system_id=" + url.QueryEscape(systemID)
	}
	var payload itemsPayload[CheckItem]
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// CreateCheckItem 점검 항목 생성
func (c *Client) CreateCheckItem(ctx context.Context, systemID, name, description string) (*CheckItem, error) {
	var item CheckItem
	err := c.postJSON(ctx, "/api/list/check-items", map[string]string{
		"system_id":   systemID,
		"check_item":  name,
		"description": description,
	}, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateCheckItem 점검 항목 수정 (nil 필드는 유지)
func (c *Client) UpdateCheckItem(ctx context.Context, itemID string, name, description *string) (*CheckItem, error) {
	body := map[string]interface{}{}
	if name != nil {
		body["check_item"] = *name
	}
	if description != nil {
		body["description"] = *description
	}
	var item CheckItem
	if err := c.putJSON(ctx, "/api/list/check-items/"+url.PathEscape(itemID), body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteCheckItem 점검 항목 삭제
func (c *Client) DeleteCheckItem(ctx context.Context, itemID string) error {
	return c.delete(ctx, "/api/list/check-items/"+url.PathEscape(itemID))
}

// Assignment 배정
type Assignment struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	SystemID    string     `json:"system_id"`
	CheckItemID string     `json:"check_item_id"`
	Environment string     `json:"environment"`
	User        *User      `json:"user,omitempty"`
	System      *System    `json:"system,omitempty"`
	CheckItem   *CheckItem `json:"check_item,omitempty"`
}

// ListAssignments 배정 목록
func (c *Client) ListAssignments(ctx context.Context, systemID, environment string) ([]Assignment, error) {
	q := url.Values{}
	if systemID != "" {
		q.Set("system_id", systemID)
	}
	if environment != "" {
		q.Set("environment", environment)
	}
	path := "/api/list/assignments"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var payload itemsPayload[Assignment]
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// CreateAssignmentsResult 배정 생성 결과
type CreateAssignmentsResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// CreateAssignments 여러 사용자 일괄 배정
func (c *Client) CreateAssignments(ctx context.Context, userIDs []string, systemID, checkItemID, environment string) (*CreateAssignmentsResult, error) {
	var result CreateAssignmentsResult
	err := c.postJSON(ctx, "/api/list/assignments", map[string]interface{}{
		"user_ids":      userIDs,
		"system_id":     systemID,
		"check_item_id": checkItemID,
		"environment":   environment,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteAssignment 배정 삭제
func (c *Client) DeleteAssignment(ctx context.Context, assignmentID string) error {
	return c.delete(ctx, "/api/list/assignments/"+url.PathEscape(assignmentID))
}

// Substitute 대체 지정 (시스템 단위)
type Substitute struct {
	ID               string  `json:"id"`
	OriginalUserID   string  `json:"original_user_id"`
	SubstituteUserID string  `json:"substitute_user_id"`
	SystemID         string  `json:"system_id"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	Reason           string  `json:"reason"`
	OriginalUser     *User   `json:"original_user,omitempty"`
	SubstituteUser   *User   `json:"substitute_user,omitempty"`
	System           *System `json:"system,omitempty"`
}

// CreateSubstitute 대체 지정 생성
func (c *Client) CreateSubstitute(ctx context.Context, substituteUserID, systemID, startDate, endDate, reason string) (*Substitute, error) {
	var sub Substitute
	err := c.postJSON(ctx, "/api/substitute/create", map[string]string{
		"substitute_user_id": substituteUserID,
		"system_id":          systemID,
		"start_date":         startDate,
		"end_date":           endDate,
		"reason":             reason,
	}, &sub)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// MySubstitutes 내가 지정한 대체 목록
func (c *Client) MySubstitutes(ctx context.Context) ([]Substitute, error) {
	var payload itemsPayload[Substitute]
	if err := c.getJSON(ctx, "/api/substitute/list", &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// ActiveSubstitutes 오늘 내가 대체자로 활성인 지정 목록
func (c *Client) ActiveSubstitutes(ctx context.Context) ([]Substitute, error) {
	var payload itemsPayload[Substitute]
	if err := c.getJSON(ctx, "/api/substitute/active", &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// DeleteSubstitute 대체 지정 삭제
func (c *Client) DeleteSubstitute(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/substitute/"+url.PathEscape(id))
}

// SchedulerJob 스케줄러 잡
type SchedulerJob struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	NextRunTime string `json:"next_run_time"`
	Trigger     string `json:"trigger"`
}

// SchedulerStatus 스케줄러 잡 목록
func (c *Client) SchedulerStatus(ctx context.Context) ([]SchedulerJob, error) {
	var payload struct {
		Jobs []SchedulerJob `json:"jobs"`
	}
	if err := c.getJSON(ctx, "/api/scheduler/status", &payload); err != nil {
		return nil, err
	}
	return payload.Jobs, nil
}

// ScheduleTestEmail 테스트 메일 예약
func (c *Client) ScheduleTestEmail(ctx context.Context, hour, minute int) (*SchedulerJob, error) {
	var job SchedulerJob
	err := c.postJSON(ctx, "/api/scheduler/test-email", map[string]int{
		"hour":   hour,
		"minute": minute,
	}, &job)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// SendTestEmailNow 테스트 메일 즉시 발송
func (c *Client) SendTestEmailNow(ctx context.Context) error {
	return c.postJSON(ctx, "/api/scheduler/test-email-now", nil, nil)
}

// CancelSchedulerJob 잡 취소
func (c *Client) CancelSchedulerJob(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/scheduler/jobs/"+url.PathEscape(id))
}

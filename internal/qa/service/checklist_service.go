package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/deul428/QA-checklist/internal/qa/entity"
	"github.com/deul428/QA-checklist/internal/qa/repository"
)

// 체크리스트 에러
var (
	ErrUnsupportedEnvironment = errors.New("unsupported environment")
	ErrFailNotesRequired      = errors.New("fail notes required")
	ErrNotAssigned            = errors.New("not assigned")
)

// kstLocation 점검 날짜 계산은 항상 KST 기준
var kstLocation = loadKST()

func loadKST() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// TodayKST 오늘 날짜 (YYYY-MM-DD, KST)
func TodayKST() string {
	return time.Now().In(kstLocation).Format("2006-01-02")
}

// ChecklistService 일일 점검 서비스
type ChecklistService struct {
	repos *repository.Repositories
}

// NewChecklistService 일일 점검 서비스 생성
func NewChecklistService(repos *repository.Repositories) *ChecklistService {
	return &ChecklistService{repos: repos}
}

// accessGrant 배정을 볼 수 있는 (사용자, 시스템) 단위.
// systemID가 비어 있으면 그 사용자의 전체 시스템을 뜻한다.
type accessGrant struct {
	userID   string
	systemID string
}

// effectiveGrants 본인 전체 + 오늘 대체 중인 (원 담당자, 시스템) 목록.
// 대체는 시스템 단위이므로 대체자는 그 시스템 안의 원 담당자 배정만 본다.
func (s *ChecklistService) effectiveGrants(ctx context.Context, userID string) ([]accessGrant, error) {
	grants := []accessGrant{{userID: userID}}
	subs, err := s.repos.Substitute.FindActiveForSubstitute(ctx, userID, TodayKST())
	if err != nil {
		return nil, err
	}
	for _, sub := range subs {
		grants = append(grants, accessGrant{userID: sub.OriginalUserID, systemID: sub.SystemID})
	}
	return grants, nil
}

// effectiveAssignments 직접 배정 + 대체로 위임받은 배정 목록
func (s *ChecklistService) effectiveAssignments(ctx context.Context, userID string) ([]entity.Assignment, error) {
	grants, err := s.effectiveGrants(ctx, userID)
	if err != nil {
		return nil, err
	}

	// userID → 허용 시스템 집합 (nil이면 전체)
	allowed := make(map[string]map[string]bool, len(grants))
	var userIDs []string
	for _, g := range grants {
		systems, seen := allowed[g.userID]
		if !seen {
			userIDs = append(userIDs, g.userID)
		}
		if g.systemID == "" {
			allowed[g.userID] = nil
			continue
		}
		if seen && systems == nil {
			continue
		}
		if systems == nil {
			systems = make(map[string]bool)
		}
		systems[g.systemID] = true
		allowed[g.userID] = systems
	}

	assignments, err := s.repos.Assignment.FindByUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	var out []entity.Assignment
	for _, a := range assignments {
		systems, ok := allowed[a.UserID]
		if !ok {
			continue
		}
		if systems != nil && !systems[a.SystemID] {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// hasSystemAccess 제출 권한 확인: 직접 배정되었거나 오늘 그 시스템의
// 활성 대체자인 경우
func (s *ChecklistService) hasSystemAccess(ctx context.Context, userID, systemID string) (bool, error) {
	assignments, err := s.repos.Assignment.FindByUserAndSystem(ctx, userID, systemID, "")
	if err != nil {
		return false, err
	}
	if len(assignments) > 0 {
		return true, nil
	}
	subs, err := s.repos.Substitute.FindActiveForSubstitute(ctx, userID, TodayKST())
	if err != nil {
		return false, err
	}
	for _, sub := range subs {
		if sub.SystemID == systemID {
			return true, nil
		}
	}
	return false, nil
}

// GetUserSystems 사용자가 담당하는 시스템 목록 (직접 배정 + 활성 대체)
func (s *ChecklistService) GetUserSystems(ctx context.Context, userID string) ([]entity.System, error) {
	assignments, err := s.effectiveAssignments(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var systemIDs []string
	for _, a := range assignments {
		if !seen[a.SystemID] {
			seen[a.SystemID] = true
			systemIDs = append(systemIDs, a.SystemID)
		}
	}

	return s.repos.System.FindByIDs(ctx, systemIDs)
}

// GetCheckItems 시스템의 점검 항목 목록. 환경이 지정되면 시스템이
// 그 환경을 지원하는지 먼저 검증한다.
func (s *ChecklistService) GetCheckItems(ctx context.Context, systemID, environment string) ([]entity.CheckItem, error) {
	system, err := s.repos.System.FindByID(ctx, systemID)
	if err != nil {
		return nil, err
	}

	if environment != "" && !system.SupportsEnvironment(environment) {
		return nil, ErrUnsupportedEnvironment
	}

	return s.repos.CheckItem.ListActiveBySystem(ctx, systemID)
}

// GetTodayRecords 오늘의 점검 기록. 기록은 (항목, 날짜, 환경)으로
// 식별되므로 공동 담당자가 작성한 기록도 함께 반환된다.
func (s *ChecklistService) GetTodayRecords(ctx context.Context, userID, environment string) ([]entity.ChecklistRecord, error) {
	assignments, err := s.effectiveAssignments(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var itemIDs []string
	for _, a := range assignments {
		if environment != "" && a.Environment != environment {
			continue
		}
		if !seen[a.CheckItemID] {
			seen[a.CheckItemID] = true
			itemIDs = append(itemIDs, a.CheckItemID)
		}
	}

	return s.repos.Checklist.FindByItemsAndDate(ctx, itemIDs, TodayKST(), environment)
}

// SubmitItem 제출 항목
type SubmitItem struct {
	CheckItemID string `json:"check_item_id" binding:"required"`
	Environment string `json:"environment" binding:"required"`
	Status      string `json:"status" binding:"required"`
	FailNotes   string `json:"fail_notes"`
}

// SubmitResult 제출 결과
type SubmitResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Submit 점검 결과 일괄 제출. 항목별로 오늘 기록을 upsert하고
// CREATE/UPDATE 로그를 남긴다. 값이 같은 항목은 건너뛴다.
func (s *ChecklistService) Submit(ctx context.Context, userID string, items []SubmitItem) (*SubmitResult, error) {
	today := TodayKST()
	now := time.Now().In(kstLocation)
	result := &SubmitResult{}
	accessBySystem := make(map[string]bool)

	for _, item := range items {
		if item.Status != entity.StatusPass && item.Status != entity.StatusFail {
			return nil, fmt.Errorf("invalid status %q for item %s", item.Status, item.CheckItemID)
		}
		if item.Status == entity.StatusFail && item.FailNotes == "" {
			return nil, ErrFailNotesRequired
		}

		checkItem, err := s.repos.CheckItem.FindByID(ctx, item.CheckItemID)
		if err != nil {
			return nil, fmt.Errorf("check item %s: %w", item.CheckItemID, err)
		}
		if checkItem.Status != entity.CheckItemActive {
			result.Skipped++
			continue
		}

		system, err := s.repos.System.FindByID(ctx, checkItem.SystemID)
		if err != nil {
			return nil, err
		}
		if !system.SupportsEnvironment(item.Environment) {
			return nil, ErrUnsupportedEnvironment
		}

		allowed, ok := accessBySystem[checkItem.SystemID]
		if !ok {
			allowed, err = s.hasSystemAccess(ctx, userID, checkItem.SystemID)
			if err != nil {
				return nil, err
			}
			accessBySystem[checkItem.SystemID] = allowed
		}
		if !allowed {
			return nil, ErrNotAssigned
		}

		record, err := s.repos.Checklist.FindByIdentity(ctx, item.CheckItemID, today, item.Environment)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}

		if record == nil {
			record = &entity.ChecklistRecord{
				ID:          generateID(),
				CheckItemID: item.CheckItemID,
				CheckDate:   today,
				Environment: item.Environment,
				SystemID:    checkItem.SystemID,
				UserID:      userID,
				Status:      item.Status,
				FailNotes:   item.FailNotes,
				CheckedAt:   now,
			}
			if err := s.repos.Checklist.Create(ctx, record); err != nil {
				return nil, fmt.Errorf("create record: %w", err)
			}
			log := &entity.ChecklistRecordLog{
				ID:          generateID(),
				RecordID:    record.ID,
				CheckItemID: item.CheckItemID,
				CheckDate:   today,
				Environment: item.Environment,
				Action:      entity.LogActionCreate,
				NewStatus:   item.Status,
				NewNotes:    item.FailNotes,
				ChangedBy:   userID,
			}
			if err := s.repos.Checklist.CreateLog(ctx, log); err != nil {
				return nil, fmt.Errorf("create record log: %w", err)
			}
			result.Created++
			continue
		}

		if record.Status == item.Status && record.FailNotes == item.FailNotes {
			result.Skipped++
			continue
		}

		oldStatus := record.Status
		oldNotes := record.FailNotes
		record.Status = item.Status
		record.FailNotes = item.FailNotes
		record.UserID = userID
		record.CheckedAt = now
		if err := s.repos.Checklist.Update(ctx, record); err != nil {
			return nil, fmt.Errorf("update record: %w", err)
		}

		log := &entity.ChecklistRecordLog{
			ID:          generateID(),
			RecordID:    record.ID,
			CheckItemID: item.CheckItemID,
			CheckDate:   today,
			Environment: item.Environment,
			Action:      entity.LogActionUpdate,
			OldStatus:   oldStatus,
			NewStatus:   item.Status,
			OldNotes:    oldNotes,
			NewNotes:    item.FailNotes,
			ChangedBy:   userID,
		}
		if err := s.repos.Checklist.CreateLog(ctx, log); err != nil {
			return nil, fmt.Errorf("create record log: %w", err)
		}
		result.Updated++
	}

	return result, nil
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

// GetUncheckedItems 사용자의 오늘 미점검 항목 목록 (직접 배정 + 활성 대체)
func (s *ChecklistService) GetUncheckedItems(ctx context.Context, userID, environment string) ([]UncheckedItem, error) {
	assignments, err := s.effectiveAssignments(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.uncheckedForAssignments(ctx, assignments, environment)
}

// uncheckedForUsers 직접 배정 기준 미점검 항목 계산 (스케줄러 공용)
func (s *ChecklistService) uncheckedForUsers(ctx context.Context, userIDs []string, environment string) ([]UncheckedItem, error) {
	assignments, err := s.repos.Assignment.FindByUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	return s.uncheckedForAssignments(ctx, assignments, environment)
}

// uncheckedForAssignments 배정 목록 기준 미점검 항목 계산
func (s *ChecklistService) uncheckedForAssignments(ctx context.Context, assignments []entity.Assignment, environment string) ([]UncheckedItem, error) {
	type key struct {
		itemID string
		env    string
	}
	targets := make(map[key]bool)
	var itemIDs []string
	itemSeen := make(map[string]bool)
	for _, a := range assignments {
		if environment != "" && a.Environment != environment {
			continue
		}
		targets[key{a.CheckItemID, a.Environment}] = true
		if !itemSeen[a.CheckItemID] {
			itemSeen[a.CheckItemID] = true
			itemIDs = append(itemIDs, a.CheckItemID)
		}
	}
	if len(itemIDs) == 0 {
		return nil, nil
	}

	records, err := s.repos.Checklist.FindByItemsAndDate(ctx, itemIDs, TodayKST(), environment)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		delete(targets, key{r.CheckItemID, r.Environment})
	}

	items, err := s.repos.CheckItem.FindByIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	itemByID := make(map[string]entity.CheckItem, len(items))
	var systemIDs []string
	sysSeen := make(map[string]bool)
	for _, it := range items {
		itemByID[it.ID] = it
		if !sysSeen[it.SystemID] {
			sysSeen[it.SystemID] = true
			systemIDs = append(systemIDs, it.SystemID)
		}
	}
	systems, err := s.repos.System.FindByIDs(ctx, systemIDs)
	if err != nil {
		return nil, err
	}
	systemByID := make(map[string]entity.System, len(systems))
	for _, sys := range systems {
		systemByID[sys.ID] = sys
	}

	var unchecked []UncheckedItem
	for k := range targets {
		item, ok := itemByID[k.itemID]
		if !ok || item.Status != entity.CheckItemActive {
			continue
		}
		unchecked = append(unchecked, UncheckedItem{
			SystemID:        item.SystemID,
			SystemName:      systemByID[item.SystemID].Name,
			CheckItemID:     item.ID,
			CheckItemName:   item.Name,
			Environment:     k.env,
			EnvironmentName: entity.EnvironmentName(k.env),
		})
	}

	sort.Slice(unchecked, func(i, j int) bool {
		if unchecked[i].SystemName != unchecked[j].SystemName {
			return unchecked[i].SystemName < unchecked[j].SystemName
		}
		if unchecked[i].CheckItemName != unchecked[j].CheckItemName {
			return unchecked[i].CheckItemName < unchecked[j].CheckItemName
		}
		return unchecked[i].Environment < unchecked[j].Environment
	})

	return unchecked, nil
}

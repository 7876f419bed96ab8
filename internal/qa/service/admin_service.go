package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deul428/QA-checklist/internal/qa/entity"
	"github.com/deul428/QA-checklist/internal/qa/repository"
)

// 관리 에러
var (
	ErrDuplicateCheckItem = errors.New("duplicate check item name")
)

// AdminService 관리(점검 항목/배정) 서비스
type AdminService struct {
	repos *repository.Repositories
}

// NewAdminService 관리 서비스 생성
func NewAdminService(repos *repository.Repositories) *AdminService {
	return &AdminService{repos: repos}
}

// ListSystems 전체 시스템 목록
func (s *AdminService) ListSystems(ctx context.Context) ([]entity.System, error) {
	return s.repos.System.List(ctx)
}

// ListUsers 전체 사용자 목록
func (s *AdminService) ListUsers(ctx context.Context) ([]entity.User, error) {
	return s.repos.User.List(ctx)
}

// ListCheckItems 시스템의 활성 점검 항목 목록 (빈 systemID면 전체)
func (s *AdminService) ListCheckItems(ctx context.Context, systemID string) ([]entity.CheckItem, error) {
	if systemID == "" {
		return s.repos.CheckItem.ListActive(ctx)
	}
	return s.repos.CheckItem.ListActiveBySystem(ctx, systemID)
}

// CreateCheckItemRequest 점검 항목 생성 요청
type CreateCheckItemRequest struct {
	SystemID    string `json:"system_id" binding:"required"`
	Name        string `json:"check_item" binding:"required"`
	Description string `json:"description"`
}

// CreateCheckItem 점검 항목 생성. 같은 시스템의 활성 항목과
// 이름이 겹치면 거부한다.
func (s *AdminService) CreateCheckItem(ctx context.Context, adminID string, req CreateCheckItemRequest) (*entity.CheckItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("check item name is empty")
	}

	if _, err := s.repos.System.FindByID(ctx, req.SystemID); err != nil {
		return nil, err
	}

	exists, err := s.repos.CheckItem.ExistsActiveName(ctx, req.SystemID, name, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateCheckItem
	}

	maxOrder, err := s.repos.CheckItem.MaxOrderIndex(ctx, req.SystemID)
	if err != nil {
		return nil, err
	}

	item := &entity.CheckItem{
		ID:          generateID(),
		SystemID:    req.SystemID,
		Name:        name,
		Description: req.Description,
		Status:      entity.CheckItemActive,
		OrderIndex:  maxOrder + 1,
	}
	if err := s.repos.CheckItem.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create check item: %w", err)
	}

	s.writeAdminLog(ctx, adminID, "CREATE", "check_item", item.ID, nil, item)
	return item, nil
}

// UpdateCheckItemRequest 점검 항목 수정 요청 (지정한 필드만 변경)
type UpdateCheckItemRequest struct {
	Name        *string `json:"check_item"`
	Description *string `json:"description"`
	OrderIndex  *int    `json:"order_index"`
}

// UpdateCheckItem 점검 항목 수정
func (s *AdminService) UpdateCheckItem(ctx context.Context, adminID, itemID string, req UpdateCheckItemRequest) (*entity.CheckItem, error) {
	item, err := s.repos.CheckItem.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Status != entity.CheckItemActive {
		return nil, repository.ErrNotFound
	}
	before := *item

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("check item name is empty")
		}
		exists, err := s.repos.CheckItem.ExistsActiveName(ctx, item.SystemID, name, item.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateCheckItem
		}
		item.Name = name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.OrderIndex != nil {
		item.OrderIndex = *req.OrderIndex
	}
	item.UpdatedAt = time.Now()

	if err := s.repos.CheckItem.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update check item: %w", err)
	}

	s.writeAdminLog(ctx, adminID, "UPDATE", "check_item", item.ID, before, item)
	return item, nil
}

// DeleteCheckItem 점검 항목 삭제 (soft delete). 과거 기록은 유지된다.
func (s *AdminService) DeleteCheckItem(ctx context.Context, adminID, itemID string) error {
	item, err := s.repos.CheckItem.FindByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.Status == entity.CheckItemDeleted {
		return repository.ErrNotFound
	}
	before := *item

	item.Status = entity.CheckItemDeleted
	item.UpdatedAt = time.Now()
	if err := s.repos.CheckItem.Update(ctx, item); err != nil {
		return fmt.Errorf("delete check item: %w", err)
	}

	s.writeAdminLog(ctx, adminID, "DELETE", "check_item", item.ID, before, item)
	return nil
}

// ListAssignments 배정 목록 (시스템/환경 필터 선택)
func (s *AdminService) ListAssignments(ctx context.Context, systemID, environment string) ([]entity.Assignment, error) {
	return s.repos.Assignment.List(ctx, systemID, environment)
}

// CreateAssignmentsRequest 배정 생성 요청 (여러 사용자 일괄)
type CreateAssignmentsRequest struct {
	UserIDs     []string `json:"user_ids" binding:"required"`
	SystemID    string   `json:"system_id" binding:"required"`
	CheckItemID string   `json:"check_item_id" binding:"required"`
	Environment string   `json:"environment" binding:"required"`
}

// CreateAssignmentsResult 배정 생성 결과
type CreateAssignmentsResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// CreateAssignments 여러 사용자를 한 항목에 배정. 이미 같은 배정이
// 있는 사용자는 건너뛴다.
func (s *AdminService) CreateAssignments(ctx context.Context, adminID string, req CreateAssignmentsRequest) (*CreateAssignmentsResult, error) {
	system, err := s.repos.System.FindByID(ctx, req.SystemID)
	if err != nil {
		return nil, err
	}
	if !system.SupportsEnvironment(req.Environment) {
		return nil, ErrUnsupportedEnvironment
	}

	item, err := s.repos.CheckItem.FindByID(ctx, req.CheckItemID)
	if err != nil {
		return nil, err
	}
	if item.SystemID != req.SystemID || item.Status != entity.CheckItemActive {
		return nil, repository.ErrNotFound
	}

	result := &CreateAssignmentsResult{}
	for _, userID := range req.UserIDs {
		if _, err := s.repos.User.FindByID(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				result.Skipped++
				continue
			}
			return nil, err
		}

		exists, err := s.repos.Assignment.Exists(ctx, userID, req.SystemID, req.CheckItemID, req.Environment)
		if err != nil {
			return nil, err
		}
		if exists {
			result.Skipped++
			continue
		}

		assignment := &entity.Assignment{
			ID:          generateID(),
			UserID:      userID,
			SystemID:    req.SystemID,
			CheckItemID: req.CheckItemID,
			Environment: req.Environment,
			AssignedBy:  adminID,
		}
		if err := s.repos.Assignment.Create(ctx, assignment); err != nil {
			return nil, fmt.Errorf("create assignment: %w", err)
		}
		s.writeAdminLog(ctx, adminID, "CREATE", "assignment", assignment.ID, nil, assignment)
		result.Created++
	}

	return result, nil
}

// DeleteAssignment 배정 삭제
func (s *AdminService) DeleteAssignment(ctx context.Context, adminID, assignmentID string) error {
	assignment, err := s.repos.Assignment.FindByID(ctx, assignmentID)
	if err != nil {
		return err
	}

	if err := s.repos.Assignment.Delete(ctx, assignmentID); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}

	s.writeAdminLog(ctx, adminID, "DELETE", "assignment", assignmentID, assignment, nil)
	return nil
}

// writeAdminLog 관리 감사 로그 기록. 실패해도 본 작업은 막지 않는다.
func (s *AdminService) writeAdminLog(ctx context.Context, adminID, action, targetType, targetID string, before, after interface{}) {
	log := &entity.AdminLog{
		ID:         generateID(),
		UserID:     adminID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
	}
	if before != nil {
		if b, err := json.Marshal(before); err == nil {
			log.Before = b
		}
	}
	if after != nil {
		if a, err := json.Marshal(after); err == nil {
			log.After = a
		}
	}
	_ = s.repos.AdminLog.Create(ctx, log)
}

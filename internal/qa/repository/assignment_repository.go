package repository

import (
	"context"
	"errors"

	"github.com/deul428/QA-checklist/internal/qa/entity"
	"gorm.io/gorm"
)

// AssignmentRepository 담당 배정 저장소
type AssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository 담당 배정 저장소 생성
func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindByID ID로 배정 조회
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*entity.Assignment, error) {
	var assignment entity.Assignment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// FindByUser 사용자의 배정 목록 조회
func (r *AssignmentRepository) FindByUser(ctx context.Context, userID string) ([]entity.Assignment, error) {
	var assignments []entity.Assignment
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&assignments).Error
	return assignments, err
}

// FindByUsers 사용자 목록의 배정 조회
func (r *AssignmentRepository) FindByUsers(ctx context.Context, userIDs []string) ([]entity.Assignment, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var assignments []entity.Assignment
	err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&assignments).Error
	return assignments, err
}

// FindByUserAndSystem 사용자의 특정 시스템/환경 배정 조회
func (r *AssignmentRepository) FindByUserAndSystem(ctx context.Context, userID, systemID, environment string) ([]entity.Assignment, error) {
	q := r.db.WithContext(ctx).Where("user_id = ? AND system_id = ?", userID, systemID)
	if environment != "" {
		q = q.Where("environment = ?", environment)
	}
	var assignments []entity.Assignment
	err := q.Find(&assignments).Error
	return assignments, err
}

// FindByItem 점검 항목의 배정 목록 조회 (환경 필터 선택)
func (r *AssignmentRepository) FindByItem(ctx context.Context, checkItemID, environment string) ([]entity.Assignment, error) {
	q := r.db.WithContext(ctx).Preload("User").Where("check_item_id = ?", checkItemID)
	if environment != "" {
		q = q.Where("environment = ?", environment)
	}
	var assignments []entity.Assignment
	err := q.Find(&assignments).Error
	return assignments, err
}

// List 배정 목록 조회 (시스템/환경 필터 선택)
func (r *AssignmentRepository) List(ctx context.Context, systemID, environment string) ([]entity.Assignment, error) {
	q := r.db.WithContext(ctx).
		Preload("User").
		Preload("System").
		Preload("CheckItem")
	if systemID != "" {
		q = q.Where("system_id = ?", systemID)
	}
	if environment != "" {
		q = q.Where("environment = ?", environment)
	}
	var assignments []entity.Assignment
	err := q.Order("created_at ASC").Find(&assignments).Error
	return assignments, err
}

// Exists 동일 배정 존재 여부 확인
func (r *AssignmentRepository) Exists(ctx context.Context, userID, systemID, checkItemID, environment string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Assignment{}).
		Where("user_id = ? AND system_id = ? AND check_item_id = ? AND environment = ?",
			userID, systemID, checkItemID, environment).
		Count(&count).Error
	return count > 0, err
}

// Create 배정 생성
func (r *AssignmentRepository) Create(ctx context.Context, assignment *entity.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

// Delete 배정 삭제
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Assignment{}).Error
}

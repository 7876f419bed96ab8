package repository

import (
	"context"
	"errors"

	"github.com/deul428/QA-checklist/internal/qa/entity"
	"gorm.io/gorm"
)

// CheckItemRepository 점검 항목 저장소
type CheckItemRepository struct {
	db *gorm.DB
}

// NewCheckItemRepository 점검 항목 저장소 생성
func NewCheckItemRepository(db *gorm.DB) *CheckItemRepository {
	return &CheckItemRepository{db: db}
}

// FindByID ID로 점검 항목 조회
func (r *CheckItemRepository) FindByID(ctx context.Context, id string) (*entity.CheckItem, error) {
	var item entity.CheckItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByIDs ID 목록으로 점검 항목 조회
func (r *CheckItemRepository) FindByIDs(ctx context.Context, ids []string) ([]entity.CheckItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []entity.CheckItem
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

// ListActiveBySystem 시스템의 활성 점검 항목 목록 (order_index순)
func (r *CheckItemRepository) ListActiveBySystem(ctx context.Context, systemID string) ([]entity.CheckItem, error) {
	var items []entity.CheckItem
	err := r.db.WithContext(ctx).
		Where("system_id = ? AND status = ?", systemID, entity.CheckItemActive).
		Order("order_index ASC, created_at ASC").
		Find(&items).Error
	return items, err
}

// ListActive 전체 활성 점검 항목 목록
func (r *CheckItemRepository) ListActive(ctx context.Context) ([]entity.CheckItem, error) {
	var items []entity.CheckItem
	err := r.db.WithContext(ctx).
		Preload("System").
		Where("status = ?", entity.CheckItemActive).
		Order("system_id ASC, order_index ASC").
		Find(&items).Error
	return items, err
}

// ExistsActiveName 같은 시스템에 같은 이름의 활성 항목이 있는지 확인
func (r *CheckItemRepository) ExistsActiveName(ctx context.Context, systemID, name, excludeID string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&entity.CheckItem{}).
		Where("system_id = ? AND check_item = ? AND status = ?", systemID, name, entity.CheckItemActive)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// MaxOrderIndex 시스템 내 최대 order_index 조회
func (r *CheckItemRepository) MaxOrderIndex(ctx context.Context, systemID string) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).Model(&entity.CheckItem{}).
		Where("system_id = ?", systemID).
		Select("MAX(order_index)").
		Scan(&max).Error
	if err != nil || max == nil {
		return 0, err
	}
	return *max, nil
}

// Create 점검 항목 생성
func (r *CheckItemRepository) Create(ctx context.Context, item *entity.CheckItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update 점검 항목 수정
func (r *CheckItemRepository) Update(ctx context.Context, item *entity.CheckItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

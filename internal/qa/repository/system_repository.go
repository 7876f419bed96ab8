package repository

import (
	"context"
	"errors"

	"github.com/deul428/QA-checklist/internal/qa/entity"
	"gorm.io/gorm"
)

// SystemRepository 시스템 저장소
type SystemRepository struct {
	db *gorm.DB
}

// NewSystemRepository 시스템 저장소 생성
func NewSystemRepository(db *gorm.DB) *SystemRepository {
	return &SystemRepository{db: db}
}

// FindByID ID로 시스템 조회
func (r *SystemRepository) FindByID(ctx context.Context, id string) (*entity.System, error) {
	var system entity.System
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&system).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &system, nil
}

// FindByIDs ID 목록으로 시스템 조회 (이름순)
func (r *SystemRepository) FindByIDs(ctx context.Context, ids []string) ([]entity.System, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var systems []entity.System
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&systems).Error
	return systems, err
}

// List 전체 시스템 목록 (이름순)
func (r *SystemRepository) List(ctx context.Context) ([]entity.System, error) {
	var systems []entity.System
	err := r.db.WithContext(ctx).Order("name ASC").Find(&systems).Error
	return systems, err
}

// Create 시스템 생성
func (r *SystemRepository) Create(ctx context.Context, system *entity.System) error {
	return r.db.WithContext(ctx).Create(system).Error
}

// Update 시스템 수정
func (r *SystemRepository) Update(ctx context.Context, system *entity.System) error {
	return r.db.WithContext(ctx).Save(system).Error
}

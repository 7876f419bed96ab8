package repository

import (
	"context"

	"github.com/deul428/QA-checklist/internal/qa/entity"
	"gorm.io/gorm"
)

// AdminLogRepository 관리 감사 로그 저장소
type AdminLogRepository struct {
	db *gorm.DB
}

// NewAdminLogRepository 관리 감사 로그 저장소 생성
func NewAdminLogRepository(db *gorm.DB) *AdminLogRepository {
	return &AdminLogRepository{db: db}
}

// Create 감사 로그 생성
func (r *AdminLogRepository) Create(ctx context.Context, log *entity.AdminLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// List 감사 로그 목록 (최근순)
func (r *AdminLogRepository) List(ctx context.Context, limit int) ([]entity.AdminLog, error) {
	var logs []entity.AdminLog
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

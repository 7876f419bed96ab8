package repository

import (
	"context"
	"errors"

	"github.com/deul428/QA-checklist/internal/qa/entity"
	"gorm.io/gorm"
)

// ChecklistRepository 점검 기록 저장소
type ChecklistRepository struct {
	db *gorm.DB
}

// NewChecklistRepository 점검 기록 저장소 생성
func NewChecklistRepository(db *gorm.DB) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

// FindByIdentity (항목, 날짜, 환경)으로 기록 조회. 공동 담당자가
// 공유하는 정체성이므로 user_id 조건은 걸지 않는다.
func (r *ChecklistRepository) FindByIdentity(ctx context.Context, checkItemID, checkDate, environment string) (*entity.ChecklistRecord, error) {
	var record entity.ChecklistRecord
	err := r.db.WithContext(ctx).
		Where("check_item_id = ? AND check_date = ? AND environment = ?", checkItemID, checkDate, environment).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByItemsAndDate 항목 목록의 해당 날짜 기록 조회 (환경 필터 선택)
func (r *ChecklistRepository) FindByItemsAndDate(ctx context.Context, checkItemIDs []string, checkDate, environment string) ([]entity.ChecklistRecord, error) {
	if len(checkItemIDs) == 0 {
		return nil, nil
	}
	q := r.db.WithContext(ctx).
		Where("check_item_id IN ? AND check_date = ?", checkItemIDs, checkDate)
	if environment != "" {
		q = q.Where("environment = ?", environment)
	}
	var records []entity.ChecklistRecord
	err := q.Find(&records).Error
	return records, err
}

// FindByDate 해당 날짜의 전체 기록 조회 (환경 필터 선택)
func (r *ChecklistRepository) FindByDate(ctx context.Context, checkDate, environment string) ([]entity.ChecklistRecord, error) {
	q := r.db.WithContext(ctx).
		Preload("CheckItem").
		Preload("System").
		Preload("User").
		Where("check_date = ?", checkDate)
	if environment != "" {
		q = q.Where("environment = ?", environment)
	}
	var records []entity.ChecklistRecord
	err := q.Find(&records).Error
	return records, err
}

// FindByDateRange 기간 [start, end]의 전체 기록 조회 (환경 필터 선택)
func (r *ChecklistRepository) FindByDateRange(ctx context.Context, startDate, endDate, environment string) ([]entity.ChecklistRecord, error) {
	q := r.db.WithContext(ctx).
		Where("check_date >= ? AND check_date <= ?", startDate, endDate)
	if environment != "" {
		q = q.Where("environment = ?", environment)
	}
	var records []entity.ChecklistRecord
	err := q.Find(&records).Error
	return records, err
}

// Create 기록 생성
func (r *ChecklistRepository) Create(ctx context.Context, record *entity.ChecklistRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// Update 기록 수정
func (r *ChecklistRepository) Update(ctx context.Context, record *entity.ChecklistRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// CreateLog 기록 변경 로그 생성
func (r *ChecklistRepository) CreateLog(ctx context.Context, log *entity.ChecklistRecordLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindLogsByDate 해당 날짜의 변경 로그 조회 (시간순, 환경 필터 선택)
func (r *ChecklistRepository) FindLogsByDate(ctx context.Context, checkDate, environment string) ([]entity.ChecklistRecordLog, error) {
	q := r.db.WithContext(ctx).
		Where("check_date = ?", checkDate)
	if environment != "" {
		q = q.Where("environment = ?", environment)
	}
	var logs []entity.ChecklistRecordLog
	err := q.Order("created_at ASC").Find(&logs).Error
	return logs, err
}

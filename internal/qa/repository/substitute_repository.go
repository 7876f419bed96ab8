package repository

import (
	"context"
	"errors"

	"github.com/deul428/QA-checklist/internal/qa/entity"
	"gorm.io/gorm"
)

// SubstituteRepository 대체 지정 저장소
type SubstituteRepository struct {
	db *gorm.DB
}

// NewSubstituteRepository 대체 지정 저장소 생성
func NewSubstituteRepository(db *gorm.DB) *SubstituteRepository {
	return &SubstituteRepository{db: db}
}

// FindByID ID로 대체 지정 조회
func (r *SubstituteRepository) FindByID(ctx context.Context, id string) (*entity.SubstituteAssignment, error) {
	var sub entity.SubstituteAssignment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// FindByOriginalUser 원 담당자의 대체 지정 목록 (최근 생성순)
func (r *SubstituteRepository) FindByOriginalUser(ctx context.Context, userID string) ([]entity.SubstituteAssignment, error) {
	var subs []entity.SubstituteAssignment
	err := r.db.WithContext(ctx).
		Preload("SubstituteUser").
		Preload("System").
		Where("original_user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}

// FindActiveForSubstitute 대체자가 나인 활성 지정 목록 (date는 YYYY-MM-DD)
func (r *SubstituteRepository) FindActiveForSubstitute(ctx context.Context, substituteUserID, date string) ([]entity.SubstituteAssignment, error) {
	var subs []entity.SubstituteAssignment
	err := r.db.WithContext(ctx).
		Preload("OriginalUser").
		Preload("System").
		Where("substitute_user_id = ? AND start_date <= ? AND end_date >= ?", substituteUserID, date, date).
		Find(&subs).Error
	return subs, err
}

// FindOverlapping 같은 (원 담당자, 대체자, 시스템) 조합에서 기간이
// 겹치는 지정 조회. 같은 기간에 다른 시스템이나 다른 대체자를
// 지정하는 것은 겹침이 아니다.
func (r *SubstituteRepository) FindOverlapping(ctx context.Context, originalUserID, substituteUserID, systemID, startDate, endDate string) ([]entity.SubstituteAssignment, error) {
	var subs []entity.SubstituteAssignment
	err := r.db.WithContext(ctx).
		Where("original_user_id = ? AND substitute_user_id = ? AND system_id = ? AND start_date <= ? AND end_date >= ?",
			originalUserID, substituteUserID, systemID, endDate, startDate).
		Find(&subs).Error
	return subs, err
}

// Create 대체 지정 생성
func (r *SubstituteRepository) Create(ctx context.Context, sub *entity.SubstituteAssignment) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// Delete 대체 지정 삭제
func (r *SubstituteRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.SubstituteAssignment{}).Error
}

// CreateChangeLog 대체 지정 변경 로그 생성
func (r *SubstituteRepository) CreateChangeLog(ctx context.Context, log *entity.SubstituteChangeLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

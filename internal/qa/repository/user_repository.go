package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/deul428/QA-checklist/internal/qa/entity"
	"gorm.io/gorm"
)

// UserRepository 사용자 저장소
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository 사용자 저장소 생성
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID ID로 사용자 조회
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmployeeID 사번으로 사용자 조회
func (r *UserRepository) FindByEmployeeID(ctx context.Context, employeeID string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("employee_id = ?", employeeID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByIDs ID 목록으로 사용자 조회
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []entity.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

// List 전체 사용자 목록 (이름순)
func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).Order("name ASC").Find(&users).Error
	return users, err
}

// Search 이름/사번/부서 부분 일치 검색
func (r *UserRepository) Search(ctx context.Context, query string, limit int) ([]entity.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	pattern := "%" + query + "%"
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("name ILIKE ? OR employee_id ILIKE ? OR department ILIKE ?", pattern, pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// Create 사용자 생성
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update 사용자 수정
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

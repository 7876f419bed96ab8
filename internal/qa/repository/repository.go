package repository

import (
	"errors"

	"gorm.io/gorm"
)

// 에러 정의
var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 저장소 집합
type Repositories struct {
	User       *UserRepository
	System     *SystemRepository
	CheckItem  *CheckItemRepository
	Checklist  *ChecklistRepository
	Assignment *AssignmentRepository
	Substitute *SubstituteRepository
	AdminLog   *AdminLogRepository
}

// NewRepositories 저장소 집합 생성
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		System:     NewSystemRepository(db),
		CheckItem:  NewCheckItemRepository(db),
		Checklist:  NewChecklistRepository(db),
		Assignment: NewAssignmentRepository(db),
		Substitute: NewSubstituteRepository(db),
		AdminLog:   NewAdminLogRepository(db),
	}
}

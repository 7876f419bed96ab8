package entity

import (
	"time"
)

// Assignment 점검 담당 배정 (사용자 × 시스템 × 항목 × 환경)
type Assignment struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	UserID      string    `json:"user_id" gorm:"size:32;not null;uniqueIndex:idx_assignment_identity"`
	SystemID    string    `json:"system_id" gorm:"size:32;not null;uniqueIndex:idx_assignment_identity"`
	CheckItemID string    `json:"check_item_id" gorm:"size:32;not null;uniqueIndex:idx_assignment_identity"`
	Environment string    `json:"environment" gorm:"size:8;not null;uniqueIndex:idx_assignment_identity"`
	AssignedBy  string    `json:"assigned_by" gorm:"size:32"`
	CreatedAt   time.Time `json:"created_at"`

	User      *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	System    *System    `json:"system,omitempty" gorm:"foreignKey:SystemID"`
	CheckItem *CheckItem `json:"check_item,omitempty" gorm:"foreignKey:CheckItemID"`
}

func (Assignment) TableName() string {
	return "assignments"
}

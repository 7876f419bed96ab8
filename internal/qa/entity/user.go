package entity

import (
	"time"
)

// User 사용자 실체
type User struct {
	ID                  string    `json:"id" gorm:"primaryKey;size:32"`
	EmployeeID          string    `json:"employee_id" gorm:"size:32;not null;uniqueIndex"`
	Password            string    `json:"-" gorm:"size:128;not null"`
	Name                string    `json:"name" gorm:"size:64;not null"`
	Email               string    `json:"email" gorm:"size:128;index"`
	Division            string    `json:"division" gorm:"size:64"`
	GeneralHeadquarters string    `json:"general_headquarters" gorm:"size:64"`
	Department          *string   `json:"department" gorm:"size:64"`
	Position            string    `json:"position" gorm:"size:32"`
	Role                string    `json:"role" gorm:"size:32"`
	ConsoleRole         bool      `json:"console_role" gorm:"not null;default:false"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

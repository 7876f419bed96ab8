package entity

import (
	"encoding/json"
	"time"
)

// AdminLog 관리 화면의 생성/수정/삭제 감사 로그
type AdminLog struct {
	ID         string          `json:"id" gorm:"primaryKey;size:32"`
	UserID     string          `json:"user_id" gorm:"size:32;not null;index"`
	Action     string          `json:"action" gorm:"size:32;not null"`
	TargetType string          `json:"target_type" gorm:"size:32;not null"`
	TargetID   string          `json:"target_id" gorm:"size:32;index"`
	Before     json.RawMessage `json:"before" gorm:"type:jsonb"`
	After      json.RawMessage `json:"after" gorm:"type:jsonb"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (AdminLog) TableName() string {
	return "admin_logs"
}

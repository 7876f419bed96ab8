package entity

import (
	"time"
)

// SubstituteAssignment 대체 점검자 지정 (시스템 단위). 기간은 날짜
// 단위이며 오늘이 [start_date, end_date] 안에 있으면 활성이다.
type SubstituteAssignment struct {
	ID               string    `json:"id" gorm:"primaryKey;size:32"`
	OriginalUserID   string    `json:"original_user_id" gorm:"size:32;not null;index"`
	SubstituteUserID string    `json:"substitute_user_id" gorm:"size:32;not null;index"`
	SystemID         string    `json:"system_id" gorm:"size:32;not null;index"`
	StartDate        string    `json:"start_date" gorm:"size:10;not null"`
	EndDate          string    `json:"end_date" gorm:"size:10;not null"`
	Reason           string    `json:"reason" gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at"`

	OriginalUser   *User   `json:"original_user,omitempty" gorm:"foreignKey:OriginalUserID"`
	SubstituteUser *User   `json:"substitute_user,omitempty" gorm:"foreignKey:SubstituteUserID"`
	System         *System `json:"system,omitempty" gorm:"foreignKey:SystemID"`
}

func (SubstituteAssignment) TableName() string {
	return "substitute_assignments"
}

// ActiveOn 해당 날짜(YYYY-MM-DD)에 대체 지정이 활성인지 확인
func (s SubstituteAssignment) ActiveOn(date string) bool {
	return s.StartDate <= date && date <= s.EndDate
}

// SubstituteChangeLog 대체 지정 생성/삭제 이력
type SubstituteChangeLog struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	SubstituteID string    `json:"substitute_id" gorm:"size:32;not null;index"`
	Action       string    `json:"action" gorm:"size:16;not null"`
	Detail       string    `json:"detail" gorm:"type:text"`
	ChangedBy    string    `json:"changed_by" gorm:"size:32;not null"`
	CreatedAt    time.Time `json:"created_at"`
}

func (SubstituteChangeLog) TableName() string {
	return "substitute_change_logs"
}

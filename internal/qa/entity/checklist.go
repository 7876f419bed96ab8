package entity

import (
	"time"
)

// 점검 결과 상태
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

// ChecklistRecord 일일 점검 기록. 기록의 정체성은
// (check_item_id, check_date, environment)이며 user_id는 마지막으로
// 점검한 사람일 뿐이다. 같은 항목의 공동 담당자들은 같은 기록을 공유한다.
type ChecklistRecord struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	CheckItemID string    `json:"check_item_id" gorm:"size:32;not null;uniqueIndex:idx_record_identity"`
	CheckDate   string    `json:"check_date" gorm:"size:10;not null;uniqueIndex:idx_record_identity"`
	Environment string    `json:"environment" gorm:"size:8;not null;uniqueIndex:idx_record_identity"`
	SystemID    string    `json:"system_id" gorm:"size:32;not null;index"`
	UserID      string    `json:"user_id" gorm:"size:32;not null;index"`
	Status      string    `json:"status" gorm:"size:8;not null"`
	FailNotes   string    `json:"fail_notes" gorm:"type:text"`
	CheckedAt   time.Time `json:"checked_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	CheckItem *CheckItem `json:"check_item,omitempty" gorm:"foreignKey:CheckItemID"`
	System    *System    `json:"system,omitempty" gorm:"foreignKey:SystemID"`
	User      *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (ChecklistRecord) TableName() string {
	return "checklist_records"
}

// 기록 로그 액션
const (
	LogActionCreate = "CREATE"
	LogActionUpdate = "UPDATE"
)

// ChecklistRecordLog 점검 기록 변경 이력. 콘솔의 FAIL 항목 추적은
// 이 로그를 시간순으로 따라가며 최초 FAIL 시각과 해소 여부를 계산한다.
type ChecklistRecordLog struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	RecordID    string    `json:"record_id" gorm:"size:32;not null;index"`
	CheckItemID string    `json:"check_item_id" gorm:"size:32;not null;index"`
	CheckDate   string    `json:"check_date" gorm:"size:10;not null;index"`
	Environment string    `json:"environment" gorm:"size:8;not null"`
	Action      string    `json:"action" gorm:"size:8;not null"`
	OldStatus   string    `json:"old_status" gorm:"size:8"`
	NewStatus   string    `json:"new_status" gorm:"size:8;not null"`
	OldNotes    string    `json:"old_notes" gorm:"type:text"`
	NewNotes    string    `json:"new_notes" gorm:"type:text"`
	ChangedBy   string    `json:"changed_by" gorm:"size:32;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ChecklistRecordLog) TableName() string {
	return "checklist_record_logs"
}

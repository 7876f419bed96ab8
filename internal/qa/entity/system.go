package entity

import (
	"time"
)

// 환경 코드
const (
	EnvDev = "dev"
	EnvStg = "stg"
	EnvPrd = "prd"
)

// EnvironmentName 환경 코드의 표시 이름
func EnvironmentName(env string) string {
	switch env {
	case EnvDev:
		return "개발계"
	case EnvStg:
		return "품질계"
	case EnvPrd:
		return "운영계"
	default:
		return env
	}
}

// System 점검 대상 시스템
type System struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	Name        string    `json:"name" gorm:"size:128;not null;uniqueIndex"`
	Description string    `json:"description" gorm:"type:text"`
	HasDev      bool      `json:"has_dev" gorm:"not null;default:true"`
	HasStg      bool      `json:"has_stg" gorm:"not null;default:true"`
	HasPrd      bool      `json:"has_prd" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (System) TableName() string {
	return "systems"
}

// SupportsEnvironment 시스템이 해당 환경을 지원하는지 확인
func (s System) SupportsEnvironment(env string) bool {
	switch env {
	case EnvDev:
		return s.HasDev
	case EnvStg:
		return s.HasStg
	case EnvPrd:
		return s.HasPrd
	default:
		return false
	}
}

// Environments 시스템이 지원하는 환경 목록 (dev → stg → prd 순)
func (s System) Environments() []string {
	var envs []string
	if s.HasDev {
		envs = append(envs, EnvDev)
	}
	if s.HasStg {
		envs = append(envs, EnvStg)
	}
	if s.HasPrd {
		envs = append(envs, EnvPrd)
	}
	return envs
}

// 점검 항목 상태
const (
	CheckItemActive  = "active"
	CheckItemDeleted = "deleted"
)

// CheckItem 점검 항목. 삭제는 soft delete(status=deleted)로 처리해
// 과거 점검 기록이 항목을 계속 참조할 수 있게 한다.
type CheckItem struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	SystemID    string    `json:"system_id" gorm:"size:32;not null;index"`
	Name        string    `json:"check_item" gorm:"column:check_item;size:256;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Status      string    `json:"status" gorm:"size:16;not null;default:active"`
	OrderIndex  int       `json:"order_index" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	System *System `json:"system,omitempty" gorm:"foreignKey:SystemID"`
}

func (CheckItem) TableName() string {
	return "check_items"
}

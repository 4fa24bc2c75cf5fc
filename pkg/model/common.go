// Package model 定义排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// EmployeeGroup 员工组别编码
type EmployeeGroup string

const (
	GroupFullTime EmployeeGroup = "VZ"  // 全职
	GroupPartTime EmployeeGroup = "TZ"  // 兼职
	GroupMiniJob  EmployeeGroup = "GFB" // 小时工
	GroupTeamLead EmployeeGroup = "TL"  // 店长/组长
)

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JSONMap 用于存储 JSONB 数据
type JSONMap map[string]interface{}

// DateRange 日期范围
type DateRange struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

// Valid 检查日期范围是否完整且有序
func (dr DateRange) Valid() bool {
	if dr.StartDate == "" || dr.EndDate == "" {
		return false
	}
	return dr.StartDate <= dr.EndDate
}

// Store 门店（营业时间与开关店缓冲）
type Store struct {
	BaseModel
	Name                   string `json:"name" db:"name"`
	OpeningTime            string `json:"opening_time" db:"opening_time"` // HH:MM
	ClosingTime            string `json:"closing_time" db:"closing_time"` // HH:MM
	KeyholderBeforeMinutes int    `json:"keyholder_before_minutes" db:"keyholder_before_minutes"`
	KeyholderAfterMinutes  int    `json:"keyholder_after_minutes" db:"keyholder_after_minutes"`
}

// Package model 定义排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// Schedule 排班计划（一个版本覆盖一个日期范围）
type Schedule struct {
	BaseModel
	Version     int             `json:"version" db:"version"`
	StartDate   string          `json:"start_date" db:"start_date"`
	EndDate     string          `json:"end_date" db:"end_date"`
	Status      string          `json:"status" db:"status"` // draft/published/archived
	PublishedAt *time.Time      `json:"published_at,omitempty" db:"published_at"`
	Entries     []ScheduleEntry `json:"entries,omitempty" db:"-"`
}

// ScheduleEntry 排班条目（某员工某日上某班次）
type ScheduleEntry struct {
	BaseModel
	Version    int        `json:"version" db:"version"`
	EmployeeID *uuid.UUID `json:"employee_id,omitempty" db:"employee_id"` // 空表示空排班占位
	ShiftID    *uuid.UUID `json:"shift_id,omitempty" db:"shift_id"`
	Date       string     `json:"date" db:"date"` // YYYY-MM-DD
	StartTime  string     `json:"start_time,omitempty" db:"start_time"`
	EndTime    string     `json:"end_time,omitempty" db:"end_time"`
	Status     string     `json:"status" db:"status"` // generated/confirmed
}

// IsEmpty 检查条目是否为空排班占位
func (e *ScheduleEntry) IsEmpty() bool {
	return e.ShiftID == nil
}

// IsOnDate 检查条目是否在指定日期
func (e *ScheduleEntry) IsOnDate(date string) bool {
	return e.Date == date
}

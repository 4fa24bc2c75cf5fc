// Package model 定义排班引擎的核心数据模型
package model

// ShiftBreak 班次休息段
// Note 为自由文本备注，可携带第二段休息（格式 "HH:MM-HH:MM"）
type ShiftBreak struct {
	Start string `json:"start" db:"break_start"` // HH:MM
	End   string `json:"end" db:"break_end"`     // HH:MM
	Note  string `json:"note,omitempty" db:"break_note"`
}

// Shift 班次模板
type Shift struct {
	BaseModel
	Name       string      `json:"name" db:"name"`
	StartTime  string      `json:"start_time" db:"start_time"` // HH:MM
	EndTime    string      `json:"end_time" db:"end_time"`     // HH:MM
	Break      *ShiftBreak `json:"break,omitempty" db:"-"`
	ActiveDays []int       `json:"active_days" db:"active_days"`         // 0..6，周一为0
	ShiftType  string      `json:"shift_type,omitempty" db:"shift_type"` // early/middle/late
}

// IsActiveOn 检查班次在指定星期是否生效
func (s *Shift) IsActiveOn(dayIndex int) bool {
	for _, d := range s.ActiveDays {
		if d == dayIndex {
			return true
		}
	}
	return false
}

// HasBreak 检查班次是否包含休息段
func (s *Shift) HasBreak() bool {
	return s.Break != nil && s.Break.Start != "" && s.Break.End != ""
}

// Package model 定义排班引擎的核心数据模型
package model

// CoverageRequirement 排班覆盖需求（按星期与时段）
// 覆盖需求不允许跨天，end_time 必须晚于 start_time
type CoverageRequirement struct {
	BaseModel
	DayIndex               int      `json:"day_index" db:"day_index"`   // 0..6，周一为0
	StartTime              string   `json:"start_time" db:"start_time"` // HH:MM
	EndTime                string   `json:"end_time" db:"end_time"`     // HH:MM
	MinEmployees           int      `json:"min_employees" db:"min_employees"`
	MaxEmployees           int      `json:"max_employees" db:"max_employees"`
	EmployeeTypes          []string `json:"employee_types" db:"employee_types"`
	RequiresKeyholder      bool     `json:"requires_keyholder" db:"requires_keyholder"`
	KeyholderBeforeMinutes int      `json:"keyholder_before_minutes" db:"keyholder_before_minutes"`
	KeyholderAfterMinutes  int      `json:"keyholder_after_minutes" db:"keyholder_after_minutes"`
}

// ValidDayIndex 检查星期索引是否合法
func (c *CoverageRequirement) ValidDayIndex() bool {
	return c.DayIndex >= 0 && c.DayIndex <= 6
}

// ValidHeadcount 检查人数约束是否合法
func (c *CoverageRequirement) ValidHeadcount() bool {
	return c.MinEmployees >= 0 && c.MaxEmployees >= c.MinEmployees
}

// Package constraints 提供覆盖需求开关库
package constraints

import "github.com/dienstplan/dienstplan/pkg/generation"

// ToggleDefinition 开关定义
type ToggleDefinition struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`     // hard 硬约束, soft 软约束
	Category    string `json:"category"` // 分类
	Description string `json:"description"`
	Default     bool   `json:"default"`
}

// LibraryResponse 开关库响应
type LibraryResponse struct {
	Library []ToggleDefinition `json:"library"`
}

// GetLibrary 获取完整的开关库
// 顺序与 generation.Requirements 的字段顺序一致
func GetLibrary() []ToggleDefinition {
	return []ToggleDefinition{
		{
			Name:        "enforce_minimum_coverage",
			DisplayName: "最低人员覆盖",
			Type:        "hard",
			Category:    "覆盖保障",
			Description: "确保每个覆盖时段至少排入最低要求的员工人数。",
			Default:     true,
		},
		{
			Name:        "enforce_contracted_hours",
			DisplayName: "合同工时",
			Type:        "hard",
			Category:    "工时限制",
			Description: "员工每周排班工时不超出合同约定的工时。",
			Default:     true,
		},
		{
			Name:        "enforce_keyholder_coverage",
			DisplayName: "开关店人员覆盖",
			Type:        "hard",
			Category:    "覆盖保障",
			Description: "开店前与关店后的缓冲时段必须有持钥匙员工在岗。",
			Default:     true,
		},
		{
			Name:        "enforce_rest_periods",
			DisplayName: "班次间休息时间",
			Type:        "hard",
			Category:    "休息保障",
			Description: "两个班次之间保证至少11小时的休息时间。",
			Default:     true,
		},
		{
			Name:        "enforce_early_late_rules",
			DisplayName: "早晚班衔接规则",
			Type:        "hard",
			Category:    "排班模式",
			Description: "晚班次日不排早班，避免休息不足。",
			Default:     true,
		},
		{
			Name:        "enforce_employee_group_rules",
			DisplayName: "员工组别规则",
			Type:        "hard",
			Category:    "资质要求",
			Description: "覆盖时段限定员工组别时只排入对应组别的员工（VZ/TZ/GFB/TL）。",
			Default:     true,
		},
		{
			Name:        "enforce_break_rules",
			DisplayName: "休息段规则",
			Type:        "hard",
			Category:    "休息保障",
			Description: "超过6小时的班次安排休息段，超过9小时安排第二段休息。",
			Default:     true,
		},
		{
			Name:        "enforce_max_hours",
			DisplayName: "每日最大工时",
			Type:        "hard",
			Category:    "工时限制",
			Description: "员工每日净工时不超过10小时。",
			Default:     true,
		},
		{
			Name:        "enforce_consecutive_days",
			DisplayName: "最大连续工作天数",
			Type:        "hard",
			Category:    "休息保障",
			Description: "限制员工连续工作的最大天数，确保有休息日。",
			Default:     true,
		},
		{
			Name:        "enforce_weekend_distribution",
			DisplayName: "周末轮换分布",
			Type:        "soft",
			Category:    "公平性",
			Description: "周末班次在员工之间轮换分布，避免固定员工承担全部周末。",
			Default:     true,
		},
		{
			Name:        "enforce_shift_distribution",
			DisplayName: "班次类型分布",
			Type:        "soft",
			Category:    "公平性",
			Description: "早中晚班在员工之间均衡分布。",
			Default:     true,
		},
		{
			Name:        "enforce_availability",
			DisplayName: "员工可用时间",
			Type:        "hard",
			Category:    "时间限制",
			Description: "在员工标记为不可用的时间段内不进行排班。",
			Default:     true,
		},
		{
			Name:        "enforce_qualifications",
			DisplayName: "资质匹配",
			Type:        "hard",
			Category:    "资质要求",
			Description: "确保分配的员工具备时段所需的资质。",
			Default:     true,
		},
		{
			Name:        "enforce_opening_hours",
			DisplayName: "营业时间限制",
			Type:        "hard",
			Category:    "时间限制",
			Description: "班次安排在门店营业时间（含开关店缓冲）之内。",
			Default:     true,
		},
	}
}

// DefaultRequirements 返回默认的开关集合，全部开启
func DefaultRequirements() generation.Requirements {
	return generation.DefaultRequirements()
}

// Package generation 提供排班生成管线（步骤状态机、日志与超时控制）
package generation

// Requirements 覆盖需求开关集合
// 固定的一组布尔开关，默认全部开启；本引擎只存储并原样转发
type Requirements struct {
	EnforceMinimumCoverage     bool `json:"enforce_minimum_coverage"`
	EnforceContractedHours     bool `json:"enforce_contracted_hours"`
	EnforceKeyholderCoverage   bool `json:"enforce_keyholder_coverage"`
	EnforceRestPeriods         bool `json:"enforce_rest_periods"`
	EnforceEarlyLateRules      bool `json:"enforce_early_late_rules"`
	EnforceEmployeeGroupRules  bool `json:"enforce_employee_group_rules"`
	EnforceBreakRules          bool `json:"enforce_break_rules"`
	EnforceMaxHours            bool `json:"enforce_max_hours"`
	EnforceConsecutiveDays     bool `json:"enforce_consecutive_days"`
	EnforceWeekendDistribution bool `json:"enforce_weekend_distribution"`
	EnforceShiftDistribution   bool `json:"enforce_shift_distribution"`
	EnforceAvailability        bool `json:"enforce_availability"`
	EnforceQualifications      bool `json:"enforce_qualifications"`
	EnforceOpeningHours        bool `json:"enforce_opening_hours"`
}

// DefaultRequirements 返回全部开启的默认开关集合
func DefaultRequirements() Requirements {
	return Requirements{
		EnforceMinimumCoverage:     true,
		EnforceContractedHours:     true,
		EnforceKeyholderCoverage:   true,
		EnforceRestPeriods:         true,
		EnforceEarlyLateRules:      true,
		EnforceEmployeeGroupRules:  true,
		EnforceBreakRules:          true,
		EnforceMaxHours:            true,
		EnforceConsecutiveDays:     true,
		EnforceWeekendDistribution: true,
		EnforceShiftDistribution:   true,
		EnforceAvailability:        true,
		EnforceQualifications:      true,
		EnforceOpeningHours:        true,
	}
}

// PriorityOptions 优化目标权重（0..100）
type PriorityOptions struct {
	EmployeeSatisfaction int `json:"employeeSatisfaction"`
	Fairness             int `json:"fairness"`
	Consistency          int `json:"consistency"`
	WorkloadBalance      int `json:"workloadBalance"`
}

// ConstraintOverrides 约束覆盖开关
type ConstraintOverrides struct {
	IgnoreNonCriticalAvailability bool `json:"ignoreNonCriticalAvailability"`
	AllowOvertime                 bool `json:"allowOvertime"`
	StrictKeyholder               bool `json:"strictKeyholder"`
	MinimumRestPeriods            bool `json:"minimumRestPeriods"`
}

// EmployeeOptions 员工相关选项
type EmployeeOptions struct {
	OnlyFixedPreferred         bool `json:"onlyFixedPreferred"`
	RespectPreferenceWeights   bool `json:"respectPreferenceWeights"`
	ConsiderHistoricalPatterns bool `json:"considerHistoricalPatterns"`
}

// AIModelParams 生成模型参数（0.0..1.0）
type AIModelParams struct {
	Temperature float64 `json:"temperature"`
	Creativity  float64 `json:"creativity"`
}

// DetailedOptions 生成服务的细化选项包
type DetailedOptions struct {
	Priority            PriorityOptions     `json:"priority"`
	ConstraintOverrides ConstraintOverrides `json:"constraintOverrides"`
	EmployeeOptions     EmployeeOptions     `json:"employeeOptions"`
	AIModelParams       AIModelParams       `json:"aiModelParams"`
}

// DefaultDetailedOptions 返回带文档化默认值的选项包
func DefaultDetailedOptions() DetailedOptions {
	return DetailedOptions{
		Priority: PriorityOptions{
			EmployeeSatisfaction: 50,
			Fairness:             50,
			Consistency:          50,
			WorkloadBalance:      50,
		},
		ConstraintOverrides: ConstraintOverrides{
			StrictKeyholder:    true,
			MinimumRestPeriods: true,
		},
		EmployeeOptions: EmployeeOptions{
			RespectPreferenceWeights: true,
		},
		AIModelParams: AIModelParams{
			Temperature: 0.7,
			Creativity:  0.5,
		},
	}
}

// Normalize 将缺省字段替换为文档化默认值并截断越界值
func (o *DetailedOptions) Normalize() {
	defaults := DefaultDetailedOptions()

	if o.Priority == (PriorityOptions{}) {
		o.Priority = defaults.Priority
	}
	o.Priority.EmployeeSatisfaction = clampInt(o.Priority.EmployeeSatisfaction, 0, 100)
	o.Priority.Fairness = clampInt(o.Priority.Fairness, 0, 100)
	o.Priority.Consistency = clampInt(o.Priority.Consistency, 0, 100)
	o.Priority.WorkloadBalance = clampInt(o.Priority.WorkloadBalance, 0, 100)

	if o.AIModelParams == (AIModelParams{}) {
		o.AIModelParams = defaults.AIModelParams
	}
	o.AIModelParams.Temperature = clampFloat(o.AIModelParams.Temperature, 0, 1)
	o.AIModelParams.Creativity = clampFloat(o.AIModelParams.Creativity, 0, 1)
}

// clampInt 截断到区间
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampFloat 截断到区间
func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

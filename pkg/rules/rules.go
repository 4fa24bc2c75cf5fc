// Package rules 提供排班规则的提示性校验
// 所有规则只产生提示，不会阻断任何操作
package rules

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dienstplan/dienstplan/pkg/model"
	"github.com/dienstplan/dienstplan/pkg/timecalc"
	"github.com/dienstplan/dienstplan/pkg/timeutil"
)

// Severity 提示级别
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// ViolationDetail 规则提示详情
type ViolationDetail struct {
	RuleName string    `json:"rule_name"`
	ShiftID  uuid.UUID `json:"shift_id,omitempty"`
	DayIndex *int      `json:"day_index,omitempty"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
}

// Context 规则评估上下文
type Context struct {
	Store        *model.Store
	Shifts       []*model.Shift
	Requirements []model.CoverageRequirement
}

// Rule 规则接口
type Rule interface {
	// Name 返回规则名称
	Name() string

	// Evaluate 评估上下文并返回所有提示
	Evaluate(ctx *Context) []ViolationDetail
}

// Manager 规则管理器
type Manager struct {
	rules []Rule
}

// NewManager 创建规则管理器
func NewManager() *Manager {
	return &Manager{}
}

// Register 注册规则
func (m *Manager) Register(rule Rule) {
	m.rules = append(m.rules, rule)
}

// EvaluateAll 执行所有已注册规则
func (m *Manager) EvaluateAll(ctx *Context) []ViolationDetail {
	var details []ViolationDetail
	for _, rule := range m.rules {
		details = append(details, rule.Evaluate(ctx)...)
	}
	return details
}

// NewDefaultManager 创建带默认规则集的管理器
func NewDefaultManager() *Manager {
	m := NewManager()
	m.Register(&BreakRule{})
	m.Register(&MaxHoursRule{})
	m.Register(&RestPeriodRule{MinRestMinutes: 11 * 60})
	m.Register(&KeyholderBufferRule{})
	return m
}

// BreakRule 休息安排规则（含第二段休息）
type BreakRule struct{}

// Name 返回规则名称
func (r *BreakRule) Name() string { return "break_required" }

// Evaluate 检查各班次的休息安排
func (r *BreakRule) Evaluate(ctx *Context) []ViolationDetail {
	var details []ViolationDetail
	for _, shift := range ctx.Shifts {
		flags := timecalc.ValidateBreaks(shift)
		if flags.HasBreakViolation {
			details = append(details, ViolationDetail{
				RuleName: r.Name(),
				ShiftID:  shift.ID,
				Message:  fmt.Sprintf("班次 '%s' 超过6小时但未安排休息", shift.Name),
				Severity: SeverityWarning,
			})
		}
		if flags.HasLongBreakViolation {
			details = append(details, ViolationDetail{
				RuleName: r.Name(),
				ShiftID:  shift.ID,
				Message:  fmt.Sprintf("班次 '%s' 超过9小时但未安排第二段休息", shift.Name),
				Severity: SeverityWarning,
			})
		}
	}
	return details
}

// MaxHoursRule 单班次最长工时规则
type MaxHoursRule struct{}

// Name 返回规则名称
func (r *MaxHoursRule) Name() string { return "max_shift_hours" }

// Evaluate 检查各班次是否超过10小时
func (r *MaxHoursRule) Evaluate(ctx *Context) []ViolationDetail {
	var details []ViolationDetail
	for _, shift := range ctx.Shifts {
		if timecalc.ValidateBreaks(shift).HasHoursViolation {
			details = append(details, ViolationDetail{
				RuleName: r.Name(),
				ShiftID:  shift.ID,
				Message:  fmt.Sprintf("班次 '%s' 净工时超过10小时", shift.Name),
				Severity: SeverityWarning,
			})
		}
	}
	return details
}

// RestPeriodRule 相邻日班次间最小休息规则
type RestPeriodRule struct {
	MinRestMinutes int
}

// Name 返回规则名称
func (r *RestPeriodRule) Name() string { return "min_rest_period" }

// Evaluate 检查相邻生效日之间的过夜休息时长
func (r *RestPeriodRule) Evaluate(ctx *Context) []ViolationDetail {
	minRest := r.MinRestMinutes
	if minRest <= 0 {
		minRest = 11 * 60
	}

	var details []ViolationDetail
	for _, late := range ctx.Shifts {
		lateStart, err := timeutil.ToMinutes(late.StartTime)
		if err != nil {
			continue
		}
		lateEnd, err := timeutil.ToMinutes(late.EndTime)
		if err != nil {
			continue
		}
		for _, early := range ctx.Shifts {
			earlyStart, err := timeutil.ToMinutes(early.StartTime)
			if err != nil {
				continue
			}

			// 过夜休息 = 当日下班到次日上班的间隔
			// 跨夜班次在次日才下班，间隔直接取两个时刻之差
			rest := timeutil.MinutesPerDay - lateEnd + earlyStart
			if lateEnd < lateStart {
				rest = earlyStart - lateEnd
			}
			if rest >= minRest {
				continue
			}

			for _, day := range late.ActiveDays {
				next := (day + 1) % 7
				if !early.IsActiveOn(next) {
					continue
				}
				d := day
				details = append(details, ViolationDetail{
					RuleName: r.Name(),
					ShiftID:  early.ID,
					DayIndex: &d,
					Message: fmt.Sprintf("班次 '%s' 结束到 '%s' 开始仅有 %d 分钟休息，少于 %d 分钟",
						late.Name, early.Name, rest, minRest),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return details
}

// KeyholderBufferRule 开关店钥匙缓冲规则
type KeyholderBufferRule struct{}

// Name 返回规则名称
func (r *KeyholderBufferRule) Name() string { return "keyholder_buffer" }

// Evaluate 检查需要钥匙员工的时段是否配置了开关店缓冲
func (r *KeyholderBufferRule) Evaluate(ctx *Context) []ViolationDetail {
	var details []ViolationDetail
	for _, req := range ctx.Requirements {
		if !req.RequiresKeyholder {
			continue
		}
		if req.KeyholderBeforeMinutes > 0 || req.KeyholderAfterMinutes > 0 {
			continue
		}
		d := req.DayIndex
		details = append(details, ViolationDetail{
			RuleName: r.Name(),
			DayIndex: &d,
			Message: fmt.Sprintf("星期%d %s-%s 要求钥匙员工但未配置开关店缓冲",
				req.DayIndex, req.StartTime, req.EndTime),
			Severity: SeverityInfo,
		})
	}
	return details
}

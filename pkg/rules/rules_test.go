package rules

import (
	"testing"

	"github.com/google/uuid"

	"github.com/dienstplan/dienstplan/pkg/model"
)

func shift(name, start, end string, days ...int) *model.Shift {
	return &model.Shift{
		BaseModel:  model.BaseModel{ID: uuid.New()},
		Name:       name,
		StartTime:  start,
		EndTime:    end,
		ActiveDays: days,
	}
}

func byRule(details []ViolationDetail, name string) []ViolationDetail {
	var out []ViolationDetail
	for _, d := range details {
		if d.RuleName == name {
			out = append(out, d)
		}
	}
	return out
}

func TestBreakRule(t *testing.T) {
	long := shift("长班", "09:00", "16:30", 0)
	withBreak := shift("带休息", "09:00", "16:30", 0)
	withBreak.Break = &model.ShiftBreak{Start: "12:00", End: "12:30"}
	short := shift("短班", "09:00", "14:00", 0)

	rule := &BreakRule{}
	details := rule.Evaluate(&Context{Shifts: []*model.Shift{long, withBreak, short}})

	if len(details) != 1 {
		t.Fatalf("提示数 = %d, 期望 1: %+v", len(details), details)
	}
	if details[0].ShiftID != long.ID {
		t.Error("提示应指向缺休息的班次")
	}
	if details[0].Severity != SeverityWarning {
		t.Errorf("级别 = %s, 期望 warning", details[0].Severity)
	}
}

func TestBreakRule_SecondBreak(t *testing.T) {
	// 超9小时但备注携带第二段休息则不提示
	covered := shift("超长带两段", "08:00", "19:00", 0)
	covered.Break = &model.ShiftBreak{Start: "12:00", End: "12:30", Note: "16:00-16:30"}
	uncovered := shift("超长单段", "08:00", "18:30", 0)
	uncovered.Break = &model.ShiftBreak{Start: "12:00", End: "12:30"}

	rule := &BreakRule{}
	details := rule.Evaluate(&Context{Shifts: []*model.Shift{covered, uncovered}})

	if len(details) != 1 {
		t.Fatalf("提示数 = %d, 期望 1: %+v", len(details), details)
	}
	if details[0].ShiftID != uncovered.ID {
		t.Error("提示应指向缺第二段休息的班次")
	}
}

func TestMaxHoursRule(t *testing.T) {
	over := shift("超时班", "07:00", "18:30", 0)
	within := shift("常规班", "09:00", "17:00", 0)
	// 扣除休息后恰好10小时不提示
	border := shift("临界班", "08:00", "18:30", 0)
	border.Break = &model.ShiftBreak{Start: "12:00", End: "12:30"}

	rule := &MaxHoursRule{}
	details := rule.Evaluate(&Context{Shifts: []*model.Shift{over, within, border}})

	if len(details) != 1 {
		t.Fatalf("提示数 = %d, 期望 1: %+v", len(details), details)
	}
	if details[0].ShiftID != over.ID {
		t.Error("提示应指向超时班次")
	}
}

func TestRestPeriodRule(t *testing.T) {
	late := shift("晚班", "14:00", "22:00", 0, 1)
	early := shift("早班", "06:00", "14:00", 1, 2)

	rule := &RestPeriodRule{MinRestMinutes: 11 * 60}
	details := rule.Evaluate(&Context{Shifts: []*model.Shift{late, early}})

	// 22:00下班到次日06:00上班仅480分钟；晚班在周一和周二生效，
	// 早班在周二和周三生效，两处相邻组合都要提示
	if len(details) != 2 {
		t.Fatalf("提示数 = %d, 期望 2: %+v", len(details), details)
	}
	for _, d := range details {
		if d.ShiftID != early.ID {
			t.Error("提示应指向次日的早班")
		}
		if d.DayIndex == nil {
			t.Error("提示应携带星期")
		}
	}
}

func TestRestPeriodRule_SufficientRest(t *testing.T) {
	late := shift("晚班", "12:00", "20:00", 0)
	early := shift("早班", "08:00", "16:00", 1)

	// 20:00到次日08:00有720分钟休息
	rule := &RestPeriodRule{MinRestMinutes: 11 * 60}
	if details := rule.Evaluate(&Context{Shifts: []*model.Shift{late, early}}); len(details) != 0 {
		t.Errorf("休息充足不应提示: %+v", details)
	}
}

func TestRestPeriodRule_NonConsecutiveDays(t *testing.T) {
	// 间隔过短但生效日不相邻则不提示
	late := shift("晚班", "14:00", "22:00", 0)
	early := shift("早班", "06:00", "14:00", 3)

	rule := &RestPeriodRule{MinRestMinutes: 11 * 60}
	if details := rule.Evaluate(&Context{Shifts: []*model.Shift{late, early}}); len(details) != 0 {
		t.Errorf("不相邻生效日不应提示: %+v", details)
	}
}

func TestRestPeriodRule_WeekWrap(t *testing.T) {
	// 周日晚班接周一早班
	late := shift("晚班", "14:00", "23:00", 6)
	early := shift("早班", "06:00", "14:00", 0)

	rule := &RestPeriodRule{MinRestMinutes: 11 * 60}
	details := rule.Evaluate(&Context{Shifts: []*model.Shift{late, early}})
	if len(details) != 1 {
		t.Fatalf("提示数 = %d, 期望 1: %+v", len(details), details)
	}
	if *details[0].DayIndex != 6 {
		t.Errorf("星期 = %d, 期望 6", *details[0].DayIndex)
	}
}

func TestRestPeriodRule_OvernightShift(t *testing.T) {
	// 跨夜班次在次日02:00才下班，到08:00上班仅360分钟
	night := shift("跨夜班", "18:00", "02:00", 0)
	early := shift("早班", "08:00", "16:00", 1)

	rule := &RestPeriodRule{MinRestMinutes: 11 * 60}
	details := rule.Evaluate(&Context{Shifts: []*model.Shift{night, early}})
	if len(details) != 1 {
		t.Fatalf("提示数 = %d, 期望 1: %+v", len(details), details)
	}
	if details[0].ShiftID != early.ID {
		t.Error("提示应指向次日的早班")
	}

	// 下午班距02:00下班有720分钟，不应提示
	afternoon := shift("下午班", "14:00", "22:00", 1)
	if details := rule.Evaluate(&Context{Shifts: []*model.Shift{night, afternoon}}); len(details) != 0 {
		t.Errorf("休息充足不应提示: %+v", details)
	}
}

func TestKeyholderBufferRule(t *testing.T) {
	reqs := []model.CoverageRequirement{
		{DayIndex: 0, StartTime: "09:00", EndTime: "17:00", RequiresKeyholder: true},
		{DayIndex: 1, StartTime: "09:00", EndTime: "17:00", RequiresKeyholder: true, KeyholderBeforeMinutes: 15},
		{DayIndex: 2, StartTime: "09:00", EndTime: "17:00"},
	}

	rule := &KeyholderBufferRule{}
	details := rule.Evaluate(&Context{Requirements: reqs})

	if len(details) != 1 {
		t.Fatalf("提示数 = %d, 期望 1: %+v", len(details), details)
	}
	if *details[0].DayIndex != 0 {
		t.Errorf("星期 = %d, 期望 0", *details[0].DayIndex)
	}
	if details[0].Severity != SeverityInfo {
		t.Errorf("级别 = %s, 期望 info", details[0].Severity)
	}
}

func TestManager_EvaluateAll(t *testing.T) {
	m := NewDefaultManager()

	ctx := &Context{
		Shifts: []*model.Shift{
			shift("超长班", "07:00", "18:30", 0),
		},
		Requirements: []model.CoverageRequirement{
			{DayIndex: 0, StartTime: "09:00", EndTime: "17:00", RequiresKeyholder: true},
		},
	}

	details := m.EvaluateAll(ctx)

	// 超长班触发缺休息、缺第二段休息与超时三条，钥匙缓冲再加一条
	if n := len(byRule(details, "break_required")); n != 2 {
		t.Errorf("break_required 提示数 = %d, 期望 2", n)
	}
	if n := len(byRule(details, "max_shift_hours")); n != 1 {
		t.Errorf("max_shift_hours 提示数 = %d, 期望 1", n)
	}
	if n := len(byRule(details, "keyholder_buffer")); n != 1 {
		t.Errorf("keyholder_buffer 提示数 = %d, 期望 1", n)
	}
}

func TestManager_Empty(t *testing.T) {
	m := NewManager()
	if details := m.EvaluateAll(&Context{}); len(details) != 0 {
		t.Errorf("空管理器不应产生提示: %+v", details)
	}
}

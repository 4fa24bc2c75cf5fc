package model

import (
	"testing"

	"github.com/google/uuid"
)

func TestShift_IsActiveOn(t *testing.T) {
	s := &Shift{ActiveDays: []int{0, 2, 4}}

	if !s.IsActiveOn(0) || !s.IsActiveOn(4) {
		t.Error("生效日判断失败")
	}
	if s.IsActiveOn(1) || s.IsActiveOn(6) {
		t.Error("非生效日不应命中")
	}

	none := &Shift{}
	if none.IsActiveOn(0) {
		t.Error("无生效日的班次不应命中任何星期")
	}
}

func TestShift_HasBreak(t *testing.T) {
	tests := []struct {
		name     string
		shift    *Shift
		expected bool
	}{
		{name: "完整休息段", shift: &Shift{Break: &ShiftBreak{Start: "12:00", End: "12:30"}}, expected: true},
		{name: "无休息段", shift: &Shift{}, expected: false},
		{name: "缺结束时间", shift: &Shift{Break: &ShiftBreak{Start: "12:00"}}, expected: false},
		{name: "只有备注", shift: &Shift{Break: &ShiftBreak{Note: "午餐"}}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shift.HasBreak(); got != tt.expected {
				t.Errorf("HasBreak = %v, 期望 %v", got, tt.expected)
			}
		})
	}
}

func TestEmployee_CanOpenStore(t *testing.T) {
	tests := []struct {
		name     string
		emp      *Employee
		expected bool
	}{
		{name: "在职钥匙员工", emp: &Employee{IsKeyholder: true, IsActive: true}, expected: true},
		{name: "离职钥匙员工", emp: &Employee{IsKeyholder: true, IsActive: false}, expected: false},
		{name: "在职普通员工", emp: &Employee{IsKeyholder: false, IsActive: true}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.emp.CanOpenStore(); got != tt.expected {
				t.Errorf("CanOpenStore = %v, 期望 %v", got, tt.expected)
			}
		})
	}
}

func TestEmployee_InGroup(t *testing.T) {
	emp := &Employee{Group: GroupPartTime}

	if !emp.InGroup([]string{"VZ", "TZ"}) {
		t.Error("应命中所属组别")
	}
	if emp.InGroup([]string{"VZ", "TL"}) {
		t.Error("不应命中其他组别")
	}
	// 空列表表示不限组别
	if !emp.InGroup(nil) {
		t.Error("空组别列表应视为不限")
	}
}

func TestCoverageRequirement_ValidDayIndex(t *testing.T) {
	for _, day := range []int{0, 3, 6} {
		c := &CoverageRequirement{DayIndex: day}
		if !c.ValidDayIndex() {
			t.Errorf("星期 %d 应合法", day)
		}
	}
	for _, day := range []int{-1, 7, 100} {
		c := &CoverageRequirement{DayIndex: day}
		if c.ValidDayIndex() {
			t.Errorf("星期 %d 应非法", day)
		}
	}
}

func TestCoverageRequirement_ValidHeadcount(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		expected bool
	}{
		{name: "常规区间", min: 1, max: 3, expected: true},
		{name: "上下界相等", min: 2, max: 2, expected: true},
		{name: "允许为零", min: 0, max: 0, expected: true},
		{name: "上界小于下界", min: 3, max: 1, expected: false},
		{name: "负值", min: -1, max: 2, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &CoverageRequirement{MinEmployees: tt.min, MaxEmployees: tt.max}
			if got := c.ValidHeadcount(); got != tt.expected {
				t.Errorf("ValidHeadcount = %v, 期望 %v", got, tt.expected)
			}
		})
	}
}

func TestDateRange_Valid(t *testing.T) {
	tests := []struct {
		name     string
		dr       DateRange
		expected bool
	}{
		{name: "有序范围", dr: DateRange{StartDate: "2025-06-02", EndDate: "2025-06-08"}, expected: true},
		{name: "单日范围", dr: DateRange{StartDate: "2025-06-02", EndDate: "2025-06-02"}, expected: true},
		{name: "倒置范围", dr: DateRange{StartDate: "2025-06-08", EndDate: "2025-06-02"}, expected: false},
		{name: "缺开始日期", dr: DateRange{EndDate: "2025-06-08"}, expected: false},
		{name: "全空", dr: DateRange{}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dr.Valid(); got != tt.expected {
				t.Errorf("Valid = %v, 期望 %v", got, tt.expected)
			}
		})
	}
}

func TestScheduleEntry_IsEmpty(t *testing.T) {
	shiftID := uuid.New()

	filled := &ScheduleEntry{ShiftID: &shiftID}
	if filled.IsEmpty() {
		t.Error("带班次的条目不是空占位")
	}

	placeholder := &ScheduleEntry{Date: "2025-06-02"}
	if !placeholder.IsEmpty() {
		t.Error("无班次的条目是空占位")
	}
}

func TestNewBaseModel(t *testing.T) {
	m := NewBaseModel()
	if m.ID == uuid.Nil {
		t.Error("应生成非空ID")
	}
	if m.CreatedAt.IsZero() || !m.CreatedAt.Equal(m.UpdatedAt) {
		t.Error("创建与更新时间应同时初始化")
	}
	if m.DeletedAt != nil {
		t.Error("新模型不应带删除标记")
	}
}

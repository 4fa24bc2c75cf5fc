package coverage

import (
	"math"
	"testing"

	"github.com/dienstplan/dienstplan/pkg/model"
)

// weekFixture 两个营业日的覆盖需求，乱序给入
func weekFixture() []model.CoverageRequirement {
	return []model.CoverageRequirement{
		{DayIndex: 1, StartTime: "09:00", EndTime: "18:00", MinEmployees: 2, MaxEmployees: 3},
		{DayIndex: 0, StartTime: "16:00", EndTime: "20:00", MinEmployees: 1, MaxEmployees: 1},
		{DayIndex: 0, StartTime: "08:00", EndTime: "16:00", MinEmployees: 1, MaxEmployees: 2},
	}
}

func TestGroupByDay(t *testing.T) {
	days := GroupByDay(weekFixture())

	if len(days) != 2 {
		t.Fatalf("分组数 = %d, 期望 2", len(days))
	}

	// 星期升序
	if days[0].DayIndex != 0 || days[1].DayIndex != 1 {
		t.Errorf("星期顺序 = [%d, %d], 期望 [0, 1]", days[0].DayIndex, days[1].DayIndex)
	}

	// 日内时段按开始时间升序
	slots := days[0].TimeSlots
	if len(slots) != 2 {
		t.Fatalf("周一时段数 = %d, 期望 2", len(slots))
	}
	if slots[0].StartTime != "08:00" || slots[1].StartTime != "16:00" {
		t.Errorf("时段顺序 = [%s, %s], 期望 [08:00, 16:00]", slots[0].StartTime, slots[1].StartTime)
	}
}

func TestGroupByDay_StableOrder(t *testing.T) {
	// 相同开始时间保持原始顺序
	rows := []model.CoverageRequirement{
		{DayIndex: 2, StartTime: "09:00", EndTime: "12:00", MinEmployees: 1, MaxEmployees: 1},
		{DayIndex: 2, StartTime: "09:00", EndTime: "15:00", MinEmployees: 2, MaxEmployees: 2},
	}

	days := GroupByDay(rows)
	if len(days) != 1 {
		t.Fatalf("分组数 = %d, 期望 1", len(days))
	}
	if days[0].TimeSlots[0].EndTime != "12:00" {
		t.Error("相同开始时间应保持原始顺序")
	}
}

func TestGroupByDay_Empty(t *testing.T) {
	if days := GroupByDay(nil); len(days) != 0 {
		t.Errorf("空输入应返回空分组, 得到 %d", len(days))
	}
}

func TestDailyStats(t *testing.T) {
	days := GroupByDay(weekFixture())

	// 周一: 8h×1 + 4h×1 = 12小时, 最低 1+1=2, 容量 2+1=3
	stats := DailyStats(days[0])
	if stats.RequiredHeadcount != 2 {
		t.Errorf("RequiredHeadcount = %d, 期望 2", stats.RequiredHeadcount)
	}
	if stats.ScheduledHeadcount != 3 {
		t.Errorf("ScheduledHeadcount = %d, 期望 3", stats.ScheduledHeadcount)
	}
	if math.Abs(stats.Hours-12) > 0.0001 {
		t.Errorf("Hours = %.2f, 期望 12", stats.Hours)
	}

	// 周二: 9h×2 = 18小时
	stats = DailyStats(days[1])
	if math.Abs(stats.Hours-18) > 0.0001 {
		t.Errorf("Hours = %.2f, 期望 18", stats.Hours)
	}
}

func TestDailyStats_InvalidSlot(t *testing.T) {
	// 倒置时段按零工时计
	day := DailyCoverage{
		DayIndex: 0,
		TimeSlots: []model.CoverageRequirement{
			{StartTime: "18:00", EndTime: "09:00", MinEmployees: 2, MaxEmployees: 2},
		},
	}
	if stats := DailyStats(day); stats.Hours != 0 {
		t.Errorf("倒置时段工时 = %.2f, 期望 0", stats.Hours)
	}
}

func TestCoverageRate(t *testing.T) {
	tests := []struct {
		name     string
		day      DailyCoverage
		expected int
	}{
		{
			name: "容量覆盖率取整",
			day: DailyCoverage{TimeSlots: []model.CoverageRequirement{
				{StartTime: "08:00", EndTime: "16:00", MinEmployees: 2, MaxEmployees: 3},
			}},
			expected: 150,
		},
		{
			name: "四舍五入",
			day: DailyCoverage{TimeSlots: []model.CoverageRequirement{
				{StartTime: "08:00", EndTime: "16:00", MinEmployees: 3, MaxEmployees: 4},
			}},
			expected: 133,
		},
		{
			name:     "无需求时恒为零",
			day:      DailyCoverage{},
			expected: 0,
		},
		{
			name: "需求人数为零不除零",
			day: DailyCoverage{TimeSlots: []model.CoverageRequirement{
				{StartTime: "08:00", EndTime: "16:00", MinEmployees: 0, MaxEmployees: 5},
			}},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rate := CoverageRate(tt.day); rate != tt.expected {
				t.Errorf("CoverageRate = %d, 期望 %d", rate, tt.expected)
			}
		})
	}
}

func TestWeeklySummary(t *testing.T) {
	days := GroupByDay(weekFixture())
	stats := WeeklySummary(days)

	if math.Abs(stats.TotalHours-30) > 0.0001 {
		t.Errorf("TotalHours = %.2f, 期望 30", stats.TotalHours)
	}
	if math.Abs(stats.MinDailyHours-12) > 0.0001 {
		t.Errorf("MinDailyHours = %.2f, 期望 12", stats.MinDailyHours)
	}
	if math.Abs(stats.MaxDailyHours-18) > 0.0001 {
		t.Errorf("MaxDailyHours = %.2f, 期望 18", stats.MaxDailyHours)
	}
	if stats.OpenDays != 2 {
		t.Errorf("OpenDays = %d, 期望 2", stats.OpenDays)
	}
}

func TestWeeklySummary_RestDayIgnored(t *testing.T) {
	// 无需求的休息日不拉低最小值
	days := []DailyCoverage{
		{DayIndex: 0, TimeSlots: []model.CoverageRequirement{
			{StartTime: "09:00", EndTime: "17:00", MinEmployees: 1, MaxEmployees: 1},
		}},
		{DayIndex: 6}, // 休息日
	}

	stats := WeeklySummary(days)
	if math.Abs(stats.MinDailyHours-8) > 0.0001 {
		t.Errorf("MinDailyHours = %.2f, 期望 8（休息日不参与）", stats.MinDailyHours)
	}
	if stats.OpenDays != 1 {
		t.Errorf("OpenDays = %d, 期望 1", stats.OpenDays)
	}
}

func TestWeeklySummary_AllRest(t *testing.T) {
	stats := WeeklySummary([]DailyCoverage{{DayIndex: 0}, {DayIndex: 1}})
	if stats.TotalHours != 0 || stats.MinDailyHours != 0 || stats.OpenDays != 0 {
		t.Errorf("整周无需求时统计应全为零: %+v", stats)
	}
}

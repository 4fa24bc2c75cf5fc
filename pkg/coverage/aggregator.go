// Package coverage 提供覆盖需求的按日聚合与统计分析
package coverage

import (
	"math"
	"sort"

	"github.com/dienstplan/dienstplan/pkg/model"
	"github.com/dienstplan/dienstplan/pkg/timeutil"
)

// DailyCoverage 单日覆盖情况，时段按开始时间升序
type DailyCoverage struct {
	DayIndex  int                         `json:"day_index"`
	TimeSlots []model.CoverageRequirement `json:"time_slots"`
}

// DayStats 单日统计
type DayStats struct {
	RequiredHeadcount  int     `json:"required_headcount"`  // Σ min_employees
	ScheduledHeadcount int     `json:"scheduled_headcount"` // Σ max_employees（提供的容量，非实际排班数）
	Hours              float64 `json:"hours"`               // Σ 时段工时 × 最低人数
}

// WeekStats 周统计
type WeekStats struct {
	TotalHours    float64 `json:"total_hours"`
	MinDailyHours float64 `json:"min_daily_hours"` // 忽略无排班需求的休息日
	MaxDailyHours float64 `json:"max_daily_hours"`
	OpenDays      int     `json:"open_days"`
}

// GroupByDay 将覆盖需求按星期分组
// 仅包含出现过的星期；日内时段按开始时间稳定排序，相同开始时间保持原始顺序
func GroupByDay(rows []model.CoverageRequirement) []DailyCoverage {
	byDay := make(map[int][]model.CoverageRequirement)
	for _, row := range rows {
		byDay[row.DayIndex] = append(byDay[row.DayIndex], row)
	}

	days := make([]DailyCoverage, 0, len(byDay))
	for dayIndex, slots := range byDay {
		sort.SliceStable(slots, func(i, j int) bool {
			return slotStart(slots[i]) < slotStart(slots[j])
		})
		days = append(days, DailyCoverage{DayIndex: dayIndex, TimeSlots: slots})
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].DayIndex < days[j].DayIndex
	})
	return days
}

// slotStart 解析时段开始时间，解析失败按零点排序
func slotStart(slot model.CoverageRequirement) int {
	m, err := timeutil.ToMinutes(slot.StartTime)
	if err != nil {
		return 0
	}
	return m
}

// DailyStats 计算单日统计
func DailyStats(day DailyCoverage) DayStats {
	stats := DayStats{}

	for _, slot := range day.TimeSlots {
		stats.RequiredHeadcount += slot.MinEmployees
		stats.ScheduledHeadcount += slot.MaxEmployees
		stats.Hours += slotHours(slot) * float64(slot.MinEmployees)
	}

	return stats
}

// slotHours 时段时长（小时），覆盖需求不跨天
func slotHours(slot model.CoverageRequirement) float64 {
	start, err := timeutil.ToMinutes(slot.StartTime)
	if err != nil {
		return 0
	}
	end, err := timeutil.ToMinutes(slot.EndTime)
	if err != nil {
		return 0
	}
	if end <= start {
		return 0
	}
	return float64(end-start) / 60
}

// CoverageRate 覆盖率（百分比，四舍五入取整）
// 需求人数为零时恒为0，避免除零
func CoverageRate(day DailyCoverage) int {
	stats := DailyStats(day)
	if stats.RequiredHeadcount == 0 {
		return 0
	}
	rate := float64(stats.ScheduledHeadcount) / float64(stats.RequiredHeadcount) * 100
	return int(math.Round(rate))
}

// WeeklySummary 计算一周的工时统计
// 无需求的休息日不参与最小值，除非整周都无需求
func WeeklySummary(days []DailyCoverage) WeekStats {
	stats := WeekStats{}

	minSet := false
	for _, day := range days {
		hours := DailyStats(day).Hours
		stats.TotalHours += hours

		if hours > stats.MaxDailyHours {
			stats.MaxDailyHours = hours
		}
		if hours > 0 {
			stats.OpenDays++
			if !minSet || hours < stats.MinDailyHours {
				stats.MinDailyHours = hours
				minSet = true
			}
		}
	}

	return stats
}

// Package stats 提供排班统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/dienstplan/dienstplan/pkg/model"
	"github.com/dienstplan/dienstplan/pkg/timeutil"
)

// WorkloadMetrics 工作量指标
type WorkloadMetrics struct {
	TotalHours          float64            `json:"total_hours"`
	TotalEntries        int                `json:"total_entries"`
	EmployeeCount       int                `json:"employee_count"`
	AvgHoursPerEmployee float64            `json:"avg_hours_per_employee"`
	MaxHours            float64            `json:"max_hours"`
	MinHours            float64            `json:"min_hours"`
	HoursRange          float64            `json:"hours_range"` // 工时极差，衡量分配均衡程度
	GroupHours          map[string]float64 `json:"group_hours"` // 按员工组别汇总
	EmployeeStats       []EmployeeWorkload `json:"employee_stats"`
}

// EmployeeWorkload 单个员工的工作量
type EmployeeWorkload struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	Group        string  `json:"group,omitempty"`
	TotalHours   float64 `json:"total_hours"`
	EntryCount   int     `json:"entry_count"`
	Deviation    float64 `json:"deviation"` // 与平均工时的偏差百分比
}

// WorkloadAnalyzer 工作量分析器
type WorkloadAnalyzer struct{}

// NewWorkloadAnalyzer 创建工作量分析器
func NewWorkloadAnalyzer() *WorkloadAnalyzer {
	return &WorkloadAnalyzer{}
}

// Analyze 分析排班条目的工作量分布
func (w *WorkloadAnalyzer) Analyze(entries []model.ScheduleEntry, employees []*model.Employee) *WorkloadMetrics {
	metrics := &WorkloadMetrics{
		GroupHours: make(map[string]float64),
	}
	if len(entries) == 0 {
		return metrics
	}

	employeeMap := make(map[string]*model.Employee, len(employees))
	for _, e := range employees {
		employeeMap[e.ID.String()] = e
	}

	statMap := make(map[string]*EmployeeWorkload)
	for _, entry := range entries {
		if entry.IsEmpty() || entry.EmployeeID == nil {
			continue
		}

		hours := entryHours(entry)
		empID := entry.EmployeeID.String()

		stat, exists := statMap[empID]
		if !exists {
			stat = &EmployeeWorkload{EmployeeID: empID}
			if emp, ok := employeeMap[empID]; ok {
				stat.EmployeeName = emp.Name
				stat.Group = string(emp.Group)
			}
			statMap[empID] = stat
		}
		stat.TotalHours += hours
		stat.EntryCount++

		metrics.TotalHours += hours
		metrics.TotalEntries++
		if stat.Group != "" {
			metrics.GroupHours[stat.Group] += hours
		}
	}

	stats := make([]EmployeeWorkload, 0, len(statMap))
	for _, stat := range statMap {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].TotalHours > stats[j].TotalHours
	})

	metrics.EmployeeCount = len(stats)
	if metrics.EmployeeCount > 0 {
		metrics.AvgHoursPerEmployee = metrics.TotalHours / float64(metrics.EmployeeCount)

		metrics.MinHours = math.MaxFloat64
		for i := range stats {
			if stats[i].TotalHours > metrics.MaxHours {
				metrics.MaxHours = stats[i].TotalHours
			}
			if stats[i].TotalHours < metrics.MinHours {
				metrics.MinHours = stats[i].TotalHours
			}
			if metrics.AvgHoursPerEmployee > 0 {
				stats[i].Deviation = (stats[i].TotalHours - metrics.AvgHoursPerEmployee) / metrics.AvgHoursPerEmployee * 100
			}
		}
		metrics.HoursRange = metrics.MaxHours - metrics.MinHours
	}

	metrics.EmployeeStats = stats
	return metrics
}

// entryHours 计算条目工时，允许跨午夜
func entryHours(entry model.ScheduleEntry) float64 {
	start, err := timeutil.ToMinutes(entry.StartTime)
	if err != nil {
		return 0
	}
	end, err := timeutil.ToMinutes(entry.EndTime)
	if err != nil {
		return 0
	}
	return float64(timeutil.WrapDuration(start, end)) / 60
}

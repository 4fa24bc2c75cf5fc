package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dienstplan/dienstplan/internal/metrics"
	"github.com/dienstplan/dienstplan/pkg/coverage"
	"github.com/dienstplan/dienstplan/pkg/errors"
	"github.com/dienstplan/dienstplan/pkg/model"
	"github.com/dienstplan/dienstplan/pkg/stats"
)

// StatsHandler 统计处理器
type StatsHandler struct {
	store    CoverageStore
	analyzer *stats.WorkloadAnalyzer
}

// NewStatsHandler 创建统计处理器
func NewStatsHandler(store CoverageStore) *StatsHandler {
	return &StatsHandler{
		store:    store,
		analyzer: stats.NewWorkloadAnalyzer(),
	}
}

// CoverageStatsResponse 覆盖统计响应
type CoverageStatsResponse struct {
	Days []DayOutput        `json:"days"`
	Week coverage.WeekStats `json:"week"`
}

// CoverageStats 计算覆盖需求的日/周统计
func (h *StatsHandler) CoverageStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	rows, err := h.store.List(r.Context())
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询覆盖需求失败"))
		return
	}

	days := coverage.GroupByDay(rows)
	resp := CoverageStatsResponse{
		Days: make([]DayOutput, 0, len(days)),
		Week: coverage.WeeklySummary(days),
	}

	rateSum, rated := 0, 0
	for _, day := range days {
		rate := coverage.CoverageRate(day)
		resp.Days = append(resp.Days, DayOutput{
			DayIndex:     day.DayIndex,
			TimeSlots:    day.TimeSlots,
			Stats:        coverage.DailyStats(day),
			CoverageRate: rate,
		})
		if rate > 0 {
			rateSum += rate
			rated++
		}
	}
	if rated > 0 {
		metrics.SetCoverageRate(float64(rateSum) / float64(rated))
	}

	respondJSON(w, http.StatusOK, resp)
}

// WorkloadRequest 工作量分析请求
type WorkloadRequest struct {
	Entries   []model.ScheduleEntry `json:"entries"`
	Employees []*model.Employee     `json:"employees"`
}

// Workload 分析排班条目的工作量分布
func (h *StatsHandler) Workload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req WorkloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	respondJSON(w, http.StatusOK, h.analyzer.Analyze(req.Entries, req.Employees))
}

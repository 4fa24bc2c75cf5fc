package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dienstplan/dienstplan/internal/repository"
	"github.com/dienstplan/dienstplan/pkg/errors"
	"github.com/dienstplan/dienstplan/pkg/model"
)

// ScheduleStore 排班条目查询契约
type ScheduleStore interface {
	ListEntries(ctx context.Context, filter repository.ListFilter) ([]model.ScheduleEntry, error)
	NextVersion(ctx context.Context) (int, error)
}

// ScheduleHandler 排班查询处理器
type ScheduleHandler struct {
	store ScheduleStore
}

// NewScheduleHandler 创建排班查询处理器
func NewScheduleHandler(store ScheduleStore) *ScheduleHandler {
	return &ScheduleHandler{store: store}
}

// ScheduleResponse 排班查询响应
type ScheduleResponse struct {
	Schedule model.Schedule `json:"schedule"`
	Summary  model.JSONMap  `json:"summary"`
}

// List 按版本与日期范围查询排班条目
// 未指定版本时返回最新版本；?day_index= 可按星期过滤（周一为0）
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	q := r.URL.Query()
	filter := repository.DefaultListFilter()

	version := 0
	if raw := q.Get("version"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			respondError(w, errors.InvalidInput("version", "版本必须为正整数"))
			return
		}
		version = v
	} else {
		next, err := h.store.NextVersion(r.Context())
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询版本号失败"))
			return
		}
		version = next - 1
	}

	// 尚无任何排班条目
	if version < 1 {
		respondJSON(w, http.StatusOK, ScheduleResponse{
			Schedule: model.Schedule{Status: "draft", Entries: []model.ScheduleEntry{}},
			Summary:  model.JSONMap{"total": 0, "days": 0, "empty_slots": 0},
		})
		return
	}
	filter = filter.WithVersion(version)

	startDate, endDate := q.Get("start_date"), q.Get("end_date")
	if startDate != "" || endDate != "" {
		if !parseableDate(startDate) || !parseableDate(endDate) {
			respondError(w, errors.InvalidInput("start_date", "日期格式无效，应为YYYY-MM-DD"))
			return
		}
		filter = filter.WithDateRange(startDate, endDate)
	}
	if status := q.Get("status"); status != "" {
		filter.Status = status
	}
	if raw := q.Get("day_index"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 0 || d > 6 {
			respondError(w, errors.InvalidInput("day_index", "星期索引必须在0到6之间"))
			return
		}
		filter = filter.WithDayIndex(d)
	}

	entries, err := h.store.ListEntries(r.Context(), filter)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询排班条目失败"))
		return
	}
	if filter.DayIndex != nil {
		entries = filterByWeekday(entries, *filter.DayIndex)
	}

	respondJSON(w, http.StatusOK, buildScheduleResponse(version, startDate, endDate, entries))
}

// buildScheduleResponse 将条目组装为排班视图与摘要
func buildScheduleResponse(version int, startDate, endDate string, entries []model.ScheduleEntry) ScheduleResponse {
	if entries == nil {
		entries = []model.ScheduleEntry{}
	}

	days := make(map[string]struct{}, len(entries))
	emptySlots := 0
	confirmed := 0
	for i := range entries {
		days[entries[i].Date] = struct{}{}
		if entries[i].IsEmpty() {
			emptySlots++
		}
		if entries[i].Status == "confirmed" {
			confirmed++
		}
	}

	// 条目范围以请求为准，未指定时取条目本身的边界
	if startDate == "" && len(entries) > 0 {
		startDate = entries[0].Date
	}
	if endDate == "" && len(entries) > 0 {
		endDate = entries[len(entries)-1].Date
	}

	status := "draft"
	if len(entries) > 0 && confirmed == len(entries) {
		status = "published"
	}

	return ScheduleResponse{
		Schedule: model.Schedule{
			Version:   version,
			StartDate: startDate,
			EndDate:   endDate,
			Status:    status,
			Entries:   entries,
		},
		Summary: model.JSONMap{
			"total":       len(entries),
			"days":        len(days),
			"empty_slots": emptySlots,
		},
	}
}

// filterByWeekday 按星期过滤条目（周一为0）
func filterByWeekday(entries []model.ScheduleEntry, dayIndex int) []model.ScheduleEntry {
	out := make([]model.ScheduleEntry, 0, len(entries))
	for _, e := range entries {
		t, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			continue
		}
		if (int(t.Weekday())+6)%7 == dayIndex {
			out = append(out, e)
		}
	}
	return out
}

// parseableDate 检查日期参数格式
func parseableDate(date string) bool {
	if date == "" {
		return false
	}
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

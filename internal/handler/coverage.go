package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/dienstplan/dienstplan/pkg/coverage"
	"github.com/dienstplan/dienstplan/pkg/errors"
	"github.com/dienstplan/dienstplan/pkg/model"
	"github.com/dienstplan/dienstplan/pkg/timeutil"
)

// CoverageStore 覆盖需求存储契约
type CoverageStore interface {
	List(ctx context.Context) ([]model.CoverageRequirement, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.CoverageRequirement, error)
	Create(ctx context.Context, req *model.CoverageRequirement) error
	Update(ctx context.Context, req *model.CoverageRequirement) error
	Delete(ctx context.Context, id uuid.UUID) error
	BulkReplaceDays(ctx context.Context, reqs []model.CoverageRequirement) error
}

// CoverageHandler 覆盖需求处理器
type CoverageHandler struct {
	store CoverageStore
}

// NewCoverageHandler 创建覆盖需求处理器
func NewCoverageHandler(store CoverageStore) *CoverageHandler {
	return &CoverageHandler{store: store}
}

// Collection 处理 /coverage 集合路由
func (h *CoverageHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET和POST方法"))
	}
}

// Item 处理 /coverage/{id} 单项路由
func (h *CoverageHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "/api/v1/coverage")
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET、PUT和DELETE方法"))
	}
}

// ListResponse 覆盖需求列表响应，按星期分组并附带统计
type ListResponse struct {
	Days  []DayOutput           `json:"days"`
	Week  coverage.WeekStats    `json:"week"`
	Total int                   `json:"total"`
}

// DayOutput 单日覆盖输出
type DayOutput struct {
	DayIndex     int                         `json:"day_index"`
	TimeSlots    []model.CoverageRequirement `json:"time_slots"`
	Stats        coverage.DayStats           `json:"stats"`
	CoverageRate int                         `json:"coverage_rate"`
}

// list 列出全部覆盖需求，按星期分组
func (h *CoverageHandler) list(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.List(r.Context())
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询覆盖需求失败"))
		return
	}

	days := coverage.GroupByDay(rows)
	resp := ListResponse{
		Days: make([]DayOutput, 0, len(days)),
		Week: coverage.WeeklySummary(days),
	}
	for _, day := range days {
		resp.Days = append(resp.Days, DayOutput{
			DayIndex:     day.DayIndex,
			TimeSlots:    day.TimeSlots,
			Stats:        coverage.DailyStats(day),
			CoverageRate: coverage.CoverageRate(day),
		})
		resp.Total += len(day.TimeSlots)
	}

	respondJSON(w, http.StatusOK, resp)
}

// get 获取单个覆盖需求
func (h *CoverageHandler) get(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	req, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询覆盖需求失败"))
		return
	}
	if req == nil {
		respondError(w, errors.NotFound("覆盖需求", id.String()))
		return
	}
	respondJSON(w, http.StatusOK, req)
}

// create 创建覆盖需求
func (h *CoverageHandler) create(w http.ResponseWriter, r *http.Request) {
	var req model.CoverageRequirement
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if appErr := validateCoverage(&req); appErr != nil {
		respondError(w, appErr)
		return
	}

	if err := h.store.Create(r.Context(), &req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建覆盖需求失败"))
		return
	}
	respondJSON(w, http.StatusCreated, req)
}

// update 更新覆盖需求
func (h *CoverageHandler) update(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req model.CoverageRequirement
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	req.ID = id

	if appErr := validateCoverage(&req); appErr != nil {
		respondError(w, appErr)
		return
	}

	existing, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询覆盖需求失败"))
		return
	}
	if existing == nil {
		respondError(w, errors.NotFound("覆盖需求", id.String()))
		return
	}

	if err := h.store.Update(r.Context(), &req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "更新覆盖需求失败"))
		return
	}
	respondJSON(w, http.StatusOK, req)
}

// delete 删除覆盖需求
func (h *CoverageHandler) delete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	existing, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询覆盖需求失败"))
		return
	}
	if existing == nil {
		respondError(w, errors.NotFound("覆盖需求", id.String()))
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "删除覆盖需求失败"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true, "id": id})
}

// Bulk 批量替换覆盖需求
// 仅替换请求中出现的星期；空数组是无操作，依旧返回成功
func (h *CoverageHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持PUT方法"))
		return
	}

	var reqs []model.CoverageRequirement
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	for i := range reqs {
		if appErr := validateCoverage(&reqs[i]); appErr != nil {
			respondError(w, appErr.WithField("index", i))
			return
		}
	}

	if err := h.store.BulkReplaceDays(r.Context(), reqs); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "批量替换覆盖需求失败"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"replaced": len(reqs)})
}

// validateCoverage 结构校验，违规返回422
func validateCoverage(req *model.CoverageRequirement) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if !req.ValidDayIndex() {
		ve.Add("day_index", "星期索引必须在0到6之间")
	}

	start, err := timeutil.ToMinutes(req.StartTime)
	if err != nil {
		ve.Add("start_time", "时间格式无效，应为HH:MM")
	}
	end, err := timeutil.ToMinutes(req.EndTime)
	if err != nil {
		ve.Add("end_time", "时间格式无效，应为HH:MM")
	}
	if len(ve.Errors) == 0 && end <= start {
		ve.Add("end_time", "结束时间必须晚于开始时间，覆盖需求不允许跨天")
	}

	if !req.ValidHeadcount() {
		ve.Add("min_employees", "最低人数不能为负，最高人数不能小于最低人数")
	}
	if req.KeyholderBeforeMinutes < 0 || req.KeyholderAfterMinutes < 0 {
		ve.Add("keyholder_before_minutes", "开关店缓冲不能为负")
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

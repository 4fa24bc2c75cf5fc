package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/dienstplan/dienstplan/pkg/errors"
	"github.com/dienstplan/dienstplan/pkg/model"
	"github.com/dienstplan/dienstplan/pkg/timeutil"
)

// ShiftStore 班次模板存储契约
type ShiftStore interface {
	List(ctx context.Context) ([]model.Shift, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Shift, error)
	Create(ctx context.Context, shift *model.Shift) error
	Update(ctx context.Context, shift *model.Shift) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ShiftHandler 班次模板处理器
type ShiftHandler struct {
	store ShiftStore
}

// NewShiftHandler 创建班次模板处理器
func NewShiftHandler(store ShiftStore) *ShiftHandler {
	return &ShiftHandler{store: store}
}

// Collection 处理 /shifts 集合路由
func (h *ShiftHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET和POST方法"))
	}
}

// Item 处理 /shifts/{id} 单项路由
func (h *ShiftHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "/api/v1/shifts")
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

// list 列出全部班次模板
func (h *ShiftHandler) list(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.List(r.Context())
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询班次失败"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"shifts": rows, "total": len(rows)})
}

// get 获取单个班次模板
func (h *ShiftHandler) get(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	shift, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询班次失败"))
		return
	}
	if shift == nil {
		respondError(w, errors.NotFound("班次", id.String()))
		return
	}
	respondJSON(w, http.StatusOK, shift)
}

// create 创建班次模板
func (h *ShiftHandler) create(w http.ResponseWriter, r *http.Request) {
	var shift model.Shift
	if err := json.NewDecoder(r.Body).Decode(&shift); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if appErr := validateShift(&shift); appErr != nil {
		respondError(w, appErr)
		return
	}

	if err := h.store.Create(r.Context(), &shift); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建班次失败"))
		return
	}
	respondJSON(w, http.StatusCreated, shift)
}

// update 更新班次模板
func (h *ShiftHandler) update(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var shift model.Shift
	if err := json.NewDecoder(r.Body).Decode(&shift); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	shift.ID = id

	if appErr := validateShift(&shift); appErr != nil {
		respondError(w, appErr)
		return
	}

	existing, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询班次失败"))
		return
	}
	if existing == nil {
		respondError(w, errors.NotFound("班次", id.String()))
		return
	}

	if err := h.store.Update(r.Context(), &shift); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "更新班次失败"))
		return
	}
	respondJSON(w, http.StatusOK, shift)
}

// delete 删除班次模板
func (h *ShiftHandler) delete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	existing, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询班次失败"))
		return
	}
	if existing == nil {
		respondError(w, errors.NotFound("班次", id.String()))
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "删除班次失败"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true, "id": id})
}

// validateShift 结构校验，违规返回422
// 班次允许跨夜，结束时间可以早于开始时间
func validateShift(shift *model.Shift) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if shift.Name == "" {
		ve.Add("name", "班次名称不能为空")
	}
	if _, err := timeutil.ToMinutes(shift.StartTime); err != nil {
		ve.Add("start_time", "时间格式无效，应为HH:MM")
	}
	if _, err := timeutil.ToMinutes(shift.EndTime); err != nil {
		ve.Add("end_time", "时间格式无效，应为HH:MM")
	}

	for _, d := range shift.ActiveDays {
		if d < 0 || d > 6 {
			ve.Add("active_days", "星期索引必须在0到6之间")
			break
		}
	}

	if shift.HasBreak() {
		if _, err := timeutil.ToMinutes(shift.Break.Start); err != nil {
			ve.Add("break", "休息时间格式无效，应为HH:MM")
		} else if _, err := timeutil.ToMinutes(shift.Break.End); err != nil {
			ve.Add("break", "休息时间格式无效，应为HH:MM")
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/dienstplan/dienstplan/pkg/errors"
	"github.com/dienstplan/dienstplan/pkg/model"
	"github.com/dienstplan/dienstplan/pkg/timecalc"
	"github.com/dienstplan/dienstplan/pkg/timeutil"
)

// TimelineHandler 时间轴处理器
// 根据门店营业时间与班次计算展示用的刻度与相对位置
type TimelineHandler struct{}

// NewTimelineHandler 创建时间轴处理器
func NewTimelineHandler() *TimelineHandler {
	return &TimelineHandler{}
}

// TimelineRequest 时间轴请求
type TimelineRequest struct {
	Store       *model.Store   `json:"store"`
	Shifts      []*model.Shift `json:"shifts"`
	StepMinutes int            `json:"step_minutes,omitempty"` // 默认60
}

// ShiftOutput 单个班次的展示数据
type ShiftOutput struct {
	ShiftID  uuid.UUID           `json:"shift_id"`
	Name     string              `json:"name"`
	Position timecalc.Position   `json:"position"`
	Visible  bool                `json:"visible"`
	NetHours float64             `json:"net_hours"`
	Flags    timecalc.BreakFlags `json:"flags"`
}

// TimelineResponse 时间轴响应
type TimelineResponse struct {
	Range  timecalc.Range `json:"range"`
	Labels []string       `json:"labels"`
	Shifts []ShiftOutput  `json:"shifts"`
}

// Timeline 计算时间轴刻度与班次位置
func (h *TimelineHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req TimelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if req.Store == nil {
		respondError(w, errors.InvalidInput("store", "门店配置不能为空"))
		return
	}

	visible, err := timecalc.ExtendedRangeFromStore(req.Store)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			respondError(w, appErr)
		} else {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "门店营业时间无效"))
		}
		return
	}

	resp := TimelineResponse{
		Range:  visible,
		Labels: timecalc.TimelineLabels(visible, req.StepMinutes),
		Shifts: make([]ShiftOutput, 0, len(req.Shifts)),
	}

	for _, shift := range req.Shifts {
		out := ShiftOutput{
			ShiftID:  shift.ID,
			Name:     shift.Name,
			NetHours: timecalc.ShiftHours(shift),
			Flags:    timecalc.ValidateBreaks(shift),
		}

		start, startErr := timeutil.ToMinutes(shift.StartTime)
		end, endErr := timeutil.ToMinutes(shift.EndTime)
		if startErr == nil && endErr == nil {
			pos, posErr := timecalc.ShiftPosition(start, end, visible)
			if posErr != nil {
				respondError(w, posErr.(*errors.AppError))
				return
			}
			out.Position = pos
			out.Visible = pos.Width > 0
		}

		resp.Shifts = append(resp.Shifts, out)
	}

	respondJSON(w, http.StatusOK, resp)
}

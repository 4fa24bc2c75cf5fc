package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dienstplan/dienstplan/internal/metrics"
	"github.com/dienstplan/dienstplan/pkg/errors"
	"github.com/dienstplan/dienstplan/pkg/generation"
	"github.com/dienstplan/dienstplan/pkg/logger"
	"github.com/dienstplan/dienstplan/pkg/model"
)

// EntrySaver 排班条目持久化契约
type EntrySaver interface {
	ReplaceForVersionRange(ctx context.Context, version int, startDate, endDate string, entries []model.ScheduleEntry) error
}

// GenerateHandler 排班生成处理器
type GenerateHandler struct {
	pipeline *generation.Pipeline
	saver    EntrySaver
}

// NewGenerateHandler 创建排班生成处理器
func NewGenerateHandler(pipeline *generation.Pipeline, saver EntrySaver) *GenerateHandler {
	return &GenerateHandler{pipeline: pipeline, saver: saver}
}

// GenerateResponse 生成响应
// 无论成功与否都携带会话快照，调用方据此渲染步骤与日志
type GenerateResponse struct {
	*generation.Result
	Persisted bool   `json:"persisted"`
	Duration  string `json:"duration"`
}

// Generate 执行一次生成会话
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req generation.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	result, runErr := h.pipeline.Run(r.Context(), &req)

	metrics.RecordGenerationRun(outcome(result, runErr), result.GeneratedCount, result.Duration)

	if runErr != nil {
		appErr, ok := runErr.(*errors.AppError)
		if !ok {
			appErr = errors.Wrap(runErr, errors.CodeInternal, "生成失败")
		}
		// 错误响应同样携带会话快照
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(appErr.HTTPStatus)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":   true,
			"code":    appErr.Code,
			"message": appErr.Message,
			"session": result.Session,
		})
		return
	}

	resp := GenerateResponse{
		Result:   result,
		Duration: result.Duration.String(),
	}

	// 成功与部分成功都持久化生成的条目
	if h.saver != nil && len(result.Schedules) > 0 {
		err := h.saver.ReplaceForVersionRange(r.Context(), req.Version, req.StartDate, req.EndDate, result.Schedules)
		if err != nil {
			logger.WithError(err).Int("version", req.Version).Msg("持久化生成结果失败")
		} else {
			resp.Persisted = true
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// outcome 归类生成结果用于指标统计
func outcome(result *generation.Result, err error) string {
	switch {
	case result != nil && result.TimedOut:
		return "timeout"
	case err != nil:
		return "failure"
	case result != nil && result.Partial:
		return "partial"
	default:
		return "success"
	}
}

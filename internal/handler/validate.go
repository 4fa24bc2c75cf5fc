package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dienstplan/dienstplan/internal/metrics"
	"github.com/dienstplan/dienstplan/pkg/errors"
	"github.com/dienstplan/dienstplan/pkg/model"
	"github.com/dienstplan/dienstplan/pkg/rules"
)

// ValidateHandler 排班规则校验处理器
// 所有规则只产生提示，不会阻断任何操作
type ValidateHandler struct {
	manager *rules.Manager
}

// NewValidateHandler 创建规则校验处理器
func NewValidateHandler(manager *rules.Manager) *ValidateHandler {
	if manager == nil {
		manager = rules.NewDefaultManager()
	}
	return &ValidateHandler{manager: manager}
}

// ValidateRequest 规则校验请求
type ValidateRequest struct {
	Store        *model.Store                `json:"store,omitempty"`
	Shifts       []*model.Shift              `json:"shifts"`
	Requirements []model.CoverageRequirement `json:"requirements,omitempty"`
}

// ValidateResponse 规则校验响应
type ValidateResponse struct {
	Valid      bool                    `json:"valid"` // 无warning级提示
	Violations []rules.ViolationDetail `json:"violations"`
}

// Validate 评估所有已注册规则
func (h *ValidateHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	violations := h.manager.EvaluateAll(&rules.Context{
		Store:        req.Store,
		Shifts:       req.Shifts,
		Requirements: req.Requirements,
	})

	valid := true
	for _, v := range violations {
		metrics.RecordRuleEvaluation(v.RuleName, true)
		if v.Severity == rules.SeverityWarning {
			valid = false
		}
	}

	resp := ValidateResponse{
		Valid:      valid,
		Violations: violations,
	}
	if resp.Violations == nil {
		resp.Violations = []rules.ViolationDetail{}
	}

	respondJSON(w, http.StatusOK, resp)
}

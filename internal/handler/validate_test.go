package handler

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestValidate_CleanShifts(t *testing.T) {
	h := NewValidateHandler(nil)

	body := map[string]interface{}{
		"shifts": []map[string]interface{}{
			{"name": "早班", "start_time": "08:00", "end_time": "14:00", "active_days": []int{0, 1}},
		},
	}
	rec := doJSON(t, h.Validate, http.MethodPost, "/api/v1/schedules/validate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200: %s", rec.Code, rec.Body.String())
	}

	var resp ValidateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if !resp.Valid {
		t.Errorf("无提示时应为valid: %+v", resp.Violations)
	}
	if resp.Violations == nil {
		t.Error("提示列表应为空数组而非null")
	}
}

func TestValidate_WarningMakesInvalid(t *testing.T) {
	h := NewValidateHandler(nil)

	// 超长无休息班次触发warning级提示
	body := map[string]interface{}{
		"shifts": []map[string]interface{}{
			{"name": "超长班", "start_time": "07:00", "end_time": "18:30", "active_days": []int{0}},
		},
	}
	rec := doJSON(t, h.Validate, http.MethodPost, "/api/v1/schedules/validate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200", rec.Code)
	}

	var resp ValidateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Valid {
		t.Error("存在warning级提示时不应为valid")
	}
	if len(resp.Violations) == 0 {
		t.Error("应返回提示详情")
	}
}

func TestValidate_InfoOnlyStaysValid(t *testing.T) {
	h := NewValidateHandler(nil)

	// 仅触发info级的钥匙缓冲提示
	body := map[string]interface{}{
		"requirements": []map[string]interface{}{
			{"day_index": 0, "start_time": "09:00", "end_time": "17:00", "requires_keyholder": true},
		},
	}
	rec := doJSON(t, h.Validate, http.MethodPost, "/api/v1/schedules/validate", body)

	var resp ValidateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if !resp.Valid {
		t.Error("仅info级提示时仍为valid")
	}
	if len(resp.Violations) != 1 {
		t.Errorf("提示数 = %d, 期望 1", len(resp.Violations))
	}
}

func TestValidate_MethodNotAllowed(t *testing.T) {
	h := NewValidateHandler(nil)

	rec := doJSON(t, h.Validate, http.MethodGet, "/api/v1/schedules/validate", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("状态码 = %d, 期望 400", rec.Code)
	}
}

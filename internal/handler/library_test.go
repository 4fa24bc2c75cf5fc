package handler

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestLibrary(t *testing.T) {
	h := NewLibraryHandler()

	rec := doJSON(t, h.Library, http.MethodGet, "/api/v1/constraints/library", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200", rec.Code)
	}

	var resp struct {
		Library []struct {
			Name    string `json:"name"`
			Type    string `json:"type"`
			Default bool   `json:"default"`
		} `json:"library"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if len(resp.Library) != 14 {
		t.Fatalf("开关数 = %d, 期望 14", len(resp.Library))
	}
	for _, item := range resp.Library {
		if !item.Default {
			t.Errorf("开关 %s 默认值应为true", item.Name)
		}
	}
}

func TestDefaults(t *testing.T) {
	h := NewLibraryHandler()

	rec := doJSON(t, h.Defaults, http.MethodGet, "/api/v1/constraints/defaults", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200", rec.Code)
	}

	var resp struct {
		Requirements    map[string]bool        `json:"requirements"`
		DetailedOptions map[string]interface{} `json:"detailed_options"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if len(resp.Requirements) != 14 {
		t.Errorf("开关数 = %d, 期望 14", len(resp.Requirements))
	}
	for name, value := range resp.Requirements {
		if !value {
			t.Errorf("开关 %s 默认值应为true", name)
		}
	}
	if _, ok := resp.DetailedOptions["priority"]; !ok {
		t.Error("缺少priority默认选项")
	}
}

func TestLibrary_MethodNotAllowed(t *testing.T) {
	h := NewLibraryHandler()

	rec := doJSON(t, h.Library, http.MethodPost, "/api/v1/constraints/library", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("状态码 = %d, 期望 400", rec.Code)
	}
}

package handler

import (
	"net/http"

	"github.com/dienstplan/dienstplan/internal/constraints"
	"github.com/dienstplan/dienstplan/pkg/errors"
	"github.com/dienstplan/dienstplan/pkg/generation"
)

// LibraryHandler 覆盖需求开关库处理器
type LibraryHandler struct{}

// NewLibraryHandler 创建开关库处理器
func NewLibraryHandler() *LibraryHandler {
	return &LibraryHandler{}
}

// Library 返回完整的开关库
func (h *LibraryHandler) Library(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	respondJSON(w, http.StatusOK, constraints.LibraryResponse{Library: constraints.GetLibrary()})
}

// Defaults 返回默认的开关集合与细化选项
func (h *LibraryHandler) Defaults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"requirements":     generation.DefaultRequirements(),
		"detailed_options": generation.DefaultDetailedOptions(),
	})
}

// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dienstplan/dienstplan/pkg/errors"
)

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
		"fields":  err.Fields,
	})
}

// pathID 从 prefix 之后的路径段解析UUID
func pathID(r *http.Request, prefix string) (uuid.UUID, *errors.AppError) {
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" || strings.Contains(rest, "/") {
		return uuid.Nil, errors.New(errors.CodeInvalidInput, "路径中缺少资源ID")
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的资源ID格式")
	}
	return id, nil
}

// Package generation 提供排班生成管线（步骤状态机、日志与超时控制）
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dienstplan/dienstplan/pkg/model"
)

// ServiceRequest 外部生成服务请求
type ServiceRequest struct {
	StartDate            string           `json:"start_date"`
	EndDate              string           `json:"end_date"`
	Version              int              `json:"version"`
	CreateEmptySchedules bool             `json:"create_empty_schedules"`
	DetailedOptions      *DetailedOptions `json:"detailed_options,omitempty"`
	Requirements         Requirements     `json:"requirements"`
}

// ServiceError 元素级错误（单个日期/班次生成失败）
type ServiceError struct {
	Message string `json:"message"`
	Date    string `json:"date,omitempty"`
	Shift   string `json:"shift,omitempty"`
}

// ServiceResponse 外部生成服务响应
type ServiceResponse struct {
	Schedules                 []model.ScheduleEntry `json:"schedules"`
	Errors                    []ServiceError        `json:"errors"`
	GeneratedAssignmentsCount int                   `json:"generated_assignments_count"`
	FilteredSchedules         int                   `json:"filtered_schedules,omitempty"`
}

// Service 外部生成服务契约
// 实际的约束求解由服务方完成，本引擎只准备输入并解释输出
type Service interface {
	// Generate 发起一次生成调用
	Generate(ctx context.Context, req *ServiceRequest) (*ServiceResponse, error)
}

// HTTPService 基于HTTP的生成服务客户端
type HTTPService struct {
	baseURL string
	client  *http.Client
}

// NewHTTPService 创建生成服务客户端
func NewHTTPService(baseURL string, timeout time.Duration) *HTTPService {
	return &HTTPService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Generate 调用远端生成服务
func (s *HTTPService) Generate(ctx context.Context, req *ServiceRequest) (*ServiceResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("序列化生成请求失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("构建生成请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("调用生成服务失败: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return nil, fmt.Errorf("生成服务返回状态 %d: %s", httpResp.StatusCode, string(data))
	}

	var resp ServiceResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("解析生成响应失败: %w", err)
	}

	return &resp, nil
}

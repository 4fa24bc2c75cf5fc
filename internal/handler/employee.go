package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/dienstplan/dienstplan/pkg/errors"
	"github.com/dienstplan/dienstplan/pkg/model"
)

// EmployeeStore 员工存储契约
type EmployeeStore interface {
	List(ctx context.Context, activeOnly bool) ([]*model.Employee, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Employee, error)
	Create(ctx context.Context, emp *model.Employee) error
	Update(ctx context.Context, emp *model.Employee) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EmployeeHandler 员工处理器
type EmployeeHandler struct {
	store EmployeeStore
}

// NewEmployeeHandler 创建员工处理器
func NewEmployeeHandler(store EmployeeStore) *EmployeeHandler {
	return &EmployeeHandler{store: store}
}

// Collection 处理 /employees 集合路由
func (h *EmployeeHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET和POST方法"))
	}
}

// Item 处理 /employees/{id} 单项路由
func (h *EmployeeHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "/api/v1/employees")
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

// list 列出员工，?active=true 时只返回在职员工
func (h *EmployeeHandler) list(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	rows, err := h.store.List(r.Context(), activeOnly)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"employees": rows, "total": len(rows)})
}

// get 获取单个员工
func (h *EmployeeHandler) get(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	emp, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
		return
	}
	if emp == nil {
		respondError(w, errors.NotFound("员工", id.String()))
		return
	}
	respondJSON(w, http.StatusOK, emp)
}

// create 创建员工
func (h *EmployeeHandler) create(w http.ResponseWriter, r *http.Request) {
	var emp model.Employee
	if err := json.NewDecoder(r.Body).Decode(&emp); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if appErr := validateEmployee(&emp); appErr != nil {
		respondError(w, appErr)
		return
	}

	if err := h.store.Create(r.Context(), &emp); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建员工失败"))
		return
	}
	respondJSON(w, http.StatusCreated, emp)
}

// update 更新员工
func (h *EmployeeHandler) update(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var emp model.Employee
	if err := json.NewDecoder(r.Body).Decode(&emp); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	emp.ID = id

	if appErr := validateEmployee(&emp); appErr != nil {
		respondError(w, appErr)
		return
	}

	existing, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
		return
	}
	if existing == nil {
		respondError(w, errors.NotFound("员工", id.String()))
		return
	}

	if err := h.store.Update(r.Context(), &emp); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "更新员工失败"))
		return
	}
	respondJSON(w, http.StatusOK, emp)
}

// delete 删除员工
func (h *EmployeeHandler) delete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	existing, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
		return
	}
	if existing == nil {
		respondError(w, errors.NotFound("员工", id.String()))
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "删除员工失败"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true, "id": id})
}

// validGroups 合法的员工组别编码
var validGroups = map[model.EmployeeGroup]bool{
	model.GroupFullTime: true,
	model.GroupPartTime: true,
	model.GroupMiniJob:  true,
	model.GroupTeamLead: true,
}

// validateEmployee 结构校验，违规返回422
func validateEmployee(emp *model.Employee) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if emp.Name == "" {
		ve.Add("name", "员工姓名不能为空")
	}
	if !validGroups[emp.Group] {
		ve.Add("group", "组别必须是 VZ、TZ、GFB 或 TL 之一")
	}
	if emp.ContractedHours < 0 {
		ve.Add("contracted_hours", "合同工时不能为负")
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

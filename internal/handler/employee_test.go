package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/dienstplan/dienstplan/pkg/model"
)

// fakeEmployeeStore 内存员工存储
type fakeEmployeeStore struct {
	rows []*model.Employee
}

func (f *fakeEmployeeStore) List(ctx context.Context, activeOnly bool) ([]*model.Employee, error) {
	if !activeOnly {
		return f.rows, nil
	}
	var out []*model.Employee
	for _, emp := range f.rows {
		if emp.IsActive {
			out = append(out, emp)
		}
	}
	return out, nil
}

func (f *fakeEmployeeStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	for _, emp := range f.rows {
		if emp.ID == id {
			row := *emp
			return &row, nil
		}
	}
	return nil, nil
}

func (f *fakeEmployeeStore) Create(ctx context.Context, emp *model.Employee) error {
	if emp.ID == uuid.Nil {
		emp.ID = uuid.New()
	}
	row := *emp
	f.rows = append(f.rows, &row)
	return nil
}

func (f *fakeEmployeeStore) Update(ctx context.Context, emp *model.Employee) error {
	for i := range f.rows {
		if f.rows[i].ID == emp.ID {
			row := *emp
			f.rows[i] = &row
			return nil
		}
	}
	return nil
}

func (f *fakeEmployeeStore) Delete(ctx context.Context, id uuid.UUID) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func employeeRow(name string, group model.EmployeeGroup, active bool) *model.Employee {
	return &model.Employee{
		BaseModel: model.BaseModel{ID: uuid.New()},
		Name:      name,
		Group:     group,
		IsActive:  active,
	}
}

func TestEmployeeList(t *testing.T) {
	store := &fakeEmployeeStore{rows: []*model.Employee{
		employeeRow("Anna", model.GroupFullTime, true),
		employeeRow("Ben", model.GroupPartTime, false),
	}}
	h := NewEmployeeHandler(store)

	rec := doJSON(t, h.Collection, http.MethodGet, "/api/v1/employees", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200", rec.Code)
	}

	var resp struct {
		Employees []*model.Employee `json:"employees"`
		Total     int               `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("总数 = %d, 期望 2", resp.Total)
	}

	// active=true 只返回在职员工
	rec = doJSON(t, h.Collection, http.MethodGet, "/api/v1/employees?active=true", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Total != 1 || resp.Employees[0].Name != "Anna" {
		t.Errorf("在职过滤结果 = %d, 期望仅 Anna", resp.Total)
	}
}

func TestEmployeeCreate(t *testing.T) {
	store := &fakeEmployeeStore{}
	h := NewEmployeeHandler(store)

	body := map[string]interface{}{
		"name":             "Clara",
		"group":            "GFB",
		"contracted_hours": 10.0,
		"is_active":        true,
	}
	rec := doJSON(t, h.Collection, http.MethodPost, "/api/v1/employees", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("状态码 = %d, 期望 201: %s", rec.Code, rec.Body.String())
	}
	if len(store.rows) != 1 {
		t.Errorf("存储行数 = %d, 期望 1", len(store.rows))
	}
}

func TestEmployeeCreate_ValidationFail(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]interface{}
		field string
	}{
		{
			name:  "缺少姓名",
			body:  map[string]interface{}{"group": "VZ"},
			field: "name",
		},
		{
			name:  "非法组别",
			body:  map[string]interface{}{"name": "Dora", "group": "XX"},
			field: "group",
		},
		{
			name:  "负合同工时",
			body:  map[string]interface{}{"name": "Dora", "group": "TZ", "contracted_hours": -5.0},
			field: "contracted_hours",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeEmployeeStore{}
			h := NewEmployeeHandler(store)

			rec := doJSON(t, h.Collection, http.MethodPost, "/api/v1/employees", tt.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("状态码 = %d, 期望 422: %s", rec.Code, rec.Body.String())
			}

			var resp struct {
				Fields map[string]string `json:"fields"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("解析响应失败: %v", err)
			}
			if _, ok := resp.Fields[tt.field]; !ok {
				t.Errorf("缺少字段 %q 的错误说明: %v", tt.field, resp.Fields)
			}
			if len(store.rows) != 0 {
				t.Error("校验失败不应写入存储")
			}
		})
	}
}

func TestEmployeeUpdateAndDelete(t *testing.T) {
	row := employeeRow("Anna", model.GroupFullTime, true)
	store := &fakeEmployeeStore{rows: []*model.Employee{row}}
	h := NewEmployeeHandler(store)

	body := map[string]interface{}{
		"name":      "Anna",
		"group":     "TL",
		"is_active": true,
	}
	rec := doJSON(t, h.Item, http.MethodPut, "/api/v1/employees/"+row.ID.String(), body)
	if rec.Code != http.StatusOK {
		t.Fatalf("更新状态码 = %d, 期望 200: %s", rec.Code, rec.Body.String())
	}
	if store.rows[0].Group != model.GroupTeamLead {
		t.Errorf("组别 = %s, 期望 TL", store.rows[0].Group)
	}

	rec = doJSON(t, h.Item, http.MethodDelete, "/api/v1/employees/"+row.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("删除状态码 = %d, 期望 200", rec.Code)
	}
	if len(store.rows) != 0 {
		t.Error("删除后存储应为空")
	}
}

func TestEmployeeGet_NotFound(t *testing.T) {
	h := NewEmployeeHandler(&fakeEmployeeStore{})

	rec := doJSON(t, h.Item, http.MethodGet, "/api/v1/employees/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("状态码 = %d, 期望 404", rec.Code)
	}
}

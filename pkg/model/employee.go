// Package model 定义排班引擎的核心数据模型
package model

// Employee 员工
type Employee struct {
	BaseModel
	Name            string        `json:"name" db:"name"`
	Group           EmployeeGroup `json:"group" db:"group_code"`
	ContractedHours float64       `json:"contracted_hours" db:"contracted_hours"` // 合同周工时
	IsKeyholder     bool          `json:"is_keyholder" db:"is_keyholder"`
	IsActive        bool          `json:"is_active" db:"is_active"`
}

// CanOpenStore 检查员工是否可以开关店
func (e *Employee) CanOpenStore() bool {
	return e.IsKeyholder && e.IsActive
}

// InGroup 检查员工是否属于给定组别之一
func (e *Employee) InGroup(groups []string) bool {
	if len(groups) == 0 {
		return true
	}
	for _, g := range groups {
		if string(e.Group) == g {
			return true
		}
	}
	return false
}

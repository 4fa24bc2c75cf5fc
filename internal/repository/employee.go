package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dienstplan/dienstplan/pkg/model"
)

// EmployeeRepository 员工仓储
type EmployeeRepository struct {
	db DB
}

// NewEmployeeRepository 创建员工仓储
func NewEmployeeRepository(db DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = `
	id, name, group_code, contracted_hours, is_keyholder, is_active,
	created_at, updated_at
`

// List 查询员工列表
func (r *EmployeeRepository) List(ctx context.Context, activeOnly bool) ([]*model.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE deleted_at IS NULL
	`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询员工失败: %w", err)
	}
	defer rows.Close()

	var result []*model.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, emp)
	}
	return result, rows.Err()
}

// GetByID 根据ID获取员工，不存在时返回 nil
func (r *EmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE id = $1 AND deleted_at IS NULL
	`

	emp, err := scanEmployee(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return emp, nil
}

// Create 创建员工
func (r *EmployeeRepository) Create(ctx context.Context, emp *model.Employee) error {
	if emp.ID == uuid.Nil {
		emp.ID = uuid.New()
	}
	now := time.Now()
	emp.CreatedAt = now
	emp.UpdatedAt = now

	query := `
		INSERT INTO employees (
			id, name, group_code, contracted_hours, is_keyholder, is_active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Group, emp.ContractedHours,
		emp.IsKeyholder, emp.IsActive, emp.CreatedAt, emp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建员工失败: %w", err)
	}
	return nil
}

// Update 更新员工
func (r *EmployeeRepository) Update(ctx context.Context, emp *model.Employee) error {
	emp.UpdatedAt = time.Now()

	query := `
		UPDATE employees SET
			name = $2, group_code = $3, contracted_hours = $4,
			is_keyholder = $5, is_active = $6, updated_at = $7
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Group, emp.ContractedHours,
		emp.IsKeyholder, emp.IsActive, emp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新员工失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete 软删除员工
func (r *EmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE employees SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除员工失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanEmployee(row Scanner) (*model.Employee, error) {
	emp := &model.Employee{}

	err := row.Scan(
		&emp.ID, &emp.Name, &emp.Group, &emp.ContractedHours,
		&emp.IsKeyholder, &emp.IsActive, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("扫描员工失败: %w", err)
	}
	return emp, nil
}

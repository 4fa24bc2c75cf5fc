// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dienstplan/dienstplan/pkg/model"
)

// CoverageRepository 覆盖需求仓储
type CoverageRepository struct {
	db DB
}

// NewCoverageRepository 创建覆盖需求仓储
func NewCoverageRepository(db DB) *CoverageRepository {
	return &CoverageRepository{db: db}
}

const coverageColumns = `
	id, day_index, start_time, end_time, min_employees, max_employees,
	employee_types, requires_keyholder, keyholder_before_minutes,
	keyholder_after_minutes, created_at, updated_at
`

// List 查询全部覆盖需求，按星期与开始时间排序
func (r *CoverageRepository) List(ctx context.Context) ([]model.CoverageRequirement, error) {
	query := `
		SELECT ` + coverageColumns + `
		FROM coverage_requirements
		WHERE deleted_at IS NULL
		ORDER BY day_index ASC, start_time ASC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询覆盖需求失败: %w", err)
	}
	defer rows.Close()

	var result []model.CoverageRequirement
	for rows.Next() {
		req, err := scanCoverage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	return result, rows.Err()
}

// GetByID 根据ID获取覆盖需求，不存在时返回 nil
func (r *CoverageRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CoverageRequirement, error) {
	query := `
		SELECT ` + coverageColumns + `
		FROM coverage_requirements
		WHERE id = $1 AND deleted_at IS NULL
	`

	req, err := scanCoverage(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Create 创建覆盖需求
func (r *CoverageRepository) Create(ctx context.Context, req *model.CoverageRequirement) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	typesJSON, _ := json.Marshal(req.EmployeeTypes)

	query := `
		INSERT INTO coverage_requirements (
			id, day_index, start_time, end_time, min_employees, max_employees,
			employee_types, requires_keyholder, keyholder_before_minutes,
			keyholder_after_minutes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.DayIndex, req.StartTime, req.EndTime, req.MinEmployees, req.MaxEmployees,
		typesJSON, req.RequiresKeyholder, req.KeyholderBeforeMinutes,
		req.KeyholderAfterMinutes, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建覆盖需求失败: %w", err)
	}
	return nil
}

// Update 更新覆盖需求
func (r *CoverageRepository) Update(ctx context.Context, req *model.CoverageRequirement) error {
	req.UpdatedAt = time.Now()
	typesJSON, _ := json.Marshal(req.EmployeeTypes)

	query := `
		UPDATE coverage_requirements SET
			day_index = $2, start_time = $3, end_time = $4, min_employees = $5,
			max_employees = $6, employee_types = $7, requires_keyholder = $8,
			keyholder_before_minutes = $9, keyholder_after_minutes = $10, updated_at = $11
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		req.ID, req.DayIndex, req.StartTime, req.EndTime, req.MinEmployees,
		req.MaxEmployees, typesJSON, req.RequiresKeyholder,
		req.KeyholderBeforeMinutes, req.KeyholderAfterMinutes, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新覆盖需求失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete 软删除覆盖需求
func (r *CoverageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE coverage_requirements SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除覆盖需求失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// BulkReplaceDays 批量替换覆盖需求
// 仅替换数组中出现的星期，未出现的星期保持不变；空数组是无操作
func (r *CoverageRepository) BulkReplaceDays(ctx context.Context, reqs []model.CoverageRequirement) error {
	if len(reqs) == 0 {
		return nil
	}

	days := make(map[int]struct{})
	for _, req := range reqs {
		days[req.DayIndex] = struct{}{}
	}

	now := time.Now()
	for day := range days {
		query := `UPDATE coverage_requirements SET deleted_at = $2 WHERE day_index = $1 AND deleted_at IS NULL`
		if _, err := r.db.ExecContext(ctx, query, day, now); err != nil {
			return fmt.Errorf("替换星期%d的覆盖需求失败: %w", day, err)
		}
	}

	for i := range reqs {
		if err := r.Create(ctx, &reqs[i]); err != nil {
			return err
		}
	}
	return nil
}

// scanCoverage 扫描单行覆盖需求
func scanCoverage(row Scanner) (*model.CoverageRequirement, error) {
	req := &model.CoverageRequirement{}
	var typesJSON []byte

	err := row.Scan(
		&req.ID, &req.DayIndex, &req.StartTime, &req.EndTime,
		&req.MinEmployees, &req.MaxEmployees, &typesJSON,
		&req.RequiresKeyholder, &req.KeyholderBeforeMinutes,
		&req.KeyholderAfterMinutes, &req.CreatedAt, &req.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("扫描覆盖需求失败: %w", err)
	}

	if len(typesJSON) > 0 {
		if err := json.Unmarshal(typesJSON, &req.EmployeeTypes); err != nil {
			return nil, fmt.Errorf("解析员工组别失败: %w", err)
		}
	}
	return req, nil
}

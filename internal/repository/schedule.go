package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dienstplan/dienstplan/pkg/model"
)

// ScheduleRepository 排班条目仓储
type ScheduleRepository struct {
	db DB
}

// NewScheduleRepository 创建排班条目仓储
func NewScheduleRepository(db DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const entryColumns = `
	id, version, employee_id, shift_id, date, start_time, end_time, status,
	created_at, updated_at
`

// ListEntries 按过滤器查询排班条目
func (r *ScheduleRepository) ListEntries(ctx context.Context, filter ListFilter) ([]model.ScheduleEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM schedule_entries
		WHERE deleted_at IS NULL
	`
	args := []interface{}{}
	argIdx := 1

	if filter.Version != nil {
		query += fmt.Sprintf(" AND version = $%d", argIdx)
		args = append(args, *filter.Version)
		argIdx++
	}
	if filter.StartDate != "" {
		query += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, filter.StartDate)
		argIdx++
	}
	if filter.EndDate != "" {
		query += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, filter.EndDate)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	query += " ORDER BY date ASC, start_time ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询排班条目失败: %w", err)
	}
	defer rows.Close()

	var result []model.ScheduleEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *entry)
	}
	return result, rows.Err()
}

// SaveEntries 批量插入排班条目
func (r *ScheduleRepository) SaveEntries(ctx context.Context, entries []model.ScheduleEntry) error {
	now := time.Now()
	for i := range entries {
		entry := &entries[i]
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		entry.CreatedAt = now
		entry.UpdatedAt = now

		query := `
			INSERT INTO schedule_entries (
				id, version, employee_id, shift_id, date, start_time, end_time,
				status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`

		_, err := r.db.ExecContext(ctx, query,
			entry.ID, entry.Version, entry.EmployeeID, entry.ShiftID,
			entry.Date, nullStr(entry.StartTime), nullStr(entry.EndTime),
			entry.Status, entry.CreatedAt, entry.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("插入排班条目失败: %w", err)
		}
	}
	return nil
}

// ReplaceForVersionRange 替换版本在日期范围内的条目
// 先软删除旧条目再写入新条目，调用方应在事务中执行
func (r *ScheduleRepository) ReplaceForVersionRange(ctx context.Context, version int, startDate, endDate string, entries []model.ScheduleEntry) error {
	query := `
		UPDATE schedule_entries SET deleted_at = $4
		WHERE version = $1 AND date >= $2 AND date <= $3 AND deleted_at IS NULL
	`
	if _, err := r.db.ExecContext(ctx, query, version, startDate, endDate, time.Now()); err != nil {
		return fmt.Errorf("清除旧排班条目失败: %w", err)
	}

	return r.SaveEntries(ctx, entries)
}

// NextVersion 返回下一个可用版本号
func (r *ScheduleRepository) NextVersion(ctx context.Context) (int, error) {
	var max sql.NullInt64
	query := `SELECT MAX(version) FROM schedule_entries WHERE deleted_at IS NULL`

	if err := r.db.QueryRowContext(ctx, query).Scan(&max); err != nil {
		return 0, fmt.Errorf("查询最大版本号失败: %w", err)
	}
	return int(max.Int64) + 1, nil
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func scanEntry(row Scanner) (*model.ScheduleEntry, error) {
	entry := &model.ScheduleEntry{}
	var startTime, endTime sql.NullString

	err := row.Scan(
		&entry.ID, &entry.Version, &entry.EmployeeID, &entry.ShiftID,
		&entry.Date, &startTime, &endTime, &entry.Status,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("扫描排班条目失败: %w", err)
	}

	entry.StartTime = startTime.String
	entry.EndTime = endTime.String
	return entry, nil
}

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

// ShiftRepository 班次仓储
type ShiftRepository struct {
	db DB
}

// NewShiftRepository 创建班次仓储
func NewShiftRepository(db DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

const shiftColumns = `
	id, name, start_time, end_time, break_start, break_end, break_note,
	active_days, shift_type, created_at, updated_at
`

// List 查询全部班次，按开始时间排序
func (r *ShiftRepository) List(ctx context.Context) ([]model.Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE deleted_at IS NULL
		ORDER BY start_time ASC, name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}
	defer rows.Close()

	var result []model.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *shift)
	}
	return result, rows.Err()
}

// GetByID 根据ID获取班次，不存在时返回 nil
func (r *ShiftRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE id = $1 AND deleted_at IS NULL
	`

	shift, err := scanShift(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return shift, nil
}

// Create 创建班次
func (r *ShiftRepository) Create(ctx context.Context, shift *model.Shift) error {
	if shift.ID == uuid.Nil {
		shift.ID = uuid.New()
	}
	now := time.Now()
	shift.CreatedAt = now
	shift.UpdatedAt = now

	daysJSON, _ := json.Marshal(shift.ActiveDays)
	breakStart, breakEnd, breakNote := breakFields(shift.Break)

	query := `
		INSERT INTO shifts (
			id, name, start_time, end_time, break_start, break_end, break_note,
			active_days, shift_type, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		shift.ID, shift.Name, shift.StartTime, shift.EndTime,
		breakStart, breakEnd, breakNote,
		daysJSON, shift.ShiftType, shift.CreatedAt, shift.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建班次失败: %w", err)
	}
	return nil
}

// Update 更新班次
func (r *ShiftRepository) Update(ctx context.Context, shift *model.Shift) error {
	shift.UpdatedAt = time.Now()
	daysJSON, _ := json.Marshal(shift.ActiveDays)
	breakStart, breakEnd, breakNote := breakFields(shift.Break)

	query := `
		UPDATE shifts SET
			name = $2, start_time = $3, end_time = $4, break_start = $5,
			break_end = $6, break_note = $7, active_days = $8, shift_type = $9,
			updated_at = $10
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		shift.ID, shift.Name, shift.StartTime, shift.EndTime,
		breakStart, breakEnd, breakNote, daysJSON, shift.ShiftType, shift.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新班次失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete 软删除班次
func (r *ShiftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE shifts SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除班次失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func breakFields(b *model.ShiftBreak) (start, end, note sql.NullString) {
	if b == nil {
		return
	}
	if b.Start != "" {
		start = sql.NullString{String: b.Start, Valid: true}
	}
	if b.End != "" {
		end = sql.NullString{String: b.End, Valid: true}
	}
	if b.Note != "" {
		note = sql.NullString{String: b.Note, Valid: true}
	}
	return
}

func scanShift(row Scanner) (*model.Shift, error) {
	shift := &model.Shift{}
	var daysJSON []byte
	var breakStart, breakEnd, breakNote, shiftType sql.NullString

	err := row.Scan(
		&shift.ID, &shift.Name, &shift.StartTime, &shift.EndTime,
		&breakStart, &breakEnd, &breakNote,
		&daysJSON, &shiftType, &shift.CreatedAt, &shift.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("扫描班次失败: %w", err)
	}

	if breakStart.Valid || breakEnd.Valid || breakNote.Valid {
		shift.Break = &model.ShiftBreak{
			Start: breakStart.String,
			End:   breakEnd.String,
			Note:  breakNote.String,
		}
	}
	shift.ShiftType = shiftType.String

	if len(daysJSON) > 0 {
		if err := json.Unmarshal(daysJSON, &shift.ActiveDays); err != nil {
			return nil, fmt.Errorf("解析生效日失败: %w", err)
		}
	}
	return shift, nil
}

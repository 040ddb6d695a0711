package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tmccall/roster-admin/pkg/core/model"
)

// execer is the execution surface shared by the pool and a transaction,
// so the write helpers serve both.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const shiftColumns = `id, shift_date, start_time, end_time, break_minutes,
	department_id, sub_department_id, role_id, role_name,
	remuneration_level, employee_id, status, draft`

func scanShift(row pgx.Row) (*model.Shift, error) {
	var s model.Shift
	var status string
	var departmentID, subDepartmentID, roleID, employeeID *string
	var level int

	err := row.Scan(&s.ID, &s.Date, &s.StartTime, &s.EndTime, &s.BreakMinutes,
		&departmentID, &subDepartmentID, &roleID, &s.RoleName,
		&level, &employeeID, &status, &s.Draft)
	if err != nil {
		return nil, err
	}

	if departmentID != nil {
		s.DepartmentID = *departmentID
	}
	if subDepartmentID != nil {
		s.SubDepartmentID = *subDepartmentID
	}
	if roleID != nil {
		s.RoleID = *roleID
	}
	if employeeID != nil {
		s.EmployeeID = *employeeID
	}
	s.Level = model.RemunerationLevel(level)

	s.Status, err = model.ParseShiftStatus(status)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// GetShift retrieves a single shift by id.
func (d *DB) GetShift(ctx context.Context, id string) (*model.Shift, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+shiftColumns+` FROM shift WHERE id = $1`, id)
	shift, err := scanShift(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NewNotFound("shift", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query shift: %w", err)
	}
	return shift, nil
}

// ListShiftsByDateRange retrieves shifts dated within [start, end].
func (d *DB) ListShiftsByDateRange(ctx context.Context, start, end time.Time) ([]model.Shift, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT `+shiftColumns+` FROM shift WHERE shift_date BETWEEN $1 AND $2 ORDER BY shift_date, start_time`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []model.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, *shift)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}

	return shifts, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CreateShift inserts a shift record.
func (d *DB) CreateShift(ctx context.Context, shift *model.Shift) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO shift (id, shift_date, start_time, end_time, break_minutes,
			department_id, sub_department_id, role_id, role_name,
			remuneration_level, employee_id, status, draft)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, shift.ID, shift.Date, shift.StartTime, shift.EndTime, shift.BreakMinutes,
		nullable(shift.DepartmentID), nullable(shift.SubDepartmentID), nullable(shift.RoleID),
		shift.RoleName, int(shift.Level), nullable(shift.EmployeeID), string(shift.Status), shift.Draft)
	if err != nil {
		return fmt.Errorf("failed to insert shift: %w", err)
	}
	return nil
}

// UpdateShift replaces a shift record.
func (d *DB) UpdateShift(ctx context.Context, shift *model.Shift) error {
	return execUpdateShift(ctx, d.pool, shift)
}

func execUpdateShift(ctx context.Context, q execer, shift *model.Shift) error {
	tag, err := q.Exec(ctx, `
		UPDATE shift
		SET shift_date = $2, start_time = $3, end_time = $4, break_minutes = $5,
			department_id = $6, sub_department_id = $7, role_id = $8, role_name = $9,
			remuneration_level = $10, employee_id = $11, status = $12, draft = $13
		WHERE id = $1
	`, shift.ID, shift.Date, shift.StartTime, shift.EndTime, shift.BreakMinutes,
		nullable(shift.DepartmentID), nullable(shift.SubDepartmentID), nullable(shift.RoleID),
		shift.RoleName, int(shift.Level), nullable(shift.EmployeeID), string(shift.Status), shift.Draft)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFound("shift", shift.ID)
	}
	return nil
}

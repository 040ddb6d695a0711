package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tmccall/roster-admin/pkg/core/model"
)

func decodeEmployee(e *model.Employee, roleIDs, skills, availability []byte) error {
	if err := json.Unmarshal(roleIDs, &e.RoleIDs); err != nil {
		return fmt.Errorf("failed to decode role ids: %w", err)
	}
	if err := json.Unmarshal(skills, &e.Skills); err != nil {
		return fmt.Errorf("failed to decode skills: %w", err)
	}
	if err := json.Unmarshal(availability, &e.Availability); err != nil {
		return fmt.Errorf("failed to decode availability: %w", err)
	}
	return nil
}

// GetEmployee retrieves an employee by id.
func (d *DB) GetEmployee(ctx context.Context, id string) (*model.Employee, error) {
	var e model.Employee
	var roleIDs, skills, availability []byte

	err := d.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, role_ids, skills, availability, active
		FROM employee WHERE id = $1
	`, id).Scan(&e.ID, &e.FirstName, &e.LastName, &roleIDs, &skills, &availability, &e.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NewNotFound("employee", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query employee: %w", err)
	}

	if err := decodeEmployee(&e, roleIDs, skills, availability); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEmployees retrieves all employees.
func (d *DB) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, first_name, last_name, role_ids, skills, availability, active
		FROM employee ORDER BY last_name, first_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []model.Employee
	for rows.Next() {
		var e model.Employee
		var roleIDs, skills, availability []byte
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &roleIDs, &skills, &availability, &e.Active); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		if err := decodeEmployee(&e, roleIDs, skills, availability); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees: %w", err)
	}

	return employees, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tmccall/roster-admin/pkg/core/model"
)

func scanRole(row pgx.Row) (*model.Role, error) {
	var r model.Role
	var departmentID, subDepartmentID *string
	var level int

	err := row.Scan(&r.ID, &r.Name, &departmentID, &subDepartmentID, &level)
	if err != nil {
		return nil, err
	}

	if departmentID != nil {
		r.DepartmentID = *departmentID
	}
	if subDepartmentID != nil {
		r.SubDepartmentID = *subDepartmentID
	}
	r.DefaultLevel = model.RemunerationLevel(level)
	return &r, nil
}

// GetRole retrieves a role by id.
func (d *DB) GetRole(ctx context.Context, id string) (*model.Role, error) {
	row := d.pool.QueryRow(ctx,
		`SELECT id, name, department_id, sub_department_id, default_level FROM role WHERE id = $1`, id)
	role, err := scanRole(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NewNotFound("role", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query role: %w", err)
	}
	return role, nil
}

// ListRoles retrieves all roles.
func (d *DB) ListRoles(ctx context.Context) ([]model.Role, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, name, department_id, sub_department_id, default_level FROM role ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, *role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roles: %w", err)
	}

	return roles, nil
}

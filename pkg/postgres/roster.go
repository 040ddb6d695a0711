package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tmccall/roster-admin/pkg/core/model"
	"github.com/tmccall/roster-admin/pkg/core/roster"
)

// GetRosterByDate retrieves the roster tree published for a date.
func (d *DB) GetRosterByDate(ctx context.Context, date time.Time) (*roster.Tree, error) {
	var id string
	var locked bool
	var raw []byte

	err := d.pool.QueryRow(ctx,
		`SELECT id, locked, tree FROM roster WHERE roster_date = $1`, date).
		Scan(&id, &locked, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NewNotFound("roster", date.Format("2006-01-02"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query roster: %w", err)
	}

	var groups []roster.Group
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode roster tree: %w", err)
	}

	return &roster.Tree{
		ID:     id,
		Date:   date,
		Locked: locked,
		Groups: groups,
	}, nil
}

// SaveRoster upserts the roster tree for its date. The tree is stored as a
// JSONB document; a save replaces whatever was published for that date.
func (d *DB) SaveRoster(ctx context.Context, tree *roster.Tree) error {
	raw, err := json.Marshal(tree.Groups)
	if err != nil {
		return fmt.Errorf("failed to encode roster tree: %w", err)
	}

	_, err = d.pool.Exec(ctx, `
		INSERT INTO roster (roster_date, id, locked, tree)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (roster_date) DO UPDATE SET id = $2, locked = $3, tree = $4
	`, tree.Date, tree.ID, tree.Locked, raw)
	if err != nil {
		return fmt.Errorf("failed to save roster: %w", err)
	}
	return nil
}

// GetTemplate retrieves a shift template by id.
func (d *DB) GetTemplate(ctx context.Context, id string) (*model.ShiftTemplate, error) {
	var t model.ShiftTemplate
	var departmentID, subDepartmentID *string
	var raw []byte

	err := d.pool.QueryRow(ctx, `
		SELECT id, name, department_id, sub_department_id, range_start, range_end, groups
		FROM shift_template WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &departmentID, &subDepartmentID, &t.RangeStart, &t.RangeEnd, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NewNotFound("template", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query template: %w", err)
	}

	if departmentID != nil {
		t.DepartmentID = *departmentID
	}
	if subDepartmentID != nil {
		t.SubDepartmentID = *subDepartmentID
	}
	if err := json.Unmarshal(raw, &t.Groups); err != nil {
		return nil, fmt.Errorf("failed to decode template groups: %w", err)
	}

	return &t, nil
}

// ListTemplates retrieves all shift templates.
func (d *DB) ListTemplates(ctx context.Context) ([]model.ShiftTemplate, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, department_id, sub_department_id, range_start, range_end, groups
		FROM shift_template ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var templates []model.ShiftTemplate
	for rows.Next() {
		var t model.ShiftTemplate
		var departmentID, subDepartmentID *string
		var raw []byte
		if err := rows.Scan(&t.ID, &t.Name, &departmentID, &subDepartmentID, &t.RangeStart, &t.RangeEnd, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		if departmentID != nil {
			t.DepartmentID = *departmentID
		}
		if subDepartmentID != nil {
			t.SubDepartmentID = *subDepartmentID
		}
		if err := json.Unmarshal(raw, &t.Groups); err != nil {
			return nil, fmt.Errorf("failed to decode template groups: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating templates: %w", err)
	}

	return templates, nil
}

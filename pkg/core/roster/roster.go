// Package roster maintains the published Group → Subgroup → Shift tree
// for a date, including template instantiation and the display-only
// collapse flags.
package roster

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tmccall/roster-admin/pkg/core/model"
)

// Subgroup is a leaf container of shifts inside a roster group.
type Subgroup struct {
	ID        string
	Name      string
	Collapsed bool
	Shifts    []model.Shift
}

// Group is a top-level roster grouping.
type Group struct {
	ID        string
	Name      string
	Collapsed bool
	Subgroups []Subgroup
}

// Tree is the published roster for a single date. Locked is the advisory
// roster-wide edit lock consulted by the edit predicates; it is a single
// flag, not a reentrant lock.
type Tree struct {
	ID     string
	Date   time.Time
	Locked bool
	Groups []Group
}

// Empty reports whether the tree carries any shifts.
func (t *Tree) Empty() bool {
	for _, g := range t.Groups {
		for _, sg := range g.Subgroups {
			if len(sg.Shifts) > 0 {
				return false
			}
		}
	}
	return true
}

// FindShift returns a pointer to the shift with the given id, or nil.
func (t *Tree) FindShift(shiftID string) *model.Shift {
	for gi := range t.Groups {
		for si := range t.Groups[gi].Subgroups {
			shifts := t.Groups[gi].Subgroups[si].Shifts
			for i := range shifts {
				if shifts[i].ID == shiftID {
					return &shifts[i]
				}
			}
		}
	}
	return nil
}

// Shifts returns every shift in the tree, groups in order.
func (t *Tree) Shifts() []model.Shift {
	var out []model.Shift
	for _, g := range t.Groups {
		for _, sg := range g.Subgroups {
			out = append(out, sg.Shifts...)
		}
	}
	return out
}

// CollapseAll sets the collapsed display flag on every node. Display state
// only: shift data is never touched, and the roster lock is not consulted.
// Idempotent.
func (t *Tree) CollapseAll() {
	t.setCollapsed(true)
}

// ExpandAll clears the collapsed display flag on every node. Idempotent.
func (t *Tree) ExpandAll() {
	t.setCollapsed(false)
}

func (t *Tree) setCollapsed(collapsed bool) {
	for gi := range t.Groups {
		t.Groups[gi].Collapsed = collapsed
		for si := range t.Groups[gi].Subgroups {
			t.Groups[gi].Subgroups[si].Collapsed = collapsed
		}
	}
}

// Instantiate builds a fresh roster tree for a date from a template. Every
// template shift becomes a concrete Active shift on that date with a new
// id; draft-flagged template shifts stay drafts and are excluded from
// bidding by the eligibility rules.
func Instantiate(template *model.ShiftTemplate, date time.Time) (*Tree, error) {
	if template == nil {
		return nil, fmt.Errorf("template is required")
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	tree := &Tree{
		ID:   uuid.New().String(),
		Date: day,
	}

	for _, tg := range template.Groups {
		group := Group{
			ID:   uuid.New().String(),
			Name: tg.Name,
		}
		for _, tsg := range tg.Subgroups {
			subgroup := Subgroup{
				ID:   uuid.New().String(),
				Name: tsg.Name,
			}
			for _, ts := range tsg.Shifts {
				subgroup.Shifts = append(subgroup.Shifts, model.Shift{
					ID:              uuid.New().String(),
					Date:            day,
					StartTime:       ts.StartTime,
					EndTime:         ts.EndTime,
					BreakMinutes:    ts.BreakMinutes,
					DepartmentID:    template.DepartmentID,
					SubDepartmentID: template.SubDepartmentID,
					RoleID:          ts.RoleID,
					RoleName:        ts.RoleName,
					Level:           ts.Level,
					Status:          model.ShiftActive,
					Draft:           ts.Draft,
				})
			}
			group.Subgroups = append(group.Subgroups, subgroup)
		}
		tree.Groups = append(tree.Groups, group)
	}

	return tree, nil
}

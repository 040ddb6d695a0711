package model

import (
	"fmt"
	"time"
)

// ShiftStatus is the operational status of a shift instance. The string
// values are the persisted wire form and must not change.
type ShiftStatus string

const (
	ShiftActive    ShiftStatus = "Active"
	ShiftCompleted ShiftStatus = "Completed"
	ShiftCancelled ShiftStatus = "Cancelled"
	ShiftNoShow    ShiftStatus = "No-Show"
	ShiftSwapped   ShiftStatus = "Swapped"
)

func (s ShiftStatus) IsValid() bool {
	switch s {
	case ShiftActive, ShiftCompleted, ShiftCancelled, ShiftNoShow, ShiftSwapped:
		return true
	}
	return false
}

// IsTerminal reports whether the status is an archival state. Archived
// shifts are never deleted, only status-transitioned, so every non-Active
// status is terminal.
func (s ShiftStatus) IsTerminal() bool {
	return s != ShiftActive
}

// ParseShiftStatus converts a persisted string to a ShiftStatus, rejecting
// unknown values.
func ParseShiftStatus(raw string) (ShiftStatus, error) {
	s := ShiftStatus(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown shift status %q", raw)
	}
	return s, nil
}

// Shift is a concrete shift instance on a date.
type Shift struct {
	ID              string
	Date            time.Time
	StartTime       string // clock time, "15:04"
	EndTime         string
	BreakMinutes    int
	DepartmentID    string
	SubDepartmentID string
	RoleID          string
	RoleName        string
	Level           RemunerationLevel
	EmployeeID      string // empty = unassigned; at most one assignee
	Status          ShiftStatus
	Draft           bool
}

// Assigned reports whether the shift has an assignee.
func (s *Shift) Assigned() bool {
	return s.EmployeeID != ""
}

// TemplateShift is one shift definition inside a template subgroup.
type TemplateShift struct {
	ID           string
	StartTime    string
	EndTime      string
	BreakMinutes int
	RoleID       string
	RoleName     string
	Level        RemunerationLevel
	Draft        bool
}

// TemplateSubgroup groups template shifts under a template group.
type TemplateSubgroup struct {
	ID     string
	Name   string
	Shifts []TemplateShift
}

// TemplateGroup is a top-level grouping inside a shift template.
type TemplateGroup struct {
	ID        string
	Name      string
	Subgroups []TemplateSubgroup
}

// ShiftTemplate is a reusable blueprint instantiated onto dates to produce
// concrete rosters.
type ShiftTemplate struct {
	ID              string
	Name            string
	DepartmentID    string
	SubDepartmentID string
	RangeStart      time.Time
	RangeEnd        time.Time
	Groups          []TemplateGroup
}

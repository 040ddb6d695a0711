package model

import "time"

// RemunerationLevel is an ordinal pay tier attached to roles and shifts.
// Higher values outrank lower ones.
type RemunerationLevel int

const (
	LevelBronze RemunerationLevel = 1
	LevelSilver RemunerationLevel = 2
	LevelGold   RemunerationLevel = 3
)

func (l RemunerationLevel) String() string {
	switch l {
	case LevelGold:
		return "GOLD"
	case LevelSilver:
		return "SILVER"
	case LevelBronze:
		return "BRONZE"
	}
	return "UNKNOWN"
}

func (l RemunerationLevel) IsValid() bool {
	return l == LevelBronze || l == LevelSilver || l == LevelGold
}

// Organization is the root of the containment tree.
type Organization struct {
	ID   string
	Name string
}

// Department belongs to exactly one organization.
type Department struct {
	ID             string
	OrganizationID string
	Name           string
}

// SubDepartment belongs to exactly one department.
type SubDepartment struct {
	ID           string
	DepartmentID string
	Name         string
}

// Role is a named position, optionally scoped to a department or
// sub-department, with a default remuneration level.
type Role struct {
	ID              string
	Name            string
	DepartmentID    string // empty = organization-wide
	SubDepartmentID string // empty = department-wide
	DefaultLevel    RemunerationLevel
}

// AvailabilityWindow is a time window on a specific date during which an
// employee is available to work.
type AvailabilityWindow struct {
	Date  time.Time
	Start string // clock time, "15:04"
	End   string
}

// Employee is a rostered staff member.
type Employee struct {
	ID           string
	FirstName    string
	LastName     string
	RoleIDs      []string
	Skills       []string
	Availability []AvailabilityWindow
	Active       bool
}

// FullName returns the employee's display name.
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// HasRole reports whether the employee holds the given role.
func (e *Employee) HasRole(roleID string) bool {
	for _, id := range e.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

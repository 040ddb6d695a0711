package calendar

import "github.com/tmccall/roster-admin/pkg/core/model"

// DayEntry pairs a shift with the roster group it belongs to, for compact
// multi-shift day cells.
type DayEntry struct {
	Shift     model.Shift
	GroupName string
}

// RoleGroup is the set of entries for one role on one day.
type RoleGroup struct {
	RoleName string
	Entries  []DayEntry
}

// GroupByRole groups a day's entries by role name, preserving first-seen
// order of roles and of entries within a role.
func GroupByRole(entries []DayEntry) []RoleGroup {
	var groups []RoleGroup
	index := make(map[string]int)

	for _, entry := range entries {
		name := entry.Shift.RoleName
		i, seen := index[name]
		if !seen {
			index[name] = len(groups)
			groups = append(groups, RoleGroup{RoleName: name})
			i = len(groups) - 1
		}
		groups[i].Entries = append(groups[i].Entries, entry)
	}

	return groups
}

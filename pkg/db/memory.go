package db

import (
	"context"
	"sync"
	"time"

	"github.com/tmccall/roster-admin/pkg/core/model"
	"github.com/tmccall/roster-admin/pkg/core/roster"
)

// MemoryStore is the authoritative in-memory domain store. Commands run
// against it synchronously; reads hand out copies so no caller holds an
// independent mutable view of a domain entity.
type MemoryStore struct {
	mu        sync.RWMutex
	shifts    map[string]model.Shift
	openBids  map[string]model.OpenBid
	bids      map[string]model.EmployeeBid
	swaps     map[string]model.SwapRequest
	approvals map[string]model.SwapApproval
	rosters   map[string]roster.Tree // keyed by date "2006-01-02"
	templates map[string]model.ShiftTemplate
	employees map[string]model.Employee
	roles     map[string]model.Role
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shifts:    make(map[string]model.Shift),
		openBids:  make(map[string]model.OpenBid),
		bids:      make(map[string]model.EmployeeBid),
		swaps:     make(map[string]model.SwapRequest),
		approvals: make(map[string]model.SwapApproval),
		rosters:   make(map[string]roster.Tree),
		templates: make(map[string]model.ShiftTemplate),
		employees: make(map[string]model.Employee),
		roles:     make(map[string]model.Role),
	}
}

func dateKey(date time.Time) string {
	return date.Format("2006-01-02")
}

// GetShift returns a copy of the shift with the given id.
func (m *MemoryStore) GetShift(ctx context.Context, id string) (*model.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	shift, ok := m.shifts[id]
	if !ok {
		return nil, model.NewNotFound("shift", id)
	}
	return &shift, nil
}

// ListShiftsByDateRange returns every shift dated within [start, end].
func (m *MemoryStore) ListShiftsByDateRange(ctx context.Context, start, end time.Time) ([]model.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Shift
	for _, shift := range m.shifts {
		if !shift.Date.Before(start) && !shift.Date.After(end) {
			out = append(out, shift)
		}
	}
	return out, nil
}

// CreateShift stores a new shift.
func (m *MemoryStore) CreateShift(ctx context.Context, shift *model.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts[shift.ID] = *shift
	return nil
}

// UpdateShift replaces an existing shift.
func (m *MemoryStore) UpdateShift(ctx context.Context, shift *model.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shifts[shift.ID]; !ok {
		return model.NewNotFound("shift", shift.ID)
	}
	m.shifts[shift.ID] = *shift
	return nil
}

// GetOpenBid returns a copy of the open bid with the given id.
func (m *MemoryStore) GetOpenBid(ctx context.Context, id string) (*model.OpenBid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	openBid, ok := m.openBids[id]
	if !ok {
		return nil, model.NewNotFound("open bid", id)
	}
	return &openBid, nil
}

// GetOpenBidByShift returns the open bid wrapping the given shift, if any.
func (m *MemoryStore) GetOpenBidByShift(ctx context.Context, shiftID string) (*model.OpenBid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, openBid := range m.openBids {
		if openBid.ShiftID == shiftID {
			ob := openBid
			return &ob, nil
		}
	}
	return nil, model.NewNotFound("open bid for shift", shiftID)
}

// ListOpenBids returns all open bid windows.
func (m *MemoryStore) ListOpenBids(ctx context.Context) ([]model.OpenBid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.OpenBid, 0, len(m.openBids))
	for _, openBid := range m.openBids {
		out = append(out, openBid)
	}
	return out, nil
}

// CreateOpenBid stores a new open bid window.
func (m *MemoryStore) CreateOpenBid(ctx context.Context, openBid *model.OpenBid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openBids[openBid.ID] = *openBid
	return nil
}

// UpdateOpenBid replaces an existing open bid window.
func (m *MemoryStore) UpdateOpenBid(ctx context.Context, openBid *model.OpenBid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.openBids[openBid.ID]; !ok {
		return model.NewNotFound("open bid", openBid.ID)
	}
	m.openBids[openBid.ID] = *openBid
	return nil
}

// GetEmployeeBid returns a copy of the bid with the given id.
func (m *MemoryStore) GetEmployeeBid(ctx context.Context, id string) (*model.EmployeeBid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bid, ok := m.bids[id]
	if !ok {
		return nil, model.NewNotFound("bid", id)
	}
	return &bid, nil
}

// ListEmployeeBids returns all employee bids.
func (m *MemoryStore) ListEmployeeBids(ctx context.Context) ([]model.EmployeeBid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.EmployeeBid, 0, len(m.bids))
	for _, bid := range m.bids {
		out = append(out, bid)
	}
	return out, nil
}

// ListBidsForOpenBid returns every bid on the given open bid window.
func (m *MemoryStore) ListBidsForOpenBid(ctx context.Context, openBidID string) ([]model.EmployeeBid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.EmployeeBid
	for _, bid := range m.bids {
		if bid.OpenBidID == openBidID {
			out = append(out, bid)
		}
	}
	return out, nil
}

// CreateEmployeeBid stores a new bid.
func (m *MemoryStore) CreateEmployeeBid(ctx context.Context, bid *model.EmployeeBid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bids[bid.ID] = *bid
	return nil
}

// UpdateEmployeeBid replaces an existing bid.
func (m *MemoryStore) UpdateEmployeeBid(ctx context.Context, bid *model.EmployeeBid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bids[bid.ID]; !ok {
		return model.NewNotFound("bid", bid.ID)
	}
	m.bids[bid.ID] = *bid
	return nil
}

// GetSwapRequest returns a copy of the swap request with the given id.
func (m *MemoryStore) GetSwapRequest(ctx context.Context, id string) (*model.SwapRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	request, ok := m.swaps[id]
	if !ok {
		return nil, model.NewNotFound("swap request", id)
	}
	return &request, nil
}

// ListSwapRequests returns all swap requests.
func (m *MemoryStore) ListSwapRequests(ctx context.Context) ([]model.SwapRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.SwapRequest, 0, len(m.swaps))
	for _, request := range m.swaps {
		out = append(out, request)
	}
	return out, nil
}

// CreateSwapRequest stores a new swap request.
func (m *MemoryStore) CreateSwapRequest(ctx context.Context, request *model.SwapRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.swaps[request.ID] = *request
	return nil
}

// UpdateSwapRequest replaces an existing swap request.
func (m *MemoryStore) UpdateSwapRequest(ctx context.Context, request *model.SwapRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.swaps[request.ID]; !ok {
		return model.NewNotFound("swap request", request.ID)
	}
	m.swaps[request.ID] = *request
	return nil
}

// CreateSwapApproval stores a swap decision record.
func (m *MemoryStore) CreateSwapApproval(ctx context.Context, approval *model.SwapApproval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approvals[approval.ID] = *approval
	return nil
}

// ApplyBidApproval writes the bid, the shift and the bid window under one
// lock hold. Every target is checked before anything is written, so a
// missing row leaves the store unchanged.
func (m *MemoryStore) ApplyBidApproval(ctx context.Context, bid *model.EmployeeBid, shift *model.Shift, openBid *model.OpenBid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shifts[shift.ID]; !ok {
		return model.NewNotFound("shift", shift.ID)
	}
	if _, ok := m.openBids[openBid.ID]; !ok {
		return model.NewNotFound("open bid", openBid.ID)
	}
	m.bids[bid.ID] = *bid
	m.shifts[shift.ID] = *shift
	m.openBids[openBid.ID] = *openBid
	return nil
}

// ApplySwapApproval writes the resolved request, the decision record and
// both exchanged shifts under one lock hold, checking every target first.
func (m *MemoryStore) ApplySwapApproval(ctx context.Context, request *model.SwapRequest, approval *model.SwapApproval, requesterShift, requestedShift *model.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.swaps[request.ID]; !ok {
		return model.NewNotFound("swap request", request.ID)
	}
	if _, ok := m.shifts[requesterShift.ID]; !ok {
		return model.NewNotFound("shift", requesterShift.ID)
	}
	if _, ok := m.shifts[requestedShift.ID]; !ok {
		return model.NewNotFound("shift", requestedShift.ID)
	}
	m.swaps[request.ID] = *request
	m.approvals[approval.ID] = *approval
	m.shifts[requesterShift.ID] = *requesterShift
	m.shifts[requestedShift.ID] = *requestedShift
	return nil
}

// GetRosterByDate returns a copy of the roster tree for the date.
func (m *MemoryStore) GetRosterByDate(ctx context.Context, date time.Time) (*roster.Tree, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tree, ok := m.rosters[dateKey(date)]
	if !ok {
		return nil, model.NewNotFound("roster", dateKey(date))
	}
	copied := copyTree(tree)
	return &copied, nil
}

// SaveRoster stores the roster tree under its date, replacing any
// previous tree for that date.
func (m *MemoryStore) SaveRoster(ctx context.Context, tree *roster.Tree) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rosters[dateKey(tree.Date)] = copyTree(*tree)
	return nil
}

// GetTemplate returns a copy of the template with the given id.
func (m *MemoryStore) GetTemplate(ctx context.Context, id string) (*model.ShiftTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	template, ok := m.templates[id]
	if !ok {
		return nil, model.NewNotFound("template", id)
	}
	return &template, nil
}

// ListTemplates returns all shift templates.
func (m *MemoryStore) ListTemplates(ctx context.Context) ([]model.ShiftTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.ShiftTemplate, 0, len(m.templates))
	for _, template := range m.templates {
		out = append(out, template)
	}
	return out, nil
}

// PutTemplate stores a template. Templates are authored out of band, so
// this sits outside the RosterStore interface.
func (m *MemoryStore) PutTemplate(template *model.ShiftTemplate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[template.ID] = *template
}

// GetEmployee returns a copy of the employee with the given id.
func (m *MemoryStore) GetEmployee(ctx context.Context, id string) (*model.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	employee, ok := m.employees[id]
	if !ok {
		return nil, model.NewNotFound("employee", id)
	}
	return &employee, nil
}

// ListEmployees returns all employees.
func (m *MemoryStore) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Employee, 0, len(m.employees))
	for _, employee := range m.employees {
		out = append(out, employee)
	}
	return out, nil
}

// PutEmployee stores an employee record.
func (m *MemoryStore) PutEmployee(employee *model.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[employee.ID] = *employee
}

// GetRole returns a copy of the role with the given id.
func (m *MemoryStore) GetRole(ctx context.Context, id string) (*model.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	role, ok := m.roles[id]
	if !ok {
		return nil, model.NewNotFound("role", id)
	}
	return &role, nil
}

// ListRoles returns all role records.
func (m *MemoryStore) ListRoles(ctx context.Context) ([]model.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Role, 0, len(m.roles))
	for _, role := range m.roles {
		out = append(out, role)
	}
	return out, nil
}

// PutRole stores a role record.
func (m *MemoryStore) PutRole(role *model.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[role.ID] = *role
}

// copyTree deep-copies the group/subgroup/shift slices so callers never
// share backing arrays with the store.
func copyTree(tree roster.Tree) roster.Tree {
	out := tree
	out.Groups = make([]roster.Group, len(tree.Groups))
	for gi, group := range tree.Groups {
		copied := group
		copied.Subgroups = make([]roster.Subgroup, len(group.Subgroups))
		for si, subgroup := range group.Subgroups {
			sub := subgroup
			sub.Shifts = make([]model.Shift, len(subgroup.Shifts))
			copy(sub.Shifts, subgroup.Shifts)
			copied.Subgroups[si] = sub
		}
		out.Groups[gi] = copied
	}
	return out
}

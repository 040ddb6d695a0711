package db

import (
	"context"
	"time"

	"github.com/tmccall/roster-admin/pkg/core/model"
	"github.com/tmccall/roster-admin/pkg/core/roster"
)

// ShiftStore defines shift persistence operations.
type ShiftStore interface {
	GetShift(ctx context.Context, id string) (*model.Shift, error)
	ListShiftsByDateRange(ctx context.Context, start, end time.Time) ([]model.Shift, error)
	CreateShift(ctx context.Context, shift *model.Shift) error
	UpdateShift(ctx context.Context, shift *model.Shift) error
}

// BidStore defines open-bid and employee-bid persistence operations.
type BidStore interface {
	GetOpenBid(ctx context.Context, id string) (*model.OpenBid, error)
	GetOpenBidByShift(ctx context.Context, shiftID string) (*model.OpenBid, error)
	ListOpenBids(ctx context.Context) ([]model.OpenBid, error)
	CreateOpenBid(ctx context.Context, openBid *model.OpenBid) error
	UpdateOpenBid(ctx context.Context, openBid *model.OpenBid) error

	GetEmployeeBid(ctx context.Context, id string) (*model.EmployeeBid, error)
	ListEmployeeBids(ctx context.Context) ([]model.EmployeeBid, error)
	ListBidsForOpenBid(ctx context.Context, openBidID string) ([]model.EmployeeBid, error)
	CreateEmployeeBid(ctx context.Context, bid *model.EmployeeBid) error
	UpdateEmployeeBid(ctx context.Context, bid *model.EmployeeBid) error

	// ApplyBidApproval persists the bid, the shift assignment and the bid
	// window as one atomic write. The bid row is inserted when new and
	// replaced when it already exists; a failure leaves all three rows
	// untouched.
	ApplyBidApproval(ctx context.Context, bid *model.EmployeeBid, shift *model.Shift, openBid *model.OpenBid) error
}

// SwapStore defines swap request persistence operations.
type SwapStore interface {
	GetSwapRequest(ctx context.Context, id string) (*model.SwapRequest, error)
	ListSwapRequests(ctx context.Context) ([]model.SwapRequest, error)
	CreateSwapRequest(ctx context.Context, request *model.SwapRequest) error
	UpdateSwapRequest(ctx context.Context, request *model.SwapRequest) error
	CreateSwapApproval(ctx context.Context, approval *model.SwapApproval) error

	// ApplySwapApproval persists the resolved request, the decision record
	// and both exchanged shifts as one atomic write; a failure leaves all
	// four rows untouched.
	ApplySwapApproval(ctx context.Context, request *model.SwapRequest, approval *model.SwapApproval, requesterShift, requestedShift *model.Shift) error
}

// RosterStore defines roster tree and template persistence operations.
type RosterStore interface {
	GetRosterByDate(ctx context.Context, date time.Time) (*roster.Tree, error)
	SaveRoster(ctx context.Context, tree *roster.Tree) error
	GetTemplate(ctx context.Context, id string) (*model.ShiftTemplate, error)
	ListTemplates(ctx context.Context) ([]model.ShiftTemplate, error)
}

// EmployeeStore defines employee lookup operations.
type EmployeeStore interface {
	GetEmployee(ctx context.Context, id string) (*model.Employee, error)
	ListEmployees(ctx context.Context) ([]model.Employee, error)
}

// RoleStore defines role lookup operations. Role records carry the
// department scoping the eligibility checks compare shifts against.
type RoleStore interface {
	GetRole(ctx context.Context, id string) (*model.Role, error)
	ListRoles(ctx context.Context) ([]model.Role, error)
}

// Store is the full persistence surface the engine runs against.
type Store interface {
	ShiftStore
	BidStore
	SwapStore
	RosterStore
	EmployeeStore
	RoleStore
}

// Package eligibility holds the stateless predicates consulted before
// every mutating action. Predicates answer with a Decision rather than an
// error: ordinary ineligibility is expected and frequent. Only a missing
// required reference is treated as a caller defect.
package eligibility

import (
	"fmt"

	"github.com/tmccall/roster-admin/pkg/core/model"
)

// Reason codes surfaced to callers alongside a negative decision.
const (
	ReasonRoleMismatch       = "role_mismatch"
	ReasonDepartmentMismatch = "department_mismatch"
	ReasonInactiveEmployee   = "inactive_employee"
	ReasonDuplicateBid       = "duplicate_bid"
	ReasonBidWindowClosed    = "openbid_not_open"
	ReasonBidRejected        = "bid_rejected"
	ReasonRequestResolved    = "request_resolved"
	ReasonShiftCancelled     = "shift_cancelled"
	ReasonShiftArchived      = "shift_archived"
	ReasonRosterLocked       = "roster_locked"
	ReasonDraftShift         = "draft_shift"
)

// Decision is the outcome of an eligibility check. Reason is empty when
// the action is allowed.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Error converts a negative decision into a ValidationError. Allowed
// decisions return nil.
func (d Decision) Error() error {
	if d.Allowed {
		return nil
	}
	return &ValidationError{Reason: d.Reason}
}

// ValidationError is the expected, recoverable failure of an eligibility
// predicate. No state is mutated when it is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("not eligible: %s", e.Reason)
}

// CanExpressInterest decides whether an employee may bid on the shift
// behind an open bid. roles holds the employee's resolved role records;
// a role id with no stored record scopes to the whole organization.
// existing must contain the employee's bids for the same open bid (any
// open bid is fine; non-matching entries are ignored).
func CanExpressInterest(employee *model.Employee, roles []model.Role, shift *model.Shift, openBid *model.OpenBid, existing []model.EmployeeBid) (Decision, error) {
	if employee == nil || shift == nil || openBid == nil {
		return Decision{}, fmt.Errorf("employee, shift and open bid are required")
	}

	if !employee.Active {
		return deny(ReasonInactiveEmployee), nil
	}
	if shift.Draft {
		return deny(ReasonDraftShift), nil
	}
	if !openBid.Status.AcceptsBids() {
		return deny(ReasonBidWindowClosed), nil
	}
	if shift.RoleID != "" && !employee.HasRole(shift.RoleID) {
		return deny(ReasonRoleMismatch), nil
	}
	if shift.DepartmentID != "" && !coversDepartment(roles, shift.DepartmentID, shift.SubDepartmentID) {
		return deny(ReasonDepartmentMismatch), nil
	}

	// Duplicate-bid prevention: one live bid per employee per window.
	for _, bid := range existing {
		if bid.OpenBidID != openBid.ID || bid.EmployeeID != employee.ID {
			continue
		}
		if bid.Status != model.RequestRejected {
			return deny(ReasonDuplicateBid), nil
		}
	}

	return allow(), nil
}

// coversDepartment reports whether any held role places the employee in
// the shift's department. A role with no department scope is
// organization-wide; an empty role list means no scoping records exist
// and is treated the same.
func coversDepartment(roles []model.Role, departmentID, subDepartmentID string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if role.DepartmentID == "" {
			return true
		}
		if role.DepartmentID != departmentID {
			continue
		}
		if role.SubDepartmentID == "" || subDepartmentID == "" || role.SubDepartmentID == subDepartmentID {
			return true
		}
	}
	return false
}

// CanWithdrawBid decides whether a bid may still be withdrawn. Rejected is
// the only state that blocks withdrawal; it is terminal.
func CanWithdrawBid(bid *model.EmployeeBid) (Decision, error) {
	if bid == nil {
		return Decision{}, fmt.Errorf("bid is required")
	}
	if bid.Status == model.RequestRejected {
		return deny(ReasonBidRejected), nil
	}
	return allow(), nil
}

// CanApproveSwap decides whether a pending swap request may be approved.
// Both referenced shifts must still exist (callers resolve them first) and
// neither may be cancelled.
func CanApproveSwap(request *model.SwapRequest, requesterShift, requestedShift *model.Shift) (Decision, error) {
	if request == nil || requesterShift == nil || requestedShift == nil {
		return Decision{}, fmt.Errorf("swap request and both shifts are required")
	}

	if request.Status != model.RequestPending {
		return deny(ReasonRequestResolved), nil
	}
	if requesterShift.Status == model.ShiftCancelled || requestedShift.Status == model.ShiftCancelled {
		return deny(ReasonShiftCancelled), nil
	}

	return allow(), nil
}

// CanEditShiftTimes decides whether a shift's times may be edited. The
// roster-wide lock is advisory but binding for edits; archived shifts are
// immutable.
func CanEditShiftTimes(shift *model.Shift, rosterLocked bool) (Decision, error) {
	if shift == nil {
		return Decision{}, fmt.Errorf("shift is required")
	}

	if rosterLocked {
		return deny(ReasonRosterLocked), nil
	}
	if shift.Status == model.ShiftCompleted || shift.Status == model.ShiftCancelled {
		return deny(ReasonShiftArchived), nil
	}

	return allow(), nil
}

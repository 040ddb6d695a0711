// Package workflow implements the bid, swap and shift state machines. The
// functions here mutate plain in-memory entities and enforce the terminal
// state rules; loading and persisting those entities is the services
// layer's job.
package workflow

import (
	"fmt"
	"time"

	"github.com/tmccall/roster-admin/pkg/core/eligibility"
	"github.com/tmccall/roster-admin/pkg/core/model"
)

// WithdrawnComment marks a bid that was rejected by its own author rather
// than by a manager.
const WithdrawnComment = "withdrawn"

// ApproveBid moves a pending bid to approved. The approval is a single
// logical mutation: the employee is assigned to the shift and the open bid
// window is marked Filled in the same call. Sibling pending bids are left
// untouched; they fail their own approval later because the window is no
// longer open (lazy invalidation).
func ApproveBid(bid *model.EmployeeBid, openBid *model.OpenBid, shift *model.Shift, now time.Time) error {
	if bid == nil || openBid == nil || shift == nil {
		return fmt.Errorf("bid, open bid and shift are required")
	}
	if bid.OpenBidID != openBid.ID {
		return fmt.Errorf("bid %s does not belong to open bid %s", bid.ID, openBid.ID)
	}
	if openBid.ShiftID != shift.ID {
		return fmt.Errorf("open bid %s does not wrap shift %s", openBid.ID, shift.ID)
	}

	if bid.Status.IsTerminal() {
		return fmt.Errorf("bid %s is %s: %w", bid.ID, bid.Status, model.ErrInvalidTransition)
	}

	// The window decides, not the bid count: a previous approval closed it.
	if !openBid.Status.AcceptsBids() {
		return (&eligibility.ValidationError{Reason: eligibility.ReasonBidWindowClosed})
	}

	resolved := now
	bid.Status = model.RequestApproved
	bid.ResolvedAt = &resolved
	shift.EmployeeID = bid.EmployeeID
	openBid.Status = model.OpenBidFilled

	return nil
}

// RejectBid moves a pending bid to rejected. No other state changes.
func RejectBid(bid *model.EmployeeBid, comment string, now time.Time) error {
	if bid == nil {
		return fmt.Errorf("bid is required")
	}
	if bid.Status.IsTerminal() {
		return fmt.Errorf("bid %s is %s: %w", bid.ID, bid.Status, model.ErrInvalidTransition)
	}

	resolved := now
	bid.Status = model.RequestRejected
	bid.ResolvedAt = &resolved
	if comment != "" {
		bid.Comment = comment
	}

	return nil
}

// WithdrawBid lets the bidding employee take their bid back. A withdrawn
// bid is recorded as rejected to preserve audit history, never deleted.
// Withdrawing an already approved bid releases the shift and reopens the
// bidding window.
func WithdrawBid(bid *model.EmployeeBid, openBid *model.OpenBid, shift *model.Shift, now time.Time) error {
	if bid == nil {
		return fmt.Errorf("bid is required")
	}

	decision, err := eligibility.CanWithdrawBid(bid)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return fmt.Errorf("bid %s is %s: %w", bid.ID, bid.Status, model.ErrInvalidTransition)
	}

	wasApproved := bid.Status == model.RequestApproved

	resolved := now
	bid.Status = model.RequestRejected
	bid.ResolvedAt = &resolved
	bid.Comment = WithdrawnComment

	if wasApproved {
		if openBid == nil || shift == nil {
			return fmt.Errorf("open bid and shift are required to withdraw an approved bid")
		}
		if shift.EmployeeID == bid.EmployeeID {
			shift.EmployeeID = ""
		}
		openBid.Status = model.OpenBidOpen
	}

	return nil
}

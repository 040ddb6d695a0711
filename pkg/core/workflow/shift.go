package workflow

import (
	"fmt"

	"github.com/tmccall/roster-admin/pkg/core/model"
)

// TransitionShift moves a shift to a new operational status. Active is the
// only state with outgoing transitions; every archival status is terminal.
// Shifts are archived by transition, never deleted.
func TransitionShift(shift *model.Shift, to model.ShiftStatus) error {
	if shift == nil {
		return fmt.Errorf("shift is required")
	}
	if !to.IsValid() {
		return fmt.Errorf("unknown shift status %q", to)
	}

	if shift.Status.IsTerminal() {
		return fmt.Errorf("shift %s is %s: %w", shift.ID, shift.Status, model.ErrInvalidTransition)
	}
	if to == model.ShiftActive {
		return fmt.Errorf("shift %s is already active: %w", shift.ID, model.ErrInvalidTransition)
	}

	shift.Status = to
	return nil
}

// CloseBidWindowForShift closes an open bid window whose shift was
// cancelled. Draft windows are left alone; a filled window stays filled
// for the audit trail.
func CloseBidWindowForShift(openBid *model.OpenBid) {
	if openBid == nil {
		return
	}
	if openBid.Status == model.OpenBidOpen || openBid.Status == model.OpenBidOffered {
		openBid.Status = model.OpenBidFilled
	}
}

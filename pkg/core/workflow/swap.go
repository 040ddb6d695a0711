package workflow

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tmccall/roster-admin/pkg/core/eligibility"
	"github.com/tmccall/roster-admin/pkg/core/model"
)

// ApproveSwap moves a pending swap request to approved, exchanges the two
// employees' assignments on the referenced shifts, and returns the
// decision record. The shifts keep their operational status; marking a
// shift Swapped is a separate archival step.
func ApproveSwap(request *model.SwapRequest, requesterShift, requestedShift *model.Shift, approverID string, now time.Time) (*model.SwapApproval, error) {
	if request == nil {
		return nil, fmt.Errorf("swap request is required")
	}
	if request.Status.IsTerminal() {
		return nil, fmt.Errorf("swap request %s is %s: %w", request.ID, request.Status, model.ErrInvalidTransition)
	}

	decision, err := eligibility.CanApproveSwap(request, requesterShift, requestedShift)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, decision.Error()
	}

	requesterShift.EmployeeID, requestedShift.EmployeeID = requestedShift.EmployeeID, requesterShift.EmployeeID

	resolved := now
	request.Status = model.RequestApproved
	request.ResolvedAt = &resolved

	return &model.SwapApproval{
		ID:            uuid.New().String(),
		SwapRequestID: request.ID,
		ApproverID:    approverID,
		ApprovedAt:    now,
	}, nil
}

// RejectSwap moves a pending swap request to rejected. The reason is
// optional but kept for audit when given.
func RejectSwap(request *model.SwapRequest, notes string, now time.Time) error {
	if request == nil {
		return fmt.Errorf("swap request is required")
	}
	if request.Status.IsTerminal() {
		return fmt.Errorf("swap request %s is %s: %w", request.ID, request.Status, model.ErrInvalidTransition)
	}

	resolved := now
	request.Status = model.RequestRejected
	request.ResolvedAt = &resolved
	if notes != "" {
		request.Notes = notes
	}

	return nil
}

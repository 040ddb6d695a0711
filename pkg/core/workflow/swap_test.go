package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmccall/roster-admin/pkg/core/eligibility"
	"github.com/tmccall/roster-admin/pkg/core/model"
)

func pendingSwap() *model.SwapRequest {
	return &model.SwapRequest{
		ID:               "swap-1",
		RequesterID:      "emp-a",
		RequesterShiftID: "shift-a",
		TargetEmployeeID: "emp-b",
		RequestedShiftID: "shift-b",
		Status:           model.RequestPending,
	}
}

func TestApproveSwap(t *testing.T) {
	request := pendingSwap()
	shiftA := &model.Shift{ID: "shift-a", EmployeeID: "emp-a", Status: model.ShiftActive}
	shiftB := &model.Shift{ID: "shift-b", EmployeeID: "emp-b", Status: model.ShiftActive}

	approval, err := ApproveSwap(request, shiftA, shiftB, "mgr-1", testNow)
	require.NoError(t, err)
	require.NotNil(t, approval)

	assert.Equal(t, "emp-b", shiftA.EmployeeID)
	assert.Equal(t, "emp-a", shiftB.EmployeeID)

	assert.Equal(t, model.RequestApproved, request.Status)
	require.NotNil(t, request.ResolvedAt)

	assert.NotEmpty(t, approval.ID)
	assert.Equal(t, "swap-1", approval.SwapRequestID)
	assert.Equal(t, "mgr-1", approval.ApproverID)
	assert.Equal(t, testNow, approval.ApprovedAt)

	// Shifts keep their operational status; Swapped is a separate archival
	// step.
	assert.Equal(t, model.ShiftActive, shiftA.Status)
	assert.Equal(t, model.ShiftActive, shiftB.Status)
}

func TestApproveSwapNilRefs(t *testing.T) {
	shiftA := &model.Shift{ID: "shift-a", EmployeeID: "emp-a", Status: model.ShiftActive}
	shiftB := &model.Shift{ID: "shift-b", EmployeeID: "emp-b", Status: model.ShiftActive}

	_, err := ApproveSwap(nil, shiftA, shiftB, "mgr-1", testNow)
	assert.Error(t, err)
	_, err = ApproveSwap(pendingSwap(), nil, shiftB, "mgr-1", testNow)
	assert.Error(t, err)
	_, err = ApproveSwap(pendingSwap(), shiftA, nil, "mgr-1", testNow)
	assert.Error(t, err)
}

func TestApproveSwapTerminal(t *testing.T) {
	request := pendingSwap()
	request.Status = model.RequestApproved
	shiftA := &model.Shift{ID: "shift-a", EmployeeID: "emp-a", Status: model.ShiftActive}
	shiftB := &model.Shift{ID: "shift-b", EmployeeID: "emp-b", Status: model.ShiftActive}

	_, err := ApproveSwap(request, shiftA, shiftB, "mgr-1", testNow)
	require.ErrorIs(t, err, model.ErrInvalidTransition)

	// Double-approval must not re-swap the assignments.
	assert.Equal(t, "emp-a", shiftA.EmployeeID)
	assert.Equal(t, "emp-b", shiftB.EmployeeID)
}

func TestApproveSwapCancelledShift(t *testing.T) {
	request := pendingSwap()
	shiftA := &model.Shift{ID: "shift-a", EmployeeID: "emp-a", Status: model.ShiftCancelled}
	shiftB := &model.Shift{ID: "shift-b", EmployeeID: "emp-b", Status: model.ShiftActive}

	_, err := ApproveSwap(request, shiftA, shiftB, "mgr-1", testNow)

	var validationErr *eligibility.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, eligibility.ReasonShiftCancelled, validationErr.Reason)

	assert.Equal(t, model.RequestPending, request.Status)
	assert.Equal(t, "emp-a", shiftA.EmployeeID)
	assert.Equal(t, "emp-b", shiftB.EmployeeID)
}

func TestRejectSwap(t *testing.T) {
	request := pendingSwap()

	err := RejectSwap(request, "coverage conflict", testNow)
	require.NoError(t, err)

	assert.Equal(t, model.RequestRejected, request.Status)
	assert.Equal(t, "coverage conflict", request.Notes)
	require.NotNil(t, request.ResolvedAt)
}

func TestRejectSwapNoNotes(t *testing.T) {
	request := pendingSwap()
	request.Notes = "earlier note"

	require.NoError(t, RejectSwap(request, "", testNow))
	assert.Equal(t, model.RequestRejected, request.Status)
	assert.Equal(t, "earlier note", request.Notes)
}

func TestRejectSwapTerminal(t *testing.T) {
	request := pendingSwap()
	request.Status = model.RequestRejected

	err := RejectSwap(request, "again", testNow)
	require.ErrorIs(t, err, model.ErrInvalidTransition)
}

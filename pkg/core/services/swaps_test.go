package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tmccall/roster-admin/pkg/core/eligibility"
	"github.com/tmccall/roster-admin/pkg/core/model"
	"github.com/tmccall/roster-admin/pkg/core/workflow"
	"github.com/tmccall/roster-admin/pkg/db"
)

// seedSwapContext stores two employees each assigned to their own shift.
func seedSwapContext(t *testing.T, store *db.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	store.PutEmployee(&model.Employee{ID: "emp-a", Active: true})
	store.PutEmployee(&model.Employee{ID: "emp-b", Active: true})
	require.NoError(t, store.CreateShift(ctx, &model.Shift{
		ID: "shift-a", Date: testDate, EmployeeID: "emp-a", Status: model.ShiftActive,
	}))
	require.NoError(t, store.CreateShift(ctx, &model.Shift{
		ID: "shift-b", Date: testDate, EmployeeID: "emp-b", Status: model.ShiftActive,
	}))
}

func TestRequestSwap(t *testing.T) {
	store := db.NewMemoryStore()
	seedSwapContext(t, store)
	ctx := context.Background()

	request, err := RequestSwap(ctx, store, zap.NewNop(), "emp-a", "shift-a", "emp-b", "shift-b", "childcare", "high")
	require.NoError(t, err)

	assert.NotEmpty(t, request.ID)
	assert.Equal(t, model.RequestPending, request.Status)
	assert.Equal(t, "childcare", request.Reason)
	assert.Equal(t, "high", request.Priority)

	// Requesting moves nothing.
	shiftA, err := store.GetShift(ctx, "shift-a")
	require.NoError(t, err)
	assert.Equal(t, "emp-a", shiftA.EmployeeID)
}

func TestRequestSwapWrongAssignments(t *testing.T) {
	store := db.NewMemoryStore()
	seedSwapContext(t, store)
	ctx := context.Background()

	_, err := RequestSwap(ctx, store, zap.NewNop(), "emp-b", "shift-a", "emp-b", "shift-b", "", "")
	assert.Error(t, err, "requester must hold the offered shift")

	_, err = RequestSwap(ctx, store, zap.NewNop(), "emp-a", "shift-a", "emp-x", "shift-b", "", "")
	assert.Error(t, err, "target must hold the requested shift")
}

func TestApproveSwap(t *testing.T) {
	store := db.NewMemoryStore()
	seedSwapContext(t, store)
	ctx := context.Background()

	request, err := RequestSwap(ctx, store, zap.NewNop(), "emp-a", "shift-a", "emp-b", "shift-b", "", "")
	require.NoError(t, err)

	result, err := ApproveSwap(ctx, store, zap.NewNop(), request.ID, "mgr-1")
	require.NoError(t, err)

	assert.Equal(t, model.RequestApproved, result.Request.Status)
	assert.Equal(t, "mgr-1", result.Approval.ApproverID)

	shiftA, err := store.GetShift(ctx, "shift-a")
	require.NoError(t, err)
	shiftB, err := store.GetShift(ctx, "shift-b")
	require.NoError(t, err)
	assert.Equal(t, "emp-b", shiftA.EmployeeID)
	assert.Equal(t, "emp-a", shiftB.EmployeeID)

	// Both shifts stay operational after the exchange.
	assert.Equal(t, model.ShiftActive, shiftA.Status)
	assert.Equal(t, model.ShiftActive, shiftB.Status)
}

func TestApproveSwapTwice(t *testing.T) {
	store := db.NewMemoryStore()
	seedSwapContext(t, store)
	ctx := context.Background()

	request, err := RequestSwap(ctx, store, zap.NewNop(), "emp-a", "shift-a", "emp-b", "shift-b", "", "")
	require.NoError(t, err)

	_, err = ApproveSwap(ctx, store, zap.NewNop(), request.ID, "mgr-1")
	require.NoError(t, err)

	_, err = ApproveSwap(ctx, store, zap.NewNop(), request.ID, "mgr-1")
	require.ErrorIs(t, err, model.ErrInvalidTransition)

	// Assignments are not swapped back by the failed second approval.
	shiftA, err := store.GetShift(ctx, "shift-a")
	require.NoError(t, err)
	assert.Equal(t, "emp-b", shiftA.EmployeeID)
}

func TestApproveSwapCancelledShift(t *testing.T) {
	store := db.NewMemoryStore()
	seedSwapContext(t, store)
	ctx := context.Background()

	request, err := RequestSwap(ctx, store, zap.NewNop(), "emp-a", "shift-a", "emp-b", "shift-b", "", "")
	require.NoError(t, err)

	// The requested shift is cancelled between request and approval.
	require.NoError(t, store.UpdateShift(ctx, &model.Shift{
		ID: "shift-b", Date: testDate, EmployeeID: "emp-b", Status: model.ShiftCancelled,
	}))

	_, err = ApproveSwap(ctx, store, zap.NewNop(), request.ID, "mgr-1")

	var validationErr *eligibility.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, eligibility.ReasonShiftCancelled, validationErr.Reason)

	// Still pending: the request can be rejected properly afterwards.
	stored, err := store.GetSwapRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, stored.Status)
}

func TestApproveSwapPersistenceFailureLeavesNoPartialState(t *testing.T) {
	store := db.NewMemoryStore()
	seedSwapContext(t, store)
	ctx := context.Background()

	request, err := RequestSwap(ctx, store, zap.NewNop(), "emp-a", "shift-a", "emp-b", "shift-b", "", "")
	require.NoError(t, err)

	flaky := &flakyStore{
		MemoryStore:          store,
		applySwapApprovalErr: errors.New("connection reset"),
	}

	_, err = ApproveSwap(ctx, flaky, zap.NewNop(), request.ID, "mgr-1")

	var persistenceErr *workflow.PersistenceError
	require.ErrorAs(t, err, &persistenceErr)

	// The exchange persists as one atomic write; a rejected write leaves
	// the request pending and both assignments in place.
	stored, err := store.GetSwapRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, stored.Status)

	shiftA, err := store.GetShift(ctx, "shift-a")
	require.NoError(t, err)
	assert.Equal(t, "emp-a", shiftA.EmployeeID)
	shiftB, err := store.GetShift(ctx, "shift-b")
	require.NoError(t, err)
	assert.Equal(t, "emp-b", shiftB.EmployeeID)
}

func TestRejectSwap(t *testing.T) {
	store := db.NewMemoryStore()
	seedSwapContext(t, store)
	ctx := context.Background()

	request, err := RequestSwap(ctx, store, zap.NewNop(), "emp-a", "shift-a", "emp-b", "shift-b", "", "")
	require.NoError(t, err)

	rejected, err := RejectSwap(ctx, store, zap.NewNop(), request.ID, "coverage conflict")
	require.NoError(t, err)
	assert.Equal(t, model.RequestRejected, rejected.Status)
	assert.Equal(t, "coverage conflict", rejected.Notes)

	// Assignments are untouched.
	shiftA, err := store.GetShift(ctx, "shift-a")
	require.NoError(t, err)
	assert.Equal(t, "emp-a", shiftA.EmployeeID)
}

func TestRejectSwapNoReason(t *testing.T) {
	store := db.NewMemoryStore()
	seedSwapContext(t, store)
	ctx := context.Background()

	request, err := RequestSwap(ctx, store, zap.NewNop(), "emp-a", "shift-a", "emp-b", "shift-b", "", "")
	require.NoError(t, err)

	// The reason is optional on rejection.
	rejected, err := RejectSwap(ctx, store, zap.NewNop(), request.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.RequestRejected, rejected.Status)
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tmccall/roster-admin/pkg/core/model"
	"github.com/tmccall/roster-admin/pkg/db"
)

var testDate = time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

// seedBiddableShift stores an active employee, an active shift and an open
// bidding window wrapping it, returning the store for further seeding.
func seedBiddableShift(t *testing.T, store *db.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	store.PutEmployee(&model.Employee{
		ID:      "emp-1",
		RoleIDs: []string{"nurse"},
		Active:  true,
	})
	require.NoError(t, store.CreateShift(ctx, &model.Shift{
		ID:        "shift-1",
		Date:      testDate,
		StartTime: "09:00",
		EndTime:   "17:00",
		RoleID:    "nurse",
		RoleName:  "Nurse",
		Status:    model.ShiftActive,
	}))
	require.NoError(t, store.CreateOpenBid(ctx, &model.OpenBid{
		ID:      "ob-1",
		ShiftID: "shift-1",
		Status:  model.OpenBidOpen,
	}))
}

func seedPendingBid(t *testing.T, store *db.MemoryStore, bidID, employeeID string) {
	t.Helper()
	require.NoError(t, store.CreateEmployeeBid(context.Background(), &model.EmployeeBid{
		ID:         bidID,
		OpenBidID:  "ob-1",
		EmployeeID: employeeID,
		Status:     model.RequestPending,
		CreatedAt:  testDate,
	}))
}

// flakyStore wraps the in-memory store and rejects selected writes, for
// exercising command rollback and failed persistence.
type flakyStore struct {
	*db.MemoryStore
	updateShiftErr       error
	applyBidApprovalErr  error
	applySwapApprovalErr error
}

func (f *flakyStore) UpdateShift(ctx context.Context, shift *model.Shift) error {
	if f.updateShiftErr != nil {
		return f.updateShiftErr
	}
	return f.MemoryStore.UpdateShift(ctx, shift)
}

func (f *flakyStore) ApplyBidApproval(ctx context.Context, bid *model.EmployeeBid, shift *model.Shift, openBid *model.OpenBid) error {
	if f.applyBidApprovalErr != nil {
		return f.applyBidApprovalErr
	}
	return f.MemoryStore.ApplyBidApproval(ctx, bid, shift, openBid)
}

func (f *flakyStore) ApplySwapApproval(ctx context.Context, request *model.SwapRequest, approval *model.SwapApproval, requesterShift, requestedShift *model.Shift) error {
	if f.applySwapApprovalErr != nil {
		return f.applySwapApprovalErr
	}
	return f.MemoryStore.ApplySwapApproval(ctx, request, approval, requesterShift, requestedShift)
}

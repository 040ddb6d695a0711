package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmccall/roster-admin/pkg/core/model"
	"github.com/tmccall/roster-admin/pkg/core/roster"
)

// The in-memory store must satisfy the full store surface.
var _ Store = (*MemoryStore)(nil)

func TestMemoryStoreCopyOnRead(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.CreateShift(ctx, &model.Shift{
		ID: "shift-1", Status: model.ShiftActive,
	}))

	first, err := store.GetShift(ctx, "shift-1")
	require.NoError(t, err)

	// Mutating the returned copy leaves the store untouched.
	first.EmployeeID = "emp-1"

	second, err := store.GetShift(ctx, "shift-1")
	require.NoError(t, err)
	assert.Empty(t, second.EmployeeID)
}

func TestMemoryStoreUpdateMissing(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.UpdateShift(ctx, &model.Shift{ID: "ghost"})
	assert.True(t, model.IsNotFound(err))

	err = store.UpdateOpenBid(ctx, &model.OpenBid{ID: "ghost"})
	assert.True(t, model.IsNotFound(err))

	err = store.UpdateEmployeeBid(ctx, &model.EmployeeBid{ID: "ghost"})
	assert.True(t, model.IsNotFound(err))

	err = store.UpdateSwapRequest(ctx, &model.SwapRequest{ID: "ghost"})
	assert.True(t, model.IsNotFound(err))
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.GetShift(ctx, "ghost")
	assert.True(t, model.IsNotFound(err))
	_, err = store.GetOpenBidByShift(ctx, "ghost")
	assert.True(t, model.IsNotFound(err))
	_, err = store.GetRosterByDate(ctx, time.Now())
	assert.True(t, model.IsNotFound(err))
	_, err = store.GetTemplate(ctx, "ghost")
	assert.True(t, model.IsNotFound(err))
	_, err = store.GetEmployee(ctx, "ghost")
	assert.True(t, model.IsNotFound(err))
	_, err = store.GetRole(ctx, "ghost")
	assert.True(t, model.IsNotFound(err))
}

func TestMemoryStoreRosterDeepCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	date := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	tree := &roster.Tree{
		ID:   "tree-1",
		Date: date,
		Groups: []roster.Group{
			{
				ID: "g-1",
				Subgroups: []roster.Subgroup{
					{ID: "sg-1", Shifts: []model.Shift{{ID: "shift-1", Status: model.ShiftActive}}},
				},
			},
		},
	}
	require.NoError(t, store.SaveRoster(ctx, tree))

	read, err := store.GetRosterByDate(ctx, date)
	require.NoError(t, err)

	// Mutating a node of the returned tree must not leak into the store.
	node := read.FindShift("shift-1")
	require.NotNil(t, node)
	node.EmployeeID = "emp-1"

	fresh, err := store.GetRosterByDate(ctx, date)
	require.NoError(t, err)
	fresh2 := fresh.FindShift("shift-1")
	require.NotNil(t, fresh2)
	assert.Empty(t, fresh2.EmployeeID)
}

func TestMemoryStoreApplyBidApproval(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.CreateShift(ctx, &model.Shift{ID: "shift-1", Status: model.ShiftActive}))
	require.NoError(t, store.CreateOpenBid(ctx, &model.OpenBid{
		ID: "ob-1", ShiftID: "shift-1", Status: model.OpenBidOpen,
	}))

	bid := &model.EmployeeBid{ID: "bid-1", OpenBidID: "ob-1", EmployeeID: "emp-1", Status: model.RequestApproved}
	shift := &model.Shift{ID: "shift-1", EmployeeID: "emp-1", Status: model.ShiftActive}
	openBid := &model.OpenBid{ID: "ob-1", ShiftID: "shift-1", Status: model.OpenBidFilled}

	require.NoError(t, store.ApplyBidApproval(ctx, bid, shift, openBid))

	stored, err := store.GetShift(ctx, "shift-1")
	require.NoError(t, err)
	assert.Equal(t, "emp-1", stored.EmployeeID)
	storedBid, err := store.GetEmployeeBid(ctx, "bid-1")
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, storedBid.Status)
}

func TestMemoryStoreApplyBidApprovalAllOrNothing(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// The shift exists but the window does not; nothing may be written.
	require.NoError(t, store.CreateShift(ctx, &model.Shift{ID: "shift-1", Status: model.ShiftActive}))

	bid := &model.EmployeeBid{ID: "bid-1", OpenBidID: "ob-ghost", EmployeeID: "emp-1", Status: model.RequestApproved}
	shift := &model.Shift{ID: "shift-1", EmployeeID: "emp-1", Status: model.ShiftActive}
	openBid := &model.OpenBid{ID: "ob-ghost", ShiftID: "shift-1", Status: model.OpenBidFilled}

	err := store.ApplyBidApproval(ctx, bid, shift, openBid)
	assert.True(t, model.IsNotFound(err))

	stored, err := store.GetShift(ctx, "shift-1")
	require.NoError(t, err)
	assert.Empty(t, stored.EmployeeID, "shift write must not land without the window")
	_, err = store.GetEmployeeBid(ctx, "bid-1")
	assert.True(t, model.IsNotFound(err), "bid row must not land either")
}

func TestMemoryStoreApplySwapApprovalAllOrNothing(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.CreateShift(ctx, &model.Shift{ID: "shift-a", EmployeeID: "emp-a", Status: model.ShiftActive}))
	require.NoError(t, store.CreateSwapRequest(ctx, &model.SwapRequest{ID: "swap-1", Status: model.RequestApproved}))

	err := store.ApplySwapApproval(ctx,
		&model.SwapRequest{ID: "swap-1", Status: model.RequestApproved},
		&model.SwapApproval{ID: "app-1", SwapRequestID: "swap-1", ApproverID: "mgr-1"},
		&model.Shift{ID: "shift-a", EmployeeID: "emp-b", Status: model.ShiftActive},
		&model.Shift{ID: "shift-ghost", EmployeeID: "emp-a", Status: model.ShiftActive})
	assert.True(t, model.IsNotFound(err))

	stored, err := store.GetShift(ctx, "shift-a")
	require.NoError(t, err)
	assert.Equal(t, "emp-a", stored.EmployeeID, "no half-applied exchange")
}

func TestMemoryStoreListShiftsByDateRange(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i, day := range []int{1, 3, 5} {
		require.NoError(t, store.CreateShift(ctx, &model.Shift{
			ID:     string(rune('a' + i)),
			Date:   time.Date(2025, time.June, day, 0, 0, 0, 0, time.UTC),
			Status: model.ShiftActive,
		}))
	}

	shifts, err := store.ListShiftsByDateRange(ctx,
		time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, "b", shifts[0].ID)
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tmccall/roster-admin/pkg/core/batch"
	"github.com/tmccall/roster-admin/pkg/core/model"
	"github.com/tmccall/roster-admin/pkg/db"
)

func TestSelectAllPendingBids(t *testing.T) {
	store := db.NewMemoryStore()
	seedBiddableShift(t, store)
	seedPendingBid(t, store, "bid-1", "emp-1")
	seedPendingBid(t, store, "bid-2", "emp-2")
	ctx := context.Background()

	// bid-2 gets resolved before select-all runs.
	_, err := RejectBid(ctx, store, zap.NewNop(), "bid-2", "")
	require.NoError(t, err)

	sel, err := SelectAllPendingBids(ctx, store, []string{"bid-1", "bid-2", "bid-ghost"})
	require.NoError(t, err)

	// Only still-pending, known bids make it into the selection.
	assert.Equal(t, []string{"bid-1"}, sel.IDs())
}

func TestBatchBidActionStaleSelection(t *testing.T) {
	store := db.NewMemoryStore()
	seedBiddableShift(t, store)
	store.PutEmployee(&model.Employee{ID: "emp-2", RoleIDs: []string{"nurse"}, Active: true})

	// Three independent windows so approvals do not interfere.
	ctx := context.Background()
	for _, suffix := range []string{"2", "3"} {
		require.NoError(t, store.CreateShift(ctx, &model.Shift{
			ID: "shift-" + suffix, Date: testDate, RoleID: "nurse", Status: model.ShiftActive,
		}))
		require.NoError(t, store.CreateOpenBid(ctx, &model.OpenBid{
			ID: "ob-" + suffix, ShiftID: "shift-" + suffix, Status: model.OpenBidOpen,
		}))
	}
	seedPendingBid(t, store, "bid-1", "emp-1")
	require.NoError(t, store.CreateEmployeeBid(ctx, &model.EmployeeBid{
		ID: "bid-2", OpenBidID: "ob-2", EmployeeID: "emp-1", Status: model.RequestPending,
	}))
	require.NoError(t, store.CreateEmployeeBid(ctx, &model.EmployeeBid{
		ID: "bid-3", OpenBidID: "ob-3", EmployeeID: "emp-2", Status: model.RequestPending,
	}))

	sel := batch.NewSelection()
	sel.Add("bid-1")
	sel.Add("bid-2")
	sel.Add("bid-3")

	// bid-2 is approved out of band after selection: the batch must catch
	// it at apply time and keep going.
	_, err := ApproveBid(ctx, store, zap.NewNop(), "bid-2")
	require.NoError(t, err)

	summary, err := BatchBidAction(ctx, store, zap.NewNop(), BidActionApprove, sel)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, "2 of 3 approved, 1 failed: 1 InvalidTransition", summary.String())

	require.Len(t, summary.Outcomes, 3)
	assert.True(t, summary.Outcomes[0].OK)
	assert.Equal(t, "bid-2", summary.Outcomes[1].ID)
	assert.Equal(t, batch.FailureTransition, summary.Outcomes[1].Class)
	assert.True(t, summary.Outcomes[2].OK)

	assert.Equal(t, 0, sel.Len(), "selection is cleared after the run")
}

func TestBatchBidActionSiblingsOnOneWindow(t *testing.T) {
	// Two pending bids on the same window, both selected. The first
	// approval fills the window; the second fails its own re-validation.
	store := db.NewMemoryStore()
	seedBiddableShift(t, store)
	store.PutEmployee(&model.Employee{ID: "emp-2", RoleIDs: []string{"nurse"}, Active: true})
	seedPendingBid(t, store, "bid-1", "emp-1")
	seedPendingBid(t, store, "bid-2", "emp-2")
	ctx := context.Background()

	sel, err := SelectAllPendingBids(ctx, store, []string{"bid-1", "bid-2"})
	require.NoError(t, err)
	require.Equal(t, 2, sel.Len())

	summary, err := BatchBidAction(ctx, store, zap.NewNop(), BidActionApprove, sel)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, batch.FailureValidation, summary.Outcomes[1].Class)

	shift, err := store.GetShift(ctx, "shift-1")
	require.NoError(t, err)
	assert.Equal(t, "emp-1", shift.EmployeeID)

	// The loser stays pending for an explicit reject later.
	loser, err := store.GetEmployeeBid(ctx, "bid-2")
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, loser.Status)
}

func TestBatchBidActionReject(t *testing.T) {
	store := db.NewMemoryStore()
	seedBiddableShift(t, store)
	store.PutEmployee(&model.Employee{ID: "emp-2", RoleIDs: []string{"nurse"}, Active: true})
	seedPendingBid(t, store, "bid-1", "emp-1")
	seedPendingBid(t, store, "bid-2", "emp-2")
	ctx := context.Background()

	sel, err := SelectAllPendingBids(ctx, store, []string{"bid-1", "bid-2"})
	require.NoError(t, err)

	summary, err := BatchBidAction(ctx, store, zap.NewNop(), BidActionReject, sel)
	require.NoError(t, err)
	assert.Equal(t, "2 of 2 rejected", summary.String())

	for _, id := range []string{"bid-1", "bid-2"} {
		bid, err := store.GetEmployeeBid(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.RequestRejected, bid.Status)
	}

	// Rejections never close the window.
	openBid, err := store.GetOpenBid(ctx, "ob-1")
	require.NoError(t, err)
	assert.Equal(t, model.OpenBidOpen, openBid.Status)
}

func TestBatchBidActionUnknownAction(t *testing.T) {
	store := db.NewMemoryStore()
	sel := batch.NewSelection()

	_, err := BatchBidAction(context.Background(), store, zap.NewNop(), BidAction("escalate"), sel)
	assert.Error(t, err)
}

func TestBatchBidActionEmptySelection(t *testing.T) {
	store := db.NewMemoryStore()
	sel := batch.NewSelection()

	summary, err := BatchBidAction(context.Background(), store, zap.NewNop(), BidActionApprove, sel)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
}

package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tmccall/roster-admin/pkg/core/model"
)

// ListViewStore defines the read operations the list views need.
type ListViewStore interface {
	ListOpenBids(ctx context.Context) ([]model.OpenBid, error)
	ListShiftsByDateRange(ctx context.Context, start, end time.Time) ([]model.Shift, error)
	ListEmployeeBids(ctx context.Context) ([]model.EmployeeBid, error)
	ListSwapRequests(ctx context.Context) ([]model.SwapRequest, error)
}

// OpenBidView joins a bidding window with its shift and pending bid count.
type OpenBidView struct {
	OpenBid     model.OpenBid
	Shift       model.Shift
	PendingBids int
}

// ListOpenBidWindows returns the bidding windows whose shifts fall inside
// [start, end], with pending-bid counts. Draft windows are excluded: they
// are not yet biddable.
func ListOpenBidWindows(ctx context.Context, database ListViewStore, logger *zap.Logger, start, end time.Time) ([]OpenBidView, error) {
	shifts, err := database.ListShiftsByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}

	shiftsByID := make(map[string]model.Shift, len(shifts))
	for _, shift := range shifts {
		shiftsByID[shift.ID] = shift
	}

	openBids, err := database.ListOpenBids(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open bids: %w", err)
	}

	bids, err := database.ListEmployeeBids(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bids: %w", err)
	}
	pendingByOpenBid := make(map[string]int)
	for _, bid := range bids {
		if bid.Status == model.RequestPending {
			pendingByOpenBid[bid.OpenBidID]++
		}
	}

	var views []OpenBidView
	for _, openBid := range openBids {
		if openBid.Status == model.OpenBidDraft {
			continue
		}
		shift, inRange := shiftsByID[openBid.ShiftID]
		if !inRange {
			continue
		}
		views = append(views, OpenBidView{
			OpenBid:     openBid,
			Shift:       shift,
			PendingBids: pendingByOpenBid[openBid.ID],
		})
	}

	logger.Debug("Listed open bid windows",
		zap.Int("count", len(views)),
		zap.Time("start", start),
		zap.Time("end", end))
	return views, nil
}

// ListBidsForEmployee returns an employee's bids, newest first left to the
// caller; order here is store order.
func ListBidsForEmployee(ctx context.Context, database ListViewStore, employeeID string) ([]model.EmployeeBid, error) {
	bids, err := database.ListEmployeeBids(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bids: %w", err)
	}

	var out []model.EmployeeBid
	for _, bid := range bids {
		if bid.EmployeeID == employeeID {
			out = append(out, bid)
		}
	}
	return out, nil
}

// ListPendingSwaps returns swap requests still awaiting a decision.
func ListPendingSwaps(ctx context.Context, database ListViewStore) ([]model.SwapRequest, error) {
	requests, err := database.ListSwapRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch swap requests: %w", err)
	}

	var out []model.SwapRequest
	for _, request := range requests {
		if request.Status == model.RequestPending {
			out = append(out, request)
		}
	}
	return out, nil
}

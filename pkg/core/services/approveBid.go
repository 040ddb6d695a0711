package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tmccall/roster-admin/pkg/core/model"
	"github.com/tmccall/roster-admin/pkg/core/workflow"
)

// BidDecisionStore defines the database operations needed to resolve a
// bid.
type BidDecisionStore interface {
	GetEmployeeBid(ctx context.Context, id string) (*model.EmployeeBid, error)
	GetOpenBid(ctx context.Context, id string) (*model.OpenBid, error)
	GetShift(ctx context.Context, id string) (*model.Shift, error)
	UpdateEmployeeBid(ctx context.Context, bid *model.EmployeeBid) error
	UpdateOpenBid(ctx context.Context, openBid *model.OpenBid) error
	UpdateShift(ctx context.Context, shift *model.Shift) error
	ApplyBidApproval(ctx context.Context, bid *model.EmployeeBid, shift *model.Shift, openBid *model.OpenBid) error
}

// ApproveBidResult carries the three entities the approval touched.
type ApproveBidResult struct {
	Bid     *model.EmployeeBid
	OpenBid *model.OpenBid
	Shift   *model.Shift
}

// ApproveBid offers the shift to the bidding employee. The bid, the shift
// assignment and the bid window move together: the in-memory transition is
// one mutation and the store persists all three rows as one atomic write,
// so a rejected write leaves no partial state behind. Sibling pending bids
// stay pending; re-validation at their own approval catches them because
// the window is no longer open.
func ApproveBid(ctx context.Context, database BidDecisionStore, logger *zap.Logger, bidID string) (*ApproveBidResult, error) {
	logger.Info("Approving bid", zap.String("bid_id", bidID))

	bid, err := database.GetEmployeeBid(ctx, bidID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bid: %w", err)
	}

	openBid, err := database.GetOpenBid(ctx, bid.OpenBidID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open bid: %w", err)
	}

	shift, err := database.GetShift(ctx, openBid.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift: %w", err)
	}

	if err := workflow.ApproveBid(bid, openBid, shift, time.Now().UTC()); err != nil {
		return nil, err
	}

	cmd := workflow.NewCommand("approveBid", logger)
	cmd.Add("apply approval", func(ctx context.Context) error {
		return database.ApplyBidApproval(ctx, bid, shift, openBid)
	}, nil)
	if err := cmd.Run(ctx); err != nil {
		return nil, err
	}

	logger.Info("Bid approved",
		zap.String("bid_id", bid.ID),
		zap.String("employee_id", bid.EmployeeID),
		zap.String("shift_id", shift.ID),
		zap.String("open_bid_status", string(openBid.Status)))

	return &ApproveBidResult{Bid: bid, OpenBid: openBid, Shift: shift}, nil
}

// RejectBid declines a pending bid. No other entity changes.
func RejectBid(ctx context.Context, database BidDecisionStore, logger *zap.Logger, bidID, comment string) (*model.EmployeeBid, error) {
	logger.Info("Rejecting bid", zap.String("bid_id", bidID))

	bid, err := database.GetEmployeeBid(ctx, bidID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bid: %w", err)
	}

	prevBid := *bid
	if err := workflow.RejectBid(bid, comment, time.Now().UTC()); err != nil {
		return nil, err
	}

	cmd := workflow.NewCommand("rejectBid", logger)
	cmd.Add("update bid", func(ctx context.Context) error {
		return database.UpdateEmployeeBid(ctx, bid)
	}, func(ctx context.Context) error {
		return database.UpdateEmployeeBid(ctx, &prevBid)
	})
	if err := cmd.Run(ctx); err != nil {
		return nil, err
	}

	logger.Info("Bid rejected", zap.String("bid_id", bid.ID))
	return bid, nil
}

// WithdrawBid lets the bidding employee retract their bid. Withdrawing an
// approved bid also releases the shift and reopens the bid window.
func WithdrawBid(ctx context.Context, database BidDecisionStore, logger *zap.Logger, bidID string) (*model.EmployeeBid, error) {
	logger.Info("Withdrawing bid", zap.String("bid_id", bidID))

	bid, err := database.GetEmployeeBid(ctx, bidID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bid: %w", err)
	}

	openBid, err := database.GetOpenBid(ctx, bid.OpenBidID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open bid: %w", err)
	}

	shift, err := database.GetShift(ctx, openBid.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift: %w", err)
	}

	prevBid := *bid
	prevOpenBid := *openBid
	prevShift := *shift

	wasApproved := bid.Status == model.RequestApproved

	if err := workflow.WithdrawBid(bid, openBid, shift, time.Now().UTC()); err != nil {
		return nil, err
	}

	cmd := workflow.NewCommand("withdrawBid", logger)
	cmd.Add("update bid", func(ctx context.Context) error {
		return database.UpdateEmployeeBid(ctx, bid)
	}, func(ctx context.Context) error {
		return database.UpdateEmployeeBid(ctx, &prevBid)
	})
	if wasApproved {
		cmd.Add("update shift", func(ctx context.Context) error {
			return database.UpdateShift(ctx, shift)
		}, func(ctx context.Context) error {
			return database.UpdateShift(ctx, &prevShift)
		})
		cmd.Add("update open bid", func(ctx context.Context) error {
			return database.UpdateOpenBid(ctx, openBid)
		}, func(ctx context.Context) error {
			return database.UpdateOpenBid(ctx, &prevOpenBid)
		})
	}
	if err := cmd.Run(ctx); err != nil {
		return nil, err
	}

	logger.Info("Bid withdrawn", zap.String("bid_id", bid.ID))
	return bid, nil
}

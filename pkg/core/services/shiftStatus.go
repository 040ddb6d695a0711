package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tmccall/roster-admin/pkg/core/model"
	"github.com/tmccall/roster-admin/pkg/core/workflow"
)

// ShiftStatusStore defines the database operations needed to archive a
// shift.
type ShiftStatusStore interface {
	GetShift(ctx context.Context, id string) (*model.Shift, error)
	UpdateShift(ctx context.Context, shift *model.Shift) error
	GetOpenBidByShift(ctx context.Context, shiftID string) (*model.OpenBid, error)
	UpdateOpenBid(ctx context.Context, openBid *model.OpenBid) error
}

// MarkShiftStatus archives a shift as Completed, Cancelled, No-Show or
// Swapped. Shifts are never deleted. Cancelling a shift with a live
// bidding window also closes the window so stale bids fail re-validation.
func MarkShiftStatus(ctx context.Context, database ShiftStatusStore, logger *zap.Logger, shiftID string, status model.ShiftStatus) (*model.Shift, error) {
	logger.Info("Marking shift status",
		zap.String("shift_id", shiftID),
		zap.String("status", string(status)))

	shift, err := database.GetShift(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift: %w", err)
	}

	prevShift := *shift
	if err := workflow.TransitionShift(shift, status); err != nil {
		return nil, err
	}

	cmd := workflow.NewCommand("markShiftStatus", logger)
	cmd.Add("update shift", func(ctx context.Context) error {
		return database.UpdateShift(ctx, shift)
	}, func(ctx context.Context) error {
		return database.UpdateShift(ctx, &prevShift)
	})

	if status == model.ShiftCancelled {
		openBid, err := database.GetOpenBidByShift(ctx, shiftID)
		if err != nil && !model.IsNotFound(err) {
			return nil, fmt.Errorf("failed to fetch open bid: %w", err)
		}
		if openBid != nil {
			prevOpenBid := *openBid
			workflow.CloseBidWindowForShift(openBid)
			if openBid.Status != prevOpenBid.Status {
				cmd.Add("close bid window", func(ctx context.Context) error {
					return database.UpdateOpenBid(ctx, openBid)
				}, func(ctx context.Context) error {
					return database.UpdateOpenBid(ctx, &prevOpenBid)
				})
			}
		}
	}

	if err := cmd.Run(ctx); err != nil {
		return nil, err
	}

	logger.Info("Shift status updated",
		zap.String("shift_id", shiftID),
		zap.String("status", string(status)))
	return shift, nil
}

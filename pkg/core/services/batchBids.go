package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tmccall/roster-admin/pkg/core/batch"
	"github.com/tmccall/roster-admin/pkg/core/model"
)

// BidAction is a bulk operation over selected bids.
type BidAction string

const (
	BidActionApprove BidAction = "approve"
	BidActionReject  BidAction = "reject"
)

// BatchBidStore adds bid listing to the per-bid decision operations.
type BatchBidStore interface {
	BidDecisionStore
	ListEmployeeBids(ctx context.Context) ([]model.EmployeeBid, error)
}

// SelectAllPendingBids builds a selection from the visible bid ids,
// keeping only bids the single-item validator would accept right now. The
// returned selection may still go stale before it is applied; Apply
// re-validates every item.
func SelectAllPendingBids(ctx context.Context, database BatchBidStore, visible []string) (*batch.Selection, error) {
	bids, err := database.ListEmployeeBids(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bids: %w", err)
	}

	pending := make(map[string]bool)
	for _, bid := range bids {
		if bid.Status == model.RequestPending {
			pending[bid.ID] = true
		}
	}

	sel := batch.NewSelection()
	sel.SelectAll(visible, func(id string) bool { return pending[id] })
	return sel, nil
}

// BatchBidAction applies one action across the selected bids, strictly in
// order, one validate-then-apply per item. Failures are counted per item
// and never abort the batch; the summary reports aggregate counts.
func BatchBidAction(ctx context.Context, database BatchBidStore, logger *zap.Logger, action BidAction, sel *batch.Selection) (*batch.Summary, error) {
	var label string
	var apply func(ctx context.Context, id string) error

	switch action {
	case BidActionApprove:
		label = "approved"
		apply = func(ctx context.Context, id string) error {
			_, err := ApproveBid(ctx, database, logger, id)
			return err
		}
	case BidActionReject:
		label = "rejected"
		apply = func(ctx context.Context, id string) error {
			_, err := RejectBid(ctx, database, logger, id, "")
			return err
		}
	default:
		return nil, fmt.Errorf("unknown bid action %q", action)
	}

	logger.Info("Running batch bid action",
		zap.String("action", string(action)),
		zap.Int("selected", sel.Len()))

	summary := batch.Apply(ctx, sel, label, apply)

	logger.Info("Batch bid action finished",
		zap.String("action", string(action)),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed))

	return summary, nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tmccall/roster-admin/pkg/core/eligibility"
	"github.com/tmccall/roster-admin/pkg/core/model"
	"github.com/tmccall/roster-admin/pkg/core/workflow"
)

// ExpressInterestStore defines the database operations needed to record a
// bid.
type ExpressInterestStore interface {
	GetEmployee(ctx context.Context, id string) (*model.Employee, error)
	GetRole(ctx context.Context, id string) (*model.Role, error)
	GetOpenBid(ctx context.Context, id string) (*model.OpenBid, error)
	GetShift(ctx context.Context, id string) (*model.Shift, error)
	ListBidsForOpenBid(ctx context.Context, openBidID string) ([]model.EmployeeBid, error)
	CreateEmployeeBid(ctx context.Context, bid *model.EmployeeBid) error
}

// ExpressInterest records an employee's bid on an open shift. The
// eligibility rules run first; an ineligible bid is a no-op that surfaces
// the reason code.
func ExpressInterest(ctx context.Context, database ExpressInterestStore, logger *zap.Logger, employeeID, openBidID, comment string) (*model.EmployeeBid, error) {
	logger.Info("Expressing interest",
		zap.String("employee_id", employeeID),
		zap.String("open_bid_id", openBidID))

	employee, err := database.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch employee: %w", err)
	}

	openBid, err := database.GetOpenBid(ctx, openBidID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open bid: %w", err)
	}

	shift, err := database.GetShift(ctx, openBid.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift: %w", err)
	}

	existing, err := database.ListBidsForOpenBid(ctx, openBidID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing bids: %w", err)
	}

	roles, err := resolveRoles(ctx, database, employee)
	if err != nil {
		return nil, err
	}

	decision, err := eligibility.CanExpressInterest(employee, roles, shift, openBid, existing)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		logger.Info("Bid not eligible",
			zap.String("employee_id", employeeID),
			zap.String("reason", decision.Reason))
		return nil, decision.Error()
	}

	bid := &model.EmployeeBid{
		ID:         uuid.New().String(),
		OpenBidID:  openBidID,
		EmployeeID: employeeID,
		Status:     model.RequestPending,
		Comment:    comment,
		CreatedAt:  time.Now().UTC(),
	}

	cmd := workflow.NewCommand("expressInterest", logger)
	cmd.Add("create bid", func(ctx context.Context) error {
		return database.CreateEmployeeBid(ctx, bid)
	}, nil)
	if err := cmd.Run(ctx); err != nil {
		return nil, err
	}

	logger.Info("Bid recorded",
		zap.String("bid_id", bid.ID),
		zap.String("employee_id", employeeID),
		zap.String("open_bid_id", openBidID))

	return bid, nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tmccall/roster-admin/pkg/core/model"
	"github.com/tmccall/roster-admin/pkg/core/workflow"
)

// SwapActionStore defines the database operations needed to create and
// resolve swap requests.
type SwapActionStore interface {
	GetShift(ctx context.Context, id string) (*model.Shift, error)
	GetEmployee(ctx context.Context, id string) (*model.Employee, error)
	GetSwapRequest(ctx context.Context, id string) (*model.SwapRequest, error)
	CreateSwapRequest(ctx context.Context, request *model.SwapRequest) error
	UpdateSwapRequest(ctx context.Context, request *model.SwapRequest) error
	ApplySwapApproval(ctx context.Context, request *model.SwapRequest, approval *model.SwapApproval, requesterShift, requestedShift *model.Shift) error
}

// RequestSwap files a request to exchange the requester's shift with the
// target employee's shift. The request itself mutates nothing; shifts move
// only on approval.
func RequestSwap(ctx context.Context, database SwapActionStore, logger *zap.Logger, requesterID, requesterShiftID, targetEmployeeID, requestedShiftID, reason, priority string) (*model.SwapRequest, error) {
	logger.Info("Requesting swap",
		zap.String("requester_id", requesterID),
		zap.String("requester_shift_id", requesterShiftID),
		zap.String("requested_shift_id", requestedShiftID))

	requesterShift, err := database.GetShift(ctx, requesterShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requester shift: %w", err)
	}
	requestedShift, err := database.GetShift(ctx, requestedShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requested shift: %w", err)
	}

	if requesterShift.EmployeeID != requesterID {
		return nil, fmt.Errorf("shift %s is not assigned to employee %s", requesterShiftID, requesterID)
	}
	if requestedShift.EmployeeID != targetEmployeeID {
		return nil, fmt.Errorf("shift %s is not assigned to employee %s", requestedShiftID, targetEmployeeID)
	}

	if _, err := database.GetEmployee(ctx, targetEmployeeID); err != nil {
		return nil, fmt.Errorf("failed to fetch target employee: %w", err)
	}

	request := &model.SwapRequest{
		ID:               uuid.New().String(),
		RequesterID:      requesterID,
		RequesterShiftID: requesterShiftID,
		TargetEmployeeID: targetEmployeeID,
		RequestedShiftID: requestedShiftID,
		Status:           model.RequestPending,
		Reason:           reason,
		Priority:         priority,
		CreatedAt:        time.Now().UTC(),
	}

	cmd := workflow.NewCommand("requestSwap", logger)
	cmd.Add("create swap request", func(ctx context.Context) error {
		return database.CreateSwapRequest(ctx, request)
	}, nil)
	if err := cmd.Run(ctx); err != nil {
		return nil, err
	}

	logger.Info("Swap request created", zap.String("swap_request_id", request.ID))
	return request, nil
}

// ApproveSwapResult carries everything an approval touched.
type ApproveSwapResult struct {
	Request        *model.SwapRequest
	Approval       *model.SwapApproval
	RequesterShift *model.Shift
	RequestedShift *model.Shift
}

// ApproveSwap exchanges the two employees' assignments and records the
// decision. Preconditions are re-checked here, not trusted from request
// time: either shift may have been cancelled since.
func ApproveSwap(ctx context.Context, database SwapActionStore, logger *zap.Logger, requestID, approverID string) (*ApproveSwapResult, error) {
	logger.Info("Approving swap", zap.String("swap_request_id", requestID))

	request, err := database.GetSwapRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch swap request: %w", err)
	}

	requesterShift, err := database.GetShift(ctx, request.RequesterShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requester shift: %w", err)
	}
	requestedShift, err := database.GetShift(ctx, request.RequestedShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requested shift: %w", err)
	}

	approval, err := workflow.ApproveSwap(request, requesterShift, requestedShift, approverID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	// The request, the decision record and both shifts persist as one
	// atomic write; a rejected write leaves no partial exchange behind.
	cmd := workflow.NewCommand("approveSwap", logger)
	cmd.Add("apply approval", func(ctx context.Context) error {
		return database.ApplySwapApproval(ctx, request, approval, requesterShift, requestedShift)
	}, nil)
	if err := cmd.Run(ctx); err != nil {
		return nil, err
	}

	logger.Info("Swap approved",
		zap.String("swap_request_id", request.ID),
		zap.String("approver_id", approverID))

	return &ApproveSwapResult{
		Request:        request,
		Approval:       approval,
		RequesterShift: requesterShift,
		RequestedShift: requestedShift,
	}, nil
}

// RejectSwap declines a pending swap request. A reason is recommended for
// the audit trail but not required.
func RejectSwap(ctx context.Context, database SwapActionStore, logger *zap.Logger, requestID, notes string) (*model.SwapRequest, error) {
	logger.Info("Rejecting swap", zap.String("swap_request_id", requestID))

	request, err := database.GetSwapRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch swap request: %w", err)
	}

	prevRequest := *request
	if err := workflow.RejectSwap(request, notes, time.Now().UTC()); err != nil {
		return nil, err
	}

	cmd := workflow.NewCommand("rejectSwap", logger)
	cmd.Add("update swap request", func(ctx context.Context) error {
		return database.UpdateSwapRequest(ctx, request)
	}, func(ctx context.Context) error {
		return database.UpdateSwapRequest(ctx, &prevRequest)
	})
	if err := cmd.Run(ctx); err != nil {
		return nil, err
	}

	logger.Info("Swap rejected", zap.String("swap_request_id", request.ID))
	return request, nil
}

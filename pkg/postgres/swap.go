package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tmccall/roster-admin/pkg/core/model"
)

const swapColumns = `id, requester_id, requester_shift_id, target_employee_id,
	requested_shift_id, status, reason, notes, priority, created_at, resolved_at`

func scanSwapRequest(row pgx.Row) (*model.SwapRequest, error) {
	var r model.SwapRequest
	var status string
	var reason, notes, priority *string

	err := row.Scan(&r.ID, &r.RequesterID, &r.RequesterShiftID, &r.TargetEmployeeID,
		&r.RequestedShiftID, &status, &reason, &notes, &priority, &r.CreatedAt, &r.ResolvedAt)
	if err != nil {
		return nil, err
	}

	if reason != nil {
		r.Reason = *reason
	}
	if notes != nil {
		r.Notes = *notes
	}
	if priority != nil {
		r.Priority = *priority
	}

	r.Status, err = model.ParseRequestStatus(status)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetSwapRequest retrieves a swap request by id.
func (d *DB) GetSwapRequest(ctx context.Context, id string) (*model.SwapRequest, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+swapColumns+` FROM swap_request WHERE id = $1`, id)
	request, err := scanSwapRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NewNotFound("swap request", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query swap request: %w", err)
	}
	return request, nil
}

// ListSwapRequests retrieves all swap requests.
func (d *DB) ListSwapRequests(ctx context.Context) ([]model.SwapRequest, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+swapColumns+` FROM swap_request ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query swap requests: %w", err)
	}
	defer rows.Close()

	var requests []model.SwapRequest
	for rows.Next() {
		request, err := scanSwapRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan swap request: %w", err)
		}
		requests = append(requests, *request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating swap requests: %w", err)
	}

	return requests, nil
}

// CreateSwapRequest inserts a swap request.
func (d *DB) CreateSwapRequest(ctx context.Context, request *model.SwapRequest) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO swap_request (id, requester_id, requester_shift_id, target_employee_id,
			requested_shift_id, status, reason, notes, priority, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, request.ID, request.RequesterID, request.RequesterShiftID, request.TargetEmployeeID,
		request.RequestedShiftID, string(request.Status), nullable(request.Reason),
		nullable(request.Notes), nullable(request.Priority), request.CreatedAt, request.ResolvedAt)
	if err != nil {
		return fmt.Errorf("failed to insert swap request: %w", err)
	}
	return nil
}

// UpdateSwapRequest replaces a swap request.
func (d *DB) UpdateSwapRequest(ctx context.Context, request *model.SwapRequest) error {
	return execUpdateSwapRequest(ctx, d.pool, request)
}

func execUpdateSwapRequest(ctx context.Context, q execer, request *model.SwapRequest) error {
	tag, err := q.Exec(ctx, `
		UPDATE swap_request
		SET status = $2, reason = $3, notes = $4, priority = $5, resolved_at = $6
		WHERE id = $1
	`, request.ID, string(request.Status), nullable(request.Reason),
		nullable(request.Notes), nullable(request.Priority), request.ResolvedAt)
	if err != nil {
		return fmt.Errorf("failed to update swap request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFound("swap request", request.ID)
	}
	return nil
}

// CreateSwapApproval inserts the decision record for an approved swap.
func (d *DB) CreateSwapApproval(ctx context.Context, approval *model.SwapApproval) error {
	return execCreateSwapApproval(ctx, d.pool, approval)
}

func execCreateSwapApproval(ctx context.Context, q execer, approval *model.SwapApproval) error {
	_, err := q.Exec(ctx, `
		INSERT INTO swap_approval (id, swap_request_id, approver_id, approved_at)
		VALUES ($1, $2, $3, $4)
	`, approval.ID, approval.SwapRequestID, approval.ApproverID, approval.ApprovedAt)
	if err != nil {
		return fmt.Errorf("failed to insert swap approval: %w", err)
	}
	return nil
}

// ApplySwapApproval writes the resolved request, the decision record and
// both exchanged shifts in one transaction; a failure anywhere leaves all
// four rows untouched.
func (d *DB) ApplySwapApproval(ctx context.Context, request *model.SwapRequest, approval *model.SwapApproval, requesterShift, requestedShift *model.Shift) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := execUpdateSwapRequest(ctx, tx, request); err != nil {
		return err
	}
	if err := execCreateSwapApproval(ctx, tx, approval); err != nil {
		return err
	}
	if err := execUpdateShift(ctx, tx, requesterShift); err != nil {
		return err
	}
	if err := execUpdateShift(ctx, tx, requestedShift); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit swap approval: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tmccall/roster-admin/pkg/core/model"
)

func scanOpenBid(row pgx.Row) (*model.OpenBid, error) {
	var ob model.OpenBid
	var status string
	if err := row.Scan(&ob.ID, &ob.ShiftID, &status); err != nil {
		return nil, err
	}

	var err error
	ob.Status, err = model.ParseOpenBidStatus(status)
	if err != nil {
		return nil, err
	}
	return &ob, nil
}

// GetOpenBid retrieves an open bid window by id.
func (d *DB) GetOpenBid(ctx context.Context, id string) (*model.OpenBid, error) {
	row := d.pool.QueryRow(ctx, `SELECT id, shift_id, status FROM open_bid WHERE id = $1`, id)
	openBid, err := scanOpenBid(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NewNotFound("open bid", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query open bid: %w", err)
	}
	return openBid, nil
}

// GetOpenBidByShift retrieves the open bid window wrapping a shift.
func (d *DB) GetOpenBidByShift(ctx context.Context, shiftID string) (*model.OpenBid, error) {
	row := d.pool.QueryRow(ctx, `SELECT id, shift_id, status FROM open_bid WHERE shift_id = $1`, shiftID)
	openBid, err := scanOpenBid(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NewNotFound("open bid for shift", shiftID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query open bid by shift: %w", err)
	}
	return openBid, nil
}

// ListOpenBids retrieves all open bid windows.
func (d *DB) ListOpenBids(ctx context.Context) ([]model.OpenBid, error) {
	rows, err := d.pool.Query(ctx, `SELECT id, shift_id, status FROM open_bid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query open bids: %w", err)
	}
	defer rows.Close()

	var openBids []model.OpenBid
	for rows.Next() {
		openBid, err := scanOpenBid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan open bid: %w", err)
		}
		openBids = append(openBids, *openBid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating open bids: %w", err)
	}

	return openBids, nil
}

// CreateOpenBid inserts an open bid window.
func (d *DB) CreateOpenBid(ctx context.Context, openBid *model.OpenBid) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO open_bid (id, shift_id, status) VALUES ($1, $2, $3)`,
		openBid.ID, openBid.ShiftID, string(openBid.Status))
	if err != nil {
		return fmt.Errorf("failed to insert open bid: %w", err)
	}
	return nil
}

// UpdateOpenBid replaces an open bid window.
func (d *DB) UpdateOpenBid(ctx context.Context, openBid *model.OpenBid) error {
	return execUpdateOpenBid(ctx, d.pool, openBid)
}

func execUpdateOpenBid(ctx context.Context, q execer, openBid *model.OpenBid) error {
	tag, err := q.Exec(ctx,
		`UPDATE open_bid SET shift_id = $2, status = $3 WHERE id = $1`,
		openBid.ID, openBid.ShiftID, string(openBid.Status))
	if err != nil {
		return fmt.Errorf("failed to update open bid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFound("open bid", openBid.ID)
	}
	return nil
}

func scanEmployeeBid(row pgx.Row) (*model.EmployeeBid, error) {
	var b model.EmployeeBid
	var status string
	var comment *string
	if err := row.Scan(&b.ID, &b.OpenBidID, &b.EmployeeID, &status, &comment, &b.CreatedAt, &b.ResolvedAt); err != nil {
		return nil, err
	}
	if comment != nil {
		b.Comment = *comment
	}

	var err error
	b.Status, err = model.ParseRequestStatus(status)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

const employeeBidColumns = `id, open_bid_id, employee_id, status, comment, created_at, resolved_at`

// GetEmployeeBid retrieves a bid by id.
func (d *DB) GetEmployeeBid(ctx context.Context, id string) (*model.EmployeeBid, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+employeeBidColumns+` FROM employee_bid WHERE id = $1`, id)
	bid, err := scanEmployeeBid(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NewNotFound("bid", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query bid: %w", err)
	}
	return bid, nil
}

// ListEmployeeBids retrieves all bids.
func (d *DB) ListEmployeeBids(ctx context.Context) ([]model.EmployeeBid, error) {
	return d.listBids(ctx, `SELECT `+employeeBidColumns+` FROM employee_bid`)
}

// ListBidsForOpenBid retrieves every bid on one open bid window.
func (d *DB) ListBidsForOpenBid(ctx context.Context, openBidID string) ([]model.EmployeeBid, error) {
	return d.listBids(ctx, `SELECT `+employeeBidColumns+` FROM employee_bid WHERE open_bid_id = $1`, openBidID)
}

func (d *DB) listBids(ctx context.Context, query string, args ...any) ([]model.EmployeeBid, error) {
	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bids: %w", err)
	}
	defer rows.Close()

	var bids []model.EmployeeBid
	for rows.Next() {
		bid, err := scanEmployeeBid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, *bid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bids: %w", err)
	}

	return bids, nil
}

// CreateEmployeeBid inserts a bid.
func (d *DB) CreateEmployeeBid(ctx context.Context, bid *model.EmployeeBid) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO employee_bid (id, open_bid_id, employee_id, status, comment, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, bid.ID, bid.OpenBidID, bid.EmployeeID, string(bid.Status), nullable(bid.Comment), bid.CreatedAt, bid.ResolvedAt)
	if err != nil {
		return fmt.Errorf("failed to insert bid: %w", err)
	}
	return nil
}

// UpdateEmployeeBid replaces a bid.
func (d *DB) UpdateEmployeeBid(ctx context.Context, bid *model.EmployeeBid) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE employee_bid
		SET open_bid_id = $2, employee_id = $3, status = $4, comment = $5, resolved_at = $6
		WHERE id = $1
	`, bid.ID, bid.OpenBidID, bid.EmployeeID, string(bid.Status), nullable(bid.Comment), bid.ResolvedAt)
	if err != nil {
		return fmt.Errorf("failed to update bid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFound("bid", bid.ID)
	}
	return nil
}

// ApplyBidApproval writes the bid, the shift assignment and the bid window
// in one transaction, so the durable record never shows a half-applied
// approval. The bid row is inserted when new and replaced when it already
// exists.
func (d *DB) ApplyBidApproval(ctx context.Context, bid *model.EmployeeBid, shift *model.Shift, openBid *model.OpenBid) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO employee_bid (id, open_bid_id, employee_id, status, comment, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status, comment = EXCLUDED.comment, resolved_at = EXCLUDED.resolved_at
	`, bid.ID, bid.OpenBidID, bid.EmployeeID, string(bid.Status), nullable(bid.Comment), bid.CreatedAt, bid.ResolvedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert bid: %w", err)
	}

	if err := execUpdateShift(ctx, tx, shift); err != nil {
		return err
	}
	if err := execUpdateOpenBid(ctx, tx, openBid); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit bid approval: %w", err)
	}
	return nil
}

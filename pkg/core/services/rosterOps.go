package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tmccall/roster-admin/pkg/core/calendar"
	"github.com/tmccall/roster-admin/pkg/core/eligibility"
	"github.com/tmccall/roster-admin/pkg/core/model"
	"github.com/tmccall/roster-admin/pkg/core/roster"
	"github.com/tmccall/roster-admin/pkg/core/workflow"
)

// RosterOpsStore defines the database operations for roster-level
// actions.
type RosterOpsStore interface {
	GetRosterByDate(ctx context.Context, date time.Time) (*roster.Tree, error)
	SaveRoster(ctx context.Context, tree *roster.Tree) error
	GetShift(ctx context.Context, id string) (*model.Shift, error)
	UpdateShift(ctx context.Context, shift *model.Shift) error
	GetEmployee(ctx context.Context, id string) (*model.Employee, error)
	GetRole(ctx context.Context, id string) (*model.Role, error)
	GetOpenBidByShift(ctx context.Context, shiftID string) (*model.OpenBid, error)
	ListBidsForOpenBid(ctx context.Context, openBidID string) ([]model.EmployeeBid, error)
	ApplyBidApproval(ctx context.Context, bid *model.EmployeeBid, shift *model.Shift, openBid *model.OpenBid) error
}

// SetRosterLock flips the advisory roster-wide edit lock for a date. The
// edit predicates consult this flag; it is a single boolean, not a
// distributed lock.
func SetRosterLock(ctx context.Context, database RosterOpsStore, logger *zap.Logger, date time.Time, locked bool) (*roster.Tree, error) {
	tree, err := database.GetRosterByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster: %w", err)
	}

	tree.Locked = locked

	cmd := workflow.NewCommand("setRosterLock", logger)
	cmd.Add("save roster", func(ctx context.Context) error {
		return database.SaveRoster(ctx, tree)
	}, nil)
	if err := cmd.Run(ctx); err != nil {
		return nil, err
	}

	logger.Info("Roster lock updated", zap.Time("date", date), zap.Bool("locked", locked))
	return tree, nil
}

// SetRosterCollapsed collapses or expands every node of a date's roster.
// Display state only: it works on locked rosters and never touches shift
// data. Repeated calls are idempotent.
func SetRosterCollapsed(ctx context.Context, database RosterOpsStore, logger *zap.Logger, date time.Time, collapsed bool) (*roster.Tree, error) {
	tree, err := database.GetRosterByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster: %w", err)
	}

	if collapsed {
		tree.CollapseAll()
	} else {
		tree.ExpandAll()
	}

	cmd := workflow.NewCommand("setRosterCollapsed", logger)
	cmd.Add("save roster", func(ctx context.Context) error {
		return database.SaveRoster(ctx, tree)
	}, nil)
	if err := cmd.Run(ctx); err != nil {
		return nil, err
	}

	return tree, nil
}

// AssignEmployee puts an employee on a shift. If the shift has a live
// bidding window the assignment routes through the bid machine so the
// window fills atomically with the assignment; otherwise the shift is
// updated directly. The roster lock blocks both paths.
func AssignEmployee(ctx context.Context, database RosterOpsStore, logger *zap.Logger, shiftID, employeeID string) (*model.Shift, error) {
	logger.Info("Assigning employee",
		zap.String("shift_id", shiftID),
		zap.String("employee_id", employeeID))

	shift, err := database.GetShift(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift: %w", err)
	}

	employee, err := database.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch employee: %w", err)
	}

	locked, err := rosterLockedForDate(ctx, database, shift.Date)
	if err != nil {
		return nil, err
	}
	decision, err := eligibility.CanEditShiftTimes(shift, locked)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, decision.Error()
	}

	openBid, err := database.GetOpenBidByShift(ctx, shiftID)
	if err != nil && !model.IsNotFound(err) {
		return nil, fmt.Errorf("failed to fetch open bid: %w", err)
	}

	if openBid != nil && openBid.Status.AcceptsBids() {
		return assignViaBid(ctx, database, logger, employee, shift, openBid)
	}

	prevShift := *shift
	shift.EmployeeID = employeeID

	cmd := workflow.NewCommand("assignEmployee", logger)
	cmd.Add("update shift", func(ctx context.Context) error {
		return database.UpdateShift(ctx, shift)
	}, func(ctx context.Context) error {
		return database.UpdateShift(ctx, &prevShift)
	})
	addRosterSyncStep(cmd, database, shift, &prevShift)
	if err := cmd.Run(ctx); err != nil {
		return nil, err
	}

	logger.Info("Employee assigned directly", zap.String("shift_id", shiftID))
	return shift, nil
}

// assignViaBid records and immediately approves a bid so the manager
// assignment closes the window the same way a bid approval does.
func assignViaBid(ctx context.Context, database RosterOpsStore, logger *zap.Logger, employee *model.Employee, shift *model.Shift, openBid *model.OpenBid) (*model.Shift, error) {
	existing, err := database.ListBidsForOpenBid(ctx, openBid.ID)
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
		return nil, decision.Error()
	}

	now := time.Now().UTC()
	bid := &model.EmployeeBid{
		ID:         newID(),
		OpenBidID:  openBid.ID,
		EmployeeID: employee.ID,
		Status:     model.RequestPending,
		Comment:    "assigned by manager",
		CreatedAt:  now,
	}

	prevShift := *shift

	if err := workflow.ApproveBid(bid, openBid, shift, now); err != nil {
		return nil, err
	}

	// The tree sync confirms first so a rejected approval write unwinds
	// it; the atomic write itself needs no rollback step.
	cmd := workflow.NewCommand("assignEmployeeViaBid", logger)
	addRosterSyncStep(cmd, database, shift, &prevShift)
	cmd.Add("apply approval", func(ctx context.Context) error {
		return database.ApplyBidApproval(ctx, bid, shift, openBid)
	}, nil)
	if err := cmd.Run(ctx); err != nil {
		return nil, err
	}

	logger.Info("Employee assigned via bid window",
		zap.String("shift_id", shift.ID),
		zap.String("bid_id", bid.ID))
	return shift, nil
}

// EditShiftTimes updates a shift's start and end times after validating
// the clock strings and the edit predicates.
func EditShiftTimes(ctx context.Context, database RosterOpsStore, logger *zap.Logger, shiftID, startTime, endTime string) (*model.Shift, error) {
	logger.Info("Editing shift times",
		zap.String("shift_id", shiftID),
		zap.String("start", startTime),
		zap.String("end", endTime))

	startMin, err := calendar.ParseClock(startTime)
	if err != nil {
		return nil, err
	}
	endMin, err := calendar.ParseClock(endTime)
	if err != nil {
		return nil, err
	}
	if endMin <= startMin {
		return nil, fmt.Errorf("shift end %s must be after start %s", endTime, startTime)
	}

	shift, err := database.GetShift(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift: %w", err)
	}

	locked, err := rosterLockedForDate(ctx, database, shift.Date)
	if err != nil {
		return nil, err
	}
	decision, err := eligibility.CanEditShiftTimes(shift, locked)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, decision.Error()
	}

	prevShift := *shift
	shift.StartTime = startTime
	shift.EndTime = endTime

	cmd := workflow.NewCommand("editShiftTimes", logger)
	cmd.Add("update shift", func(ctx context.Context) error {
		return database.UpdateShift(ctx, shift)
	}, func(ctx context.Context) error {
		return database.UpdateShift(ctx, &prevShift)
	})
	addRosterSyncStep(cmd, database, shift, &prevShift)
	if err := cmd.Run(ctx); err != nil {
		return nil, err
	}

	logger.Info("Shift times updated", zap.String("shift_id", shiftID))
	return shift, nil
}

// rosterLockedForDate reads the advisory lock for the shift's date. A
// missing roster means unlocked.
func rosterLockedForDate(ctx context.Context, database RosterOpsStore, date time.Time) (bool, error) {
	tree, err := database.GetRosterByDate(ctx, date)
	if model.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to fetch roster: %w", err)
	}
	return tree.Locked, nil
}

// addRosterSyncStep mirrors a shift mutation into the published roster
// tree for its date, when one exists. The tree is display structure; the
// shift store stays canonical.
func addRosterSyncStep(cmd *workflow.Command, database RosterOpsStore, shift *model.Shift, prev *model.Shift) {
	sync := func(target model.Shift) func(ctx context.Context) error {
		return func(ctx context.Context) error {
			tree, err := database.GetRosterByDate(ctx, target.Date)
			if model.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return err
			}
			node := tree.FindShift(target.ID)
			if node == nil {
				return nil
			}
			*node = target
			return database.SaveRoster(ctx, tree)
		}
	}
	cmd.Add("sync roster tree", sync(*shift), sync(*prev))
}

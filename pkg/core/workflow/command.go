package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// PersistenceError wraps a rejected external store call. The optimistic
// in-memory change has already been rolled back by the time callers see
// it; retry policy belongs to them.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Command is a two-phase optimistic mutation: in-memory state is updated
// first, then each persistence step is confirmed in order. If any step
// fails, the steps already confirmed are rolled back in reverse and the
// command reports a PersistenceError.
type Command struct {
	name   string
	logger *zap.Logger
	steps  []commandStep
}

type commandStep struct {
	op       string
	confirm  func(ctx context.Context) error
	rollback func(ctx context.Context) error
}

// NewCommand creates a named command.
func NewCommand(name string, logger *zap.Logger) *Command {
	return &Command{name: name, logger: logger}
}

// Add registers a persistence step. rollback restores the pre-command
// state of whatever confirm wrote and may be nil for steps with nothing to
// undo (e.g. idempotent deletes of rows confirm never created).
func (c *Command) Add(op string, confirm, rollback func(ctx context.Context) error) {
	c.steps = append(c.steps, commandStep{op: op, confirm: confirm, rollback: rollback})
}

// Run confirms every step in order. On failure it unwinds the confirmed
// prefix in reverse order; rollback failures are logged but do not mask
// the original error.
func (c *Command) Run(ctx context.Context) error {
	for i, step := range c.steps {
		if err := step.confirm(ctx); err != nil {
			c.logger.Warn("Command step failed, rolling back",
				zap.String("command", c.name),
				zap.String("op", step.op),
				zap.Int("confirmed_steps", i),
				zap.Error(err))
			c.unwind(ctx, i)
			return &PersistenceError{Op: fmt.Sprintf("%s/%s", c.name, step.op), Err: err}
		}
	}
	return nil
}

func (c *Command) unwind(ctx context.Context, confirmed int) {
	for i := confirmed - 1; i >= 0; i-- {
		step := c.steps[i]
		if step.rollback == nil {
			continue
		}
		if err := step.rollback(ctx); err != nil {
			c.logger.Error("Rollback step failed",
				zap.String("command", c.name),
				zap.String("op", step.op),
				zap.Error(err))
		}
	}
}

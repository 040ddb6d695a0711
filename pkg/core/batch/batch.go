// Package batch implements the bulk selection set and the sequential
// per-item batch processor. A batch is not atomic across items: each item
// is validated and applied independently, and the caller gets a per-item
// outcome plus an aggregate summary, never a single pass/fail.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tmccall/roster-admin/pkg/core/eligibility"
	"github.com/tmccall/roster-admin/pkg/core/model"
	"github.com/tmccall/roster-admin/pkg/core/workflow"
)

// Selection is a set of item IDs scoped to the currently visible, filtered
// items. Order of first addition is preserved.
type Selection struct {
	ids    []string
	member map[string]bool
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{member: make(map[string]bool)}
}

// Add puts a single id into the selection.
func (s *Selection) Add(id string) {
	if s.member[id] {
		return
	}
	s.member[id] = true
	s.ids = append(s.ids, id)
}

// Remove drops an id from the selection.
func (s *Selection) Remove(id string) {
	if !s.member[id] {
		return
	}
	delete(s.member, id)
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
}

// SelectAll adds every visible id that passes the single-item eligibility
// check. The selection never contains an item the single-item validator
// would reject at selection time.
func (s *Selection) SelectAll(visible []string, eligible func(id string) bool) {
	for _, id := range visible {
		if eligible(id) {
			s.Add(id)
		}
	}
}

// Contains reports membership.
func (s *Selection) Contains(id string) bool {
	return s.member[id]
}

// IDs returns the selected ids in insertion order.
func (s *Selection) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the selection size.
func (s *Selection) Len() int {
	return len(s.ids)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = nil
	s.member = make(map[string]bool)
}

// Failure classes reported per item.
const (
	FailureValidation  = "ValidationFailure"
	FailureTransition  = "InvalidTransition"
	FailureNotFound    = "NotFound"
	FailurePersistence = "PersistenceFailure"
	FailureInternal    = "InternalError"
)

// Outcome is the result of applying the action to one selected item.
type Outcome struct {
	ID     string
	OK     bool
	Class  string // empty on success
	Reason string // human-readable failure reason
}

// Summary aggregates per-item outcomes for one batch run.
type Summary struct {
	Action    string
	Outcomes  []Outcome
	Succeeded int
	Failed    int
}

// String renders the aggregate line, e.g.
// "7 of 9 approved, 2 failed: 1 InvalidTransition, 1 NotFound".
func (s *Summary) String() string {
	total := s.Succeeded + s.Failed
	if s.Failed == 0 {
		return fmt.Sprintf("%d of %d %s", s.Succeeded, total, s.Action)
	}

	counts := make(map[string]int)
	for _, o := range s.Outcomes {
		if !o.OK {
			counts[o.Class]++
		}
	}
	classes := make([]string, 0, len(counts))
	for class := range counts {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	parts := make([]string, 0, len(classes))
	for _, class := range classes {
		parts = append(parts, fmt.Sprintf("%d %s", counts[class], class))
	}

	return fmt.Sprintf("%d of %d %s, %d failed: %s",
		s.Succeeded, total, s.Action, s.Failed, strings.Join(parts, ", "))
}

// Apply runs the action over the selection strictly sequentially. Later
// items may be affected by state changes from earlier ones, such as a bid
// approval closing the window a later sibling references. Every item is
// re-validated by the action itself (the selection may be stale). The
// selection is cleared afterwards regardless of outcome.
func Apply(ctx context.Context, sel *Selection, action string, apply func(ctx context.Context, id string) error) *Summary {
	summary := &Summary{Action: action}

	for _, id := range sel.IDs() {
		err := apply(ctx, id)
		if err == nil {
			summary.Outcomes = append(summary.Outcomes, Outcome{ID: id, OK: true})
			summary.Succeeded++
			continue
		}

		summary.Outcomes = append(summary.Outcomes, Outcome{
			ID:     id,
			Class:  classify(err),
			Reason: err.Error(),
		})
		summary.Failed++
	}

	sel.Clear()
	return summary
}

func classify(err error) string {
	var validation *eligibility.ValidationError
	var persistence *workflow.PersistenceError

	switch {
	case errors.Is(err, model.ErrInvalidTransition):
		return FailureTransition
	case model.IsNotFound(err):
		return FailureNotFound
	case errors.As(err, &validation):
		return FailureValidation
	case errors.As(err, &persistence):
		return FailurePersistence
	}
	return FailureInternal
}

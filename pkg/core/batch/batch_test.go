package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmccall/roster-admin/pkg/core/eligibility"
	"github.com/tmccall/roster-admin/pkg/core/model"
	"github.com/tmccall/roster-admin/pkg/core/workflow"
)

func TestSelectionAddRemove(t *testing.T) {
	sel := NewSelection()

	sel.Add("a")
	sel.Add("b")
	sel.Add("a") // duplicate is a no-op
	assert.Equal(t, []string{"a", "b"}, sel.IDs())
	assert.Equal(t, 2, sel.Len())
	assert.True(t, sel.Contains("a"))

	sel.Remove("a")
	assert.Equal(t, []string{"b"}, sel.IDs())
	assert.False(t, sel.Contains("a"))

	sel.Remove("missing") // no-op
	assert.Equal(t, 1, sel.Len())

	sel.Clear()
	assert.Equal(t, 0, sel.Len())
	assert.Empty(t, sel.IDs())
}

func TestSelectionPreservesInsertionOrder(t *testing.T) {
	sel := NewSelection()
	for _, id := range []string{"c", "a", "b"} {
		sel.Add(id)
	}
	assert.Equal(t, []string{"c", "a", "b"}, sel.IDs())
}

func TestSelectAllFiltersByEligibility(t *testing.T) {
	sel := NewSelection()
	visible := []string{"a", "b", "c", "d"}
	eligible := map[string]bool{"a": true, "c": true}

	sel.SelectAll(visible, func(id string) bool { return eligible[id] })

	// Nothing the single-item validator would reject right now gets in.
	assert.Equal(t, []string{"a", "c"}, sel.IDs())
}

func TestApplyMixedOutcomes(t *testing.T) {
	sel := NewSelection()
	sel.Add("bid-1")
	sel.Add("bid-2")
	sel.Add("bid-3")

	summary := Apply(context.Background(), sel, "approved", func(ctx context.Context, id string) error {
		if id == "bid-2" {
			return fmt.Errorf("bid bid-2 is approved: %w", model.ErrInvalidTransition)
		}
		return nil
	})

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Outcomes, 3)

	assert.True(t, summary.Outcomes[0].OK)
	assert.False(t, summary.Outcomes[1].OK)
	assert.Equal(t, FailureTransition, summary.Outcomes[1].Class)
	assert.True(t, summary.Outcomes[2].OK)

	assert.Equal(t, "2 of 3 approved, 1 failed: 1 InvalidTransition", summary.String())

	// The selection is spent after a run, success or not.
	assert.Equal(t, 0, sel.Len())
}

func TestApplySequentialOrder(t *testing.T) {
	sel := NewSelection()
	sel.Add("first")
	sel.Add("second")
	sel.Add("third")

	var order []string
	Apply(context.Background(), sel, "approved", func(ctx context.Context, id string) error {
		order = append(order, id)
		return nil
	})

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestApplyFailureDoesNotAbortBatch(t *testing.T) {
	sel := NewSelection()
	sel.Add("a")
	sel.Add("b")
	sel.Add("c")

	summary := Apply(context.Background(), sel, "rejected", func(ctx context.Context, id string) error {
		if id == "a" {
			return errors.New("boom")
		}
		return nil
	})

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
}

func TestApplyAllSucceed(t *testing.T) {
	sel := NewSelection()
	sel.Add("a")
	sel.Add("b")

	summary := Apply(context.Background(), sel, "approved", func(ctx context.Context, id string) error {
		return nil
	})

	assert.Equal(t, "2 of 2 approved", summary.String())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "invalid transition",
			err:  fmt.Errorf("wrapped: %w", model.ErrInvalidTransition),
			want: FailureTransition,
		},
		{
			name: "not found",
			err:  model.NewNotFound("bid", "b-1"),
			want: FailureNotFound,
		},
		{
			name: "validation",
			err:  &eligibility.ValidationError{Reason: eligibility.ReasonBidWindowClosed},
			want: FailureValidation,
		},
		{
			name: "persistence",
			err:  &workflow.PersistenceError{Op: "cmd/step", Err: errors.New("down")},
			want: FailurePersistence,
		},
		{
			name: "anything else",
			err:  errors.New("unexpected"),
			want: FailureInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}

func TestSummaryStringMultipleClasses(t *testing.T) {
	summary := &Summary{
		Action:    "approved",
		Succeeded: 7,
		Failed:    2,
		Outcomes: []Outcome{
			{ID: "a", OK: false, Class: FailureNotFound},
			{ID: "b", OK: false, Class: FailureTransition},
		},
	}

	// Classes are sorted alphabetically for a stable aggregate line.
	assert.Equal(t, "7 of 9 approved, 2 failed: 1 InvalidTransition, 1 NotFound", summary.String())
}

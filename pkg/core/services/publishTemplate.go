package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/tmccall/roster-admin/pkg/core/model"
	"github.com/tmccall/roster-admin/pkg/core/roster"
	"github.com/tmccall/roster-admin/pkg/core/workflow"
)

// PublishTemplateStore defines the database operations needed to publish
// a template over a date range.
type PublishTemplateStore interface {
	GetTemplate(ctx context.Context, id string) (*model.ShiftTemplate, error)
	GetRosterByDate(ctx context.Context, date time.Time) (*roster.Tree, error)
	SaveRoster(ctx context.Context, tree *roster.Tree) error
	CreateShift(ctx context.Context, shift *model.Shift) error
	CreateOpenBid(ctx context.Context, openBid *model.OpenBid) error
}

// PublishResult summarizes one publish run.
type PublishResult struct {
	TemplateID     string
	PublishedDates []time.Time
	SkippedDates   []time.Time
	ShiftsCreated  int
}

// PublishTemplate instantiates a template onto every date in [start, end],
// optionally filtered by a recurrence rule (e.g. weekdays only). Each
// instantiated shift gets a bidding window: Open for live shifts, Draft
// for draft-flagged ones. A date that already has a non-empty roster is
// skipped unless overwrite is set. Overwriting replaces the published
// tree, so callers confirm first.
func PublishTemplate(ctx context.Context, database PublishTemplateStore, logger *zap.Logger, templateID string, start, end time.Time, ruleStr string, overwrite bool) (*PublishResult, error) {
	logger.Info("Publishing template",
		zap.String("template_id", templateID),
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Bool("overwrite", overwrite))

	template, err := database.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch template: %w", err)
	}

	dates, err := publishDates(start, end, ruleStr)
	if err != nil {
		return nil, err
	}
	logger.Debug("Resolved publish dates", zap.Int("count", len(dates)))

	result := &PublishResult{TemplateID: templateID}

	for _, date := range dates {
		existing, err := database.GetRosterByDate(ctx, date)
		if err != nil && !model.IsNotFound(err) {
			return nil, fmt.Errorf("failed to fetch roster for %s: %w", date.Format("2006-01-02"), err)
		}
		if existing != nil && !existing.Empty() && !overwrite {
			logger.Info("Skipping date with published roster", zap.Time("date", date))
			result.SkippedDates = append(result.SkippedDates, date)
			continue
		}

		tree, err := roster.Instantiate(template, date)
		if err != nil {
			return nil, fmt.Errorf("failed to instantiate template: %w", err)
		}

		cmd := workflow.NewCommand("publishTemplate", logger)
		cmd.Add("save roster", func(ctx context.Context) error {
			return database.SaveRoster(ctx, tree)
		}, nil)
		for _, shift := range tree.Shifts() {
			s := shift
			openBid := &model.OpenBid{
				ID:      uuid.New().String(),
				ShiftID: s.ID,
				Status:  model.OpenBidOpen,
			}
			if s.Draft {
				openBid.Status = model.OpenBidDraft
			}
			cmd.Add("create shift", func(ctx context.Context) error {
				return database.CreateShift(ctx, &s)
			}, nil)
			cmd.Add("create open bid", func(ctx context.Context) error {
				return database.CreateOpenBid(ctx, openBid)
			}, nil)
		}
		if err := cmd.Run(ctx); err != nil {
			return nil, err
		}

		result.PublishedDates = append(result.PublishedDates, date)
		result.ShiftsCreated += len(tree.Shifts())
	}

	logger.Info("Template published",
		zap.String("template_id", templateID),
		zap.Int("published_dates", len(result.PublishedDates)),
		zap.Int("skipped_dates", len(result.SkippedDates)),
		zap.Int("shifts_created", result.ShiftsCreated))

	return result, nil
}

// publishDates expands [start, end] into days, filtered by the recurrence
// rule when one is given.
func publishDates(start, end time.Time, ruleStr string) ([]time.Time, error) {
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if endDay.Before(startDay) {
		return nil, fmt.Errorf("publish range end %s is before start %s",
			endDay.Format("2006-01-02"), startDay.Format("2006-01-02"))
	}

	if ruleStr == "" {
		var dates []time.Time
		for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
			dates = append(dates, d)
		}
		return dates, nil
	}

	rule, err := rrule.StrToRRule(ruleStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse publish rrule: %w", err)
	}
	rule.DTStart(startDay)

	occurrences := rule.Between(startDay, endDay, true)
	dates := make([]time.Time, 0, len(occurrences))
	for _, occ := range occurrences {
		dates = append(dates, time.Date(occ.Year(), occ.Month(), occ.Day(), 0, 0, 0, 0, time.UTC))
	}
	return dates, nil
}

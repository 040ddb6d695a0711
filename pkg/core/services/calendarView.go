package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tmccall/roster-admin/pkg/core/calendar"
	"github.com/tmccall/roster-admin/pkg/core/model"
)

// CalendarViewStore defines the read operations the calendar needs.
type CalendarViewStore interface {
	ListShiftsByDateRange(ctx context.Context, start, end time.Time) ([]model.Shift, error)
}

// ShiftBlock is a shift positioned on the vertical time axis of a
// day/3day/week grid. Positions are percentages in [0,100].
type ShiftBlock struct {
	Shift      model.Shift
	Top        float64
	Bottom     float64
	TimeLabel  string
	ParseError bool
}

// DayColumn is one date's worth of positioned blocks.
type DayColumn struct {
	Date   time.Time
	Blocks []ShiftBlock
}

// DayCell is one date's role-grouped summary for the month grid.
type DayCell struct {
	Date   time.Time
	Groups []calendar.RoleGroup
}

// CalendarViewResult is the computed view model for one view + anchor.
type CalendarViewResult struct {
	View    calendar.View
	Range   calendar.DateRange
	Columns []DayColumn // day, 3day, week
	Cells   []DayCell   // month
}

// CalendarView computes the date range for a view and lays the range's
// shifts out: positioned blocks for the timed views, role-grouped cells
// for the month grid. A malformed shift time degrades that one block to a
// fallback label instead of failing the view.
func CalendarView(ctx context.Context, database CalendarViewStore, logger *zap.Logger, view calendar.View, anchor time.Time, weekStart time.Weekday, dayStartHour, dayEndHour int) (*CalendarViewResult, error) {
	rng, err := calendar.DateRangeFor(view, anchor, weekStart)
	if err != nil {
		return nil, err
	}

	shifts, err := database.ListShiftsByDateRange(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}
	logger.Debug("Computed calendar range",
		zap.String("view", string(view)),
		zap.Time("start", rng.Start),
		zap.Time("end", rng.End),
		zap.Int("shifts", len(shifts)))

	byDate := make(map[string][]model.Shift)
	for _, shift := range shifts {
		key := shift.Date.Format("2006-01-02")
		byDate[key] = append(byDate[key], shift)
	}

	result := &CalendarViewResult{View: view, Range: rng}

	if view == calendar.ViewMonth {
		for _, date := range rng.Dates() {
			entries := make([]calendar.DayEntry, 0)
			for _, shift := range byDate[date.Format("2006-01-02")] {
				entries = append(entries, calendar.DayEntry{Shift: shift})
			}
			result.Cells = append(result.Cells, DayCell{
				Date:   date,
				Groups: calendar.GroupByRole(entries),
			})
		}
		return result, nil
	}

	for _, date := range rng.Dates() {
		column := DayColumn{Date: date}
		for _, shift := range byDate[date.Format("2006-01-02")] {
			column.Blocks = append(column.Blocks, buildBlock(shift, dayStartHour, dayEndHour, logger))
		}
		result.Columns = append(result.Columns, column)
	}
	return result, nil
}

// buildBlock positions one shift on the vertical axis. A shift with an
// unparseable time renders the fallback label at the top of the axis.
func buildBlock(shift model.Shift, dayStartHour, dayEndHour int, logger *zap.Logger) ShiftBlock {
	top, errTop := calendar.TimeToVerticalPosition(shift.StartTime, dayStartHour, dayEndHour)
	bottom, errBottom := calendar.TimeToVerticalPosition(shift.EndTime, dayStartHour, dayEndHour)

	var parseErr *calendar.ParseError
	if errors.As(errTop, &parseErr) || errors.As(errBottom, &parseErr) {
		logger.Warn("Shift has malformed time, using fallback",
			zap.String("shift_id", shift.ID),
			zap.String("start", shift.StartTime),
			zap.String("end", shift.EndTime))
		return ShiftBlock{
			Shift:      shift,
			TimeLabel:  calendar.FallbackLabel,
			ParseError: true,
		}
	}

	return ShiftBlock{
		Shift:     shift,
		Top:       top,
		Bottom:    bottom,
		TimeLabel: shift.StartTime + " - " + shift.EndTime,
	}
}

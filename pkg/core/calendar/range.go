package calendar

import (
	"fmt"
	"time"
)

// View identifies a calendar view surface.
type View string

const (
	ViewDay      View = "day"
	ViewThreeDay View = "3day"
	ViewWeek     View = "week"
	ViewMonth    View = "month"
)

func (v View) IsValid() bool {
	return v == ViewDay || v == ViewThreeDay || v == ViewWeek || v == ViewMonth
}

// ParseView converts a string to a View, rejecting unknown values.
func ParseView(raw string) (View, error) {
	v := View(raw)
	if !v.IsValid() {
		return "", fmt.Errorf("unknown calendar view %q", raw)
	}
	return v, nil
}

// DateRange is an inclusive start/end date pair.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Dates expands the range into one normalized time per day, in order.
func (r DateRange) Dates() []time.Time {
	var dates []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// Contains reports whether the date falls inside the range.
func (r DateRange) Contains(date time.Time) bool {
	d := normalize(date)
	return !d.Before(r.Start) && !d.After(r.End)
}

// DateRangeFor returns the inclusive date range a view shows around the
// anchor date. Week views are anchored to weekStart; month views span
// complete weeks covering the anchor's month, so they may include days
// from adjacent months.
func DateRangeFor(view View, anchor time.Time, weekStart time.Weekday) (DateRange, error) {
	day := normalize(anchor)

	switch view {
	case ViewDay:
		return DateRange{Start: day, End: day}, nil
	case ViewThreeDay:
		return DateRange{Start: day, End: day.AddDate(0, 0, 2)}, nil
	case ViewWeek:
		start := startOfWeek(day, weekStart)
		return DateRange{Start: start, End: start.AddDate(0, 0, 6)}, nil
	case ViewMonth:
		firstOfMonth := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		lastOfMonth := firstOfMonth.AddDate(0, 1, -1)
		start := startOfWeek(firstOfMonth, weekStart)
		return DateRange{Start: start, End: startOfWeek(lastOfMonth, weekStart).AddDate(0, 0, 6)}, nil
	}

	return DateRange{}, fmt.Errorf("unknown calendar view %q", view)
}

// Navigate steps the anchor date forward or backward by one view-sized
// unit. direction must be +1 or -1.
func Navigate(view View, anchor time.Time, direction int) (time.Time, error) {
	if direction != 1 && direction != -1 {
		return time.Time{}, fmt.Errorf("direction must be +1 or -1, got %d", direction)
	}

	day := normalize(anchor)

	switch view {
	case ViewDay:
		return day.AddDate(0, 0, direction), nil
	case ViewThreeDay:
		return day.AddDate(0, 0, 3*direction), nil
	case ViewWeek:
		return day.AddDate(0, 0, 7*direction), nil
	case ViewMonth:
		return day.AddDate(0, direction, 0), nil
	}

	return time.Time{}, fmt.Errorf("unknown calendar view %q", view)
}

// normalize truncates a time to the start of its day in UTC.
func normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// startOfWeek returns the weekStart day on or before the given date.
func startOfWeek(day time.Time, weekStart time.Weekday) time.Time {
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

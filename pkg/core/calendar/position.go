package calendar

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a malformed clock time string. Callers are expected
// to catch it and render a fallback value instead of failing the whole
// view.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid time %q", e.Input)
}

// FallbackLabel is the display value used when a time string cannot be
// parsed.
const FallbackLabel = "Invalid time"

// ParseClock parses a "HH:MM" clock string into minutes since midnight.
// Anything that is not a well-formed 24-hour time yields a ParseError.
func ParseClock(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 {
		return 0, &ParseError{Input: clock}
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, &ParseError{Input: clock}
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, &ParseError{Input: clock}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, &ParseError{Input: clock}
	}

	return hour*60 + minute, nil
}

// TimeToVerticalPosition maps a clock time to a percentage in [0,100]
// within a vertical axis bounded by rangeStartHour and rangeEndHour.
// Out-of-range times clamp to the boundary instead of erroring; only a
// malformed clock string returns a ParseError.
func TimeToVerticalPosition(clock string, rangeStartHour, rangeEndHour int) (float64, error) {
	minutes, err := ParseClock(clock)
	if err != nil {
		return 0, err
	}

	if rangeEndHour <= rangeStartHour {
		return 0, fmt.Errorf("invalid axis bounds [%d,%d]", rangeStartHour, rangeEndHour)
	}

	startMin := rangeStartHour * 60
	endMin := rangeEndHour * 60

	if minutes <= startMin {
		return 0, nil
	}
	if minutes >= endMin {
		return 100, nil
	}

	return float64(minutes-startMin) / float64(endMin-startMin) * 100, nil
}

// FormatClock renders minutes since midnight back to "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

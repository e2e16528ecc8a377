package model

import (
	"fmt"
	"time"
)

// InvalidRangeError reports a requested date range or day count that cannot
// produce a series. It is raised before any data is generated.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
	Days  int
}

func (e *InvalidRangeError) Error() string {
	if e.Start.IsZero() && e.End.IsZero() {
		return fmt.Sprintf("invalid range: days must be > 0 (got %d)", e.Days)
	}
	return fmt.Sprintf("invalid range: end_date %s must be after start_date %s",
		e.End.Format("2006-01-02"), e.Start.Format("2006-01-02"))
}

// InsufficientDataError reports a bar series too short to simulate.
type InsufficientDataError struct {
	Bars int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: need at least %d bars, got %d", e.Need, e.Bars)
}

package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Bar is one trading day of OHLCV data.
// Dates are calendar days at UTC midnight.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Validate checks that prices are finite and positive, volume is
// non-negative, and low <= min(open, close) <= max(open, close) <= high.
func (b Bar) Validate() error {
	for _, p := range []float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return errors.New("price must be finite")
		}
		if p <= 0 {
			return errors.New("price must be > 0")
		}
	}
	if b.Volume < 0 {
		return errors.New("volume must be >= 0")
	}
	if b.Low > math.Min(b.Open, b.Close) || b.High < math.Max(b.Open, b.Close) {
		return fmt.Errorf("low/high (%.4f/%.4f) do not bracket open/close (%.4f/%.4f)", b.Low, b.High, b.Open, b.Close)
	}
	return nil
}

// ValidateSeries checks every bar and that dates strictly increase.
func ValidateSeries(bars []Bar) error {
	for i, b := range bars {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("bar %d (%s): %w", i, b.Date.Format("2006-01-02"), err)
		}
		if i > 0 && !b.Date.After(bars[i-1].Date) {
			return fmt.Errorf("bar %d (%s): dates must be strictly increasing", i, b.Date.Format("2006-01-02"))
		}
	}
	return nil
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from start to end.
func DaysBetween(start, end time.Time) int {
	return int(Day(end).Sub(Day(start)).Hours() / 24)
}

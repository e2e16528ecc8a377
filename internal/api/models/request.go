package models

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"

	"tss-backtest/internal/model"
)

// BacktestRequest represents the request body for running a backtest
type BacktestRequest struct {
	Strategy       StrategyConfig  `json:"strategy" binding:"required"`
	StartDate      string          `json:"start_date" binding:"required"` // any common layout, e.g. YYYY-MM-DD
	EndDate        string          `json:"end_date" binding:"required"`
	InitialCapital float64         `json:"initial_capital,omitempty" binding:"gte=0"` // 0 = config default
	Seed           uint64          `json:"seed,omitempty"`                            // 0 = config seed, else random
	Options        BacktestOptions `json:"options,omitempty"`
}

// StrategyConfig names a strategy and overrides its parameters
type StrategyConfig struct {
	Name   string         `json:"name" binding:"required"` // tag or alias: BUFFETT, value, ...
	Params map[string]any `json:"params,omitempty"`
}

// BacktestOptions contains optional backtest parameters
type BacktestOptions struct {
	IncludeTrades bool `json:"include_trades,omitempty"`
	OmitCurve     bool `json:"omit_curve,omitempty"`
}

// CompareBacktestRequest runs several strategies over one shared series.
type CompareBacktestRequest struct {
	StartDate      string           `json:"start_date" binding:"required"`
	EndDate        string           `json:"end_date" binding:"required"`
	InitialCapital float64          `json:"initial_capital,omitempty" binding:"gte=0"`
	Seed           uint64           `json:"seed,omitempty"`
	Strategies     []StrategyConfig `json:"strategies,omitempty"` // empty = every strategy
}

// SeriesRequest is the query for GET /api/v1/series
type SeriesRequest struct {
	Symbol string `form:"symbol"`
	Days   int    `form:"days"`
	Years  int    `form:"years"` // 252 bars per year; ignored when days is set
	Seed   uint64 `form:"seed"`
}

// PredictionRequest generates history and a forecast continuing it
type PredictionRequest struct {
	Symbol      string `json:"symbol,omitempty"`
	Model       string `json:"model,omitempty"`
	HistoryDays int    `json:"history_days,omitempty" binding:"gte=0"` // default: 90
	Horizon     int    `json:"horizon" binding:"required,min=1,max=365"`
	Seed        uint64 `json:"seed,omitempty"`
}

// TrainingStreamRequest is the query for GET /api/v1/training/stream
type TrainingStreamRequest struct {
	Architecture string  `form:"architecture"`
	Units1       int     `form:"units1"`
	Units2       int     `form:"units2"`
	Dropout      float64 `form:"dropout"`
	Heads        int     `form:"heads"`
	BatchSize    int     `form:"batch_size"`
	LearningRate float64 `form:"learning_rate"`
	Criterion    string  `form:"criterion"`
	Value        float64 `form:"value"`
	Window       int     `form:"window"`
	IntervalMS   int     `form:"interval_ms"` // default: 300
	Seed         uint64  `form:"seed"`
}

// DateRange parses the request dates. The end must be after the start.
func (r BacktestRequest) DateRange() (time.Time, time.Time, error) {
	return parseRange(r.StartDate, r.EndDate)
}

// DateRange parses the request dates. The end must be after the start.
func (r CompareBacktestRequest) DateRange() (time.Time, time.Time, error) {
	return parseRange(r.StartDate, r.EndDate)
}

func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := ParseDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date: %w", err)
	}
	end, err := ParseDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date: %w", err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, &model.InvalidRangeError{Start: start, End: end}
	}
	return start, end, nil
}

// ParseDate accepts any layout dateparse understands and returns the UTC calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return model.Day(t), nil
}

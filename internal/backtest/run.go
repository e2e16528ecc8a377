package backtest

import (
	"context"
	"time"

	"tss-backtest/internal/data"
	"tss-backtest/internal/model"
	"tss-backtest/internal/strategy"
)

// RunRange generates a series covering [start, end) and runs strat over it.
// The range is checked before anything is generated. One calendar day
// becomes one bar, and the generator and strat share opts.Rand.
func (e *Engine) RunRange(ctx context.Context, strat strategy.Strategy, start, end time.Time, opts Options) (*Result, []model.Bar, error) {
	start, end = model.Day(start), model.Day(end)
	if !end.After(start) {
		return nil, nil, &model.InvalidRangeError{Start: start, End: end}
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, nil, err
	}

	bars, err := data.NewGenerator(opts.Rand).Generate(start, model.DaysBetween(start, end))
	if err != nil {
		return nil, nil, err
	}
	res, err := e.Run(ctx, bars, strat, opts)
	if err != nil {
		return nil, nil, err
	}
	return res, bars, nil
}

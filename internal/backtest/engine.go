package backtest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"tss-backtest/internal/data"
	"tss-backtest/internal/model"
	"tss-backtest/internal/strategy"
)

// Options configures one run.
type Options struct {
	// InitialCapital defaults to DefaultInitialCapital when zero.
	InitialCapital float64
	// Rand is the run's private random source. A nil Rand gets a randomly seeded one.
	Rand *rand.Rand
}

func (o Options) withDefaults() (Options, error) {
	if o.InitialCapital == 0 {
		o.InitialCapital = DefaultInitialCapital
	}
	if o.InitialCapital < 0 || math.IsNaN(o.InitialCapital) || math.IsInf(o.InitialCapital, 0) {
		return o, fmt.Errorf("initial capital must be a positive finite amount, got %v", o.InitialCapital)
	}
	if o.Rand == nil {
		o.Rand = data.NewRand(0)
	}
	return o, nil
}

type Engine struct {
	log logrus.FieldLogger
}

func New() *Engine { return &Engine{log: logrus.StandardLogger()} }

// WithLogger returns a copy of the engine that logs to l.
func (e *Engine) WithLogger(l logrus.FieldLogger) *Engine {
	return &Engine{log: l}
}

// Run simulates strat over bars in a single pass. Day 0 only seeds the
// comparison; signals are evaluated from day 1, so the equity curve has
// len(bars)-1 points.
func (e *Engine) Run(ctx context.Context, bars []model.Bar, strat strategy.Strategy, opts Options) (*Result, error) {
	if strat == nil {
		return nil, errors.New("strategy is nil")
	}
	if len(bars) < 2 {
		return nil, &model.InsufficientDataError{Bars: len(bars), Need: 2}
	}
	if err := model.ValidateSeries(bars); err != nil {
		return nil, fmt.Errorf("invalid series: %w", err)
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	initial := opts.InitialCapital
	firstClose := bars[0].Close
	ledger := Ledger{Cash: initial}

	trades := make([]Trade, 0)
	curve := make([]EquityPoint, 0, len(bars)-1)
	returns := make([]float64, 0, len(bars)-1)

	// Round trips are classified against the most recent BUY.
	lastBuyPrice, haveBuy := 0.0, false
	wins, losses := 0, 0
	peak := initial
	maxDD := 0.0
	prevValue := initial
	buyAndHold := initial

	for idx := 1; idx < len(bars); idx++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		today, yesterday := bars[idx], bars[idx-1]

		sig := strat.Decide(strategy.Context{
			Index:     idx,
			Today:     today,
			Yesterday: yesterday,
			HasCash:   ledger.Cash > 0,
			HasShares: ledger.Shares > 0,
			Rand:      opts.Rand,
		})

		switch {
		case sig == model.SignalBuy && ledger.Cash > 0:
			qty := ledger.Buy(today.Close)
			trades = append(trades, Trade{Kind: model.SignalBuy, Index: idx, Date: today.Date, Price: today.Close, Shares: qty})
			lastBuyPrice, haveBuy = today.Close, true
		case sig == model.SignalSell && ledger.Shares > 0:
			qty := ledger.Sell(today.Close)
			trades = append(trades, Trade{Kind: model.SignalSell, Index: idx, Date: today.Date, Price: today.Close, Shares: qty})
			if haveBuy {
				if today.Close > lastBuyPrice {
					wins++
				} else {
					losses++
				}
			}
		}

		value := ledger.Value(today.Close)
		if value > peak {
			peak = value
		}
		if peak > 0 {
			if dd := (peak - value) / peak; dd > maxDD {
				maxDD = dd
			}
		}
		returns = append(returns, value/prevValue-1)
		prevValue = value
		buyAndHold = initial * today.Close / firstClose

		curve = append(curve, EquityPoint{
			Index:           idx,
			Date:            today.Date,
			PortfolioValue:  round2(value),
			BuyAndHoldValue: round2(buyAndHold),
			Cash:            ledger.Cash,
			Shares:          ledger.Shares,
			MaxDrawdown:     maxDD,
		})
	}

	res := &Result{
		Strategy:       strat.ID(),
		Start:          bars[0].Date,
		End:            bars[len(bars)-1].Date,
		InitialCapital: initial,
		Trades:         trades,
		EquityCurve:    curve,
		Final:          ledger,
		Metrics: ComputeMetrics(MetricsInput{
			Trades:          trades,
			Wins:            wins,
			Losses:          losses,
			InitialCapital:  initial,
			FinalValue:      prevValue,
			BuyAndHoldFinal: buyAndHold,
			MaxDrawdown:     maxDD,
			DailyReturns:    returns,
		}),
	}

	e.log.WithFields(logrus.Fields{
		"strategy":     res.Strategy,
		"bars":         len(bars),
		"trades":       len(trades),
		"total_return": res.Metrics.TotalReturn,
	}).Debug("backtest completed")
	return res, nil
}

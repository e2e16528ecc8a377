package strategy

import "tss-backtest/internal/model"

// ValueParams accumulates on a fixed cadence: BUY on every day index that is
// a multiple of Period. It never sells. A non-positive Period always holds.
type ValueParams struct {
	Period int
}

var DefaultValueParams = ValueParams{Period: 50}

type ValueStrategy struct {
	Params ValueParams
}

func (s *ValueStrategy) ID() model.StrategyID { return model.StrategyValue }
func (s *ValueStrategy) Name() string         { return "value" }

func (s *ValueStrategy) Decide(ctx Context) model.Signal {
	if s.Params.Period <= 0 {
		return model.SignalHold
	}
	if ctx.Index%s.Params.Period == 0 && ctx.HasCash {
		return model.SignalBuy
	}
	return model.SignalHold
}

package strategy

import "tss-backtest/internal/model"

// NeuralParams stands in for a model-driven policy: one uniform draw per day,
// BUY below BuyBelow, SELL above SellAbove.
type NeuralParams struct {
	BuyBelow  float64
	SellAbove float64
}

var DefaultNeuralParams = NeuralParams{BuyBelow: 0.1, SellAbove: 0.9}

type NeuralStrategy struct {
	Params NeuralParams
}

func (s *NeuralStrategy) ID() model.StrategyID { return model.StrategyNeural }
func (s *NeuralStrategy) Name() string         { return "neural" }

// Decide draws exactly once per call, even when the ledger gates the result.
func (s *NeuralStrategy) Decide(ctx Context) model.Signal {
	if ctx.Rand == nil {
		return model.SignalHold
	}
	x := ctx.Rand.Float64()
	switch {
	case x < s.Params.BuyBelow && ctx.HasCash:
		return model.SignalBuy
	case x > s.Params.SellAbove && ctx.HasShares:
		return model.SignalSell
	default:
		return model.SignalHold
	}
}

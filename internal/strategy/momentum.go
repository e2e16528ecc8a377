package strategy

import "tss-backtest/internal/model"

// MomentumParams implements "follow strength, cut losses fast":
// - BUY when the day's change is above BuyAbove
// - SELL when it is below SellBelow
type MomentumParams struct {
	BuyAbove  float64
	SellBelow float64
}

var DefaultMomentumParams = MomentumParams{BuyAbove: 0.02, SellBelow: -0.015}

type MomentumStrategy struct {
	Params MomentumParams
}

func (s *MomentumStrategy) ID() model.StrategyID { return model.StrategyMomentum }
func (s *MomentumStrategy) Name() string         { return "momentum" }

func (s *MomentumStrategy) Decide(ctx Context) model.Signal {
	change := ctx.PriceChange()
	switch {
	case change > s.Params.BuyAbove && ctx.HasCash:
		return model.SignalBuy
	case change < s.Params.SellBelow && ctx.HasShares:
		return model.SignalSell
	default:
		return model.SignalHold
	}
}

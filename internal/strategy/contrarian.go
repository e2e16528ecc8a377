package strategy

import "tss-backtest/internal/model"

// ContrarianParams buys sharp drops and sells sharp rallies.
type ContrarianParams struct {
	BuyBelow  float64
	SellAbove float64
}

var DefaultContrarianParams = ContrarianParams{BuyBelow: -0.03, SellAbove: 0.03}

type ContrarianStrategy struct {
	Params ContrarianParams
}

func (s *ContrarianStrategy) ID() model.StrategyID { return model.StrategyContrarian }
func (s *ContrarianStrategy) Name() string         { return "contrarian" }

func (s *ContrarianStrategy) Decide(ctx Context) model.Signal {
	change := ctx.PriceChange()
	switch {
	case change < s.Params.BuyBelow && ctx.HasCash:
		return model.SignalBuy
	case change > s.Params.SellAbove && ctx.HasShares:
		return model.SignalSell
	default:
		return model.SignalHold
	}
}

package analysis

import (
	"sort"

	"tss-backtest/internal/backtest"
	"tss-backtest/internal/model"
)

type RankedResult struct {
	Rank     int
	Strategy model.StrategyID
	Result   *backtest.Result
	// ExcessReturn is the strategy's total return over buy-and-hold.
	ExcessReturn float64
}

// RankByTotalReturn sorts results descending by total return, ties by strategy id.
// Nil results are skipped.
func RankByTotalReturn(byStrategy map[model.StrategyID]*backtest.Result) []RankedResult {
	out := make([]RankedResult, 0, len(byStrategy))
	for id, res := range byStrategy {
		if res == nil {
			continue
		}
		out = append(out, RankedResult{
			Strategy:     id,
			Result:       res,
			ExcessReturn: res.Metrics.TotalReturn - res.Metrics.BuyAndHoldReturn,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := out[i].Result.Metrics.TotalReturn, out[j].Result.Metrics.TotalReturn
		if ri != rj {
			return ri > rj
		}
		return out[i].Strategy < out[j].Strategy
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

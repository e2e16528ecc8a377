package backtest

import (
	"math"

	"github.com/shopspring/decimal"
)

// TradingDaysPerYear annualizes daily statistics.
const TradingDaysPerYear = 252

// Metrics summarizes a completed run.
type Metrics struct {
	TotalReturn      float64
	SharpeRatio      float64
	MaxDrawdown      float64
	WinRate          float64
	BuyAndHoldReturn float64

	TotalTrades int
	Wins        int
	Losses      int
	FinalValue  float64
}

// MetricsInput is what the simulator hands to ComputeMetrics.
type MetricsInput struct {
	Trades          []Trade
	Wins            int
	Losses          int
	InitialCapital  float64
	FinalValue      float64
	BuyAndHoldFinal float64
	MaxDrawdown     float64
	DailyReturns    []float64
}

// ComputeMetrics reduces a run into summary metrics. MaxDrawdown passes through.
func ComputeMetrics(in MetricsInput) Metrics {
	m := Metrics{
		MaxDrawdown: in.MaxDrawdown,
		TotalTrades: len(in.Trades),
		Wins:        in.Wins,
		Losses:      in.Losses,
		FinalValue:  in.FinalValue,
		SharpeRatio: SharpeRatio(in.DailyReturns),
	}
	if in.InitialCapital > 0 {
		m.TotalReturn = (in.FinalValue - in.InitialCapital) / in.InitialCapital
		m.BuyAndHoldReturn = (in.BuyAndHoldFinal - in.InitialCapital) / in.InitialCapital
	}
	if closed := in.Wins + in.Losses; closed > 0 {
		m.WinRate = float64(in.Wins) / float64(closed)
	}
	return m
}

// SharpeRatio is mean daily return over its sample standard deviation,
// annualized by sqrt(252), with a zero risk-free rate. It is 0 for fewer
// than two returns or zero variance.
func SharpeRatio(returns []float64) float64 {
	n := len(returns)
	if n < 2 {
		return 0
	}
	sum := 0.0
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(n)

	ss := 0.0
	for _, r := range returns {
		d := r - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(n-1))
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	return mean / std * math.Sqrt(TradingDaysPerYear)
}

func round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

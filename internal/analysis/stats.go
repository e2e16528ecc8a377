package analysis

import (
	"math"
	"sort"
	"time"

	"tss-backtest/internal/model"
)

// SeriesStats is the summary shown next to a price chart.
type SeriesStats struct {
	Count int

	Start time.Time
	End   time.Time

	MinClose  float64
	MaxClose  float64
	MeanClose float64
	P05Close  float64
	P95Close  float64

	FirstClose  float64
	LastClose   float64
	TotalReturn float64

	// MeanDailyReturn and Volatility are computed over close-to-close returns.
	// Volatility is the sample standard deviation annualized by sqrt(252).
	MeanDailyReturn float64
	Volatility      float64

	TotalVolume int64
}

func ComputeSeriesStats(bars []model.Bar) SeriesStats {
	s := SeriesStats{}
	if len(bars) == 0 {
		return s
	}
	s.Count = len(bars)
	s.Start = bars[0].Date
	s.End = bars[len(bars)-1].Date
	s.FirstClose = bars[0].Close
	s.LastClose = bars[len(bars)-1].Close
	s.TotalReturn = s.LastClose/s.FirstClose - 1

	sum := 0.0
	minv := math.Inf(1)
	maxv := math.Inf(-1)
	vals := make([]float64, 0, len(bars))
	for _, b := range bars {
		v := b.Close
		vals = append(vals, v)
		sum += v
		if v < minv {
			minv = v
		}
		if v > maxv {
			maxv = v
		}
		s.TotalVolume += b.Volume
	}
	sort.Float64s(vals)
	s.MinClose = minv
	s.MaxClose = maxv
	s.MeanClose = sum / float64(len(vals))
	s.P05Close = percentileSorted(vals, 0.05)
	s.P95Close = percentileSorted(vals, 0.95)

	if len(bars) > 1 {
		rets := make([]float64, 0, len(bars)-1)
		for i := 1; i < len(bars); i++ {
			rets = append(rets, bars[i].Close/bars[i-1].Close-1)
		}
		mean, std := meanStd(rets)
		s.MeanDailyReturn = mean
		s.Volatility = std * math.Sqrt(tradingDaysPerYear)
	}
	return s
}

const tradingDaysPerYear = 252

func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	if len(xs) < 2 {
		return mean, 0
	}
	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(xs)-1))
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

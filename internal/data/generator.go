package data

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"tss-backtest/internal/model"
)

const (
	defaultMinStartPrice = 150.0
	defaultMaxStartPrice = 200.0

	// driftRegimeDays is how often the long-run drift is resampled.
	driftRegimeDays = 100
	// maxDrift bounds the per-day drift in either direction.
	maxDrift = 0.001
	// noiseBand is the full width of the daily close-to-close noise.
	noiseBand = 0.04
	// openBand is the full width of the open's gap from the previous close.
	openBand = 0.01
	// wickBand bounds how far high/low reach past the open/close body.
	wickBand = 0.02

	minVolume   = 1_000_000
	volumeRange = 5_000_000

	// forecastBand is the tighter noise band used when extrapolating.
	forecastBand = 0.02
)

// Generator synthesizes daily OHLCV bars. It stands in for a market-data
// fetch; output is only as deterministic as its Rand.
type Generator struct {
	Rand *rand.Rand

	MinStartPrice float64
	MaxStartPrice float64
}

// NewGenerator returns a Generator drawing from r with the default
// start-price range [150, 200).
func NewGenerator(r *rand.Rand) *Generator {
	return &Generator{
		Rand:          r,
		MinStartPrice: defaultMinStartPrice,
		MaxStartPrice: defaultMaxStartPrice,
	}
}

// NewRand returns a PCG-backed source for seed. Seed 0 picks a random seed.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// GenerateSeries returns days bars ending yesterday, matching how the
// dashboard requests "the last N days".
func (g *Generator) GenerateSeries(days int) ([]model.Bar, error) {
	start := model.Day(time.Now()).AddDate(0, 0, -days)
	return g.Generate(start, days)
}

// Generate returns exactly days consecutive calendar-day bars starting at start.
func (g *Generator) Generate(start time.Time, days int) ([]model.Bar, error) {
	if days <= 0 {
		return nil, &model.InvalidRangeError{Days: days}
	}
	r := g.Rand
	start = model.Day(start)

	prevClose := g.MinStartPrice + r.Float64()*(g.MaxStartPrice-g.MinStartPrice)
	drift := 0.0
	bars := make([]model.Bar, 0, days)

	for i := 0; i < days; i++ {
		if i%driftRegimeDays == 0 {
			drift = (r.Float64()*2 - 1) * maxDrift
		}
		ret := drift + (r.Float64()-0.5)*noiseBand
		closePx := prevClose * (1 + ret)
		openPx := prevClose * (1 + (r.Float64()-0.5)*openBand)
		high := math.Max(openPx, closePx) * (1 + r.Float64()*wickBand)
		low := math.Min(openPx, closePx) * (1 - r.Float64()*wickBand)

		b := model.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   openPx,
			High:   high,
			Low:    low,
			Close:  closePx,
			Volume: minVolume + r.Int64N(volumeRange),
		}
		mustValid(b)
		bars = append(bars, b)
		prevClose = closePx
	}
	return bars, nil
}

// Forecast extrapolates horizon bars after the last bar of history.
// Forecast bars carry zero volume.
func (g *Generator) Forecast(history []model.Bar, horizon int) ([]model.Bar, error) {
	if len(history) == 0 {
		return nil, &model.InsufficientDataError{Bars: 0, Need: 1}
	}
	if horizon <= 0 {
		return nil, &model.InvalidRangeError{Days: horizon}
	}
	r := g.Rand
	last := history[len(history)-1]
	prevClose := last.Close
	out := make([]model.Bar, 0, horizon)

	for i := 1; i <= horizon; i++ {
		openPx := prevClose * (1 + (r.Float64()-0.5)*forecastBand)
		high := math.Max(openPx, prevClose) * (1 + r.Float64()*forecastBand)
		low := math.Min(openPx, prevClose) * (1 - r.Float64()*forecastBand)
		closePx := low + (high-low)*r.Float64()

		b := model.Bar{
			Date:  model.Day(last.Date).AddDate(0, 0, i),
			Open:  openPx,
			High:  high,
			Low:   low,
			Close: closePx,
		}
		mustValid(b)
		out = append(out, b)
		prevClose = closePx
	}
	return out, nil
}

// mustValid panics on a bar the generator should never emit.
func mustValid(b model.Bar) {
	if err := b.Validate(); err != nil {
		panic(fmt.Sprintf("generator produced invalid bar on %s: %v", b.Date.Format("2006-01-02"), err))
	}
}

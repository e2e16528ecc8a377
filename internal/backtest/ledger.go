package backtest

import (
	"time"

	"tss-backtest/internal/model"
)

// TradeFraction is the share of cash spent on a BUY and the share of
// holdings liquidated on a SELL.
const TradeFraction = 0.5

// DefaultInitialCapital is used when Options leaves InitialCapital unset.
const DefaultInitialCapital = 10000.0

// Ledger is a run's cash and share holdings. It belongs to exactly one run.
type Ledger struct {
	Cash   float64
	Shares float64
}

// Buy spends TradeFraction of cash at price and returns the shares bought.
func (l *Ledger) Buy(price float64) float64 {
	spend := l.Cash * TradeFraction
	qty := spend / price
	l.Cash -= spend
	l.Shares += qty
	return qty
}

// Sell liquidates TradeFraction of holdings at price and returns the shares sold.
func (l *Ledger) Sell(price float64) float64 {
	qty := l.Shares * TradeFraction
	l.Shares -= qty
	l.Cash += qty * price
	return qty
}

// Value marks the ledger to price.
func (l Ledger) Value(price float64) float64 {
	return l.Cash + l.Shares*price
}

// Trade is one executed BUY or SELL. Trades are appended and never mutated.
type Trade struct {
	Kind   model.Signal
	Index  int
	Date   time.Time
	Price  float64
	Shares float64
}

// Value is the cash amount that changed hands.
func (t Trade) Value() float64 { return t.Price * t.Shares }

// EquityPoint is the end-of-day snapshot for one simulated day.
// PortfolioValue and BuyAndHoldValue are rounded to cents.
type EquityPoint struct {
	Index int
	Date  time.Time

	PortfolioValue  float64
	BuyAndHoldValue float64

	Cash   float64
	Shares float64

	// MaxDrawdown is the running maximum drawdown up to and including this day.
	MaxDrawdown float64
}

// Result is the output of one backtest run.
type Result struct {
	Strategy       model.StrategyID
	Start          time.Time
	End            time.Time
	InitialCapital float64

	Trades      []Trade
	EquityCurve []EquityPoint
	Final       Ledger
	Metrics     Metrics
}

package model

// Signal is the trading decision for one day.
// Keep these values stable; they are intended for CSV and JSON output.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

func (s Signal) String() string { return string(s) }

package models

import (
	"time"

	"tss-backtest/internal/analysis"
	"tss-backtest/internal/backtest"
	"tss-backtest/internal/model"
	"tss-backtest/internal/strategy"
)

const dateLayout = "2006-01-02"

// BacktestResponse represents the response from a backtest run
type BacktestResponse struct {
	ID          string          `json:"id,omitempty"`
	Status      string          `json:"status"`
	Strategy    string          `json:"strategy"`
	Seed        uint64          `json:"seed"`
	CreatedAt   time.Time       `json:"created_at"`
	Window      TimeWindow      `json:"backtest_window"`
	Summary     BacktestSummary `json:"summary"`
	EquityCurve []EquityPoint   `json:"equity_curve,omitempty"`
	Trades      []TradeRow      `json:"trades,omitempty"`
}

// BacktestSummary contains the run metrics
type BacktestSummary struct {
	TotalReturn      float64 `json:"total_return"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	WinRate          float64 `json:"win_rate"`
	BuyAndHoldReturn float64 `json:"buy_and_hold_return"`
	TotalTrades      int     `json:"total_trades"`
	Wins             int     `json:"wins"`
	Losses           int     `json:"losses"`
	InitialCapital   float64 `json:"initial_capital"`
	FinalValue       float64 `json:"final_value"`
	TotalDays        int     `json:"total_days"`
}

// TimeWindow is an inclusive date range
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// EquityPoint is one day of the equity curve
type EquityPoint struct {
	Date            string  `json:"date"`
	PortfolioValue  float64 `json:"portfolio_value"`
	BuyAndHoldValue float64 `json:"buy_and_hold_value"`
}

// TradeRow is one executed trade
type TradeRow struct {
	Index  int     `json:"index"`
	Date   string  `json:"date"`
	Kind   string  `json:"kind"` // "BUY", "SELL"
	Price  float64 `json:"price"`
	Shares float64 `json:"shares"`
	Value  float64 `json:"value"`
}

// CompareBacktestResponse represents the response from a comparison
type CompareBacktestResponse struct {
	Seed       uint64             `json:"seed"`
	Window     TimeWindow         `json:"backtest_window"`
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one strategy
type ComparisonResult struct {
	Rank         int             `json:"rank"`
	Strategy     string          `json:"strategy"`
	Name         string          `json:"name"`
	ExcessReturn float64         `json:"excess_return"`
	Summary      BacktestSummary `json:"summary"`
}

// StrategyInfo represents information about a strategy
type StrategyInfo struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Style         string          `json:"style"`
	Philosophy    string          `json:"philosophy"`
	Risk          string          `json:"risk"`
	HoldingPeriod string          `json:"holding_period"`
	BuySignals    []string        `json:"buy_signals"`
	SellSignals   []string        `json:"sell_signals"`
	IdealFor      string          `json:"ideal_for"`
	Parameters    []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes a strategy parameter
type ParameterInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "float", "int"
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

// BarRow is one OHLCV bar
type BarRow struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// SeriesResponse is a generated price series with its summary
type SeriesResponse struct {
	Symbol string      `json:"symbol"`
	Seed   uint64      `json:"seed"`
	Bars   []BarRow    `json:"bars"`
	Stats  SeriesStats `json:"stats"`
}

// SeriesStats mirrors analysis.SeriesStats
type SeriesStats struct {
	Count           int        `json:"count"`
	Window          TimeWindow `json:"window"`
	MinClose        float64    `json:"min_close"`
	MaxClose        float64    `json:"max_close"`
	MeanClose       float64    `json:"mean_close"`
	P05Close        float64    `json:"p05_close"`
	P95Close        float64    `json:"p95_close"`
	TotalReturn     float64    `json:"total_return"`
	MeanDailyReturn float64    `json:"mean_daily_return"`
	Volatility      float64    `json:"volatility"`
	TotalVolume     int64      `json:"total_volume"`
}

// PredictionResponse carries the history a forecast was built from
type PredictionResponse struct {
	Symbol      string   `json:"symbol"`
	Model       string   `json:"model"`
	Seed        uint64   `json:"seed"`
	History     []BarRow `json:"history"`
	Predictions []BarRow `json:"predictions"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func NewSummary(res *backtest.Result) BacktestSummary {
	m := res.Metrics
	return BacktestSummary{
		TotalReturn:      m.TotalReturn,
		SharpeRatio:      m.SharpeRatio,
		MaxDrawdown:      m.MaxDrawdown,
		WinRate:          m.WinRate,
		BuyAndHoldReturn: m.BuyAndHoldReturn,
		TotalTrades:      m.TotalTrades,
		Wins:             m.Wins,
		Losses:           m.Losses,
		InitialCapital:   res.InitialCapital,
		FinalValue:       m.FinalValue,
		TotalDays:        len(res.EquityCurve) + 1,
	}
}

func NewWindow(start, end time.Time) TimeWindow {
	return TimeWindow{Start: start.Format(dateLayout), End: end.Format(dateLayout)}
}

func NewEquityCurve(points []backtest.EquityPoint) []EquityPoint {
	out := make([]EquityPoint, len(points))
	for i, p := range points {
		out[i] = EquityPoint{
			Date:            p.Date.Format(dateLayout),
			PortfolioValue:  p.PortfolioValue,
			BuyAndHoldValue: p.BuyAndHoldValue,
		}
	}
	return out
}

func NewTradeRows(trades []backtest.Trade) []TradeRow {
	out := make([]TradeRow, len(trades))
	for i, t := range trades {
		out[i] = TradeRow{
			Index:  t.Index,
			Date:   t.Date.Format(dateLayout),
			Kind:   t.Kind.String(),
			Price:  t.Price,
			Shares: t.Shares,
			Value:  t.Value(),
		}
	}
	return out
}

func NewBarRows(bars []model.Bar) []BarRow {
	out := make([]BarRow, len(bars))
	for i, b := range bars {
		out[i] = BarRow{
			Date:   b.Date.Format(dateLayout),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	return out
}

func NewSeriesStats(s analysis.SeriesStats) SeriesStats {
	return SeriesStats{
		Count:           s.Count,
		Window:          NewWindow(s.Start, s.End),
		MinClose:        s.MinClose,
		MaxClose:        s.MaxClose,
		MeanClose:       s.MeanClose,
		P05Close:        s.P05Close,
		P95Close:        s.P95Close,
		TotalReturn:     s.TotalReturn,
		MeanDailyReturn: s.MeanDailyReturn,
		Volatility:      s.Volatility,
		TotalVolume:     s.TotalVolume,
	}
}

func NewStrategyInfo(d strategy.Details) StrategyInfo {
	params := make([]ParameterInfo, len(d.Parameters))
	for i, p := range d.Parameters {
		params[i] = ParameterInfo{Name: p.Name, Type: p.Type, Description: p.Description, Default: p.Default}
	}
	return StrategyInfo{
		ID:            string(d.ID),
		Name:          d.Name,
		Style:         d.Style,
		Philosophy:    d.Philosophy,
		Risk:          d.Risk,
		HoldingPeriod: d.HoldingPeriod,
		BuySignals:    d.BuySignals,
		SellSignals:   d.SellSignals,
		IdealFor:      d.IdealFor,
		Parameters:    params,
	}
}

package strategy

import "tss-backtest/internal/model"

// Parameter describes one tunable strategy parameter.
type Parameter struct {
	Name        string
	Type        string // "float", "int"
	Description string
	Default     any
}

// Details is the persona sheet shown when a user picks a strategy.
// The listed buy/sell signals describe the persona; the simulator acts on
// the simplified rules in Decide.
type Details struct {
	ID            model.StrategyID
	Name          string
	Style         string
	Philosophy    string
	Risk          string // "Low", "Medium", "High", "Adaptive"
	HoldingPeriod string
	BuySignals    []string
	SellSignals   []string
	IdealFor      string
	Parameters    []Parameter
}

var catalog = []Details{
	{
		ID:            model.StrategyValue,
		Name:          "Warren Buffett - Value Investing",
		Style:         model.StrategyValue.Style(),
		Philosophy:    "Buy quality companies at fair prices and hold for the long term",
		Risk:          "Low",
		HoldingPeriod: "6 months - 2 years",
		BuySignals:    []string{"P/E ratio below market average", "Debt/Equity < 0.5", "ROE > 15%", "Price near or below SMA 200"},
		SellSignals:   []string{"Deteriorating fundamentals", "Stop loss hit (-15%)"},
		IdealFor:      "Conservative investors with capital to protect and a long horizon",
		Parameters: []Parameter{
			{Name: "period", Type: "int", Description: "Accumulate every N trading days", Default: DefaultValueParams.Period},
		},
	},
	{
		ID:            model.StrategyContrarian,
		Name:          "Howard Marks - Contrarian",
		Style:         model.StrategyContrarian.Style(),
		Philosophy:    "Buy when others are fearful, sell when they are greedy",
		Risk:          "Medium",
		HoldingPeriod: "1-6 months",
		BuySignals:    []string{"RSI < 30 (oversold)", "VIX > 25 (high fear)", "Price below lower Bollinger band"},
		SellSignals:   []string{"RSI > 70 (overbought)", "VIX < 15 (complacency)", "Take profit +30%"},
		IdealFor:      "Patient investors with medium volatility tolerance",
		Parameters: []Parameter{
			{Name: "buy_below", Type: "float", Description: "Buy when the daily change is below this fraction", Default: DefaultContrarianParams.BuyBelow},
			{Name: "sell_above", Type: "float", Description: "Sell when the daily change is above this fraction", Default: DefaultContrarianParams.SellAbove},
		},
	},
	{
		ID:            model.StrategyMomentum,
		Name:          "Bill Ackman - Momentum/Activist",
		Style:         model.StrategyMomentum.Style(),
		Philosophy:    "Follow strength, cut losses quickly, let winners run",
		Risk:          "High",
		HoldingPeriod: "5 days - 2 months",
		BuySignals:    []string{"SMA 10 > SMA 20 > SMA 50", "MACD histogram > 0", "ADX > 25", "Volume > 1.2x average"},
		SellSignals:   []string{"SMA 10 < SMA 20", "Stop loss -8%", "Trailing stop -10%"},
		IdealFor:      "Active traders with high risk tolerance who monitor often",
		Parameters: []Parameter{
			{Name: "buy_above", Type: "float", Description: "Buy when the daily change is above this fraction", Default: DefaultMomentumParams.BuyAbove},
			{Name: "sell_below", Type: "float", Description: "Sell when the daily change is below this fraction", Default: DefaultMomentumParams.SellBelow},
		},
	},
	{
		ID:            model.StrategyNeural,
		Name:          "Pure Neural - Unbiased Learning",
		Style:         model.StrategyNeural.Style(),
		Philosophy:    "Let the data speak, no human bias",
		Risk:          "Adaptive",
		HoldingPeriod: "Model decides",
		BuySignals:    []string{"Model predictions", "Confidence threshold > 65%"},
		SellSignals:   []string{"Model predictions", "Confidence threshold > 65%"},
		IdealFor:      "Quantitative, experiment-minded investors who trust ML",
		Parameters: []Parameter{
			{Name: "buy_below", Type: "float", Description: "Buy when the daily draw is below this value", Default: DefaultNeuralParams.BuyBelow},
			{Name: "sell_above", Type: "float", Description: "Sell when the daily draw is above this value", Default: DefaultNeuralParams.SellAbove},
		},
	},
}

// Catalog returns the persona sheets in display order.
func Catalog() []Details {
	out := make([]Details, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the persona sheet for id.
func Lookup(id model.StrategyID) (Details, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Details{}, false
}

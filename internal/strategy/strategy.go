package strategy

import (
	"fmt"
	"math"
	"math/rand/v2"

	"tss-backtest/internal/model"
)

// Context is everything a strategy may look at for one day.
// HasCash and HasShares gate BUY and SELL respectively.
type Context struct {
	Index     int
	Today     model.Bar
	Yesterday model.Bar

	HasCash   bool
	HasShares bool

	// Rand is the run's private random source. Only the neural strategy draws from it.
	Rand *rand.Rand
}

// PriceChange is the close-to-close fractional change from yesterday to today.
func (c Context) PriceChange() float64 {
	return (c.Today.Close - c.Yesterday.Close) / c.Yesterday.Close
}

// Strategy maps one day's context to exactly one signal. Implementations
// carry parameters only; no state survives between calls.
type Strategy interface {
	ID() model.StrategyID
	Name() string
	Decide(ctx Context) model.Signal
}

// New builds the strategy for id, reading optional overrides from params
// (as decoded from YAML or JSON). Non-numeric values are rejected.
func New(id model.StrategyID, params map[string]any) (Strategy, error) {
	switch id {
	case model.StrategyValue:
		period, err := intParam(params, "period", DefaultValueParams.Period)
		if err != nil {
			return nil, fmt.Errorf("value: %w", err)
		}
		if period <= 0 {
			return nil, fmt.Errorf("value: period must be > 0, got %d", period)
		}
		return &ValueStrategy{Params: ValueParams{Period: period}}, nil
	case model.StrategyContrarian:
		var p ContrarianParams
		if err := numParams(params,
			numField{"buy_below", DefaultContrarianParams.BuyBelow, &p.BuyBelow},
			numField{"sell_above", DefaultContrarianParams.SellAbove, &p.SellAbove},
		); err != nil {
			return nil, fmt.Errorf("contrarian: %w", err)
		}
		return &ContrarianStrategy{Params: p}, nil
	case model.StrategyMomentum:
		var p MomentumParams
		if err := numParams(params,
			numField{"buy_above", DefaultMomentumParams.BuyAbove, &p.BuyAbove},
			numField{"sell_below", DefaultMomentumParams.SellBelow, &p.SellBelow},
		); err != nil {
			return nil, fmt.Errorf("momentum: %w", err)
		}
		return &MomentumStrategy{Params: p}, nil
	case model.StrategyNeural:
		var p NeuralParams
		if err := numParams(params,
			numField{"buy_below", DefaultNeuralParams.BuyBelow, &p.BuyBelow},
			numField{"sell_above", DefaultNeuralParams.SellAbove, &p.SellAbove},
		); err != nil {
			return nil, fmt.Errorf("neural: %w", err)
		}
		if p.BuyBelow < 0 || p.SellAbove > 1 || p.BuyBelow > p.SellAbove {
			return nil, fmt.Errorf("neural: thresholds must satisfy 0<=buy_below<=sell_above<=1")
		}
		return &NeuralStrategy{Params: p}, nil
	default:
		return nil, fmt.Errorf("unsupported strategy: %q", id)
	}
}

type numField struct {
	key string
	def float64
	dst *float64
}

func numParams(m map[string]any, fields ...numField) error {
	for _, f := range fields {
		v, err := numParam(m, f.key, f.def)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	return nil
}

// numParam returns m[key] as a finite number, or def when the key is absent or null.
func numParam(m map[string]any, key string, def float64) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return def, nil
	}
	var x float64
	switch n := v.(type) {
	case float64:
		x = n
	case float32:
		x = float64(n)
	case int:
		x = float64(n)
	case int64:
		x = float64(n)
	case uint64:
		x = float64(n)
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, v)
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("%s must be finite, got %v", key, x)
	}
	return x, nil
}

func intParam(m map[string]any, key string, def int) (int, error) {
	x, err := numParam(m, key, float64(def))
	if err != nil {
		return 0, err
	}
	if x != math.Trunc(x) || math.Abs(x) > math.MaxInt32 {
		return 0, fmt.Errorf("%s must be an integer, got %v", key, x)
	}
	return int(x), nil
}

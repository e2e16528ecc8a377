package training

import (
	"errors"
	"fmt"
	"strings"
)

type ModelType string

const (
	ModelLSTM        ModelType = "LSTM"
	ModelGRU         ModelType = "GRU"
	ModelTransformer ModelType = "Transformer"
	ModelEnsemble    ModelType = "Ensemble"
)

var ModelTypes = []ModelType{ModelLSTM, ModelGRU, ModelTransformer, ModelEnsemble}

// ParseModelType matches case-insensitively.
func ParseModelType(s string) (ModelType, error) {
	for _, m := range ModelTypes {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown architecture %q", s)
}

// ModelConfig describes the network the dashboard lets a user build.
type ModelConfig struct {
	Architecture ModelType `json:"architecture" yaml:"architecture"`
	Units1       int       `json:"units1" yaml:"units1"`
	Units2       int       `json:"units2" yaml:"units2"`
	Dropout      float64   `json:"dropout" yaml:"dropout"`
	// Heads is only meaningful for Transformer.
	Heads int `json:"heads,omitempty" yaml:"heads,omitempty"`
}

func DefaultModelConfig() ModelConfig {
	return ModelConfig{Architecture: ModelLSTM, Units1: 64, Units2: 32, Dropout: 0.2}
}

func (c ModelConfig) Validate() error {
	if _, err := ParseModelType(string(c.Architecture)); err != nil {
		return err
	}
	if c.Units1 <= 0 || c.Units2 <= 0 {
		return errors.New("units1 and units2 must be > 0")
	}
	if c.Dropout < 0 || c.Dropout > 0.5 {
		return fmt.Errorf("dropout must be in [0, 0.5], got %v", c.Dropout)
	}
	if c.Heads < 0 {
		return errors.New("heads must be >= 0")
	}
	return nil
}

type Params struct {
	BatchSize    int     `json:"batch_size" yaml:"batch_size"`
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`
}

func DefaultParams() Params { return Params{BatchSize: 32, LearningRate: 0.001} }

func (p Params) Validate() error {
	if p.BatchSize <= 0 {
		return errors.New("batch_size must be > 0")
	}
	if !(p.LearningRate > 0) {
		return errors.New("learning_rate must be > 0")
	}
	return nil
}

type StopCriterion string

const (
	StopEpoch       StopCriterion = "epoch"
	StopTime        StopCriterion = "time"
	StopLoss        StopCriterion = "loss"
	StopImprovement StopCriterion = "improvement"
)

// MaxEpochs bounds every criterion.
const MaxEpochs = 1000

// StoppingCriteria decides when a task ends.
//
//	epoch:       Value is the number of epochs.
//	time:        Value is a budget in minutes of simulated time.
//	loss:        stop once validation loss is <= Value.
//	improvement: stop when validation loss has not improved by at least
//	             Value over the last Window epochs.
type StoppingCriteria struct {
	Criterion StopCriterion `json:"criterion" yaml:"criterion"`
	Value     float64       `json:"value" yaml:"value"`
	Window    int           `json:"window,omitempty" yaml:"window,omitempty"`
}

func DefaultStoppingCriteria() StoppingCriteria {
	return StoppingCriteria{Criterion: StopEpoch, Value: 100}
}

func (s StoppingCriteria) Validate() error {
	switch s.Criterion {
	case StopEpoch, StopTime:
		if s.Value < 1 {
			return fmt.Errorf("%s criterion needs value >= 1", s.Criterion)
		}
	case StopLoss:
		if !(s.Value > 0) {
			return errors.New("loss criterion needs value > 0")
		}
	case StopImprovement:
		if s.Value < 0 || s.Window <= 0 {
			return errors.New("improvement criterion needs value >= 0 and window > 0")
		}
	default:
		return fmt.Errorf("unknown stopping criterion %q", s.Criterion)
	}
	return nil
}

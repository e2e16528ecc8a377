package training

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	lossFloor    = 0.001
	valLossFloor = 0.002
)

// Progress is emitted once per epoch.
type Progress struct {
	Epoch       int     `json:"epoch"`
	TotalEpochs int     `json:"total_epochs"`
	Loss        float64 `json:"loss"`
	ValLoss     float64 `json:"val_loss"`
	ETA         string  `json:"eta"`
}

// Task is a simulated training run. Nothing is learned: losses decay
// geometrically with noise. A Task advances only through Step or Run.
type Task struct {
	Model    ModelConfig
	Params   Params
	Stop     StoppingCriteria
	Interval time.Duration

	mu       sync.Mutex
	rng      *rand.Rand
	epoch    int
	total    int
	loss     float64
	valLoss  float64
	best     float64
	history  []Progress
	finished bool
}

func NewTask(model ModelConfig, params Params, stop StoppingCriteria, interval time.Duration, rng *rand.Rand) (*Task, error) {
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("model config: %w", err)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("training params: %w", err)
	}
	if err := stop.Validate(); err != nil {
		return nil, fmt.Errorf("stopping criteria: %w", err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be > 0, got %s", interval)
	}
	if rng == nil {
		return nil, fmt.Errorf("rng is nil")
	}

	t := &Task{
		Model:    model,
		Params:   params,
		Stop:     stop,
		Interval: interval,
		rng:      rng,
		loss:     0.5 + rng.Float64()*0.5,
		valLoss:  0.5 + rng.Float64()*0.5,
	}
	t.best = t.valLoss
	epochs := float64(MaxEpochs)
	switch stop.Criterion {
	case StopEpoch:
		epochs = math.Floor(stop.Value)
	case StopTime:
		epochs = math.Ceil(stop.Value * float64(time.Minute) / float64(interval))
	}
	t.total = int(math.Min(epochs, MaxEpochs))
	return t, nil
}

// Step advances one epoch. It returns false once the task has finished,
// without emitting anything.
func (t *Task) Step() (Progress, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.finished {
		return Progress{}, false
	}
	t.epoch++
	t.loss *= 0.95 - t.rng.Float64()*0.05
	t.valLoss *= 0.96 - t.rng.Float64()*0.05

	p := Progress{
		Epoch:       t.epoch,
		TotalEpochs: t.total,
		Loss:        math.Max(lossFloor, t.loss),
		ValLoss:     math.Max(valLossFloor, t.valLoss),
		ETA:         formatETA(time.Duration(t.total-t.epoch) * t.Interval),
	}
	t.history = append(t.history, p)
	t.finished = t.shouldStop(p)
	return p, true
}

func (t *Task) shouldStop(p Progress) bool {
	if p.Epoch >= t.total {
		return true
	}
	switch t.Stop.Criterion {
	case StopLoss:
		return p.ValLoss <= t.Stop.Value
	case StopImprovement:
		w := t.Stop.Window
		if len(t.history) <= w {
			return false
		}
		ref := t.history[len(t.history)-1-w].ValLoss
		return ref-p.ValLoss < t.Stop.Value
	}
	return false
}

// Run emits one Progress per Interval until the task finishes or ctx is
// done. It returns ctx.Err() when cancelled.
func (t *Task) Run(ctx context.Context, emit func(Progress)) error {
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	log := logrus.WithFields(logrus.Fields{
		"architecture": t.Model.Architecture,
		"criterion":    t.Stop.Criterion,
		"total_epochs": t.total,
	})
	log.Debug("training started")

	for {
		select {
		case <-ctx.Done():
			log.WithField("epoch", t.Epoch()).Debug("training stopped")
			return ctx.Err()
		case <-ticker.C:
			p, ok := t.Step()
			if !ok {
				return nil
			}
			emit(p)
			if t.Done() {
				log.WithField("epoch", p.Epoch).Debug("training completed")
				return nil
			}
		}
	}
}

func (t *Task) Epoch() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.epoch
}

func (t *Task) TotalEpochs() int { return t.total }

func (t *Task) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finished
}

// History returns a copy of every Progress emitted so far.
func (t *Task) History() []Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Progress, len(t.history))
	copy(out, t.history)
	return out
}

// formatETA renders d as HH:MM:SS.
func formatETA(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60)
}

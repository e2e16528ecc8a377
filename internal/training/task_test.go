package training

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRand(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed)) }

func newTask(t *testing.T, stop StoppingCriteria) *Task {
	t.Helper()
	task, err := NewTask(DefaultModelConfig(), DefaultParams(), stop, time.Millisecond, newRand(3))
	require.NoError(t, err)
	return task
}

func TestStepDecaysLossAndFinishes(t *testing.T) {
	task := newTask(t, StoppingCriteria{Criterion: StopEpoch, Value: 20})
	require.Equal(t, 20, task.TotalEpochs())

	var prev Progress
	for i := 1; i <= 20; i++ {
		p, ok := task.Step()
		require.True(t, ok)
		assert.Equal(t, i, p.Epoch)
		assert.Equal(t, 20, p.TotalEpochs)
		assert.GreaterOrEqual(t, p.Loss, lossFloor)
		assert.GreaterOrEqual(t, p.ValLoss, valLossFloor)
		if i > 1 {
			assert.LessOrEqual(t, p.Loss, prev.Loss)
			assert.LessOrEqual(t, p.ValLoss, prev.ValLoss)
		}
		prev = p
	}
	assert.True(t, task.Done())
	assert.Equal(t, "00:00:00", prev.ETA)

	_, ok := task.Step()
	assert.False(t, ok)
	assert.Len(t, task.History(), 20)
}

func TestLossFloors(t *testing.T) {
	task := newTask(t, StoppingCriteria{Criterion: StopEpoch, Value: 400})
	var last Progress
	for {
		p, ok := task.Step()
		if !ok {
			break
		}
		last = p
	}
	assert.Equal(t, lossFloor, last.Loss)
	assert.Equal(t, valLossFloor, last.ValLoss)
}

func TestSameSeedSameHistory(t *testing.T) {
	a := newTask(t, StoppingCriteria{Criterion: StopEpoch, Value: 10})
	b := newTask(t, StoppingCriteria{Criterion: StopEpoch, Value: 10})
	for i := 0; i < 10; i++ {
		a.Step()
		b.Step()
	}
	assert.Equal(t, a.History(), b.History())
}

func TestLossCriterionStopsEarly(t *testing.T) {
	task := newTask(t, StoppingCriteria{Criterion: StopLoss, Value: 0.1})
	assert.Equal(t, MaxEpochs, task.TotalEpochs())
	for {
		if _, ok := task.Step(); !ok {
			break
		}
	}
	h := task.History()
	assert.Less(t, len(h), MaxEpochs)
	assert.LessOrEqual(t, h[len(h)-1].ValLoss, 0.1)
	assert.Greater(t, h[len(h)-2].ValLoss, 0.1)
}

func TestImprovementCriterionStopsAtPlateau(t *testing.T) {
	task := newTask(t, StoppingCriteria{Criterion: StopImprovement, Value: 0.0001, Window: 5})
	for {
		if _, ok := task.Step(); !ok {
			break
		}
	}
	h := task.History()
	assert.Less(t, len(h), MaxEpochs)
	last := h[len(h)-1]
	assert.Less(t, h[len(h)-6].ValLoss-last.ValLoss, 0.0001)
}

func TestTimeCriterionDerivesEpochs(t *testing.T) {
	task, err := NewTask(DefaultModelConfig(), DefaultParams(), StoppingCriteria{Criterion: StopTime, Value: 1}, 300*time.Millisecond, newRand(1))
	require.NoError(t, err)
	assert.Equal(t, 200, task.TotalEpochs())

	p, _ := task.Step()
	assert.Equal(t, "00:01:00", p.ETA)
}

func TestRunEmitsUntilComplete(t *testing.T) {
	task := newTask(t, StoppingCriteria{Criterion: StopEpoch, Value: 5})
	var got []Progress
	err := task.Run(context.Background(), func(p Progress) { got = append(got, p) })
	require.NoError(t, err)
	assert.Len(t, got, 5)
	assert.Equal(t, task.History(), got)
}

func TestRunCancels(t *testing.T) {
	task, err := NewTask(DefaultModelConfig(), DefaultParams(), DefaultStoppingCriteria(), time.Hour, newRand(1))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = task.Run(ctx, func(Progress) { t.Fatal("unexpected progress") })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, task.Epoch())
	assert.False(t, task.Done())
}

func TestValidation(t *testing.T) {
	noWindow := StoppingCriteria{Criterion: StopImprovement, Value: 0.1}
	cases := map[string]func(*ModelConfig, *Params, *StoppingCriteria){
		"architecture": func(m *ModelConfig, _ *Params, _ *StoppingCriteria) { m.Architecture = "MLP" },
		"units":        func(m *ModelConfig, _ *Params, _ *StoppingCriteria) { m.Units2 = 0 },
		"dropout":      func(m *ModelConfig, _ *Params, _ *StoppingCriteria) { m.Dropout = 0.6 },
		"batch":        func(_ *ModelConfig, p *Params, _ *StoppingCriteria) { p.BatchSize = 0 },
		"lr":           func(_ *ModelConfig, p *Params, _ *StoppingCriteria) { p.LearningRate = 0 },
		"criterion":    func(_ *ModelConfig, _ *Params, s *StoppingCriteria) { s.Criterion = "never" },
		"epochs":       func(_ *ModelConfig, _ *Params, s *StoppingCriteria) { s.Value = 0 },
		"window":       func(_ *ModelConfig, _ *Params, s *StoppingCriteria) { *s = noWindow },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			m, p, s := DefaultModelConfig(), DefaultParams(), DefaultStoppingCriteria()
			mutate(&m, &p, &s)
			_, err := NewTask(m, p, s, time.Second, newRand(1))
			assert.Error(t, err)
		})
	}

	_, err := NewTask(DefaultModelConfig(), DefaultParams(), DefaultStoppingCriteria(), 0, newRand(1))
	assert.Error(t, err)
	_, err = NewTask(DefaultModelConfig(), DefaultParams(), DefaultStoppingCriteria(), time.Second, nil)
	assert.Error(t, err)

	m, err := ParseModelType("transformer")
	require.NoError(t, err)
	assert.Equal(t, ModelTransformer, m)
}

func TestEpochCriterionIsCapped(t *testing.T) {
	for _, v := range []float64{1001, 1e20} {
		task, err := NewTask(DefaultModelConfig(), DefaultParams(), StoppingCriteria{Criterion: StopEpoch, Value: v}, time.Second, newRand(1))
		require.NoError(t, err)
		assert.Equal(t, MaxEpochs, task.TotalEpochs(), v)

		p, ok := task.Step()
		require.True(t, ok)
		assert.Equal(t, MaxEpochs, p.TotalEpochs)
		assert.False(t, task.Done())
	}
}

func TestFormatETA(t *testing.T) {
	assert.Equal(t, "01:01:01", formatETA(time.Hour+time.Minute+time.Second))
	assert.Equal(t, "00:00:00", formatETA(-time.Second))
}

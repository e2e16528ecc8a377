package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tss-backtest/internal/api/models"
	"tss-backtest/internal/data"
	"tss-backtest/internal/telemetry"
	"tss-backtest/internal/training"
)

const defaultTrainingInterval = 300 * time.Millisecond

// TrainingHandler streams simulated training progress.
type TrainingHandler struct {
	log logrus.FieldLogger
}

func NewTrainingHandler(log logrus.FieldLogger) *TrainingHandler {
	return &TrainingHandler{log: log}
}

// StreamTraining handles GET /api/v1/training/stream as server-sent events.
// Events: "progress" per epoch, then "complete". Disconnecting stops the task.
func (h *TrainingHandler) StreamTraining(c *gin.Context) {
	var req models.TrainingStreamRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	task, err := newTrainingTask(req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_TRAINING_CONFIG", err.Error(), nil)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	telemetry.TrainingStreams.Inc()
	defer telemetry.TrainingStreams.Dec()

	events := make(chan training.Progress)
	done := make(chan error, 1)
	go func() {
		done <- task.Run(ctx, func(p training.Progress) {
			select {
			case events <- p:
			case <-ctx.Done():
			}
		})
		close(events)
	}()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	for p := range events {
		c.SSEvent("progress", p)
		c.Writer.Flush()
	}

	err = <-done
	log := h.log.WithFields(logrus.Fields{
		"architecture": task.Model.Architecture,
		"epochs":       task.Epoch(),
	})
	if errors.Is(err, context.Canceled) {
		log.Info("training stream closed by client")
		return
	}
	c.SSEvent("complete", gin.H{
		"epochs":  task.Epoch(),
		"history": len(task.History()),
	})
	c.Writer.Flush()
	log.Info("training stream completed")
}

func newTrainingTask(req models.TrainingStreamRequest) (*training.Task, error) {
	mc := training.DefaultModelConfig()
	if req.Architecture != "" {
		arch, err := training.ParseModelType(req.Architecture)
		if err != nil {
			return nil, err
		}
		mc.Architecture = arch
	}
	if req.Units1 != 0 {
		mc.Units1 = req.Units1
	}
	if req.Units2 != 0 {
		mc.Units2 = req.Units2
	}
	if req.Dropout != 0 {
		mc.Dropout = req.Dropout
	}
	mc.Heads = req.Heads

	params := training.DefaultParams()
	if req.BatchSize != 0 {
		params.BatchSize = req.BatchSize
	}
	if req.LearningRate != 0 {
		params.LearningRate = req.LearningRate
	}

	stop := training.DefaultStoppingCriteria()
	if req.Criterion != "" {
		stop = training.StoppingCriteria{
			Criterion: training.StopCriterion(req.Criterion),
			Value:     req.Value,
			Window:    req.Window,
		}
	} else if req.Value != 0 {
		stop.Value = req.Value
	}

	interval := defaultTrainingInterval
	if req.IntervalMS > 0 {
		interval = time.Duration(req.IntervalMS) * time.Millisecond
	}

	return training.NewTask(mc, params, stop, interval, data.NewRand(req.Seed))
}

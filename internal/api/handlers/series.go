package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tss-backtest/internal/analysis"
	"tss-backtest/internal/api/models"
	"tss-backtest/internal/config"
	"tss-backtest/internal/data"
	"tss-backtest/internal/model"
)

const (
	defaultSymbol      = "SYNTH"
	defaultSeriesDays  = 252
	defaultHistoryDays = 90
	tradingDaysPerYear = 252
)

// SeriesHandler serves generated price data for the dashboard and predictions.
type SeriesHandler struct {
	cfg config.BacktestConfig
}

func NewSeriesHandler(cfg *config.Config) *SeriesHandler {
	return &SeriesHandler{cfg: cfg.Backtest}
}

// GetSeries handles GET /api/v1/series
func (h *SeriesHandler) GetSeries(c *gin.Context) {
	var req models.SeriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	days := req.Days
	if days == 0 && req.Years != 0 {
		days = req.Years * tradingDaysPerYear
	}
	if days == 0 {
		days = defaultSeriesDays
	}
	if err := h.checkDays(days); err != nil {
		abortWithRunError(c, err)
		return
	}

	seed := resolveSeed(req.Seed, h.cfg.Seed)
	bars, err := data.NewGenerator(data.NewRand(seed)).GenerateSeries(days)
	if err != nil {
		abortWithRunError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SeriesResponse{
		Symbol: symbolOrDefault(req.Symbol),
		Seed:   seed,
		Bars:   models.NewBarRows(bars),
		Stats:  models.NewSeriesStats(analysis.ComputeSeriesStats(bars)),
	})
}

// CreatePredictions handles POST /api/v1/predictions
func (h *SeriesHandler) CreatePredictions(c *gin.Context) {
	var req models.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	historyDays := req.HistoryDays
	if historyDays == 0 {
		historyDays = defaultHistoryDays
	}
	if err := h.checkDays(historyDays); err != nil {
		abortWithRunError(c, err)
		return
	}

	seed := resolveSeed(req.Seed, h.cfg.Seed)
	gen := data.NewGenerator(data.NewRand(seed))
	history, err := gen.GenerateSeries(historyDays)
	if err != nil {
		abortWithRunError(c, err)
		return
	}
	predictions, err := gen.Forecast(history, req.Horizon)
	if err != nil {
		abortWithRunError(c, err)
		return
	}

	modelName := req.Model
	if modelName == "" {
		modelName = string(model.StrategyNeural)
	}
	c.JSON(http.StatusOK, models.PredictionResponse{
		Symbol:      symbolOrDefault(req.Symbol),
		Model:       modelName,
		Seed:        seed,
		History:     models.NewBarRows(history),
		Predictions: models.NewBarRows(predictions),
	})
}

func (h *SeriesHandler) checkDays(days int) error {
	if days <= 0 {
		return &model.InvalidRangeError{Days: days}
	}
	if h.cfg.MaxDays > 0 && days > h.cfg.MaxDays {
		return fmt.Errorf("%w: %d days > %d", errTooManyDays, days, h.cfg.MaxDays)
	}
	return nil
}

func symbolOrDefault(s string) string {
	if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
		return s
	}
	return defaultSymbol
}

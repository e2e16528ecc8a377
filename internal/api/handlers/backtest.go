package handlers

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"tss-backtest/internal/analysis"
	"tss-backtest/internal/api/models"
	"tss-backtest/internal/backtest"
	"tss-backtest/internal/cache"
	"tss-backtest/internal/config"
	"tss-backtest/internal/data"
	"tss-backtest/internal/model"
	"tss-backtest/internal/strategy"
	"tss-backtest/internal/telemetry"
)

// BacktestHandler handles backtest-related requests
type BacktestHandler struct {
	cfg     *config.Config
	engine  *backtest.Engine
	results *cache.ResultCache
	log     logrus.FieldLogger
}

// NewBacktestHandler creates a new backtest handler. Completed runs are kept in results.
func NewBacktestHandler(cfg *config.Config, results *cache.ResultCache, log logrus.FieldLogger) *BacktestHandler {
	return &BacktestHandler{
		cfg:     cfg,
		engine:  backtest.New().WithLogger(log),
		results: results,
		log:     log,
	}
}

// RunBacktest handles POST /api/v1/backtest
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	var req models.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	strat, params, err := h.buildStrategy(req.Strategy)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_STRATEGY", err.Error(), nil)
		return
	}

	start, end, err := req.DateRange()
	if !h.checkRange(c, start, end, err) {
		return
	}

	seed := resolveSeed(req.Seed, h.cfg.Backtest.Seed)
	opts := backtest.Options{
		InitialCapital: h.capital(req.InitialCapital),
		Rand:           data.NewRand(seed),
	}

	began := time.Now()
	result, _, err := h.engine.RunRange(c.Request.Context(), strat, start, end, opts)
	observeRun(strat.ID(), result, err, time.Since(began))
	if err != nil {
		abortWithRunError(c, err)
		return
	}

	run := &cache.Run{
		Strategy: strat.ID(),
		Params:   params,
		Seed:     seed,
		Result:   result,
	}
	h.results.Put(run)

	h.log.WithFields(logrus.Fields{
		"run_id":   run.ID,
		"strategy": run.Strategy,
		"days":     len(result.EquityCurve) + 1,
		"seed":     seed,
	}).Info("backtest completed")

	c.JSON(http.StatusOK, buildResponse(run, req.Options))
}

// GetBacktest handles GET /api/v1/backtest/:id
func (h *BacktestHandler) GetBacktest(c *gin.Context) {
	id := c.Param("id")
	run, ok := h.results.Get(id)
	if !ok {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND",
			"Backtest not found. Results are kept in memory for a limited time.",
			map[string]any{"id": id})
		return
	}
	opts := models.BacktestOptions{
		IncludeTrades: c.Query("include_trades") == "true",
		OmitCurve:     c.Query("omit_curve") == "true",
	}
	c.JSON(http.StatusOK, buildResponse(run, opts))
}

// CompareBacktests handles POST /api/v1/backtest/compare
func (h *BacktestHandler) CompareBacktests(c *gin.Context) {
	var req models.CompareBacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	specs := req.Strategies
	if len(specs) == 0 {
		for _, id := range model.StrategyIDs {
			specs = append(specs, models.StrategyConfig{Name: string(id)})
		}
	}
	strats := make([]strategy.Strategy, 0, len(specs))
	for _, spec := range specs {
		strat, _, err := h.buildStrategy(spec)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "INVALID_STRATEGY", err.Error(), nil)
			return
		}
		if slices.ContainsFunc(strats, func(s strategy.Strategy) bool { return s.ID() == strat.ID() }) {
			abortWithError(c, http.StatusBadRequest, "DUPLICATE_STRATEGY",
				fmt.Sprintf("strategy %s listed more than once", strat.ID()), nil)
			return
		}
		strats = append(strats, strat)
	}

	start, end, err := req.DateRange()
	if !h.checkRange(c, start, end, err) {
		return
	}

	seed := resolveSeed(req.Seed, h.cfg.Backtest.Seed)
	results, err := h.compare(c.Request.Context(), strats, start, end, h.capital(req.InitialCapital), seed)
	if err != nil {
		abortWithRunError(c, err)
		return
	}

	ranked := analysis.RankByTotalReturn(results)
	comparison := make([]models.ComparisonResult, 0, len(ranked))
	for _, r := range ranked {
		d, _ := strategy.Lookup(r.Strategy)
		comparison = append(comparison, models.ComparisonResult{
			Rank:         r.Rank,
			Strategy:     string(r.Strategy),
			Name:         d.Name,
			ExcessReturn: r.ExcessReturn,
			Summary:      models.NewSummary(r.Result),
		})
	}

	c.JSON(http.StatusOK, models.CompareBacktestResponse{
		Seed:       seed,
		Window:     models.NewWindow(start, end.AddDate(0, 0, -1)),
		Comparison: comparison,
	})
}

// compare runs every strategy over one shared series. Each run gets its own
// ledger and random stream; the series is read-only.
func (h *BacktestHandler) compare(ctx context.Context, strats []strategy.Strategy, start, end time.Time, capital float64, seed uint64) (map[model.StrategyID]*backtest.Result, error) {
	bars, err := data.NewGenerator(data.NewRand(seed)).Generate(start, model.DaysBetween(start, end))
	if err != nil {
		return nil, err
	}

	results := make([]*backtest.Result, len(strats))
	g, gctx := errgroup.WithContext(ctx)
	for i, strat := range strats {
		g.Go(func() error {
			began := time.Now()
			res, err := h.engine.Run(gctx, bars, strat, backtest.Options{
				InitialCapital: capital,
				Rand:           data.NewRand(strategySeed(seed, strat.ID())),
			})
			observeRun(strat.ID(), res, err, time.Since(began))
			if err != nil {
				return fmt.Errorf("%s: %w", strat.ID(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[model.StrategyID]*backtest.Result, len(strats))
	for i, strat := range strats {
		out[strat.ID()] = results[i]
	}
	return out, nil
}

// Helper methods

func (h *BacktestHandler) buildStrategy(req models.StrategyConfig) (strategy.Strategy, map[string]any, error) {
	id, err := model.ParseStrategyID(req.Name)
	if err != nil {
		return nil, nil, err
	}
	params := req.Params
	if params == nil {
		params = h.cfg.StrategyParams(id)
	}
	strat, err := strategy.New(id, params)
	if err != nil {
		return nil, nil, err
	}
	return strat, params, nil
}

// checkRange reports whether a parsed request range is usable, writing the
// error response itself when it is not.
func (h *BacktestHandler) checkRange(c *gin.Context, start, end time.Time, err error) bool {
	if err != nil {
		var invalid *model.InvalidRangeError
		if errors.As(err, &invalid) {
			abortWithRunError(c, err)
		} else {
			abortWithError(c, http.StatusBadRequest, "INVALID_DATE", err.Error(), nil)
		}
		return false
	}
	if days := model.DaysBetween(start, end); h.cfg.Backtest.MaxDays > 0 && days > h.cfg.Backtest.MaxDays {
		abortWithRunError(c, fmt.Errorf("%w: %d days > %d", errTooManyDays, days, h.cfg.Backtest.MaxDays))
		return false
	}
	return true
}

func (h *BacktestHandler) capital(requested float64) float64 {
	if requested != 0 {
		return requested
	}
	return h.cfg.Backtest.InitialCapital
}

func buildResponse(run *cache.Run, opts models.BacktestOptions) models.BacktestResponse {
	res := run.Result
	response := models.BacktestResponse{
		ID:        run.ID,
		Status:    "completed",
		Strategy:  string(run.Strategy),
		Seed:      run.Seed,
		CreatedAt: run.CreatedAt,
		Window:    models.NewWindow(res.Start, res.End),
		Summary:   models.NewSummary(res),
	}
	if !opts.OmitCurve {
		response.EquityCurve = models.NewEquityCurve(res.EquityCurve)
	}
	if opts.IncludeTrades {
		response.Trades = models.NewTradeRows(res.Trades)
	}
	return response
}

// resolveSeed prefers the request seed, then the configured one, then a fresh
// random seed. The result is never 0 so it can be reported and replayed.
func resolveSeed(requested, configured uint64) uint64 {
	if requested != 0 {
		return requested
	}
	if configured != 0 {
		return configured
	}
	return rand.Uint64() | 1
}

// strategySeed derives a per-strategy stream so results do not depend on request order.
func strategySeed(seed uint64, id model.StrategyID) uint64 {
	return seed + uint64(slices.Index(model.StrategyIDs, id)) + 1
}

func observeRun(id model.StrategyID, res *backtest.Result, err error, elapsed time.Duration) {
	outcome := "ok"
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = "canceled"
	case err != nil:
		outcome = "error"
	}
	telemetry.BacktestsTotal.WithLabelValues(string(id), outcome).Inc()
	if err != nil {
		return
	}
	telemetry.BacktestDuration.WithLabelValues(string(id)).Observe(elapsed.Seconds())
	for _, t := range res.Trades {
		telemetry.TradesTotal.WithLabelValues(string(id), t.Kind.String()).Inc()
	}
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"tss-backtest/internal/api/handlers"
	"tss-backtest/internal/api/middleware"
	"tss-backtest/internal/cache"
	"tss-backtest/internal/config"
)

// NewRouter wires middleware and routes. Completed backtests are kept in results.
func NewRouter(cfg *config.Config, results *cache.ResultCache, log logrus.FieldLogger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply middleware
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Metrics())

	// Initialize handlers
	backtestHandler := handlers.NewBacktestHandler(cfg, results, log)
	strategyHandler := handlers.NewStrategyHandler()
	seriesHandler := handlers.NewSeriesHandler(cfg)
	trainingHandler := handlers.NewTrainingHandler(log)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "cached_results": results.Len()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api/v1")
	{
		api.POST("/backtest", backtestHandler.RunBacktest)
		api.GET("/backtest/:id", backtestHandler.GetBacktest)
		api.POST("/backtest/compare", backtestHandler.CompareBacktests)

		api.GET("/strategies", strategyHandler.ListStrategies)
		api.GET("/strategies/:id", strategyHandler.GetStrategy)

		api.GET("/series", seriesHandler.GetSeries)
		api.POST("/predictions", seriesHandler.CreatePredictions)

		api.GET("/training/stream", trainingHandler.StreamTraining)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Not found",
			},
		})
	})

	return router
}

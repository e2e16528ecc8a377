package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tss-backtest/internal/api/models"
	"tss-backtest/internal/model"
	"tss-backtest/internal/strategy"
)

// StrategyHandler handles strategy-related requests
type StrategyHandler struct{}

// NewStrategyHandler creates a new strategy handler
func NewStrategyHandler() *StrategyHandler {
	return &StrategyHandler{}
}

// ListStrategies handles GET /api/v1/strategies
func (h *StrategyHandler) ListStrategies(c *gin.Context) {
	catalog := strategy.Catalog()
	strategies := make([]models.StrategyInfo, 0, len(catalog))
	for _, d := range catalog {
		strategies = append(strategies, models.NewStrategyInfo(d))
	}
	c.JSON(http.StatusOK, gin.H{"strategies": strategies})
}

// GetStrategy handles GET /api/v1/strategies/:id
func (h *StrategyHandler) GetStrategy(c *gin.Context) {
	id, err := model.ParseStrategyID(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		return
	}
	d, ok := strategy.Lookup(id)
	if !ok {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", "strategy has no catalog entry", map[string]any{"id": id})
		return
	}
	c.JSON(http.StatusOK, models.NewStrategyInfo(d))
}

package handlers

import (
	"net/http"

	"dma-backtest/internal/api/models"
	"dma-backtest/internal/config"

	"github.com/gin-gonic/gin"
)

// StrategyHandler handles strategy-related requests.
type StrategyHandler struct{}

// NewStrategyHandler creates a new strategy handler.
func NewStrategyHandler() *StrategyHandler {
	return &StrategyHandler{}
}

// ListStrategies handles GET /api/v1/strategies
func (h *StrategyHandler) ListStrategies(c *gin.Context) {
	defaults := config.DefaultStrategy()
	strategies := []models.StrategyInfo{
		{
			Name:        "dma",
			Description: "Moving-average rebalancing. Buys corrections (Strong: 200DMA > 50DMA > price, Moderate: 50DMA > 30DMA > price), takes partial profits once price crosses back above the 50/200 averages with the configured gain.",
			Parameters: []models.ParameterInfo{
				{
					Name:        "strong_buy_allocation_pct",
					Type:        "float",
					Description: "Percent of the sizing base allocated on a Strong Buy",
					Default:     defaults.StrongBuyAllocationPct,
				},
				{
					Name:        "moderate_buy_allocation_pct",
					Type:        "float",
					Description: "Percent of the sizing base allocated on a Moderate Buy",
					Default:     defaults.ModerateBuyAllocationPct,
				},
				{
					Name:        "sell_pct",
					Type:        "float",
					Description: "Percent of held units sold on a profit-taking signal (0 disables partial selling)",
					Default:     defaults.SellPct,
				},
				{
					Name:        "profit_threshold_pct",
					Type:        "float",
					Description: "Minimum gain over the last buy price before profit-taking",
					Default:     defaults.ProfitThresholdPct,
				},
				{
					Name:        "drop_threshold_pct",
					Type:        "float",
					Description: "Drawdown gate: price must sit this far below the running peak before buying (0 disables)",
					Default:     defaults.DropThresholdPct,
				},
				{
					Name:        "cooloff_days",
					Type:        "int",
					Description: "Calendar days after a sale during which further sells are blocked",
					Default:     defaults.CooloffDays,
				},
			},
		},
	}

	c.JSON(http.StatusOK, gin.H{"strategies": strategies})
}

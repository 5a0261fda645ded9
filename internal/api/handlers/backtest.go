package handlers

import (
	"errors"
	"net/http"

	"dma-backtest/internal/api"
	"dma-backtest/internal/api/models"
	"dma-backtest/internal/backtest"
	"dma-backtest/internal/config"
	"dma-backtest/internal/data"
	"dma-backtest/internal/indicator"
	"dma-backtest/internal/perf"
	"dma-backtest/internal/strategy"

	"github.com/gin-gonic/gin"
)

// BacktestHandler handles backtest-related requests.
type BacktestHandler struct {
	store *api.ResultStore
}

// NewBacktestHandler creates a new backtest handler backed by the given
// result store.
func NewBacktestHandler(store *api.ResultStore) *BacktestHandler {
	return &BacktestHandler{store: store}
}

// RunBacktest handles POST /api/v1/backtest
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	var req models.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	if req.Run.InitialCapital <= 0 {
		writeError(c, http.StatusBadRequest, "INVALID_CONFIG", errors.New("run.initial_capital must be > 0"))
		return
	}

	res, rep, err := runBacktest(c, req.Prices, req.Run, req.Strategy, req.Run.InitialCapital)
	if err != nil {
		// The error middleware turns this into the envelope.
		c.Error(err)
		return
	}

	resp := models.BacktestResponse{
		Status:  "completed",
		Summary: models.NewSummary(req.Symbol, res, rep),
		Trades:  models.NewTradeRows(res.Events),
	}
	resp.ID = h.store.Put(resp)
	if !req.Options.IncludeTrades {
		resp.Trades = nil
	}
	c.JSON(http.StatusOK, resp)
}

// GetTrades handles GET /api/v1/backtest/:id/trades
func (h *BacktestHandler) GetTrades(c *gin.Context) {
	id := c.Param("id")
	resp, ok := h.store.Get(id)
	if !ok {
		writeError(c, http.StatusNotFound, "RESULT_NOT_FOUND",
			errors.New("unknown or expired backtest id: "+id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "trades": resp.Trades})
}

// CompareBacktests handles POST /api/v1/backtest/compare
func (h *BacktestHandler) CompareBacktests(c *gin.Context) {
	var req models.CompareBacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	if req.Run.InitialCapital <= 0 {
		writeError(c, http.StatusBadRequest, "INVALID_CONFIG", errors.New("run.initial_capital must be > 0"))
		return
	}

	comparison := make([]models.ComparisonResult, 0, len(req.Variations))
	for _, variation := range req.Variations {
		merged := req.Base.Merge(variation.Strategy)
		res, rep, err := runBacktest(c, req.Prices, req.Run, merged, req.Run.InitialCapital)
		if err != nil {
			continue // skip failed variations
		}
		comparison = append(comparison, models.ComparisonResult{
			Name:    variation.Name,
			Summary: models.NewSummary(req.Symbol, res, rep),
		})
	}

	c.JSON(http.StatusOK, models.CompareBacktestResponse{Comparison: comparison})
}

// runBacktest is the shared request-to-report pipeline.
func runBacktest(c *gin.Context, rows []data.PriceRow, rc models.RunConfig, sc models.StrategyConfig, capital float64) (*backtest.Result, *perf.Report, error) {
	prices, err := data.ToSeries(rows)
	if err != nil {
		return nil, nil, err
	}
	series, err := indicator.Compute(prices)
	if err != nil {
		return nil, nil, err
	}
	strat, err := strategy.NewDMAStrategy(strategyParams(sc))
	if err != nil {
		return nil, nil, err
	}
	params, err := runParams(rc, capital)
	if err != nil {
		return nil, nil, err
	}
	eng, err := backtest.New(params, strat)
	if err != nil {
		return nil, nil, err
	}
	res, err := eng.Run(c.Request.Context(), series)
	if err != nil {
		return nil, nil, err
	}
	return res, perf.Evaluate(res, capital), nil
}

// strategyParams overlays request overrides on the stock defaults.
func strategyParams(sc models.StrategyConfig) strategy.DMAParams {
	return sc.Apply(config.DefaultStrategy()).ToParams()
}

// runParams resolves a request run block through the config package so
// CLI and API runs share one code path.
func runParams(rc models.RunConfig, capital float64) (backtest.RunParams, error) {
	cfg := config.Config{
		Strategy: config.DefaultStrategy(),
		Run: config.RunConfig{
			TotalCapital:          capital,
			DailyInterestRate:     rc.DailyInterestRate,
			AnnualInterestRatePct: rc.AnnualInterestRatePct,
			MaintenanceFeePct:     rc.MaintenanceFeePct,
			MinInterestCredit:     rc.MinInterestCredit,
			StartDate:             rc.StartDate,
			EndDate:               rc.EndDate,
			UseFractionalUnits:    rc.UseFractionalUnits,
			SeedBuy:               rc.SeedBuy,
			AllocationBase:        rc.AllocationBase,
		},
	}
	return cfg.RunParams(capital)
}

func writeError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}

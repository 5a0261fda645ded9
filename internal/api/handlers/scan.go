package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"dma-backtest/internal/api/models"
	"dma-backtest/internal/config"
	"dma-backtest/internal/data"
	"dma-backtest/internal/scan"

	"github.com/gin-gonic/gin"
)

// ScanHandler handles multi-instrument batch requests.
type ScanHandler struct{}

func NewScanHandler() *ScanHandler {
	return &ScanHandler{}
}

// RunScan handles POST /api/v1/scan
func (h *ScanHandler) RunScan(c *gin.Context) {
	var req models.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	cfg := config.Config{
		Strategy: config.DefaultStrategy(),
		Run: config.RunConfig{
			TotalCapital:          req.TotalCapital,
			DailyInterestRate:     req.Run.DailyInterestRate,
			AnnualInterestRatePct: req.Run.AnnualInterestRatePct,
			MaintenanceFeePct:     req.Run.MaintenanceFeePct,
			MinInterestCredit:     req.Run.MinInterestCredit,
			StartDate:             req.Run.StartDate,
			EndDate:               req.Run.EndDate,
			UseFractionalUnits:    req.Run.UseFractionalUnits,
			SeedBuy:               req.Run.SeedBuy,
			AllocationBase:        req.Run.AllocationBase,
		},
	}
	cfg.Strategy = req.Strategy.Apply(cfg.Strategy)

	inputs := make([]scan.Input, 0, len(req.Instruments))
	for _, ins := range req.Instruments {
		rows, ok := req.Series[ins.Symbol]
		if !ok {
			writeError(c, http.StatusBadRequest, "MISSING_SERIES",
				fmt.Errorf("no price series supplied for %s", ins.Symbol))
			return
		}
		prices, err := data.ToSeries(rows)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_SERIES",
				fmt.Errorf("series for %s: %w", ins.Symbol, err))
			return
		}
		instrument := config.Instrument{Name: ins.Name, Symbol: ins.Symbol, Percent: ins.Percent}
		if err := instrument.Validate(); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_INSTRUMENT",
				fmt.Errorf("%s: %w", ins.Symbol, err))
			return
		}
		inputs = append(inputs, scan.Input{Instrument: instrument, Prices: prices})
	}
	if len(inputs) == 0 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", errors.New("no instruments to scan"))
		return
	}

	outcomes := scan.RankByOutperformance(scan.Run(c.Request.Context(), &cfg, inputs))

	results := make([]models.ScanResult, 0, len(outcomes))
	for i, o := range outcomes {
		r := models.ScanResult{
			Rank:           i + 1,
			Instrument:     o.Instrument,
			InitialCapital: o.InitialCapital,
		}
		if o.Err != nil {
			r.Error = o.Err.Error()
		} else {
			summary := models.NewSummary(o.Instrument.Symbol, o.Result, o.Report)
			r.Summary = &summary
		}
		results = append(results, r)
	}
	c.JSON(http.StatusOK, models.ScanResponse{Results: results})
}

package backtest

import (
	"time"

	"dma-backtest/internal/model"
)

// Result is the finalized outcome of one run: the full trade log plus
// the post-liquidation ledger snapshot. This is the primary artifact
// for "what happened" in a backtest; the performance evaluator derives
// everything else from it.
type Result struct {
	Strategy string

	Start       time.Time
	End         time.Time
	TradingDays int

	OpeningPrice float64
	ClosingPrice float64

	// FinalCash is the all-cash portfolio value after liquidation;
	// FinalUnits is always 0 at this point.
	FinalCash  float64
	FinalUnits float64

	Events []model.TradeEvent
}

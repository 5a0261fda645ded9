package models

import (
	"dma-backtest/internal/backtest"
	"dma-backtest/internal/config"
	"dma-backtest/internal/model"
	"dma-backtest/internal/perf"
)

// BacktestResponse represents the response from a backtest run.
type BacktestResponse struct {
	ID      string          `json:"id,omitempty"`
	Status  string          `json:"status"`
	Summary BacktestSummary `json:"summary"`
	Trades  []TradeRow      `json:"trades,omitempty"`
}

// BacktestSummary contains the finalized run plus its performance
// report.
type BacktestSummary struct {
	Symbol       string       `json:"symbol,omitempty"`
	Strategy     string       `json:"strategy"`
	Start        string       `json:"start"`
	End          string       `json:"end"`
	TradingDays  int          `json:"trading_days"`
	OpeningPrice float64      `json:"opening_price"`
	ClosingPrice float64      `json:"closing_price"`
	FinalCash    float64      `json:"final_cash"`
	FinalUnits   float64      `json:"final_units"`
	Performance  *perf.Report `json:"performance"`
}

// TradeRow represents one trade-log event, flattened for transport.
type TradeRow struct {
	Date        string  `json:"date"`
	Kind        string  `json:"kind"`
	Subtype     string  `json:"subtype,omitempty"`
	Units       float64 `json:"units,omitempty"`
	PriceOrRate float64 `json:"price_or_rate"`
	Amount      float64 `json:"amount"`
	CashAfter   float64 `json:"cash_after"`
}

// NewSummary flattens a finalized result and its report.
func NewSummary(symbol string, res *backtest.Result, rep *perf.Report) BacktestSummary {
	return BacktestSummary{
		Symbol:       symbol,
		Strategy:     res.Strategy,
		Start:        res.Start.Format("2006-01-02"),
		End:          res.End.Format("2006-01-02"),
		TradingDays:  res.TradingDays,
		OpeningPrice: res.OpeningPrice,
		ClosingPrice: res.ClosingPrice,
		FinalCash:    res.FinalCash,
		FinalUnits:   res.FinalUnits,
		Performance:  rep,
	}
}

// NewTradeRows flattens a trade log for transport.
func NewTradeRows(events []model.TradeEvent) []TradeRow {
	rows := make([]TradeRow, 0, len(events))
	for _, ev := range events {
		switch e := ev.(type) {
		case model.BuyEvent:
			rows = append(rows, TradeRow{
				Date: e.Date.Format("2006-01-02"), Kind: string(e.Kind()), Subtype: e.Subtype,
				Units: e.Units, PriceOrRate: e.Price, Amount: e.Units * e.Price, CashAfter: e.CashAfter,
			})
		case model.SellEvent:
			rows = append(rows, TradeRow{
				Date: e.Date.Format("2006-01-02"), Kind: string(e.Kind()), Subtype: e.Subtype,
				Units: e.Units, PriceOrRate: e.Price, Amount: e.Units * e.Price, CashAfter: e.CashAfter,
			})
		case model.MaintenanceEvent:
			rows = append(rows, TradeRow{
				Date: e.Date.Format("2006-01-02"), Kind: string(e.Kind()),
				PriceOrRate: e.FeePct, Amount: e.Amount, CashAfter: e.CashAfter,
			})
		case model.InterestEvent:
			rows = append(rows, TradeRow{
				Date: e.Date.Format("2006-01-02"), Kind: string(e.Kind()),
				PriceOrRate: e.DailyRate, Amount: e.Amount, CashAfter: e.CashAfter,
			})
		}
	}
	return rows
}

// CompareBacktestResponse represents the response from a comparison.
type CompareBacktestResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one variation.
type ComparisonResult struct {
	Name    string          `json:"name"`
	Summary BacktestSummary `json:"summary"`
}

// ScanResponse represents the response from a multi-instrument scan,
// ranked by outperformance.
type ScanResponse struct {
	Results []ScanResult `json:"results"`
}

// ScanResult is one instrument's outcome within a scan.
type ScanResult struct {
	Rank           int              `json:"rank"`
	Instrument     config.Instrument `json:"instrument"`
	InitialCapital float64          `json:"initial_capital"`
	Summary        *BacktestSummary `json:"summary,omitempty"`
	Error          string           `json:"error,omitempty"`
}

// InstrumentsResponse lists the configured instrument registry.
type InstrumentsResponse struct {
	Instruments []config.Instrument `json:"instruments"`
}

// StrategyInfo represents information about a strategy.
type StrategyInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes a strategy parameter.
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "int", "bool"
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

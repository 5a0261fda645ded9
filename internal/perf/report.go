package perf

import (
	"math"

	"dma-backtest/internal/backtest"
	"dma-backtest/internal/model"
)

// Baseline is the counterfactual: the same capital invested once at the
// opening price and held to the end.
type Baseline struct {
	Units         float64 `json:"units"`
	FinalValue    float64 `json:"final_value"`
	Return        float64 `json:"return"`
	ReturnPct     float64 `json:"return_pct"`
	AnnualizedPct float64 `json:"annualized_pct"`
	XIRRPct       float64 `json:"xirr_pct"`
}

// TradeStats aggregates the trade log for reporting.
type TradeStats struct {
	TotalEvents  int     `json:"total_events"`
	BuyTrades    int     `json:"buy_trades"`
	SellTrades   int     `json:"sell_trades"`
	StrongBuys   int     `json:"strong_buys"`
	ModerateBuys int     `json:"moderate_buys"`

	TotalInvested  float64 `json:"total_invested"`
	TotalReceived  float64 `json:"total_received"`
	NetProfit      float64 `json:"net_profit"`
	InterestEarned float64 `json:"interest_earned"`
	FeesPaid       float64 `json:"fees_paid"`
}

// Report is the full performance summary for one run.
type Report struct {
	InitialCapital float64 `json:"initial_capital"`
	FinalValue     float64 `json:"final_value"`
	TotalReturn    float64 `json:"total_return"`
	ReturnPct      float64 `json:"return_pct"`

	// XIRRPct is the money-weighted annualized strategy return.
	XIRRPct float64 `json:"xirr_pct"`

	BuyHold Baseline `json:"buy_hold"`

	// OutperformancePct is the strategy's annualized rate minus the
	// baseline's annualized rate.
	OutperformancePct float64 `json:"outperformance_pct"`

	Stats TradeStats `json:"stats"`
}

// Flows extracts the money-weighted cash-flow series from a trade log:
// buys contribute -units*price, sells (including the final liquidation)
// contribute +units*price. Interest and maintenance events do not enter
// directly; their effect is already reflected in realized amounts.
func Flows(events []model.TradeEvent) []CashFlow {
	flows := make([]CashFlow, 0, len(events))
	for _, ev := range events {
		switch e := ev.(type) {
		case model.BuyEvent:
			flows = append(flows, CashFlow{Date: e.Date, Amount: -e.Units * e.Price})
		case model.SellEvent:
			flows = append(flows, CashFlow{Date: e.Date, Amount: e.Units * e.Price})
		}
	}
	return flows
}

// Evaluate builds the performance report for a finalized run.
func Evaluate(res *backtest.Result, initialCapital float64) *Report {
	rep := &Report{
		InitialCapital: initialCapital,
		FinalValue:     res.FinalCash,
		TotalReturn:    res.FinalCash - initialCapital,
		ReturnPct:      (res.FinalCash/initialCapital - 1) * 100,
		XIRRPct:        XIRR(Flows(res.Events)) * 100,
		Stats:          stats(res.Events),
	}
	rep.BuyHold = baseline(res, initialCapital)
	rep.OutperformancePct = rep.XIRRPct - rep.BuyHold.AnnualizedPct
	return rep
}

func baseline(res *backtest.Result, initialCapital float64) Baseline {
	b := Baseline{}
	if res.OpeningPrice <= 0 {
		return b
	}
	b.Units = initialCapital / res.OpeningPrice
	b.FinalValue = b.Units * res.ClosingPrice
	b.Return = b.FinalValue - initialCapital
	b.ReturnPct = (res.ClosingPrice/res.OpeningPrice - 1) * 100

	days := model.ElapsedDays(res.Start, res.End)
	if days > 0 {
		b.AnnualizedPct = (math.Pow(b.FinalValue/initialCapital, 365.25/float64(days)) - 1) * 100
	}
	b.XIRRPct = XIRR([]CashFlow{
		{Date: res.Start, Amount: -initialCapital},
		{Date: res.End, Amount: b.FinalValue},
	}) * 100
	return b
}

func stats(events []model.TradeEvent) TradeStats {
	s := TradeStats{TotalEvents: len(events)}
	for _, ev := range events {
		switch e := ev.(type) {
		case model.BuyEvent:
			s.BuyTrades++
			s.TotalInvested += e.Units * e.Price
			switch e.Subtype {
			case model.SubtypeStrong:
				s.StrongBuys++
			case model.SubtypeModerate:
				s.ModerateBuys++
			}
		case model.SellEvent:
			s.SellTrades++
			s.TotalReceived += e.Units * e.Price
		case model.InterestEvent:
			s.InterestEarned += e.Amount
		case model.MaintenanceEvent:
			s.FeesPaid += e.Amount
		}
	}
	s.NetProfit = s.TotalReceived - s.TotalInvested
	return s
}

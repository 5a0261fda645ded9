package strategy

import (
	"errors"

	"dma-backtest/internal/model"
)

// DMAParams tunes the moving-average rule chain:
//   - Strong Buy:   sma200 > sma50 > price (deep correction)
//   - Moderate Buy: sma50 > sma30 > price (mild correction)
//   - Sell:         price > sma50 > sma200 and gain from the last buy
//     has cleared ProfitThresholdPct
//
// DropThresholdPct adds a drawdown gate on both buys: price must sit at
// least that far below the running peak. 0 disables the gate.
// SellPct of 0 disables partial profit-taking entirely while leaving
// the final liquidation intact.
type DMAParams struct {
	StrongBuyAllocationPct   float64
	ModerateBuyAllocationPct float64
	SellPct                  float64
	ProfitThresholdPct       float64
	DropThresholdPct         float64

	// CooloffDays blocks further sells for this many calendar days
	// after any completed sale.
	CooloffDays int
}

func (p DMAParams) Validate() error {
	if p.StrongBuyAllocationPct <= 0 || p.StrongBuyAllocationPct > 100 {
		return errors.New("StrongBuyAllocationPct must be in (0, 100]")
	}
	if p.ModerateBuyAllocationPct <= 0 || p.ModerateBuyAllocationPct > 100 {
		return errors.New("ModerateBuyAllocationPct must be in (0, 100]")
	}
	if p.SellPct < 0 || p.SellPct > 100 {
		return errors.New("SellPct must be in [0, 100]")
	}
	if p.ProfitThresholdPct < 0 {
		return errors.New("ProfitThresholdPct must be >= 0")
	}
	if p.DropThresholdPct < 0 || p.DropThresholdPct >= 100 {
		return errors.New("DropThresholdPct must be in [0, 100)")
	}
	if p.CooloffDays < 0 {
		return errors.New("CooloffDays must be >= 0")
	}
	return nil
}

// DMAStrategy is the moving-average rebalancing rule set. Rules are
// strictly prioritized Strong > Moderate > Sell: the first match wins
// and the rest are not evaluated that day.
type DMAStrategy struct {
	Params DMAParams
}

func NewDMAStrategy(params DMAParams) (*DMAStrategy, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &DMAStrategy{Params: params}, nil
}

func (s *DMAStrategy) Name() string { return "dma" }

func (s *DMAStrategy) Decide(ctx Context) Signal {
	row := ctx.Row
	pf := ctx.Portfolio

	drawdownOK := true
	if s.Params.DropThresholdPct > 0 {
		drawdownOK = row.Price <= ctx.PeakPrice*(1-s.Params.DropThresholdPct/100)
	}

	switch {
	case row.SMA200 > row.SMA50 && row.SMA50 > row.Price && pf.Cash > 0 && drawdownOK:
		return Signal{Action: ActionBuy, Subtype: model.SubtypeStrong, AllocationPct: s.Params.StrongBuyAllocationPct}

	case row.SMA50 > row.SMA30 && row.SMA30 > row.Price && pf.Cash > 0 && drawdownOK:
		return Signal{Action: ActionBuy, Subtype: model.SubtypeModerate, AllocationPct: s.Params.ModerateBuyAllocationPct}

	case pf.Units > 0 && pf.LastBuyPrice > 0 && row.Price > row.SMA50 && row.SMA50 > row.SMA200:
		pctChange := (row.Price - pf.LastBuyPrice) / pf.LastBuyPrice * 100
		if pctChange >= s.Params.ProfitThresholdPct &&
			s.Params.SellPct > 0 &&
			!pf.InCooloff(row.Date, s.Params.CooloffDays) {
			return Signal{Action: ActionSell, Subtype: model.SubtypeProfitTaking, Fraction: s.Params.SellPct / 100}
		}
	}
	return Signal{}
}

package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dma-backtest/internal/model"
	"dma-backtest/internal/strategy"
)

// AllocationBase selects how buy allocations are sized.
type AllocationBase string

const (
	// AllocInitialCapital sizes buys as a fraction of the original
	// capital, clamped to available cash. This is the canonical policy.
	AllocInitialCapital AllocationBase = "initial"

	// AllocCurrentCash sizes buys as a fraction of the current cash
	// balance (the legacy behavior).
	AllocCurrentCash AllocationBase = "cash"
)

// RunParams configures one backtest run.
type RunParams struct {
	InitialCapital float64

	// Start/End bound the trading window; zero values leave the bound
	// open. Rows before Start still feed the running peak and the
	// elapsed-day clock, they just never trade.
	Start time.Time
	End   time.Time

	// DailyInterestRate is the rate credited on idle cash per calendar
	// day (an annual rate divided by 365 upstream).
	DailyInterestRate float64

	// MinInterestCredit skips interest credits below this amount.
	MinInterestCredit float64

	MaintenanceFeePct float64
	FractionalUnits   bool

	// SeedBuy buys a nominal single unit on the first in-range day,
	// establishing a last-buy-price baseline and a concrete entry
	// point for return calculations.
	SeedBuy bool

	AllocationBase AllocationBase
}

func (p RunParams) Validate() error {
	if p.InitialCapital <= 0 {
		return errors.New("InitialCapital must be > 0")
	}
	if p.DailyInterestRate < 0 {
		return errors.New("DailyInterestRate must be >= 0")
	}
	if p.MaintenanceFeePct < 0 {
		return errors.New("MaintenanceFeePct must be >= 0")
	}
	if !p.Start.IsZero() && !p.End.IsZero() && p.End.Before(p.Start) {
		return errors.New("End must not precede Start")
	}
	switch p.AllocationBase {
	case "", AllocInitialCapital, AllocCurrentCash:
	default:
		return fmt.Errorf("unknown allocation base %q", p.AllocationBase)
	}
	return nil
}

// Engine replays one indicator series through the strategy, day by day.
// Each Run constructs a fresh ledger, so engines are safe to use from
// parallel per-instrument runs as long as each run gets its own Engine.
type Engine struct {
	params RunParams
	strat  strategy.Strategy
}

func New(params RunParams, strat strategy.Strategy) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if strat == nil {
		return nil, errors.New("strategy is nil")
	}
	return &Engine{params: params, strat: strat}, nil
}

// Run executes the day loop over rows and force-closes any residual
// position at the final processed price. Cancellation is checked
// between days only; an aborted or failed run returns no result and no
// partial trade log.
func (e *Engine) Run(ctx context.Context, rows model.IndicatorSeries) (*Result, error) {
	if len(rows) == 0 {
		return nil, &model.InsufficientDataError{Have: 0, Need: 1}
	}

	pf, err := model.NewPortfolio(model.PortfolioParams{
		InitialCapital:    e.params.InitialCapital,
		MaintenanceFeePct: e.params.MaintenanceFeePct,
		FractionalUnits:   e.params.FractionalUnits,
		MinInterestCredit: e.params.MinInterestCredit,
	})
	if err != nil {
		return nil, err
	}

	var (
		peak          float64
		lastProcessed time.Time
		opening       model.IndicatorRow
		closing       model.IndicatorRow
		processed     int
	)

	for i, row := range rows {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if row.Price <= 0 {
			return nil, &model.InvalidPriceError{Date: row.Date, Price: row.Price}
		}

		// Peak tracking is unconditional, warm-up days included.
		if row.Price > peak {
			peak = row.Price
		}

		if !e.params.Start.IsZero() && row.Date.Before(e.params.Start) {
			lastProcessed = row.Date
			continue
		}
		if !e.params.End.IsZero() && row.Date.After(e.params.End) {
			break
		}

		days := 1
		if !lastProcessed.IsZero() {
			days = model.ElapsedDays(lastProcessed, row.Date)
		}
		pf.CreditInterest(row.Date, e.params.DailyInterestRate, days)

		if processed == 0 {
			opening = row
			// Seed only when one unit plus its fee is affordable; a
			// tiny account skips the seed like any other sub-threshold
			// trade.
			if e.params.SeedBuy && row.Price*(1+e.params.MaintenanceFeePct/100) <= pf.Cash {
				if _, err := pf.Buy(row.Date, row.Price, row.Price, model.SubtypeSeed); err != nil {
					return nil, fmt.Errorf("seed buy on %s: %w", row.Date.Format("2006-01-02"), err)
				}
			}
		}
		if processed > 0 || !e.params.SeedBuy {
			sig := e.strat.Decide(strategy.Context{
				Index:     i,
				Row:       row,
				Portfolio: pf,
				PeakPrice: peak,
			})
			if err := e.apply(pf, row, sig); err != nil {
				return nil, err
			}
		}

		closing = row
		lastProcessed = row.Date
		processed++
	}

	if processed == 0 {
		return nil, &model.InsufficientDataError{Have: 0, Need: 1}
	}

	// Liquidation: residual units always go to cash at the last price.
	if _, err := pf.Liquidate(closing.Date, closing.Price); err != nil {
		return nil, err
	}

	return &Result{
		Strategy:     e.strat.Name(),
		Start:        opening.Date,
		End:          closing.Date,
		TradingDays:  processed,
		OpeningPrice: opening.Price,
		ClosingPrice: closing.Price,
		FinalCash:    pf.Cash,
		FinalUnits:   pf.Units,
		Events:       pf.Events,
	}, nil
}

// apply translates a signal into ledger operations. Buy allocations are
// clamped so the purchase plus its maintenance fee always fits in cash.
func (e *Engine) apply(pf *model.Portfolio, row model.IndicatorRow, sig strategy.Signal) error {
	switch sig.Action {
	case strategy.ActionBuy:
		base := e.params.InitialCapital
		if e.params.AllocationBase == AllocCurrentCash {
			base = pf.Cash
		}
		alloc := base * sig.AllocationPct / 100
		if max := pf.Cash / (1 + e.params.MaintenanceFeePct/100); alloc > max {
			alloc = max
		}
		if _, err := pf.Buy(row.Date, alloc, row.Price, sig.Subtype); err != nil {
			return fmt.Errorf("%s buy on %s: %w", sig.Subtype, row.Date.Format("2006-01-02"), err)
		}
	case strategy.ActionSell:
		if _, err := pf.Sell(row.Date, sig.Fraction, row.Price, sig.Subtype); err != nil {
			return fmt.Errorf("%s sell on %s: %w", sig.Subtype, row.Date.Format("2006-01-02"), err)
		}
	}
	return nil
}

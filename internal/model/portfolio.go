package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// cashEpsilon absorbs float noise when checking the non-negative cash
// invariant; anything beyond it is a genuine caller bug.
const cashEpsilon = 1e-6

// PortfolioParams defines the economic parameters of one run.
// MaintenanceFeePct is a flat per-trade percentage of the buy amount.
type PortfolioParams struct {
	InitialCapital    float64
	MaintenanceFeePct float64
	FractionalUnits   bool
	MinInterestCredit float64
}

// Portfolio is the cash/units ledger for a single backtest run. It is
// owned exclusively by the engine driving that run and is never shared:
// every run constructs a fresh one, so the sell cooloff watermark and
// the trade log cannot leak across instruments.
type Portfolio struct {
	Params PortfolioParams

	Cash  float64
	Units float64

	// LastBuyPrice is 0 until the first purchase; closing prices are
	// strictly positive, so 0 doubles as "no purchase yet".
	LastBuyPrice float64

	// LastSellDate is the per-run cooloff watermark, zero until the
	// first sale.
	LastSellDate time.Time

	// Events is append-only, ordered by production.
	Events []TradeEvent
}

func NewPortfolio(params PortfolioParams) (*Portfolio, error) {
	if params.InitialCapital <= 0 {
		return nil, errors.New("InitialCapital must be > 0")
	}
	if params.MaintenanceFeePct < 0 {
		return nil, errors.New("MaintenanceFeePct must be >= 0")
	}
	if params.MinInterestCredit < 0 {
		return nil, errors.New("MinInterestCredit must be >= 0")
	}
	return &Portfolio{
		Params: params,
		Cash:   params.InitialCapital,
	}, nil
}

// CreditInterest credits days x dailyRate x cash onto the cash balance
// and logs an Interest event. Credits below MinInterestCredit are
// skipped entirely (no event). Returns the credited amount.
func (p *Portfolio) CreditInterest(date time.Time, dailyRate float64, days int) float64 {
	if days <= 0 || dailyRate <= 0 || p.Cash <= 0 {
		return 0
	}
	income := p.Cash * dailyRate * float64(days)
	if income < p.Params.MinInterestCredit {
		return 0
	}
	p.Cash += income
	p.Events = append(p.Events, InterestEvent{
		Date:      date,
		DailyRate: dailyRate,
		Days:      days,
		Amount:    income,
		CashAfter: p.Cash,
	})
	return income
}

// Buy purchases allocation/price units at price, then deducts the
// maintenance fee. Whole-unit mode floors the quantity and requires at
// least one unit; either mode silently no-ops on a non-positive
// quantity (a skipped day, not an error).
//
// Precondition: the caller clamps allocation so that the purchase plus
// its fee fits in available cash. The ledger still refuses any call
// that would take cash negative.
func (p *Portfolio) Buy(date time.Time, allocation, price float64, subtype string) (float64, error) {
	if price <= 0 {
		return 0, &InvalidPriceError{Date: date, Price: price}
	}
	units := allocation / price
	if !p.Params.FractionalUnits {
		units = math.Floor(units)
		if units < 1 {
			return 0, nil
		}
	} else if units <= 0 {
		return 0, nil
	}

	buyAmt := units * price
	fee := buyAmt * p.Params.MaintenanceFeePct / 100
	if p.Cash-buyAmt-fee < -cashEpsilon {
		return 0, fmt.Errorf("buy on %s would overdraw cash: have %.2f, need %.2f",
			date.Format("2006-01-02"), p.Cash, buyAmt+fee)
	}

	p.Units += units
	p.Cash -= buyAmt
	p.LastBuyPrice = price
	p.Events = append(p.Events, BuyEvent{
		Date:      date,
		Subtype:   subtype,
		Units:     units,
		Price:     price,
		CashAfter: p.Cash,
	})

	if fee > 0 {
		p.Cash -= fee
		p.Events = append(p.Events, MaintenanceEvent{
			Date:      date,
			FeePct:    p.Params.MaintenanceFeePct,
			Amount:    fee,
			CashAfter: p.Cash,
		})
	}
	if p.Cash < 0 {
		p.Cash = 0 // float noise only; real overdraws were rejected above
	}
	return units, nil
}

// Sell disposes fraction of the held units at price. Whole-unit mode
// floors the quantity and requires at least one unit. A completed sale
// advances the cooloff watermark. Returns the units sold.
func (p *Portfolio) Sell(date time.Time, fraction, price float64, subtype string) (float64, error) {
	if price <= 0 {
		return 0, &InvalidPriceError{Date: date, Price: price}
	}
	if fraction <= 0 || p.Units <= 0 {
		return 0, nil
	}
	units := p.Units * fraction
	if !p.Params.FractionalUnits {
		units = math.Floor(units)
		if units < 1 {
			return 0, nil
		}
	} else if units <= 0 {
		return 0, nil
	}
	if units > p.Units {
		units = p.Units
	}

	p.Units -= units
	p.Cash += units * price
	p.LastSellDate = date
	p.Events = append(p.Events, SellEvent{
		Date:      date,
		Subtype:   subtype,
		Units:     units,
		Price:     price,
		CashAfter: p.Cash,
	})
	return units, nil
}

// Liquidate force-closes any residual position at price. The Final_Exit
// event records the pre-liquidation unit count for audit even though
// the post-state is flat. No-op when already flat.
func (p *Portfolio) Liquidate(date time.Time, price float64) (float64, error) {
	if price <= 0 {
		return 0, &InvalidPriceError{Date: date, Price: price}
	}
	if p.Units <= 0 {
		return 0, nil
	}
	held := p.Units
	p.Cash += held * price
	p.Units = 0
	p.Events = append(p.Events, SellEvent{
		Date:      date,
		Subtype:   SubtypeFinalExit,
		Units:     held,
		Price:     price,
		CashAfter: p.Cash,
	})
	return held, nil
}

// InCooloff reports whether a sell on date is blocked by the cooloff
// window following the previous sale.
func (p *Portfolio) InCooloff(date time.Time, cooloffDays int) bool {
	if cooloffDays <= 0 || p.LastSellDate.IsZero() {
		return false
	}
	return ElapsedDays(p.LastSellDate, date) < cooloffDays
}

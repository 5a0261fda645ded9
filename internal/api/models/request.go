package models

import (
	"dma-backtest/internal/config"
	"dma-backtest/internal/data"
)

// BacktestRequest represents the request body for running a backtest.
// The price series arrives inline: the server never fetches market
// data itself.
type BacktestRequest struct {
	Symbol   string          `json:"symbol,omitempty"`
	Prices   []data.PriceRow `json:"prices" binding:"required"`
	Run      RunConfig       `json:"run" binding:"required"`
	Strategy StrategyConfig  `json:"strategy,omitempty"`
	Options  BacktestOptions `json:"options,omitempty"`
}

// RunConfig contains the run-level knobs. InitialCapital is required
// for single-instrument requests and ignored by scans (each instrument
// gets its share of total_capital); handlers enforce this.
type RunConfig struct {
	InitialCapital        float64 `json:"initial_capital,omitempty"`
	DailyInterestRate     float64 `json:"daily_interest_rate,omitempty"`
	AnnualInterestRatePct float64 `json:"annual_interest_rate_pct,omitempty"`
	MaintenanceFeePct     float64 `json:"maintenance_fee_pct,omitempty"`
	MinInterestCredit     float64 `json:"min_interest_credit,omitempty"`
	StartDate             string  `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate               string  `json:"end_date,omitempty"`
	UseFractionalUnits    bool    `json:"use_fractional_units,omitempty"`
	SeedBuy               bool    `json:"seed_buy,omitempty"`
	AllocationBase        string  `json:"allocation_base,omitempty"` // "initial" or "cash"
}

// StrategyConfig overrides the server's default rule parameters. Fields
// are pointers so an explicit zero (sell_pct: 0 disables profit-taking)
// is distinguishable from an omitted field.
type StrategyConfig struct {
	StrongBuyAllocationPct   *float64 `json:"strong_buy_allocation_pct,omitempty"`
	ModerateBuyAllocationPct *float64 `json:"moderate_buy_allocation_pct,omitempty"`
	SellPct                  *float64 `json:"sell_pct,omitempty"`
	ProfitThresholdPct       *float64 `json:"profit_threshold_pct,omitempty"`
	DropThresholdPct         *float64 `json:"drop_threshold_pct,omitempty"`
	CooloffDays              *int     `json:"cooloff_days,omitempty"`
}

// Apply overlays the set fields onto base and returns the result.
func (s StrategyConfig) Apply(base config.StrategyConfig) config.StrategyConfig {
	if s.StrongBuyAllocationPct != nil {
		base.StrongBuyAllocationPct = *s.StrongBuyAllocationPct
	}
	if s.ModerateBuyAllocationPct != nil {
		base.ModerateBuyAllocationPct = *s.ModerateBuyAllocationPct
	}
	if s.SellPct != nil {
		base.SellPct = *s.SellPct
	}
	if s.ProfitThresholdPct != nil {
		base.ProfitThresholdPct = *s.ProfitThresholdPct
	}
	if s.DropThresholdPct != nil {
		base.DropThresholdPct = *s.DropThresholdPct
	}
	if s.CooloffDays != nil {
		base.CooloffDays = *s.CooloffDays
	}
	return base
}

// Merge returns s with override's set fields taking precedence.
func (s StrategyConfig) Merge(override StrategyConfig) StrategyConfig {
	out := s
	if override.StrongBuyAllocationPct != nil {
		out.StrongBuyAllocationPct = override.StrongBuyAllocationPct
	}
	if override.ModerateBuyAllocationPct != nil {
		out.ModerateBuyAllocationPct = override.ModerateBuyAllocationPct
	}
	if override.SellPct != nil {
		out.SellPct = override.SellPct
	}
	if override.ProfitThresholdPct != nil {
		out.ProfitThresholdPct = override.ProfitThresholdPct
	}
	if override.DropThresholdPct != nil {
		out.DropThresholdPct = override.DropThresholdPct
	}
	if override.CooloffDays != nil {
		out.CooloffDays = override.CooloffDays
	}
	return out
}

// BacktestOptions contains optional backtest parameters.
type BacktestOptions struct {
	IncludeTrades bool `json:"include_trades,omitempty"` // default: false
}

// CompareBacktestRequest runs parameter variations against one series.
type CompareBacktestRequest struct {
	Symbol     string              `json:"symbol,omitempty"`
	Prices     []data.PriceRow     `json:"prices" binding:"required"`
	Run        RunConfig           `json:"run" binding:"required"`
	Base       StrategyConfig      `json:"base,omitempty"`
	Variations []BacktestVariation `json:"variations" binding:"required"`
}

// BacktestVariation defines one variation to test.
type BacktestVariation struct {
	Name     string         `json:"name" binding:"required"`
	Strategy StrategyConfig `json:"strategy,omitempty"`
}

// ScanRequest runs the strategy across several instruments at once.
// Series maps each instrument symbol to its price rows.
type ScanRequest struct {
	TotalCapital float64                    `json:"total_capital" binding:"required"`
	Run          RunConfig                  `json:"run,omitempty"`
	Strategy     StrategyConfig             `json:"strategy,omitempty"`
	Instruments  []ScanInstrument           `json:"instruments" binding:"required"`
	Series       map[string][]data.PriceRow `json:"series" binding:"required"`
}

// ScanInstrument is one instrument to include in a scan.
type ScanInstrument struct {
	Name    string  `json:"name,omitempty"`
	Symbol  string  `json:"symbol" binding:"required"`
	Percent float64 `json:"percent" binding:"required"`
}

package strategy

import "dma-backtest/internal/model"

// Action is what a strategy asks the engine to do for one day.
type Action int

const (
	ActionNone Action = iota
	ActionBuy
	ActionSell
)

// Signal is a single day's decision. At most one signal is produced per
// day; the engine translates it into ledger operations.
type Signal struct {
	Action  Action
	Subtype string

	// AllocationPct applies to buys: percent of the sizing base.
	AllocationPct float64

	// Fraction applies to sells: fraction of held units, in [0,1].
	Fraction float64
}

// Context is the per-day view a strategy decides on. PeakPrice is the
// running maximum close maintained by the engine across the whole
// series, including warm-up days before the backtest window.
type Context struct {
	Index     int
	Row       model.IndicatorRow
	Portfolio *model.Portfolio
	PeakPrice float64
}

type Strategy interface {
	Name() string
	Decide(ctx Context) Signal
}

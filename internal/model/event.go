package model

import "time"

// EventKind tags a trade-log entry.
// Keep these values stable; they are intended for CSV output.
type EventKind string

const (
	EventBuy         EventKind = "Buy"
	EventSell        EventKind = "Sell"
	EventMaintenance EventKind = "Maintenance"
	EventInterest    EventKind = "Interest"
)

// Subtype labels carried on buy/sell events.
const (
	SubtypeSeed         = "Seed"
	SubtypeStrong       = "Strong"
	SubtypeModerate     = "Moderate"
	SubtypeProfitTaking = "Profit_Taking"
	SubtypeFinalExit    = "Final_Exit"
)

// TradeEvent is a tagged variant over the four event types. The trade
// log is append-only: events are never mutated after insertion, and
// within a day they appear in the order the rules produced them
// (interest before buy/sell, fee immediately after its buy).
type TradeEvent interface {
	When() time.Time
	Kind() EventKind
}

// BuyEvent records a completed purchase. CashAfter is the cash position
// snapshot immediately after the purchase, before the maintenance fee.
type BuyEvent struct {
	Date      time.Time
	Subtype   string
	Units     float64
	Price     float64
	CashAfter float64
}

func (e BuyEvent) When() time.Time { return e.Date }
func (e BuyEvent) Kind() EventKind { return EventBuy }

// SellEvent records a completed sale. For the final liquidation the
// Subtype is "Final_Exit" and Units holds the pre-liquidation position.
type SellEvent struct {
	Date      time.Time
	Subtype   string
	Units     float64
	Price     float64
	CashAfter float64
}

func (e SellEvent) When() time.Time { return e.Date }
func (e SellEvent) Kind() EventKind { return EventSell }

// MaintenanceEvent records the per-trade fee deducted after a buy.
type MaintenanceEvent struct {
	Date      time.Time
	FeePct    float64
	Amount    float64
	CashAfter float64
}

func (e MaintenanceEvent) When() time.Time { return e.Date }
func (e MaintenanceEvent) Kind() EventKind { return EventMaintenance }

// InterestEvent records interest credited on idle cash.
type InterestEvent struct {
	Date      time.Time
	DailyRate float64
	Days      int
	Amount    float64
	CashAfter float64
}

func (e InterestEvent) When() time.Time { return e.Date }
func (e InterestEvent) Kind() EventKind { return EventInterest }

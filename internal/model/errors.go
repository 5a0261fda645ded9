package model

import (
	"fmt"
	"time"
)

// InsufficientDataError indicates the input series is too short to cover
// the longest moving-average window: after warm-up trimming no rows
// remain, so a run aborts before any ledger mutation.
type InsufficientDataError struct {
	Have   int // rows supplied
	Need   int // rows required for the longest window
	Symbol string
}

func (e *InsufficientDataError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("insufficient data for %s: have %d rows, need at least %d for indicator warm-up", e.Symbol, e.Have, e.Need)
	}
	return fmt.Sprintf("insufficient data: have %d rows, need at least %d for indicator warm-up", e.Have, e.Need)
}

// InvalidPriceError indicates a non-positive close (or a malformed date
// ordering) in the input series. Fatal: the run is aborted and any
// partially accumulated trade log is discarded.
type InvalidPriceError struct {
	Date   time.Time
	Price  float64
	Reason string
}

func (e *InvalidPriceError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid price row on %s: %s", e.Date.Format("2006-01-02"), e.Reason)
	}
	return fmt.Sprintf("invalid price %.4f on %s: closing prices must be positive", e.Price, e.Date.Format("2006-01-02"))
}

package model

import "time"

// PriceBar represents one daily row from a price-history dataset.
// Timestamps are calendar dates (midnight UTC); only Close is consumed
// by the engine, the remaining fields are carried through for reporting.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries is an ordered-by-date daily close series. Dates must be
// strictly increasing; calendar gaps (weekends, holidays) are expected
// and accounted for via elapsed-day arithmetic, never index arithmetic.
type PriceSeries []PriceBar

// Validate checks ordering and price sanity. A non-positive close is a
// data integrity fault, not a signal, so it is rejected here the same
// way the engine would reject it mid-run.
func (s PriceSeries) Validate() error {
	for i, b := range s {
		if b.Close <= 0 {
			return &InvalidPriceError{Date: b.Date, Price: b.Close}
		}
		if i > 0 && !s[i-1].Date.Before(b.Date) {
			return &InvalidPriceError{Date: b.Date, Price: b.Close, Reason: "dates not strictly increasing"}
		}
	}
	return nil
}

// ElapsedDays returns the whole calendar days between two dates.
func ElapsedDays(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

package model

import "time"

// IndicatorRow is one trading day with its rolling means attached.
// Rows only exist where all three means are defined; the warm-up prefix
// is trimmed by the preprocessor before the engine ever sees the series.
type IndicatorRow struct {
	Date   time.Time `json:"date"`
	Price  float64   `json:"price"`
	SMA30  float64   `json:"sma30"`
	SMA50  float64   `json:"sma50"`
	SMA200 float64   `json:"sma200"`
}

// IndicatorSeries is immutable once built; the engine only reads it.
type IndicatorSeries []IndicatorRow

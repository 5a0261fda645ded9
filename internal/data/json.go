// Package data loads price-history files produced by an external
// market-data collaborator. The engine never fetches anything live;
// everything is read wholly into memory before a run begins.
package data

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"dma-backtest/internal/model"
)

// PriceHistoryFile matches the JSON shape of an exported daily history:
//
//	{
//	  "symbol": "TRENT.NS",
//	  "data": [ {"date": "2024-01-02", "open": ..., "close": ...}, ... ]
//	}
type PriceHistoryFile struct {
	Symbol string     `json:"symbol"`
	Data   []PriceRow `json:"data"`
}

// PriceRow is one raw row; the date is kept as a string so both plain
// dates and RFC3339 timestamps are accepted.
type PriceRow struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// LoadPriceJSON reads a price-history JSON file into a validated series.
func LoadPriceJSON(path string) (string, model.PriceSeries, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	var file PriceHistoryFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return "", nil, fmt.Errorf("parse %s: %w", path, err)
	}
	series, err := ToSeries(file.Data)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}
	return file.Symbol, series, nil
}

// ToSeries converts raw rows into a validated series.
func ToSeries(rows []PriceRow) (model.PriceSeries, error) {
	series := make(model.PriceSeries, 0, len(rows))
	for i, r := range rows {
		d, err := parseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		series = append(series, model.PriceBar{
			Date:   d,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		})
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable date %q", s)
	}
	return t.UTC().Truncate(24 * time.Hour), nil
}

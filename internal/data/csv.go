package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"dma-backtest/internal/model"
)

// LoadPriceCSV reads a daily price CSV with a header row. Recognized
// columns: date, open, high, low, close, volume (case-insensitive);
// date and close are required, the rest default to zero.
func LoadPriceCSV(path string) (model.PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: no data rows", path)
	}

	col := map[string]int{}
	for i, name := range records[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	dateIdx, ok := col["date"]
	if !ok {
		return nil, fmt.Errorf("%s: missing date column", path)
	}
	closeIdx, ok := col["close"]
	if !ok {
		return nil, fmt.Errorf("%s: missing close column", path)
	}

	series := make(model.PriceSeries, 0, len(records)-1)
	for i, rec := range records[1:] {
		d, err := parseDate(strings.TrimSpace(rec[dateIdx]))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		bar := model.PriceBar{Date: d}
		if bar.Close, err = strconv.ParseFloat(strings.TrimSpace(rec[closeIdx]), 64); err != nil {
			return nil, fmt.Errorf("%s row %d: bad close: %w", path, i+1, err)
		}
		bar.Open = optFloat(rec, col, "open")
		bar.High = optFloat(rec, col, "high")
		bar.Low = optFloat(rec, col, "low")
		bar.Volume = optFloat(rec, col, "volume")
		series = append(series, bar)
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}

func optFloat(rec []string, col map[string]int, name string) float64 {
	idx, ok := col[name]
	if !ok || idx >= len(rec) {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rec[idx]), 64)
	if err != nil {
		return 0
	}
	return v
}

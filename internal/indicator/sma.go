// Package indicator derives the moving-average series the trading rules
// key on. The 30/50/200 triple is a fixed design choice of the rule
// set, not a tunable.
package indicator

import (
	"math"

	"dma-backtest/internal/model"
)

const (
	WindowShort = 30
	WindowMid   = 50
	WindowLong  = 200
)

// SMA computes the trailing-p arithmetic mean over x, aligned to the
// input length with NaNs for the warm-up prefix.
func SMA(x []float64, p int) []float64 {
	if p <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	var sum float64
	for i := range x {
		sum += x[i]
		if i < p-1 {
			out[i] = math.NaN()
			continue
		}
		if i >= p {
			sum -= x[i-p]
		}
		out[i] = sum / float64(p)
	}
	return out
}

// Compute builds the indicator series for prices: each row carries the
// close plus its 30/50/200-day means, and rows where any mean is still
// undefined are dropped. Pure and deterministic: the same input always
// yields the identical output.
//
// Returns *model.InsufficientDataError when nothing survives trimming.
func Compute(prices model.PriceSeries) (model.IndicatorSeries, error) {
	if err := prices.Validate(); err != nil {
		return nil, err
	}
	if len(prices) < WindowLong {
		return nil, &model.InsufficientDataError{Have: len(prices), Need: WindowLong}
	}

	closes := make([]float64, len(prices))
	for i, b := range prices {
		closes[i] = b.Close
	}
	sma30 := SMA(closes, WindowShort)
	sma50 := SMA(closes, WindowMid)
	sma200 := SMA(closes, WindowLong)

	out := make(model.IndicatorSeries, 0, len(prices)-WindowLong+1)
	for i := range prices {
		if math.IsNaN(sma30[i]) || math.IsNaN(sma50[i]) || math.IsNaN(sma200[i]) {
			continue
		}
		out = append(out, model.IndicatorRow{
			Date:   prices[i].Date,
			Price:  closes[i],
			SMA30:  sma30[i],
			SMA50:  sma50[i],
			SMA200: sma200[i],
		})
	}
	if len(out) == 0 {
		return nil, &model.InsufficientDataError{Have: len(prices), Need: WindowLong}
	}
	return out, nil
}

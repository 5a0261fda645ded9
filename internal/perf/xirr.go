// Package perf turns a finalized trade log into return metrics: a
// money-weighted annualized rate over the dated buy/sell flows, and a
// buy-and-hold baseline for comparison.
package perf

import (
	"math"
	"time"
)

// CashFlow is one dated flow: negative for money leaving the portfolio
// (purchases), positive for money coming back (sales).
type CashFlow struct {
	Date   time.Time
	Amount float64
}

// XIRR solves for the constant annual rate at which the net present
// value of the flows is zero, with exponents in day/365 units.
//
// Degenerate series never fail the run: fewer than two flows, flows all
// of one sign, or a solver that cannot converge all yield 0.
func XIRR(flows []CashFlow) float64 {
	if len(flows) < 2 {
		return 0
	}
	var hasPos, hasNeg bool
	for _, f := range flows {
		if f.Amount > 0 {
			hasPos = true
		}
		if f.Amount < 0 {
			hasNeg = true
		}
	}
	if !hasPos || !hasNeg {
		return 0
	}

	t0 := flows[0].Date
	npv := func(rate float64) float64 {
		var sum float64
		for _, f := range flows {
			years := f.Date.Sub(t0).Hours() / 24 / 365
			sum += f.Amount / math.Pow(1+rate, years)
		}
		return sum
	}
	dnpv := func(rate float64) float64 {
		var sum float64
		for _, f := range flows {
			years := f.Date.Sub(t0).Hours() / 24 / 365
			sum -= years * f.Amount / math.Pow(1+rate, years+1)
		}
		return sum
	}

	// Newton from a conventional starting guess.
	rate := 0.1
	for i := 0; i < 100; i++ {
		v := npv(rate)
		if math.Abs(v) < 1e-9 {
			return rate
		}
		d := dnpv(rate)
		if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			break
		}
		next := rate - v/d
		if next <= -1 || math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		if math.Abs(next-rate) < 1e-12 {
			return next
		}
		rate = next
	}

	// Bisection fallback over (-1, hi], widening hi until the sign
	// flips or the bracket is hopeless.
	lo, hi := -0.999999, 10.0
	vLo := npv(lo)
	vHi := npv(hi)
	for vLo*vHi > 0 && hi < 1e6 {
		hi *= 10
		vHi = npv(hi)
	}
	if vLo*vHi > 0 {
		return 0
	}
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		v := npv(mid)
		if math.Abs(v) < 1e-9 || hi-lo < 1e-12 {
			return mid
		}
		if v*vLo < 0 {
			hi = mid
		} else {
			lo = mid
			vLo = v
		}
	}
	return (lo + hi) / 2
}

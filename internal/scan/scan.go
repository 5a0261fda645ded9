// Package scan runs the strategy across every configured instrument.
// Runs are embarrassingly parallel: each instrument gets its own
// engine, ledger, peak tracker and cooloff watermark, and results are
// merged by simple concatenation at the end.
package scan

import (
	"context"
	"sync"

	"dma-backtest/internal/backtest"
	"dma-backtest/internal/config"
	"dma-backtest/internal/indicator"
	"dma-backtest/internal/model"
	"dma-backtest/internal/perf"
	"dma-backtest/internal/strategy"
)

// Input pairs an instrument with its pre-fetched price series.
type Input struct {
	Instrument config.Instrument
	Prices     model.PriceSeries
}

// Outcome is one instrument's finished run. A per-instrument failure
// (short series, bad price row) lands in Err without affecting the
// rest of the batch.
type Outcome struct {
	Instrument     config.Instrument
	InitialCapital float64
	Result         *backtest.Result
	Report         *perf.Report
	Err            error
}

// Run evaluates every input concurrently and returns outcomes in input
// order.
func Run(ctx context.Context, cfg *config.Config, inputs []Input) []Outcome {
	out := make([]Outcome, len(inputs))
	var wg sync.WaitGroup
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i] = runOne(ctx, cfg, inputs[i])
		}(i)
	}
	wg.Wait()
	return out
}

func runOne(ctx context.Context, cfg *config.Config, in Input) Outcome {
	o := Outcome{
		Instrument:     in.Instrument,
		InitialCapital: in.Instrument.InitialCapital(cfg.Run.TotalCapital),
	}

	rows, err := indicator.Compute(in.Prices)
	if err != nil {
		o.Err = err
		return o
	}
	strat, err := strategy.NewDMAStrategy(cfg.Strategy.ToParams())
	if err != nil {
		o.Err = err
		return o
	}
	params, err := cfg.RunParams(o.InitialCapital)
	if err != nil {
		o.Err = err
		return o
	}
	eng, err := backtest.New(params, strat)
	if err != nil {
		o.Err = err
		return o
	}
	res, err := eng.Run(ctx, rows)
	if err != nil {
		o.Err = err
		return o
	}
	o.Result = res
	o.Report = perf.Evaluate(res, o.InitialCapital)
	return o
}

package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"time"

	"dma-backtest/internal/backtest"
	"dma-backtest/internal/indicator"
	"dma-backtest/internal/model"
	"dma-backtest/internal/perf"
	"dma-backtest/internal/strategy"
)

// Demo:
// - Generate a synthetic daily close series (trend + cycle)
// - Run the moving-average strategy end to end
// - Print the trade log and the return report
func main() {
	days := flag.Int("days", 500, "Number of synthetic trading days")
	capital := flag.Float64("capital", 100000, "Initial capital")
	flag.Parse()

	prices := synthetic(*days)

	series, err := indicator.Compute(prices)
	if err != nil {
		panic(err)
	}

	strat, err := strategy.NewDMAStrategy(strategy.DMAParams{
		StrongBuyAllocationPct:   4,
		ModerateBuyAllocationPct: 2,
		SellPct:                  5,
		ProfitThresholdPct:       9,
		CooloffDays:              5,
	})
	if err != nil {
		panic(err)
	}

	engine, err := backtest.New(backtest.RunParams{
		InitialCapital:    *capital,
		DailyInterestRate: 0.09 / 365,
		MaintenanceFeePct: 0.65,
		SeedBuy:           true,
		AllocationBase:    backtest.AllocInitialCapital,
	}, strat)
	if err != nil {
		panic(err)
	}

	res, err := engine.Run(context.Background(), series)
	if err != nil {
		panic(err)
	}

	for _, ev := range res.Events {
		switch e := ev.(type) {
		case model.BuyEvent:
			fmt.Printf("%s  Buy/%-13s %8.0f u @ %8.2f  cash=%.2f\n",
				e.Date.Format("2006-01-02"), e.Subtype, e.Units, e.Price, e.CashAfter)
		case model.SellEvent:
			fmt.Printf("%s  Sell/%-12s %8.0f u @ %8.2f  cash=%.2f\n",
				e.Date.Format("2006-01-02"), e.Subtype, e.Units, e.Price, e.CashAfter)
		}
	}

	rep := perf.Evaluate(res, *capital)
	fmt.Printf("\n%d trading days, %d events\n", res.TradingDays, len(res.Events))
	fmt.Printf("Final value %.2f  XIRR %+.2f%%  buy&hold annualized %+.2f%%  outperformance %+.2f%%\n",
		rep.FinalValue, rep.XIRRPct, rep.BuyHold.AnnualizedPct, rep.OutperformancePct)
}

// synthetic produces a gently rising close series with a long cycle, so
// both buy and sell conditions occur.
func synthetic(days int) model.PriceSeries {
	start := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	series := make(model.PriceSeries, 0, days)
	d := start
	for i := 0; i < days; i++ {
		// skip weekends to exercise the calendar-gap handling
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
		price := 100 + 0.05*float64(i) + 15*math.Sin(float64(i)/40)
		series = append(series, model.PriceBar{Date: d, Close: price})
		d = d.AddDate(0, 0, 1)
	}
	return series
}

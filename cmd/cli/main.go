package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dma-backtest/internal/backtest"
	"dma-backtest/internal/config"
	"dma-backtest/internal/data"
	"dma-backtest/internal/indicator"
	"dma-backtest/internal/model"
	"dma-backtest/internal/perf"
	"dma-backtest/internal/scan"
	"dma-backtest/internal/strategy"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "backtest":
		cmdBacktest(os.Args[2:])
	case "scan":
		cmdScan(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli backtest --data prices.json --config examples/config.yaml --out results/trades.csv")
	fmt.Println("  cli scan --data histories/ --config examples/config.yaml")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - backtest replays one instrument and prints the return report")
	fmt.Println("  - scan runs every instrument found in --data and ranks by outperformance")
	fmt.Println("  - price files may be JSON ({symbol, data:[...]}) or CSV with a date,close header")
}

func cmdBacktest(args []string) {
	fs := flag.NewFlagSet("backtest", flag.ExitOnError)
	dataPath := fs.String("data", "prices.json", "Path to a price-history JSON or CSV file")
	cfgPath := fs.String("config", "", "Path to YAML config (optional)")
	symbol := fs.String("symbol", "", "Instrument symbol (defaults to the one in the data file)")
	capital := fs.Float64("capital", 0, "Override initial capital (0 = use config share)")
	outPath := fs.String("out", "", "Optional trade-log CSV output path")
	_ = fs.Parse(args)

	sym, prices := loadPrices(*dataPath)
	if *symbol != "" {
		sym = *symbol
	}

	cfg := loadConfig(*cfgPath)

	initialCapital := *capital
	if initialCapital == 0 {
		initialCapital = cfg.Run.TotalCapital
		if ins, ok := config.FindInstrument(cfg.Instruments, sym); ok {
			initialCapital = ins.InitialCapital(cfg.Run.TotalCapital)
		}
	}

	series, err := indicator.Compute(prices)
	if err != nil {
		panic(err)
	}
	strat, err := strategy.NewDMAStrategy(cfg.Strategy.ToParams())
	if err != nil {
		panic(err)
	}
	params, err := cfg.RunParams(initialCapital)
	if err != nil {
		panic(err)
	}
	engine, err := backtest.New(params, strat)
	if err != nil {
		panic(err)
	}
	res, err := engine.Run(context.Background(), series)
	if err != nil {
		panic(err)
	}
	rep := perf.Evaluate(res, initialCapital)

	if *outPath != "" {
		if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
			panic(err)
		}
		if err := backtest.WriteEventsCSV(*outPath, res.Events); err != nil {
			panic(err)
		}
		fmt.Printf("Wrote %d events to %s\n", len(res.Events), *outPath)
	}

	fmt.Printf("%s: %s .. %s (%d trading days)\n", sym,
		res.Start.Format("2006-01-02"), res.End.Format("2006-01-02"), res.TradingDays)
	fmt.Printf("Final value       %.2f (return %+.2f, %+.2f%%)\n",
		rep.FinalValue, rep.TotalReturn, rep.ReturnPct)
	fmt.Printf("Strategy XIRR     %+.2f%%\n", rep.XIRRPct)
	fmt.Printf("Buy & hold        %+.2f%% (annualized %+.2f%%)\n",
		rep.BuyHold.ReturnPct, rep.BuyHold.AnnualizedPct)
	fmt.Printf("Outperformance    %+.2f%%\n", rep.OutperformancePct)
	fmt.Printf("Trades: %d buys (%d strong / %d moderate), %d sells, fees %.2f, interest %.2f\n",
		rep.Stats.BuyTrades, rep.Stats.StrongBuys, rep.Stats.ModerateBuys,
		rep.Stats.SellTrades, rep.Stats.FeesPaid, rep.Stats.InterestEarned)
}

func cmdScan(args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	dataPaths := fs.String("data", "histories", "Comma-separated price files or a directory")
	cfgPath := fs.String("config", "", "Path to YAML config (optional)")
	_ = fs.Parse(args)

	cfg := loadConfig(*cfgPath)

	inputs := []scan.Input{}
	for _, p := range splitPaths(*dataPaths) {
		info, err := os.Stat(p)
		if err != nil {
			panic(err)
		}
		if info.IsDir() {
			entries, err := os.ReadDir(p)
			if err != nil {
				panic(err)
			}
			for _, e := range entries {
				if e.IsDir() || !isPriceFile(e.Name()) {
					continue
				}
				inputs = append(inputs, loadInput(cfg, filepath.Join(p, e.Name())))
			}
		} else {
			inputs = append(inputs, loadInput(cfg, p))
		}
	}
	if len(inputs) == 0 {
		fmt.Println("no price files found")
		os.Exit(1)
	}

	ranked := scan.RankByOutperformance(scan.Run(context.Background(), cfg, inputs))

	fmt.Printf("%-4s %-16s %-10s %-12s %-12s %-12s %s\n",
		"rank", "symbol", "days", "xirr%", "bh-ann%", "outperf%", "final")
	for i, o := range ranked {
		if o.Err != nil {
			fmt.Printf("%-4d %-16s failed: %v\n", i+1, o.Instrument.Symbol, o.Err)
			continue
		}
		fmt.Printf("%-4d %-16s %-10d %-12.2f %-12.2f %-12.2f %.2f\n",
			i+1,
			o.Instrument.Symbol,
			o.Result.TradingDays,
			o.Report.XIRRPct,
			o.Report.BuyHold.AnnualizedPct,
			o.Report.OutperformancePct,
			o.Report.FinalValue,
		)
	}
}

func loadConfig(path string) *config.Config {
	if path == "" {
		return &config.Config{
			Strategy:    config.DefaultStrategy(),
			Run:         config.RunConfig{TotalCapital: 100000, MaintenanceFeePct: 0.65},
			Instruments: config.DefaultInstruments(),
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func loadPrices(path string) (string, model.PriceSeries) {
	if strings.HasSuffix(path, ".csv") {
		series, err := data.LoadPriceCSV(path)
		if err != nil {
			panic(err)
		}
		return symbolFromPath(path), series
	}
	sym, series, err := data.LoadPriceJSON(path)
	if err != nil {
		panic(err)
	}
	if sym == "" {
		sym = symbolFromPath(path)
	}
	return sym, series
}

func loadInput(cfg *config.Config, path string) scan.Input {
	sym, prices := loadPrices(path)
	ins, ok := config.FindInstrument(cfg.Instruments, sym)
	if !ok {
		ins = config.Instrument{Name: sym, Symbol: sym, Percent: 100}
	}
	return scan.Input{Instrument: ins, Prices: prices}
}

func isPriceFile(name string) bool {
	return strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".csv")
}

func symbolFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(strings.TrimSuffix(base, ".json"), ".csv")
}

func splitPaths(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

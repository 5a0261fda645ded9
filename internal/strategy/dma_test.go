package strategy

import (
	"testing"
	"time"

	"dma-backtest/internal/model"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func testParams() DMAParams {
	return DMAParams{
		StrongBuyAllocationPct:   4,
		ModerateBuyAllocationPct: 2,
		SellPct:                  5,
		ProfitThresholdPct:       9,
		CooloffDays:              5,
	}
}

func mustStrategy(t *testing.T, params DMAParams) *DMAStrategy {
	t.Helper()
	s, err := NewDMAStrategy(params)
	if err != nil {
		t.Fatalf("NewDMAStrategy: %v", err)
	}
	return s
}

func cashPortfolio(t *testing.T) *model.Portfolio {
	t.Helper()
	pf, err := model.NewPortfolio(model.PortfolioParams{InitialCapital: 100000})
	if err != nil {
		t.Fatalf("NewPortfolio: %v", err)
	}
	return pf
}

func holdingPortfolio(t *testing.T, units, lastBuy float64) *model.Portfolio {
	t.Helper()
	pf := cashPortfolio(t)
	if _, err := pf.Buy(day(0), units*lastBuy, lastBuy, model.SubtypeStrong); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	return pf
}

func TestDecideRules(t *testing.T) {
	cases := []struct {
		name string
		row  model.IndicatorRow
		want Signal
	}{
		{
			name: "strong buy on deep correction",
			row:  model.IndicatorRow{Date: day(1), Price: 90, SMA30: 95, SMA50: 100, SMA200: 110},
			want: Signal{Action: ActionBuy, Subtype: model.SubtypeStrong, AllocationPct: 4},
		},
		{
			name: "moderate buy on mild correction",
			row:  model.IndicatorRow{Date: day(1), Price: 90, SMA30: 95, SMA50: 100, SMA200: 98},
			want: Signal{Action: ActionBuy, Subtype: model.SubtypeModerate, AllocationPct: 2},
		},
		{
			name: "strong outranks moderate when both hold",
			row:  model.IndicatorRow{Date: day(1), Price: 90, SMA30: 95, SMA50: 100, SMA200: 120},
			want: Signal{Action: ActionBuy, Subtype: model.SubtypeStrong, AllocationPct: 4},
		},
		{
			name: "no action on a flat day",
			row:  model.IndicatorRow{Date: day(1), Price: 100, SMA30: 100, SMA50: 100, SMA200: 100},
			want: Signal{},
		},
		{
			name: "boundary equality does not trigger",
			row:  model.IndicatorRow{Date: day(1), Price: 100, SMA30: 100, SMA50: 110, SMA200: 110},
			want: Signal{},
		},
	}

	strat := mustStrategy(t, testParams())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := strat.Decide(Context{Row: tc.row, Portfolio: cashPortfolio(t)})
			if got != tc.want {
				t.Errorf("Decide = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestDecideSell(t *testing.T) {
	strat := mustStrategy(t, testParams())
	uptrend := model.IndicatorRow{Date: day(30), Price: 115, SMA30: 112, SMA50: 110, SMA200: 105}

	// 15% above the last buy clears the 9% threshold.
	pf := holdingPortfolio(t, 100, 100)
	got := strat.Decide(Context{Row: uptrend, Portfolio: pf})
	want := Signal{Action: ActionSell, Subtype: model.SubtypeProfitTaking, Fraction: 0.05}
	if got != want {
		t.Errorf("Decide = %+v, want %+v", got, want)
	}

	// Below threshold the rule matches but no sale fires.
	pf = holdingPortfolio(t, 100, 110)
	if got := strat.Decide(Context{Row: uptrend, Portfolio: pf}); got != (Signal{}) {
		t.Errorf("Decide below threshold = %+v, want none", got)
	}

	// Nothing to sell without a position.
	if got := strat.Decide(Context{Row: uptrend, Portfolio: cashPortfolio(t)}); got != (Signal{}) {
		t.Errorf("Decide without units = %+v, want none", got)
	}
}

func TestDecideCooloffSuppressesSell(t *testing.T) {
	strat := mustStrategy(t, testParams())
	pf := holdingPortfolio(t, 100, 100)
	if _, err := pf.Sell(day(10), 0.05, 115, model.SubtypeProfitTaking); err != nil {
		t.Fatalf("Sell: %v", err)
	}

	uptrend := model.IndicatorRow{Date: day(12), Price: 115, SMA30: 112, SMA50: 110, SMA200: 105}
	if got := strat.Decide(Context{Row: uptrend, Portfolio: pf}); got != (Signal{}) {
		t.Errorf("Decide inside cooloff = %+v, want none", got)
	}

	uptrend.Date = day(15)
	if got := strat.Decide(Context{Row: uptrend, Portfolio: pf}); got.Action != ActionSell {
		t.Errorf("Decide after cooloff = %+v, want a sell", got)
	}
}

func TestDecideSellPctZeroDisablesProfitTaking(t *testing.T) {
	params := testParams()
	params.SellPct = 0
	strat := mustStrategy(t, params)

	pf := holdingPortfolio(t, 100, 100)
	uptrend := model.IndicatorRow{Date: day(30), Price: 150, SMA30: 140, SMA50: 130, SMA200: 120}
	if got := strat.Decide(Context{Row: uptrend, Portfolio: pf}); got != (Signal{}) {
		t.Errorf("Decide with SellPct 0 = %+v, want none", got)
	}
}

func TestDecideDrawdownGate(t *testing.T) {
	params := testParams()
	params.DropThresholdPct = 10
	strat := mustStrategy(t, params)

	correction := model.IndicatorRow{Date: day(1), Price: 185, SMA30: 188, SMA50: 190, SMA200: 195}

	// 185 against a 200 peak is only a 7.5% drop; gate blocks the buy.
	if got := strat.Decide(Context{Row: correction, Portfolio: cashPortfolio(t), PeakPrice: 200}); got != (Signal{}) {
		t.Errorf("Decide above drop threshold = %+v, want none", got)
	}

	// Against a 210 peak the same price is an 11.9% drop.
	got := strat.Decide(Context{Row: correction, Portfolio: cashPortfolio(t), PeakPrice: 210})
	if got.Action != ActionBuy || got.Subtype != model.SubtypeStrong {
		t.Errorf("Decide past drop threshold = %+v, want strong buy", got)
	}
}

func TestDMAParamsValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*DMAParams)
		ok     bool
	}{
		{"defaults", func(*DMAParams) {}, true},
		{"sell pct zero is allowed", func(p *DMAParams) { p.SellPct = 0 }, true},
		{"strong allocation zero", func(p *DMAParams) { p.StrongBuyAllocationPct = 0 }, false},
		{"strong allocation over 100", func(p *DMAParams) { p.StrongBuyAllocationPct = 101 }, false},
		{"moderate allocation negative", func(p *DMAParams) { p.ModerateBuyAllocationPct = -1 }, false},
		{"sell pct over 100", func(p *DMAParams) { p.SellPct = 500 }, false},
		{"profit threshold negative", func(p *DMAParams) { p.ProfitThresholdPct = -0.1 }, false},
		{"drop threshold at 100", func(p *DMAParams) { p.DropThresholdPct = 100 }, false},
		{"cooloff negative", func(p *DMAParams) { p.CooloffDays = -1 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := testParams()
			tc.mutate(&params)
			err := params.Validate()
			if tc.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tc.ok && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

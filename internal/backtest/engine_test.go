package backtest

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"dma-backtest/internal/model"
	"dma-backtest/internal/strategy"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// row builds one indicator day; passing 0 for a mean pins it to price,
// which never satisfies any strict inequality (a "neutral" day).
func row(n int, price, s30, s50, s200 float64) model.IndicatorRow {
	if s30 == 0 {
		s30 = price
	}
	if s50 == 0 {
		s50 = price
	}
	if s200 == 0 {
		s200 = price
	}
	return model.IndicatorRow{Date: day(n), Price: price, SMA30: s30, SMA50: s50, SMA200: s200}
}

func flatSeries(n int, price float64) model.IndicatorSeries {
	out := make(model.IndicatorSeries, n)
	for i := range out {
		out[i] = row(i, price, 0, 0, 0)
	}
	return out
}

func mustStrategy(t *testing.T, params strategy.DMAParams) *strategy.DMAStrategy {
	t.Helper()
	s, err := strategy.NewDMAStrategy(params)
	if err != nil {
		t.Fatalf("NewDMAStrategy: %v", err)
	}
	return s
}

func defaultParams() strategy.DMAParams {
	return strategy.DMAParams{
		StrongBuyAllocationPct:   4,
		ModerateBuyAllocationPct: 2,
		SellPct:                  5,
		ProfitThresholdPct:       9,
		CooloffDays:              5,
	}
}

func countKinds(events []model.TradeEvent) map[model.EventKind]int {
	out := map[model.EventKind]int{}
	for _, ev := range events {
		out[ev.Kind()]++
	}
	return out
}

// A flat series never satisfies a strict moving-average inequality, so
// only the seed buy, interest accrual and its liquidation occur.
func TestRunFlatSeriesSeedOnly(t *testing.T) {
	const (
		capital = 100000.0
		rate    = 0.0001
		price   = 100.0
	)
	eng, err := New(RunParams{
		InitialCapital:    capital,
		DailyInterestRate: rate,
		SeedBuy:           true,
	}, mustStrategy(t, defaultParams()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := eng.Run(context.Background(), flatSeries(250, price))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	kinds := countKinds(res.Events)
	if kinds[model.EventBuy] != 1 {
		t.Errorf("buys = %d, want exactly the seed buy", kinds[model.EventBuy])
	}
	if kinds[model.EventSell] != 1 {
		t.Errorf("sells = %d, want exactly the final exit", kinds[model.EventSell])
	}
	if kinds[model.EventInterest] != 250 {
		t.Errorf("interest events = %d, want 250", kinds[model.EventInterest])
	}

	var interest float64
	for _, ev := range res.Events {
		if e, ok := ev.(model.InterestEvent); ok {
			interest += e.Amount
		}
	}
	want := capital - price + interest + price
	if math.Abs(res.FinalCash-want) > 1e-6 {
		t.Errorf("final cash = %v, want %v", res.FinalCash, want)
	}
	if res.FinalUnits != 0 {
		t.Errorf("final units = %v, want 0", res.FinalUnits)
	}
}

// Strong Buy sizing: 10% of the original capital at price 50 buys
// exactly 200 units, and cash drops by the buy amount plus the fee.
func TestRunStrongBuySizing(t *testing.T) {
	rows := flatSeries(10, 50)
	rows[9] = row(9, 50, 0, 55, 60) // sma200 > sma50 > price

	params := defaultParams()
	params.StrongBuyAllocationPct = 10
	eng, err := New(RunParams{
		InitialCapital:    100000,
		MaintenanceFeePct: 0.65,
		AllocationBase:    AllocInitialCapital,
	}, mustStrategy(t, params))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := eng.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var buys []model.BuyEvent
	for _, ev := range res.Events {
		if e, ok := ev.(model.BuyEvent); ok {
			buys = append(buys, e)
		}
	}
	if len(buys) != 1 {
		t.Fatalf("got %d buys, want 1", len(buys))
	}
	buy := buys[0]
	if !buy.Date.Equal(day(9)) || buy.Subtype != model.SubtypeStrong {
		t.Errorf("buy = %+v, want Strong on day 9", buy)
	}
	if buy.Units != 200 {
		t.Errorf("units = %v, want floor(10000/50) = 200", buy.Units)
	}
	if math.Abs(buy.CashAfter-90000) > 1e-9 {
		t.Errorf("cash after buy = %v, want 90000", buy.CashAfter)
	}
	fee := res.Events[len(res.Events)-2] // buy, fee, final exit ordering
	if fee.Kind() != model.EventMaintenance {
		t.Fatalf("expected maintenance fee after buy, got %v", fee.Kind())
	}
	if m := fee.(model.MaintenanceEvent); math.Abs(m.Amount-65) > 1e-9 {
		t.Errorf("fee = %v, want 65", m.Amount)
	}
}

// Profit-taking: buy at 100, later price 115 above both averages with a
// 15% gain clears the 9% threshold and sells floor(units x 5%).
func TestRunProfitTakingSell(t *testing.T) {
	rows := flatSeries(40, 100)
	rows[5] = row(5, 100, 0, 105, 110)  // strong buy at 100
	rows[30] = row(30, 115, 0, 110, 105) // price > sma50 > sma200

	params := defaultParams()
	params.StrongBuyAllocationPct = 40
	eng, err := New(RunParams{InitialCapital: 100000}, mustStrategy(t, params))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := eng.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var sells []model.SellEvent
	for _, ev := range res.Events {
		if e, ok := ev.(model.SellEvent); ok && e.Subtype == model.SubtypeProfitTaking {
			sells = append(sells, e)
		}
	}
	if len(sells) != 1 {
		t.Fatalf("got %d profit-taking sells, want 1", len(sells))
	}
	sell := sells[0]
	if !sell.Date.Equal(day(30)) {
		t.Errorf("sell date = %v, want day 30", sell.Date)
	}
	if sell.Units != 20 { // floor(400 * 0.05)
		t.Errorf("units sold = %v, want 20", sell.Units)
	}
	if sell.Price != 115 {
		t.Errorf("sell price = %v, want 115", sell.Price)
	}
}

// When Strong and Moderate would both fire, only Strong trades.
func TestRunMutualExclusivity(t *testing.T) {
	rows := flatSeries(5, 100)
	rows[3] = row(3, 90, 95, 100, 110) // both buy conditions hold

	eng, err := New(RunParams{InitialCapital: 100000}, mustStrategy(t, defaultParams()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := eng.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var buys []model.BuyEvent
	for _, ev := range res.Events {
		if e, ok := ev.(model.BuyEvent); ok {
			buys = append(buys, e)
		}
	}
	if len(buys) != 1 || buys[0].Subtype != model.SubtypeStrong {
		t.Fatalf("buys = %+v, want a single Strong buy", buys)
	}
}

// Warm-up rows before Start feed the running peak, so the drawdown gate
// can block an in-range buy against a pre-window high.
func TestRunPeakFromWarmup(t *testing.T) {
	rows := model.IndicatorSeries{
		row(0, 200, 0, 0, 0), // warm-up: sets the peak
		row(1, 185, 0, 190, 195),
		row(2, 170, 0, 190, 195),
	}

	params := defaultParams()
	params.DropThresholdPct = 10 // requires price <= 180
	eng, err := New(RunParams{
		InitialCapital: 100000,
		Start:          day(1),
	}, mustStrategy(t, params))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := eng.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var buys []model.BuyEvent
	for _, ev := range res.Events {
		if e, ok := ev.(model.BuyEvent); ok {
			buys = append(buys, e)
		}
	}
	if len(buys) != 1 {
		t.Fatalf("got %d buys, want 1 (day 1 gated, day 2 allowed)", len(buys))
	}
	if !buys[0].Date.Equal(day(2)) {
		t.Errorf("buy date = %v, want day 2", buys[0].Date)
	}
}

// Interest accrues on elapsed calendar days, not row counts.
func TestRunInterestCalendarGap(t *testing.T) {
	rows := model.IndicatorSeries{
		row(0, 100, 0, 0, 0),
		row(3, 100, 0, 0, 0), // weekend-style gap
	}
	const rate = 0.0001
	eng, err := New(RunParams{
		InitialCapital:    100000,
		DailyInterestRate: rate,
	}, mustStrategy(t, defaultParams()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := eng.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var credits []model.InterestEvent
	for _, ev := range res.Events {
		if e, ok := ev.(model.InterestEvent); ok {
			credits = append(credits, e)
		}
	}
	if len(credits) != 2 {
		t.Fatalf("got %d interest events, want 2", len(credits))
	}
	if credits[0].Days != 1 || credits[1].Days != 3 {
		t.Errorf("day counts = %d, %d; want 1 and 3", credits[0].Days, credits[1].Days)
	}
	wantSecond := (100000 + credits[0].Amount) * rate * 3
	if math.Abs(credits[1].Amount-wantSecond) > 1e-9 {
		t.Errorf("second credit = %v, want %v", credits[1].Amount, wantSecond)
	}
}

// A seed the account cannot afford is skipped, not fatal.
func TestRunSeedSkippedWhenUnaffordable(t *testing.T) {
	cases := []struct {
		name    string
		capital float64
		feePct  float64
	}{
		{"below one unit", 50, 0},
		{"fee tips it over", 100, 0.65},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eng, err := New(RunParams{
				InitialCapital:    tc.capital,
				MaintenanceFeePct: tc.feePct,
				SeedBuy:           true,
			}, mustStrategy(t, defaultParams()))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			res, err := eng.Run(context.Background(), flatSeries(10, 100))
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if kinds := countKinds(res.Events); kinds[model.EventBuy] != 0 {
				t.Errorf("buys = %d, want seed skipped", kinds[model.EventBuy])
			}
			if res.FinalCash != tc.capital {
				t.Errorf("final cash = %v, want untouched %v", res.FinalCash, tc.capital)
			}
		})
	}
}

func TestRunEmptySeries(t *testing.T) {
	eng, err := New(RunParams{InitialCapital: 100000}, mustStrategy(t, defaultParams()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = eng.Run(context.Background(), nil)
	var insufficient *model.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientDataError", err)
	}

	// A window that excludes every row is equally empty.
	eng2, err := New(RunParams{InitialCapital: 100000, Start: day(100)}, mustStrategy(t, defaultParams()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = eng2.Run(context.Background(), flatSeries(5, 100))
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientDataError", err)
	}
}

func TestRunInvalidPriceAborts(t *testing.T) {
	rows := flatSeries(10, 100)
	rows[4] = model.IndicatorRow{Date: day(4), Price: -1, SMA30: 100, SMA50: 100, SMA200: 100}

	eng, err := New(RunParams{InitialCapital: 100000, SeedBuy: true}, mustStrategy(t, defaultParams()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := eng.Run(context.Background(), rows)
	var invalid *model.InvalidPriceError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want InvalidPriceError", err)
	}
	if res != nil {
		t.Error("aborted run must not return a partial result")
	}
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng, err := New(RunParams{InitialCapital: 100000}, mustStrategy(t, defaultParams()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := eng.Run(ctx, flatSeries(10, 100))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res != nil {
		t.Error("cancelled run must not return a result")
	}
}

// Legacy sizing: allocation is a fraction of current cash, not of the
// original capital.
func TestRunAllocationBaseCash(t *testing.T) {
	rows := flatSeries(10, 50)
	rows[4] = row(4, 50, 0, 55, 60)
	rows[8] = row(8, 50, 0, 55, 60)

	params := defaultParams()
	params.StrongBuyAllocationPct = 10
	eng, err := New(RunParams{
		InitialCapital: 100000,
		AllocationBase: AllocCurrentCash,
	}, mustStrategy(t, params))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := eng.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var buys []model.BuyEvent
	for _, ev := range res.Events {
		if e, ok := ev.(model.BuyEvent); ok {
			buys = append(buys, e)
		}
	}
	if len(buys) != 2 {
		t.Fatalf("got %d buys, want 2", len(buys))
	}
	if buys[0].Units != 200 { // floor(10000/50)
		t.Errorf("first buy units = %v, want 200", buys[0].Units)
	}
	if buys[1].Units != 180 { // floor(9000/50), cash is now 90000
		t.Errorf("second buy units = %v, want 180", buys[1].Units)
	}
}

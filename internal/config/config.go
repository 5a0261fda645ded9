package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dma-backtest/internal/backtest"
	"dma-backtest/internal/strategy"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Optional: load strategy parameters from a separate YAML.
	// If both StrategyFile and Strategy are provided, Strategy
	// overrides StrategyFile field by field.
	StrategyFile string         `yaml:"strategy_file"`
	Strategy     StrategyConfig `yaml:"strategy"`
	Run          RunConfig      `yaml:"run"`
	Instruments  []Instrument   `yaml:"instruments"`
}

type StrategyConfig struct {
	StrongBuyAllocationPct   float64 `yaml:"strong_buy_allocation_pct"`
	ModerateBuyAllocationPct float64 `yaml:"moderate_buy_allocation_pct"`
	SellPct                  float64 `yaml:"sell_pct"`
	ProfitThresholdPct       float64 `yaml:"profit_threshold_pct"`
	DropThresholdPct         float64 `yaml:"drop_threshold_pct"`
	CooloffDays              int     `yaml:"cooloff_days"`
}

type RunConfig struct {
	TotalCapital float64 `yaml:"total_capital"`

	// Interest on idle cash: either a direct daily rate or an annual
	// percentage divided by 365. DailyInterestRate wins when both are
	// set.
	DailyInterestRate     float64 `yaml:"daily_interest_rate"`
	AnnualInterestRatePct float64 `yaml:"annual_interest_rate_pct"`

	MaintenanceFeePct float64 `yaml:"maintenance_fee_pct"`
	MinInterestCredit float64 `yaml:"min_interest_credit"`

	StartDate string `yaml:"start_date"` // YYYY-MM-DD, empty = open
	EndDate   string `yaml:"end_date"`

	UseFractionalUnits bool   `yaml:"use_fractional_units"`
	SeedBuy            bool   `yaml:"seed_buy"`
	AllocationBase     string `yaml:"allocation_base"` // "initial" (default) or "cash"
}

// DefaultStrategy returns the stock parameter set.
func DefaultStrategy() StrategyConfig {
	return StrategyConfig{
		StrongBuyAllocationPct:   4,
		ModerateBuyAllocationPct: 2,
		SellPct:                  5,
		ProfitThresholdPct:       9,
		DropThresholdPct:         0,
		CooloffDays:              5,
	}
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if c.StrategyFile != "" {
		stratPath := c.StrategyFile
		if !filepath.IsAbs(stratPath) {
			// Prefer paths relative to the config file directory, but
			// fall back to the provided path (relative to cwd).
			cand := filepath.Join(filepath.Dir(path), stratPath)
			if _, err := os.Stat(cand); err == nil {
				stratPath = cand
			}
		}
		loaded, err := loadStrategyFile(stratPath)
		if err != nil {
			return nil, err
		}
		c.Strategy = MergeStrategy(loaded, c.Strategy)
	}
	// Only default a fully absent strategy block: a partially filled
	// block is taken literally so that explicit zeros (e.g. sell_pct: 0
	// to disable profit-taking) survive.
	if c.Strategy == (StrategyConfig{}) {
		c.Strategy = DefaultStrategy()
	}
	if len(c.Instruments) == 0 {
		c.Instruments = DefaultInstruments()
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Run.TotalCapital <= 0 {
		return errors.New("run.total_capital must be > 0")
	}
	// Validate strategy params by constructing the strategy.
	if _, err := strategy.NewDMAStrategy(c.Strategy.ToParams()); err != nil {
		return fmt.Errorf("strategy config invalid: %w", err)
	}
	for i, ins := range c.Instruments {
		if err := ins.Validate(); err != nil {
			return fmt.Errorf("instrument %d (%s): %w", i, ins.Symbol, err)
		}
	}
	// Validate run params against a nominal capital; per-instrument
	// capital is resolved at run time.
	if _, err := c.RunParams(c.Run.TotalCapital); err != nil {
		return fmt.Errorf("run config invalid: %w", err)
	}
	return nil
}

func (s StrategyConfig) ToParams() strategy.DMAParams {
	return strategy.DMAParams{
		StrongBuyAllocationPct:   s.StrongBuyAllocationPct,
		ModerateBuyAllocationPct: s.ModerateBuyAllocationPct,
		SellPct:                  s.SellPct,
		ProfitThresholdPct:       s.ProfitThresholdPct,
		DropThresholdPct:         s.DropThresholdPct,
		CooloffDays:              s.CooloffDays,
	}
}

// RunParams resolves the run configuration for one instrument's capital
// share.
func (c *Config) RunParams(initialCapital float64) (backtest.RunParams, error) {
	p := backtest.RunParams{
		InitialCapital:    initialCapital,
		DailyInterestRate: c.Run.DailyInterestRate,
		MinInterestCredit: c.Run.MinInterestCredit,
		MaintenanceFeePct: c.Run.MaintenanceFeePct,
		FractionalUnits:   c.Run.UseFractionalUnits,
		SeedBuy:           c.Run.SeedBuy,
		AllocationBase:    backtest.AllocationBase(c.Run.AllocationBase),
	}
	if p.DailyInterestRate == 0 && c.Run.AnnualInterestRatePct > 0 {
		p.DailyInterestRate = c.Run.AnnualInterestRatePct / 100 / 365
	}
	if c.Run.StartDate != "" {
		t, err := time.Parse("2006-01-02", c.Run.StartDate)
		if err != nil {
			return p, fmt.Errorf("start_date: %w", err)
		}
		p.Start = t
	}
	if c.Run.EndDate != "" {
		t, err := time.Parse("2006-01-02", c.Run.EndDate)
		if err != nil {
			return p, fmt.Errorf("end_date: %w", err)
		}
		p.End = t
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

type strategyFileWrapper struct {
	Strategy StrategyConfig `yaml:"strategy"`
}

func loadStrategyFile(path string) (StrategyConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return StrategyConfig{}, err
	}
	var w strategyFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return StrategyConfig{}, err
	}
	return w.Strategy, nil
}

// MergeStrategy overlays non-zero fields from override onto base.
// Used when loading a strategy file and applying inline overrides.
func MergeStrategy(base, override StrategyConfig) StrategyConfig {
	out := base
	if override.StrongBuyAllocationPct != 0 {
		out.StrongBuyAllocationPct = override.StrongBuyAllocationPct
	}
	if override.ModerateBuyAllocationPct != 0 {
		out.ModerateBuyAllocationPct = override.ModerateBuyAllocationPct
	}
	if override.SellPct != 0 {
		out.SellPct = override.SellPct
	}
	if override.ProfitThresholdPct != 0 {
		out.ProfitThresholdPct = override.ProfitThresholdPct
	}
	if override.DropThresholdPct != 0 {
		out.DropThresholdPct = override.DropThresholdPct
	}
	if override.CooloffDays != 0 {
		out.CooloffDays = override.CooloffDays
	}
	return out
}

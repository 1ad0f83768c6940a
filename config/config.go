package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rustyeddy/fxsim/market"
	"github.com/rustyeddy/fxsim/risk"
	"github.com/rustyeddy/fxsim/sim"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents a complete calibration, simulation and exposure run
type Config struct {
	Market     MarketConfig     `json:"market" yaml:"market"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Exposure   ExposureConfig   `json:"exposure" yaml:"exposure"`
	Trades     []TradeConfig    `json:"trades" yaml:"trades"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
}

// MarketConfig points at the historical rate file
type MarketConfig struct {
	PricesFile   string `json:"prices_file" yaml:"prices_file"`
	DateLayout   string `json:"date_layout,omitempty" yaml:"date_layout,omitempty"` // Go layout, default 02/01/2006
	BaseCurrency string `json:"base_currency" yaml:"base_currency"`
}

// SimulationConfig contains the calibration window and Monte Carlo size
type SimulationConfig struct {
	Start       string `json:"start" yaml:"start"` // YYYY-MM-DD
	End         string `json:"end" yaml:"end"`
	Simulations int    `json:"simulations" yaml:"simulations"`
	Horizon     int    `json:"horizon" yaml:"horizon"` // days
	Seed        uint64 `json:"seed" yaml:"seed"`
	Workers     int    `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// ExposureConfig contains valuation conventions and reporting percentiles
type ExposureConfig struct {
	PayLegConversion string       `json:"pay_leg_conversion,omitempty" yaml:"pay_leg_conversion,omitempty"` // "path" or "spot"
	Percentiles      []float64    `json:"percentiles" yaml:"percentiles"`
	Workers          int          `json:"workers,omitempty" yaml:"workers,omitempty"`
	Limits           LimitsConfig `json:"limits,omitempty" yaml:"limits,omitempty"`
}

// LimitsConfig contains optional credit limits; zero disables a limit
type LimitsConfig struct {
	PFEPercentile float64 `json:"pfe_percentile,omitempty" yaml:"pfe_percentile,omitempty"`
	MaxPFE        float64 `json:"max_pfe,omitempty" yaml:"max_pfe,omitempty"`
	MaxEE         float64 `json:"max_ee,omitempty" yaml:"max_ee,omitempty"`
	MaxTenorDays  int     `json:"max_tenor_days,omitempty" yaml:"max_tenor_days,omitempty"`
}

// TradeConfig describes one FX forward
type TradeConfig struct {
	ID       string    `json:"id" yaml:"id"`
	Start    string    `json:"start" yaml:"start"`
	Maturity string    `json:"maturity" yaml:"maturity"`
	Receive  LegConfig `json:"receive" yaml:"receive"`
	Pay      LegConfig `json:"pay" yaml:"pay"`
}

type LegConfig struct {
	Notional string `json:"notional" yaml:"notional"` // decimal string, e.g. "1000.00"
	Currency string `json:"currency" yaml:"currency"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type           string `json:"type" yaml:"type"` // "csv" or "sqlite"
	ValuationsFile string `json:"valuations_file,omitempty" yaml:"valuations_file,omitempty"`
	ProfileFile    string `json:"profile_file,omitempty" yaml:"profile_file,omitempty"`
	DBPath         string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on extension)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Market.PricesFile == "" {
		return fmt.Errorf("market.prices_file is required")
	}
	if c.Market.BaseCurrency == "" {
		return fmt.Errorf("market.base_currency is required")
	}

	p, err := c.SimParams()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}

	if _, err := c.Options(); err != nil {
		return fmt.Errorf("exposure.pay_leg_conversion: %w", err)
	}
	for _, pct := range c.Exposure.Percentiles {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("exposure.percentiles must be between 0 and 100, got %v", pct)
		}
	}
	if err := c.Policy().Validate(); err != nil {
		return fmt.Errorf("exposure.limits: %w", err)
	}

	if len(c.Trades) == 0 {
		return fmt.Errorf("at least one trade is required")
	}
	seen := make(map[string]bool, len(c.Trades))
	for i, tc := range c.Trades {
		if tc.ID == "" {
			return fmt.Errorf("trades[%d].id is required", i)
		}
		if seen[tc.ID] {
			return fmt.Errorf("duplicate trade id %s", tc.ID)
		}
		seen[tc.ID] = true
	}
	if _, err := c.RiskTrades(); err != nil {
		return err
	}

	if c.Journal.Type != "csv" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	if c.Journal.Type == "csv" && (c.Journal.ValuationsFile == "" || c.Journal.ProfileFile == "") {
		return fmt.Errorf("journal valuations_file and profile_file required for CSV type")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for SQLite type")
	}
	return nil
}

func parseDay(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}
	d, err := market.ParseDate(market.ISOLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

// SimParams returns the immutable simulation parameters of the run.
func (c *Config) SimParams() (sim.Params, error) {
	start, err := parseDay("simulation.start", c.Simulation.Start)
	if err != nil {
		return sim.Params{}, err
	}
	end, err := parseDay("simulation.end", c.Simulation.End)
	if err != nil {
		return sim.Params{}, err
	}
	return sim.Params{
		Start:       start,
		End:         end,
		Simulations: c.Simulation.Simulations,
		Horizon:     c.Simulation.Horizon,
		Seed:        c.Simulation.Seed,
		Workers:     c.Simulation.Workers,
	}, nil
}

// PriceLayout is the date layout of the prices file.
func (c *Config) PriceLayout() string {
	if c.Market.DateLayout == "" {
		return market.DateLayout
	}
	return c.Market.DateLayout
}

// Options returns the valuation conventions of the run.
func (c *Config) Options() (risk.Options, error) {
	conv, err := risk.ParseConversion(c.Exposure.PayLegConversion)
	if err != nil {
		return risk.Options{}, err
	}
	return risk.Options{
		BaseCurrency: strings.ToUpper(c.Market.BaseCurrency),
		PayLeg:       conv,
	}, nil
}

func (c *Config) Policy() risk.Policy {
	return risk.Policy{
		PFEPercentile: c.Exposure.Limits.PFEPercentile,
		MaxPFE:        c.Exposure.Limits.MaxPFE,
		MaxEE:         c.Exposure.Limits.MaxEE,
		MaxTenorDays:  c.Exposure.Limits.MaxTenorDays,
	}
}

func (l LegConfig) leg(field string) (risk.Leg, error) {
	n, err := decimal.NewFromString(strings.TrimSpace(l.Notional))
	if err != nil {
		return risk.Leg{}, fmt.Errorf("%s.notional: %w", field, err)
	}
	return risk.Leg{Notional: n, Currency: l.Currency}, nil
}

// RiskTrades converts the configured trades.
func (c *Config) RiskTrades() ([]risk.Trade, error) {
	out := make([]risk.Trade, 0, len(c.Trades))
	for i, tc := range c.Trades {
		field := fmt.Sprintf("trades[%d]", i)
		start, err := parseDay(field+".start", tc.Start)
		if err != nil {
			return nil, err
		}
		maturity, err := parseDay(field+".maturity", tc.Maturity)
		if err != nil {
			return nil, err
		}
		rec, err := tc.Receive.leg(field + ".receive")
		if err != nil {
			return nil, err
		}
		pay, err := tc.Pay.leg(field + ".pay")
		if err != nil {
			return nil, err
		}
		t, err := risk.NewTrade(tc.ID, start, maturity, rec, pay)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Market: MarketConfig{
			PricesFile:   "./FX-TimeSeries.csv",
			DateLayout:   market.DateLayout,
			BaseCurrency: "GBP",
		},
		Simulation: SimulationConfig{
			Start:       "2015-01-02",
			End:         "2015-12-31",
			Simulations: 1000,
			Horizon:     365,
			Seed:        1,
		},
		Exposure: ExposureConfig{
			PayLegConversion: "path",
			Percentiles:      []float64{2, 10, 25, 75, 90, 98},
		},
		Trades: []TradeConfig{
			{
				ID:       "FWD-EURUSD-1",
				Start:    "2015-06-01",
				Maturity: "2016-01-02",
				Receive:  LegConfig{Notional: "1000", Currency: "EUR"},
				Pay:      LegConfig{Notional: "1100", Currency: "USD"},
			},
		},
		Journal: JournalConfig{
			Type:           "csv",
			ValuationsFile: "./valuations.csv",
			ProfileFile:    "./profile.csv",
		},
	}
}

/*
Package config loads server settings and the default offer from YAML.

PRECEDENCE (lowest first):
  1. Default(): the built-in offer and server defaults
  2. YAML file passed to Load (only the keys it sets)
  3. Environment variables, via ApplyEnv (cmd/ loads .env first)
  4. Command-line flags set explicitly (handled in cmd/)

EXAMPLE:
  server:
    port: 8080
    db: ./data/scenarios.db
    undo_ttl: 6s
  loan:
    capital: 270000
    term_years: 30
    base_rate_pct: 2.7
    max_combo_discount_pct: 0.85
  bonuses:
    - id: nomina
      name: Domiciliación de nómina
      discount_pct: 0.35
      enabled: true
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/mortgage-bonus/finance"
	"github.com/warp/mortgage-bonus/ledger"
	"github.com/warp/mortgage-bonus/session"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Loan    LoanConfig    `yaml:"loan"`
	Bonuses []BonusConfig `yaml:"bonuses"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	DB             string        `yaml:"db"`
	RedisAddr      string        `yaml:"redis_addr"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	UndoTTL        time.Duration `yaml:"undo_ttl"`
	SessionIdleTTL time.Duration `yaml:"session_idle_ttl"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type LoanConfig struct {
	Capital             float64 `yaml:"capital"`
	TermYears           int     `yaml:"term_years"`
	BaseRatePct         float64 `yaml:"base_rate_pct"`
	MaxComboDiscountPct float64 `yaml:"max_combo_discount_pct"`
}

type BonusConfig struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	DiscountPct float64 `yaml:"discount_pct"`
	AnnualCost  float64 `yaml:"annual_cost"`
	Enabled     bool    `yaml:"enabled"`
}

// Default returns the built-in configuration.
func Default() *Config {
	d := ledger.BuiltinDefaults()
	c := &Config{
		Server: ServerConfig{
			Port:           8080,
			DB:             "./data/scenarios.db",
			CacheTTL:       10 * time.Minute,
			UndoTTL:        session.DefaultUndoTTL,
			SessionIdleTTL: session.DefaultIdleTTL,
			AllowedOrigins: []string{"*"},
		},
		Loan: LoanConfig{
			Capital:             d.Params.Capital.InexactFloat64(),
			TermYears:           d.Params.TermYears,
			BaseRatePct:         d.Params.BaseAnnualRatePct.InexactFloat64(),
			MaxComboDiscountPct: d.Params.MaxComboDiscountPct.InexactFloat64(),
		},
	}
	for _, b := range d.Bonuses {
		c.Bonuses = append(c.Bonuses, BonusConfig{
			ID:          b.ID,
			Name:        b.Name,
			DiscountPct: b.DiscountPct.InexactFloat64(),
			AnnualCost:  b.AnnualCost.InexactFloat64(),
			Enabled:     b.Enabled,
		})
	}
	return c
}

// Load reads a YAML file over the defaults and validates the result.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := Parse(raw, c); err != nil {
			return nil, err
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse decodes YAML onto c. Keys absent from raw keep their current value;
// a bonuses list, when present, replaces the whole list.
func Parse(raw []byte, c *Config) error {
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Loan.TermYears <= 0 {
		return fmt.Errorf("loan.term_years must be positive: %w", finance.ErrNonPositiveTerm)
	}
	seen := make(map[string]bool, len(c.Bonuses))
	for i, b := range c.Bonuses {
		if b.ID == "" {
			return fmt.Errorf("bonuses[%d].id is required", i)
		}
		if seen[b.ID] {
			return fmt.Errorf("bonuses[%d].id %q is duplicated", i, b.ID)
		}
		seen[b.ID] = true
	}
	return nil
}

// ApplyEnv overrides server settings from MORTGAGE_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("MORTGAGE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MORTGAGE_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := getenv("MORTGAGE_DB"); v != "" {
		c.Server.DB = v
	}
	if v := getenv("MORTGAGE_REDIS_ADDR"); v != "" {
		c.Server.RedisAddr = v
	}
	if v := getenv("MORTGAGE_UNDO_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MORTGAGE_UNDO_TTL: %w", err)
		}
		c.Server.UndoTTL = ttl
	}
	return nil
}

// ToDefaults converts the loan and bonus sections into ledger defaults.
func (c *Config) ToDefaults() ledger.Defaults {
	d := ledger.Defaults{
		Params: finance.LoanParameters{
			Capital:             decimal.NewFromFloat(c.Loan.Capital),
			TermYears:           c.Loan.TermYears,
			BaseAnnualRatePct:   decimal.NewFromFloat(c.Loan.BaseRatePct),
			MaxComboDiscountPct: decimal.NewFromFloat(c.Loan.MaxComboDiscountPct),
		},
		Bonuses: make([]finance.Bonus, 0, len(c.Bonuses)),
	}
	for _, b := range c.Bonuses {
		d.Bonuses = append(d.Bonuses, finance.Bonus{
			ID:          b.ID,
			Name:        b.Name,
			DiscountPct: decimal.NewFromFloat(b.DiscountPct),
			AnnualCost:  decimal.NewFromFloat(b.AnnualCost),
			Enabled:     b.Enabled,
		})
	}
	return d
}

// SessionOptions returns the session manager settings.
func (c *Config) SessionOptions() session.Options {
	return session.Options{
		UndoTTL: c.Server.UndoTTL,
		IdleTTL: c.Server.SessionIdleTTL,
	}
}

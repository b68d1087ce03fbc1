// Package config holds the explicit configuration value object passed into
// each component at construction. Nothing reads ambient global state, which
// keeps regions independently testable.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"agile-pricing/internal/model"
)

// Config is the on-disk configuration shape (YAML), with environment
// variable overrides applied by Load.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Octopus OctopusConfig `yaml:"octopus"`
	Cache   CacheConfig   `yaml:"cache"`
	Data    DataConfig    `yaml:"data"`
	Stats   StatsConfig   `yaml:"stats"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type OctopusConfig struct {
	BaseURL        string `yaml:"base_url"`
	ProductCode    string `yaml:"product_code"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type CacheConfig struct {
	Dir           string `yaml:"dir"`
	ExpiryMinutes int    `yaml:"expiry_minutes"`
}

type DataConfig struct {
	RawDir   string `yaml:"raw_dir"`
	StatsDir string `yaml:"stats_dir"`
}

// StatsConfig carries the consumption model behind savings projections.
type StatsConfig struct {
	DailyKWh                  float64 `yaml:"daily_kwh"`
	BatteryChargePowerKW      float64 `yaml:"battery_charge_power_kw"`
	CheapestBlockUsagePercent float64 `yaml:"cheapest_block_usage_percent"`
	PriceCapPPerKWh           float64 `yaml:"price_cap_p_per_kwh"`
	BlockDurationHours        float64 `yaml:"block_duration_hours"`
}

// Default returns the built-in configuration, matching the published
// assumptions: 11 kWh/day usage, 3.5 kW charge rate, 35% of usage shifted
// into the cheapest block, and the current Ofgem cap unit rate.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			AllowedOrigins: []string{"*"},
		},
		Octopus: OctopusConfig{
			BaseURL:        "https://api.octopus.energy/v1",
			ProductCode:    "AGILE-24-10-01",
			TimeoutSeconds: 10,
		},
		Cache: CacheConfig{
			Dir:           "data/cache",
			ExpiryMinutes: 5,
		},
		Data: DataConfig{
			RawDir:   "data/raw",
			StatsDir: "data/stats",
		},
		Stats: StatsConfig{
			DailyKWh:                  11.0,
			BatteryChargePowerKW:      3.5,
			CheapestBlockUsagePercent: 35.0,
			PriceCapPPerKWh:           28.6,
			BlockDurationHours:        3.5,
		},
	}
}

// Load reads a YAML config file (optional: an empty path yields defaults),
// applies environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("API_PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("OCTOPUS_API_BASE_URL"); v != "" {
		c.Octopus.BaseURL = v
	}
	if v := os.Getenv("OCTOPUS_PRODUCT_CODE"); v != "" {
		c.Octopus.ProductCode = v
	}
	if v := os.Getenv("CACHE_EXPIRY_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.ExpiryMinutes = n
		}
	}
	if v := os.Getenv("OFGEM_PRICE_CAP_P_PER_KWH"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Stats.PriceCapPPerKWh = f
		}
	}
}

func (c *Config) Validate() error {
	if c.Octopus.ProductCode == "" {
		return fmt.Errorf("octopus.product_code is required")
	}
	if c.Stats.BlockDurationHours < 0.5 {
		return fmt.Errorf("stats.block_duration_hours must be at least 0.5, got %v", c.Stats.BlockDurationHours)
	}
	if c.Stats.DailyKWh <= 0 || c.Stats.BatteryChargePowerKW <= 0 {
		return fmt.Errorf("stats assumptions must be positive")
	}
	if c.Stats.CheapestBlockUsagePercent <= 0 || c.Stats.CheapestBlockUsagePercent > 100 {
		return fmt.Errorf("stats.cheapest_block_usage_percent must be in (0, 100], got %v", c.Stats.CheapestBlockUsagePercent)
	}
	return nil
}

// Assumptions converts the stats config into the persisted record shape.
func (c *Config) Assumptions() model.Assumptions {
	return model.Assumptions{
		DailyKWh:                     c.Stats.DailyKWh,
		BatteryChargePowerKW:         c.Stats.BatteryChargePowerKW,
		CheapestBlockUsagePercent:    c.Stats.CheapestBlockUsagePercent,
		UsageShiftedToCheapestBlocks: true,
	}
}

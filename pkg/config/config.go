package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/panbanda/fundgrowth/pkg/fundamental"
	"github.com/panbanda/fundgrowth/pkg/models"
	"github.com/panbanda/fundgrowth/pkg/valuation"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration options for fundgrowth.
type Config struct {
	// Empirical growth model fitting
	Growth models.EmpiricalGrowthSettings `koanf:"growth" toml:"growth"`

	// Metric series extraction
	Series SeriesConfig `koanf:"series" toml:"series"`

	// Valuation inputs
	Valuation ValuationConfig `koanf:"valuation" toml:"valuation"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// SeriesConfig controls how metric series are read from fundamentals documents.
type SeriesConfig struct {
	TimeUnit             string `koanf:"time_unit" toml:"time_unit"` // yearly or quarterly
	TrailingTwelveMonths bool   `koanf:"trailing_twelve_months" toml:"trailing_twelve_months"`
	Workers              int    `koanf:"workers" toml:"workers"` // 0 = NumCPU
}

// ValuationConfig holds market inputs for valuation.
type ValuationConfig struct {
	RiskFreeRate   float64               `koanf:"risk_free_rate" toml:"risk_free_rate"`
	DiscountRate   float64               `koanf:"discount_rate" toml:"discount_rate"`
	TerminalGrowth float64               `koanf:"terminal_growth" toml:"terminal_growth"`
	MaxGrowth      float64               `koanf:"max_growth" toml:"max_growth"`
	Years          int                   `koanf:"years" toml:"years"`
	SpreadTable    valuation.SpreadTable `koanf:"spread_table" toml:"spread_table"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color" toml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Growth: models.DefaultEmpiricalGrowthSettings(),
		Series: SeriesConfig{
			TimeUnit:             fundamental.TimeUnitYearly,
			TrailingTwelveMonths: false,
			Workers:              0,
		},
		Valuation: ValuationConfig{
			RiskFreeRate:   0.04,
			DiscountRate:   0.09,
			TerminalGrowth: 0.025,
			MaxGrowth:      0.25,
			Years:          10,
			SpreadTable:    valuation.DefaultSpreadTable(),
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".fundgrowth/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault loads the first config file found in the standard
// locations, or returns defaults when there is none. A file that exists but
// cannot be loaded is an error.
func LoadOrDefault() (*Config, error) {
	configNames := []string{
		"fundgrowth.toml",
		"fundgrowth.yaml",
		"fundgrowth.yml",
		"fundgrowth.json",
		".fundgrowth.toml",
		".fundgrowth.yaml",
		".fundgrowth.yml",
		".fundgrowth.json",
	}

	searchDirs := []string{".", ".fundgrowth"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				return nil, fmt.Errorf("failed to load config %s: %w", path, err)
			}
			return cfg, nil
		}
	}

	return DefaultConfig(), nil
}

// Validate reports configuration that would make results meaningless.
// A failure here is fatal: the caller should stop with the returned message.
func (c *Config) Validate() error {
	if err := c.Growth.Validate(); err != nil {
		return fmt.Errorf("%w: growth: %w", ErrInvalidConfig, err)
	}
	switch c.Series.TimeUnit {
	case fundamental.TimeUnitYearly, fundamental.TimeUnitQuarterly:
	default:
		return fmt.Errorf("%w: series.time_unit %q must be %q or %q",
			ErrInvalidConfig, c.Series.TimeUnit, fundamental.TimeUnitYearly, fundamental.TimeUnitQuarterly)
	}
	if c.Series.TrailingTwelveMonths && c.Series.TimeUnit != fundamental.TimeUnitQuarterly {
		return fmt.Errorf("%w: series.trailing_twelve_months requires quarterly data", ErrInvalidConfig)
	}
	if err := c.Valuation.SpreadTable.Validate(); err != nil {
		return fmt.Errorf("%w: valuation: %w", ErrInvalidConfig, err)
	}
	if c.Valuation.Years < 0 {
		return fmt.Errorf("%w: valuation.years must be non-negative", ErrInvalidConfig)
	}
	return nil
}

// SeriesOptions returns the fundamental series options implied by the config.
func (c *Config) SeriesOptions() fundamental.SeriesOptions {
	return fundamental.SeriesOptions{
		TrailingTwelveMonths: c.Series.TrailingTwelveMonths,
		MaxDateErrorInDays:   c.Growth.MaxDateErrorInDays,
	}
}

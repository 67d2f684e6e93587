package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Defaults chosen for BigQuery on-demand pricing and a mid-size
// interactive workload. All of them can be overridden by flags or
// environment variables.
const (
	// DefaultPricePerTiB is the on-demand analysis price used when the
	// caller does not supply one (USD per TiB scanned).
	DefaultPricePerTiB = 5.0

	// MaxPricePerTiB bounds caller-supplied prices to a sane range.
	MaxPricePerTiB = 1000.0

	// DefaultHighVolumeBytes is the scan volume above which the scorer
	// starts penalizing (100 GB).
	DefaultHighVolumeBytes = int64(100_000_000_000)

	// DefaultFanOutThreshold is the table count above which the scorer
	// flags excessive fan-out.
	DefaultFanOutThreshold = 5

	// DefaultCacheCapacity bounds the dry-run result cache.
	DefaultCacheCapacity = 256

	// DefaultCacheTTL expires cached dry-run results.
	DefaultCacheTTL = 5 * time.Minute
)

// Config carries the resolved engine configuration.
//
// It is built once at process start and passed explicitly; there is no
// package-level configuration state.
type Config struct {
	// ProjectID is the default GCP project for dry-run requests.
	ProjectID string `yaml:"project_id" json:"project_id"`

	// Location is the default BigQuery location (e.g. "US", "EU").
	Location string `yaml:"location" json:"location"`

	// PricePerTiB is the default price used when a tool call omits it.
	PricePerTiB float64 `yaml:"price_per_tib" json:"price_per_tib"`

	// HighVolumeBytes is the scorer's high-data-scan threshold.
	HighVolumeBytes int64 `yaml:"high_volume_bytes" json:"high_volume_bytes"`

	// FanOutThreshold is the scorer's many-tables threshold.
	FanOutThreshold int `yaml:"fan_out_threshold" json:"fan_out_threshold"`

	// CacheCapacity bounds the dry-run result cache entry count.
	CacheCapacity int `yaml:"cache_capacity" json:"cache_capacity"`

	// CacheTTL expires cached dry-run results.
	CacheTTL time.Duration `yaml:"cache_ttl" json:"cache_ttl"`

	// LogLevel is the slog level name (DEBUG, INFO, WARNING, ERROR).
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Default returns a Config populated with package defaults.
func Default() *Config {
	return &Config{
		PricePerTiB:     DefaultPricePerTiB,
		HighVolumeBytes: DefaultHighVolumeBytes,
		FanOutThreshold: DefaultFanOutThreshold,
		CacheCapacity:   DefaultCacheCapacity,
		CacheTTL:        DefaultCacheTTL,
		LogLevel:        "WARNING",
	}
}

// FromViper resolves configuration from the bound viper instance.
// Flag bindings and AutomaticEnv are set up in cmd; this only reads
// the resolved values and applies defaults for anything unset.
//
// Environment names follow the original server: BQ_PROJECT,
// BQ_LOCATION, SAFE_PRICE_PER_TIB, LOG_LEVEL.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := Default()

	if v.IsSet("project") {
		cfg.ProjectID = v.GetString("project")
	} else {
		cfg.ProjectID = v.GetString("BQ_PROJECT")
	}
	if v.IsSet("location") {
		cfg.Location = v.GetString("location")
	} else {
		cfg.Location = v.GetString("BQ_LOCATION")
	}
	if v.IsSet("price-per-tib") {
		cfg.PricePerTiB = v.GetFloat64("price-per-tib")
	} else if v.IsSet("SAFE_PRICE_PER_TIB") {
		cfg.PricePerTiB = v.GetFloat64("SAFE_PRICE_PER_TIB")
	}
	if v.IsSet("LOG_LEVEL") {
		cfg.LogLevel = v.GetString("LOG_LEVEL")
	}
	if v.IsSet("cache-capacity") {
		cfg.CacheCapacity = v.GetInt("cache-capacity")
	}
	if v.IsSet("cache-ttl") {
		cfg.CacheTTL = v.GetDuration("cache-ttl")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the resolved values against their accepted ranges.
func (c *Config) Validate() error {
	if c.PricePerTiB <= 0 || c.PricePerTiB > MaxPricePerTiB {
		return errors.Errorf("price per TiB must be in (0, %v], got %v", MaxPricePerTiB, c.PricePerTiB)
	}
	if c.HighVolumeBytes < 0 {
		return errors.Errorf("high volume threshold must be non-negative, got %d", c.HighVolumeBytes)
	}
	if c.FanOutThreshold < 1 {
		return errors.Errorf("fan-out threshold must be at least 1, got %d", c.FanOutThreshold)
	}
	if c.CacheCapacity < 0 {
		return errors.Errorf("cache capacity must be non-negative, got %d", c.CacheCapacity)
	}
	if c.CacheTTL < 0 {
		return errors.Errorf("cache TTL must be non-negative, got %v", c.CacheTTL)
	}
	return nil
}

package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 5.0, cfg.PricePerTiB)
	assert.Equal(t, int64(100_000_000_000), cfg.HighVolumeBytes)
	assert.Equal(t, 5, cfg.FanOutThreshold)
	assert.Equal(t, 256, cfg.CacheCapacity)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.NoError(t, cfg.Validate())
}

func TestFromViperFlagsWin(t *testing.T) {
	v := viper.New()
	v.Set("project", "flag-project")
	v.Set("location", "EU")
	v.Set("price-per-tib", 6.25)
	v.Set("cache-capacity", 16)
	v.Set("cache-ttl", "30s")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "flag-project", cfg.ProjectID)
	assert.Equal(t, "EU", cfg.Location)
	assert.Equal(t, 6.25, cfg.PricePerTiB)
	assert.Equal(t, 16, cfg.CacheCapacity)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestFromViperEnvFallback(t *testing.T) {
	v := viper.New()
	v.Set("BQ_PROJECT", "env-project")
	v.Set("BQ_LOCATION", "US")
	v.Set("SAFE_PRICE_PER_TIB", 7.5)
	v.Set("LOG_LEVEL", "DEBUG")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "env-project", cfg.ProjectID)
	assert.Equal(t, "US", cfg.Location)
	assert.Equal(t, 7.5, cfg.PricePerTiB)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestFromViperDefaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)
	assert.Equal(t, DefaultPricePerTiB, cfg.PricePerTiB)
	assert.Equal(t, DefaultCacheCapacity, cfg.CacheCapacity)
	assert.Empty(t, cfg.ProjectID)
}

func TestFromViperRejectsInvalidPrice(t *testing.T) {
	v := viper.New()
	v.Set("price-per-tib", -1.0)
	_, err := FromViper(v)
	assert.Error(t, err)

	v = viper.New()
	v.Set("price-per-tib", 1001.0)
	_, err = FromViper(v)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(*Config) {}, false},
		{"zero price", func(c *Config) { c.PricePerTiB = 0 }, true},
		{"price above cap", func(c *Config) { c.PricePerTiB = MaxPricePerTiB + 1 }, true},
		{"price at cap", func(c *Config) { c.PricePerTiB = MaxPricePerTiB }, false},
		{"negative volume threshold", func(c *Config) { c.HighVolumeBytes = -1 }, true},
		{"zero fan-out", func(c *Config) { c.FanOutThreshold = 0 }, true},
		{"negative cache capacity", func(c *Config) { c.CacheCapacity = -1 }, true},
		{"zero cache capacity disables caching", func(c *Config) { c.CacheCapacity = 0 }, false},
		{"negative ttl", func(c *Config) { c.CacheTTL = -time.Second }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

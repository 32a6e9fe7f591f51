// Package config loads the curation tool's YAML configuration and its environment overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mkoziy/genome/curation/internal/database"
	"github.com/mkoziy/genome/curation/internal/ratelimit"
)

// Config is the full tool configuration.
type Config struct {
	Database database.Options `yaml:"database"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	ClinVar struct {
		// Enabled turns on importing unknown variants from ClinVar.
		Enabled bool   `yaml:"enabled"`
		APIKey  string `yaml:"api_key"`
		Email   string `yaml:"email"`
	} `yaml:"clinvar"`

	RateLimits ratelimit.Limits `yaml:"rate_limits"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Database.DSN = "curation.db"
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	return cfg
}

// Load reads path, when set, over the defaults and then applies CURATION_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Database.DSN = getEnv("CURATION_DB_DSN", cfg.Database.DSN)
	cfg.Log.Level = getEnv("CURATION_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("CURATION_LOG_FORMAT", cfg.Log.Format)
	cfg.ClinVar.APIKey = getEnv("CURATION_CLINVAR_API_KEY", cfg.ClinVar.APIKey)
	cfg.ClinVar.Email = getEnv("CURATION_CLINVAR_EMAIL", cfg.ClinVar.Email)

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	return cfg, nil
}

// ClinVarLimit is the configured E-utilities limit. Without an explicit entry, callers with an API
// key get the higher allowance NCBI grants them.
func (c *Config) ClinVarLimit() ratelimit.Config {
	if _, ok := c.RateLimits[ratelimit.BackendClinVar]; !ok && c.ClinVar.APIKey != "" {
		return ratelimit.Config{Strategy: ratelimit.StrategyTokenBucket, RequestsPerSec: 10, Burst: 10}
	}
	return c.RateLimits.For(ratelimit.BackendClinVar)
}

// StorageLimit is the configured limit in front of the store.
func (c *Config) StorageLimit() ratelimit.Config {
	return c.RateLimits.For(ratelimit.BackendStorage)
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

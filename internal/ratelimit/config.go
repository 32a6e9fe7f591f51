package ratelimit

import "time"

// Backend names used as keys of Limits.
const (
	BackendStorage = "storage"
	BackendClinVar = "clinvar"
)

// Config holds one limiter's configuration.
type Config struct {
	Strategy       Strategy      `yaml:"strategy" json:"strategy"`
	RequestsPerSec float64       `yaml:"requests_per_second" json:"requests_per_second"`
	Burst          int           `yaml:"burst" json:"burst"`
	FixedDelay     time.Duration `yaml:"fixed_delay" json:"fixed_delay"`
}

// DefaultConfig matches the E-utilities allowance for callers without an API key.
func DefaultConfig() Config {
	return Config{
		Strategy:       StrategyTokenBucket,
		RequestsPerSec: 3,
		Burst:          3,
		FixedDelay:     350 * time.Millisecond,
	}
}

func applyDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Strategy == "" {
		cfg.Strategy = def.Strategy
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = def.RequestsPerSec
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.FixedDelay <= 0 {
		cfg.FixedDelay = def.FixedDelay
	}
	return cfg
}

// Limits maps a backend name to its limiter configuration.
type Limits map[string]Config

// For returns the configuration of backend with defaults applied. The local store is
// unlimited unless configured otherwise.
func (l Limits) For(backend string) Config {
	cfg, ok := l[backend]
	if !ok && backend == BackendStorage {
		return Config{Strategy: StrategyUnlimited}
	}
	return applyDefaults(cfg)
}

// Package ratelimit paces calls to shared backends: the curation store and the ClinVar E-utilities.
package ratelimit

import (
	"context"
	"time"
)

// Limiter gates calls to one backend. Implementations are safe for concurrent use.
type Limiter interface {
	// Wait blocks until the caller may proceed or ctx ends.
	Wait(ctx context.Context) error
	// Allow consumes a permit if one is available right now.
	Allow() bool
	// Reserve returns how long a call made now would wait, without consuming a permit.
	Reserve() time.Duration
}

// Strategy selects the limiter implementation.
type Strategy string

const (
	StrategyTokenBucket Strategy = "token_bucket"
	StrategyFixedDelay  Strategy = "fixed_delay"
	StrategyUnlimited   Strategy = "unlimited"
)

// NewLimiter creates a limiter for cfg.
func NewLimiter(cfg Config) Limiter {
	cfg = applyDefaults(cfg)
	switch cfg.Strategy {
	case StrategyFixedDelay:
		return NewFixedDelay(cfg.FixedDelay)
	case StrategyUnlimited:
		return Unlimited{}
	default:
		return NewTokenBucket(cfg.RequestsPerSec, cfg.Burst)
	}
}

// Unlimited never waits. Wait still reports a finished context.
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }
func (Unlimited) Allow() bool                    { return true }
func (Unlimited) Reserve() time.Duration         { return 0 }

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

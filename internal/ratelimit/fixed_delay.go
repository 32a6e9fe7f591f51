package ratelimit

import (
	"context"
	"sync"
	"time"
)

// FixedDelay spaces calls at least delay apart. The first call never waits.
type FixedDelay struct {
	mu    sync.Mutex
	delay time.Duration
	next  time.Time
	now   func() time.Time
}

func NewFixedDelay(delay time.Duration) *FixedDelay {
	return &FixedDelay{delay: delay, now: time.Now}
}

// Wait claims the next free slot and sleeps until it starts.
func (f *FixedDelay) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	now := f.now()
	start := f.next
	if start.Before(now) {
		start = now
	}
	f.next = start.Add(f.delay)
	f.mu.Unlock()

	return sleep(ctx, start.Sub(now))
}

func (f *FixedDelay) Allow() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	if f.next.After(now) {
		return false
	}
	f.next = now.Add(f.delay)
	return true
}

func (f *FixedDelay) Reserve() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()

	if wait := f.next.Sub(f.now()); wait > 0 {
		return wait
	}
	return 0
}

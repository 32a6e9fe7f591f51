package repositories

import (
	"context"

	"github.com/mkoziy/genome/curation/internal/curation"
	"github.com/mkoziy/genome/curation/internal/models"
	"github.com/mkoziy/genome/curation/internal/ratelimit"
)

// Throttled paces every call to the wrapped storage through a limiter. A wait ended by the
// context fails the call with the context's error.
type Throttled struct {
	next    curation.Storage
	limiter ratelimit.Limiter
}

func NewThrottled(next curation.Storage, limiter ratelimit.Limiter) *Throttled {
	return &Throttled{next: next, limiter: limiter}
}

var _ curation.Storage = (*Throttled)(nil)

func (t *Throttled) Resolve(ctx context.Context, kind models.Kind, id string) (models.Entity, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.next.Resolve(ctx, kind, id)
}

func (t *Throttled) Create(ctx context.Context, kind models.Kind, entity models.Entity) (models.Entity, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.next.Create(ctx, kind, entity)
}

func (t *Throttled) Update(ctx context.Context, kind models.Kind, id string, entity models.Entity) (models.Entity, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.next.Update(ctx, kind, id, entity)
}

func (t *Throttled) Tombstone(ctx context.Context, kind models.Kind, id string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.next.Tombstone(ctx, kind, id)
}

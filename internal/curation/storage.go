package curation

import (
	"context"
	"errors"

	"github.com/mkoziy/genome/curation/internal/models"
)

// ErrNotFound is returned by Storage.Resolve when no entity matches.
var ErrNotFound = errors.New("entity not found")

// Storage is the persistence boundary the orchestrator writes through. Implementations give no
// transactional guarantee across calls and must be safe for concurrent use.
type Storage interface {
	Resolve(ctx context.Context, kind models.Kind, id string) (models.Entity, error)
	Create(ctx context.Context, kind models.Kind, entity models.Entity) (models.Entity, error)
	Update(ctx context.Context, kind models.Kind, id string, entity models.Entity) (models.Entity, error)
	// Tombstone marks the entity deleted without removing it.
	Tombstone(ctx context.Context, kind models.Kind, id string) error
}

package clinvar

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mkoziy/genome/curation/internal/models"
)

// ErrNotFound is returned when ClinVar has no variation for an id.
var ErrNotFound = errors.New("clinvar: variation not found")

// Resolver looks up single variants that are not yet in the curation database.
type Resolver struct {
	client *Client
	logger *zap.Logger
}

func NewResolver(client *Client, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{client: client, logger: logger}
}

// Lookup finds a variant by ClinVar variation id or ClinGen allele registry id.
func (r *Resolver) Lookup(ctx context.Context, id string) (*models.Variant, error) {
	id = strings.TrimSpace(id)

	uid := id
	switch {
	case IsVariationID(id):
	case IsCarID(id):
		found, err := r.client.Search(ctx, id, 1)
		if err != nil {
			return nil, err
		}
		if len(found.IdList) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		uid = found.IdList[0]
	default:
		return nil, fmt.Errorf("%w: %q is neither a variation nor an allele registry id", ErrNotFound, id)
	}

	summaries, err := r.client.Summary(ctx, []string{uid})
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	v, err := ToVariant(summaries[0])
	if err != nil {
		return nil, err
	}
	if v.CarID == nil && IsCarID(id) {
		v.CarID = &id
	}
	r.logger.Debug("resolved variant from clinvar",
		zap.String("id", id),
		zap.String("clinvar_variant_id", uid),
		zap.String("title", v.PreferredTitle),
	)
	return v, nil
}

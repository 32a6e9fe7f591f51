// Package repositories implements curation storage on top of bun.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/mkoziy/genome/curation/internal/curation"
	"github.com/mkoziy/genome/curation/internal/models"
	"github.com/mkoziy/genome/curation/internal/sources/clinvar"
)

// VariantResolver finds variants that are not stored yet.
type VariantResolver interface {
	Lookup(ctx context.Context, id string) (*models.Variant, error)
}

// Store persists curated records in SQLite. Tombstoned records are invisible to Resolve.
type Store struct {
	db       *bun.DB
	resolver VariantResolver
	logger   *zap.Logger
}

// NewStore creates a store. A nil resolver disables importing variants from ClinVar.
func NewStore(db *bun.DB, resolver VariantResolver, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, resolver: resolver, logger: logger}
}

var _ curation.Storage = (*Store)(nil)

type validator interface {
	Validate() error
}

func newEntity(kind models.Kind) (models.Entity, error) {
	switch kind {
	case models.KindArticle:
		return new(models.Article), nil
	case models.KindVariant:
		return new(models.Variant), nil
	case models.KindVariantScore:
		return new(models.VariantScore), nil
	case models.KindIndividual:
		return new(models.Individual), nil
	case models.KindFamily:
		return new(models.Family), nil
	case models.KindGroup:
		return new(models.Group), nil
	case models.KindAnnotation:
		return new(models.Annotation), nil
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
}

func notFound(kind models.Kind, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, curation.ErrNotFound)
	}
	return fmt.Errorf("select %s %s: %w", kind, id, err)
}

// Resolve loads an entity. Variants match on uuid, ClinVar variation id or CAR id and fall back
// to importing from ClinVar.
func (s *Store) Resolve(ctx context.Context, kind models.Kind, id string) (models.Entity, error) {
	switch kind {
	case models.KindVariant:
		return s.resolveVariant(ctx, id)
	case models.KindArticle:
		a := new(models.Article)
		if err := s.db.NewSelect().Model(a).Where("pmid = ?", id).Scan(ctx); err != nil {
			return nil, notFound(kind, id, err)
		}
		return a, nil
	}

	e, err := newEntity(kind)
	if err != nil {
		return nil, err
	}
	err = s.db.NewSelect().
		Model(e).
		Where("uuid = ?", id).
		Where("status != ?", models.StatusDeleted).
		Scan(ctx)
	if err != nil {
		return nil, notFound(kind, id, err)
	}
	return e, nil
}

func (s *Store) resolveVariant(ctx context.Context, id string) (models.Entity, error) {
	v := new(models.Variant)
	err := s.db.NewSelect().
		Model(v).
		Where("uuid = ? OR clinvar_variant_id = ? OR car_id = ?", id, id, id).
		Limit(1).
		Scan(ctx)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, sql.ErrNoRows) || s.resolver == nil {
		return nil, notFound(models.KindVariant, id, err)
	}

	imported, err := s.resolver.Lookup(ctx, id)
	if errors.Is(err, clinvar.ErrNotFound) {
		return nil, fmt.Errorf("variant %s: %w", id, curation.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("look up variant %s: %w", id, err)
	}
	return s.importVariant(ctx, imported)
}

// importVariant stores a variant found in ClinVar. A variant stored concurrently under the same
// ClinVar id wins.
func (s *Store) importVariant(ctx context.Context, v *models.Variant) (models.Entity, error) {
	v.UUID = uuid.NewString()
	res, err := s.db.NewInsert().
		Model(v).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("import variant %s: %w", *v.ClinvarVariantID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		existing := new(models.Variant)
		err := s.db.NewSelect().Model(existing).Where("clinvar_variant_id = ?", *v.ClinvarVariantID).Scan(ctx)
		if err != nil {
			return nil, notFound(models.KindVariant, *v.ClinvarVariantID, err)
		}
		return existing, nil
	}
	s.logger.Info("imported variant from clinvar",
		zap.String("uuid", v.UUID),
		zap.String("clinvar_variant_id", *v.ClinvarVariantID),
		zap.String("title", v.PreferredTitle),
	)
	return v, nil
}

// Create inserts entity, assigning a uuid and the in-progress status when unset.
func (s *Store) Create(ctx context.Context, kind models.Kind, entity models.Entity) (models.Entity, error) {
	if entity.EntityKind() != kind {
		return nil, fmt.Errorf("create %s: got %s", kind, entity.EntityKind())
	}
	prepare(entity)
	if v, ok := entity.(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("create %s: %w", kind, err)
		}
	}
	if _, err := s.db.NewInsert().Model(entity).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert %s: %w", kind, err)
	}
	return entity, nil
}

func prepare(e models.Entity) {
	setID := func(id *string) {
		if *id == "" {
			*id = uuid.NewString()
		}
	}
	setStatus := func(st *models.Status) {
		if *st == "" {
			*st = models.StatusInProgress
		}
	}
	switch v := e.(type) {
	case *models.Variant:
		setID(&v.UUID)
	case *models.VariantScore:
		setID(&v.UUID)
		setStatus(&v.Status)
	case *models.Individual:
		setID(&v.UUID)
		setStatus(&v.Status)
	case *models.Family:
		setID(&v.UUID)
		setStatus(&v.Status)
	case *models.Group:
		setID(&v.UUID)
		setStatus(&v.Status)
	case *models.Annotation:
		setID(&v.UUID)
		setStatus(&v.Status)
	}
}

// Update replaces the stored row of entity by primary key.
func (s *Store) Update(ctx context.Context, kind models.Kind, id string, entity models.Entity) (models.Entity, error) {
	if entity.EntityKind() != kind || entity.EntityID() != id {
		return nil, fmt.Errorf("update %s %s: got %s %s", kind, id, entity.EntityKind(), entity.EntityID())
	}
	if v, ok := entity.(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("update %s %s: %w", kind, id, err)
		}
	}
	res, err := s.db.NewUpdate().Model(entity).WherePK().Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", kind, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%s %s: %w", kind, id, curation.ErrNotFound)
	}
	return entity, nil
}

// Tombstone marks a record deleted. Articles and variants are shared and cannot be tombstoned.
func (s *Store) Tombstone(ctx context.Context, kind models.Kind, id string) error {
	if kind == models.KindArticle || kind == models.KindVariant {
		return fmt.Errorf("tombstone %s: not supported", kind)
	}
	e, err := newEntity(kind)
	if err != nil {
		return err
	}
	res, err := s.db.NewUpdate().
		Model(e).
		Set("status = ?", models.StatusDeleted).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("uuid = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tombstone %s %s: %w", kind, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, curation.ErrNotFound)
	}
	return nil
}

// OrphanedVariantScores lists live variant scores that no individual owns, oldest first.
// They are left behind when a save fails after writing scores.
func (s *Store) OrphanedVariantScores(ctx context.Context) ([]*models.VariantScore, error) {
	var scores []*models.VariantScore
	err := s.db.NewSelect().
		Model(&scores).
		Relation("Variant").
		Where("vs.evidence_scored IS NULL OR vs.evidence_scored = ''").
		Where("vs.status != ?", models.StatusDeleted).
		OrderExpr("vs.created_at ASC").
		Scan(ctx)
	return scores, err
}

// IndividualScores returns the live variant scores owned by an individual.
func (s *Store) IndividualScores(ctx context.Context, individualID string) ([]*models.VariantScore, error) {
	var scores []*models.VariantScore
	err := s.db.NewSelect().
		Model(&scores).
		Relation("Variant").
		Where("vs.evidence_scored = ?", individualID).
		Where("vs.status != ?", models.StatusDeleted).
		Scan(ctx)
	return scores, err
}

// AggregateFamilies returns the live families whose LOD score counts toward the aggregate.
func (s *Store) AggregateFamilies(ctx context.Context) ([]*models.Family, error) {
	var families []*models.Family
	if err := s.db.NewSelect().
		Model(&families).
		Where("status != ?", models.StatusDeleted).
		Where("segregation IS NOT NULL").
		Scan(ctx); err != nil {
		return nil, err
	}
	out := families[:0]
	for _, f := range families {
		if f.Segregation != nil && f.Segregation.CountsTowardAggregate() {
			out = append(out, f)
		}
	}
	return out, nil
}

// Package migrations creates the curation schema.
package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"

	"github.com/mkoziy/genome/curation/internal/models"
)

var Migrations = migrate.NewMigrations()

// tables in creation order; dropped in reverse.
var tables = []interface{}{
	(*models.Article)(nil),
	(*models.Variant)(nil),
	(*models.VariantScore)(nil),
	(*models.Individual)(nil),
	(*models.Family)(nil),
	(*models.Group)(nil),
	(*models.Annotation)(nil),
}

var indexes = map[string]string{
	"idx_variant_scores_evidence_scored": "variant_scores(evidence_scored)",
	"idx_variant_scores_variant_uuid":    "variant_scores(variant_uuid)",
	"idx_variant_scores_status":          "variant_scores(status)",
	"idx_individuals_status":             "individuals(status)",
	"idx_families_status":                "families(status)",
	"idx_annotations_article_pmid":       "annotations(article_pmid)",
}

func init() {
	// Migration 1: tables
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		for _, model := range tables {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		for i := len(tables) - 1; i >= 0; i-- {
			if _, err := db.NewDropTable().Model(tables[i]).IfExists().Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})

	// Migration 2: indexes
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		for name, target := range indexes {
			if _, err := db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS "+name+" ON "+target); err != nil {
				return err
			}
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		for name := range indexes {
			if _, err := db.ExecContext(ctx, "DROP INDEX IF EXISTS "+name); err != nil {
				return err
			}
		}
		return nil
	})
}

// RunMigrations runs all pending migrations.
func RunMigrations(ctx context.Context, db *bun.DB, logger *zap.Logger) error {
	migrator := migrate.NewMigrator(db, Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}

	if group.IsZero() {
		logger.Info("no new migrations to run")
		return nil
	}

	logger.Info("migrated", zap.String("group", group.String()))
	return nil
}

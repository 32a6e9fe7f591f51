package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/uptrace/bun"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/mkoziy/genome/curation/internal/config"
	"github.com/mkoziy/genome/curation/internal/curation"
	"github.com/mkoziy/genome/curation/internal/database"
	"github.com/mkoziy/genome/curation/internal/logger"
	"github.com/mkoziy/genome/curation/internal/migrations"
	"github.com/mkoziy/genome/curation/internal/models"
	"github.com/mkoziy/genome/curation/internal/ratelimit"
	"github.com/mkoziy/genome/curation/internal/repositories"
	"github.com/mkoziy/genome/curation/internal/segregation"
	"github.com/mkoziy/genome/curation/internal/sources/clinvar"
	"github.com/mkoziy/genome/curation/internal/validation"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cli.Command{
		Name:  "curation",
		Usage: "Segregation scoring and variant evidence curation",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML configuration file", Sources: cli.EnvVars("CURATION_CONFIG")},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			lodCommand(),
			saveIndividualCommand(),
			saveFamilyCommand(),
			toggleProbandCommand(),
			orphansCommand(),
			aggregateCommand(),
		},
	}

	if err := root.Run(ctx, args); err != nil {
		log.Fatal(err)
	}
}

// app holds the wiring shared by commands that touch the database.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *bun.DB
	store  *repositories.Store
	orch   *curation.Orchestrator
}

func openApp(ctx context.Context, c *cli.Command) (*app, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	lg, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "curation")
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	db, err := database.NewDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	var resolver repositories.VariantResolver
	if cfg.ClinVar.Enabled {
		client := clinvar.NewClient(ratelimit.NewLimiter(cfg.ClinVarLimit()), cfg.ClinVar.APIKey, cfg.ClinVar.Email)
		resolver = clinvar.NewResolver(client, lg.Named("clinvar"))
	}
	store := repositories.NewStore(db, resolver, lg.Named("store"))
	throttled := repositories.NewThrottled(store, ratelimit.NewLimiter(cfg.StorageLimit()))

	return &app{
		cfg:    cfg,
		logger: lg,
		db:     db,
		store:  store,
		orch:   curation.New(throttled, lg.Named("curation")),
	}, nil
}

func (a *app) Close() {
	_ = a.db.Close()
	_ = a.logger.Sync()
}

func withApp(fn func(ctx context.Context, c *cli.Command, a *app) error) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		a, err := openApp(ctx, c)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(ctx, c, a)
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or upgrade the database schema",
		Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
			return migrations.RunMigrations(ctx, a.db, a.logger)
		}),
	}
}

func lodCommand() *cli.Command {
	return &cli.Command{
		Name:  "lod",
		Usage: "Estimate a family's LOD score from its pedigree counts",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Required: true, Usage: "mode of inheritance, e.g. autosomal_recessive"},
			&cli.StringFlag{Name: "affected", Usage: "affected individuals with the genotype"},
			&cli.StringFlag{Name: "unaffected", Usage: "unaffected individuals without the biallelic genotype"},
			&cli.StringFlag{Name: "segregations", Usage: "segregations counted for the family"},
			&cli.StringFlag{Name: "lod-requirement", Usage: "semidominant only: autosomal_dominant_or_x_linked, autosomal_recessive or no"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			mode := models.ParseInheritanceMode(c.String("mode"))
			form := segregation.FormState{
				NumberOfAffectedWithGenotype:               c.String("affected"),
				NumberOfUnaffectedWithoutBiallelicGenotype: c.String("unaffected"),
				NumberOfSegregationsForThisFamily:          c.String("segregations"),
				LodRequirements:                            models.LodRequirement(c.String("lod-requirement")),
			}
			est := segregation.EstimatedLod(form, mode)
			if est == nil {
				fmt.Println("no estimate")
				return nil
			}
			fmt.Printf("%.2f\n", *est)
			return nil
		},
	}
}

func saveIndividualCommand() *cli.Command {
	return &cli.Command{
		Name:      "save-individual",
		Usage:     "Save an individual from a YAML draft",
		ArgsUsage: "<draft.yaml>",
		Flags:     []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
		Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
			f, err := loadDraftFile(c.Args().First())
			if err != nil {
				return err
			}
			if f.Individual == nil {
				return errors.New("draft has no individual")
			}
			draft, err := f.Individual.toDraft()
			if err != nil {
				return err
			}
			req := curation.IndividualRequest{Mode: f.mode(), Parent: f.Parent, Draft: draft}
			if f.Individual.ID != "" {
				stored, prev, err := curation.LoadIndividualDraft(ctx, a.store, f.Individual.ID)
				if err != nil {
					return err
				}
				req.Draft = reuseScores(draft, stored)
				req.Previous = prev
			}
			res, err := a.orch.SaveIndividual(ctx, req)
			return report(c, res, err)
		}),
	}
}

func saveFamilyCommand() *cli.Command {
	return &cli.Command{
		Name:      "save-family",
		Usage:     "Save a family, its segregation evidence and its proband from a YAML draft",
		ArgsUsage: "<draft.yaml>",
		Flags:     []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
		Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
			f, err := loadDraftFile(c.Args().First())
			if err != nil {
				return err
			}
			if f.Family == nil {
				return errors.New("draft has no family")
			}
			req := curation.FamilyRequest{
				Mode:       f.mode(),
				Parent:     f.Parent,
				Label:      f.Family.Label,
				Form:       segregation.Reconcile(f.Family.Segregation, f.mode()),
				OtherPMIDs: f.Family.OtherPMIDs,
			}
			if f.Family.ID != "" {
				e, err := a.store.Resolve(ctx, models.KindFamily, f.Family.ID)
				if err != nil {
					return err
				}
				req.Previous = e.(*models.Family)
			}
			if f.Proband != nil {
				draft, err := f.Proband.toDraft()
				if err != nil {
					return err
				}
				if f.Proband.ID != "" {
					stored, prev, err := curation.LoadIndividualDraft(ctx, a.store, f.Proband.ID)
					if err != nil {
						return err
					}
					draft = reuseScores(draft, stored)
					req.PreviousProband = prev
				}
				req.Proband = &draft
			}
			res, err := a.orch.SaveFamily(ctx, req)
			return report(c, res, err)
		}),
	}
}

func toggleProbandCommand() *cli.Command {
	return &cli.Command{
		Name:  "toggle-proband",
		Usage: "Switch a stored individual between proband and non-proband",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "individual", Required: true, Usage: "individual uuid"},
			&cli.StringFlag{Name: "mode", Required: true, Usage: "mode of inheritance"},
			&cli.StringFlag{Name: "parent", Required: true, Usage: "kind:id of the individual's parent"},
			&cli.BoolFlag{Name: "proband", Usage: "make the individual a proband"},
			&cli.BoolFlag{Name: "confirm-loss", Usage: "discard existing variant assessments"},
			&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
		},
		Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
			parent, err := parseParent(c.String("parent"))
			if err != nil {
				return err
			}
			draft, prev, err := curation.LoadIndividualDraft(ctx, a.store, c.String("individual"))
			if err != nil {
				return err
			}
			draft, err = curation.ToggleProband(draft, c.Bool("proband"), c.Bool("confirm-loss"))
			if err != nil {
				return report(c, nil, err)
			}
			res, err := a.orch.SaveIndividual(ctx, curation.IndividualRequest{
				Mode:     models.ParseInheritanceMode(c.String("mode")),
				Parent:   parent,
				Draft:    draft,
				Previous: prev,
			})
			return report(c, res, err)
		}),
	}
}

func orphansCommand() *cli.Command {
	return &cli.Command{
		Name:  "orphans",
		Usage: "List variant scores left without an owning individual",
		Flags: []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
		Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
			scores, err := a.store.OrphanedVariantScores(ctx)
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(scores)
			}
			printScores(scores)
			return nil
		}),
	}
}

func aggregateCommand() *cli.Command {
	return &cli.Command{
		Name:  "aggregate",
		Usage: "List families whose LOD score counts toward the aggregate",
		Flags: []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
		Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
			families, err := a.store.AggregateFamilies(ctx)
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(families)
			}
			printAggregate(families)
			return nil
		}),
	}
}

func parseParent(s string) (curation.ParentRef, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok || id == "" {
		return curation.ParentRef{}, fmt.Errorf("parent %q: want kind:id", s)
	}
	return curation.ParentRef{Kind: models.Kind(kind), ID: id}, nil
}

// report prints the saga outcome and turns curator-facing errors into exit messages.
func report(c *cli.Command, res *curation.Result, err error) error {
	var (
		unresolved *curation.UnresolvedReferenceError
		partial    *curation.PartialPersistenceError
		vErr       *validation.Error
	)
	switch {
	case err == nil:
	case errors.As(err, &vErr):
		return cli.Exit("invalid draft: "+vErr.Error(), 2)
	case errors.As(err, &unresolved):
		return cli.Exit(fmt.Sprintf("unresolved references: %s", refList(unresolved.Refs)), 2)
	case errors.As(err, &partial):
		if res != nil {
			printResult(res)
		}
		return cli.Exit(fmt.Sprintf("save stopped at %s; created %s; updated %s; deleted %s; orphaned variant scores %v: %v",
			partial.Step, refList(partial.Created), refList(partial.Updated), refList(partial.Tombstoned),
			partial.Orphaned, partial.Cause), 3)
	default:
		return err
	}

	if c.Bool("json") {
		return printJSON(res)
	}
	printResult(res)
	return nil
}

// Package curation saves curated family and individual evidence as a sequence of
// non-transactional writes, reporting exactly how far a failed save got.
package curation

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mkoziy/genome/curation/internal/models"
	"github.com/mkoziy/genome/curation/internal/validation"
	"github.com/mkoziy/genome/curation/internal/variants"
	"github.com/mkoziy/genome/curation/internal/zygosity"
)

// Orchestrator runs save sagas against a Storage. It never retries a failed write.
type Orchestrator struct {
	store  Storage
	logger *zap.Logger
}

// New creates an orchestrator. A nil logger disables logging.
func New(store Storage, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{store: store, logger: logger}
}

// ParentRef is the single group, family or annotation a record is attached to.
type ParentRef struct {
	Kind models.Kind `yaml:"kind" json:"kind"`
	ID   string      `yaml:"id" json:"id"`
}

// IndividualRequest saves one individual. Previous is the stored individual being edited, nil for a new one.
type IndividualRequest struct {
	Mode     models.InheritanceMode
	Parent   ParentRef
	Draft    IndividualDraft
	Previous *models.Individual
}

// Result describes how far a saga got. It is returned with every outcome, including failures.
type Result struct {
	State      State
	History    []State
	Family     *models.Family
	Individual *models.Individual
	// Scores are the variant scores written for the proband, in slot order.
	Scores []*models.VariantScore
	// Created, Updated and Tombstoned record every committed write. An entity created by this saga
	// is listed only under Created.
	Created    []Ref
	Updated    []Ref
	Tombstoned []Ref
}

// Canceled reports whether the saga stopped because its context ended.
func (r *Result) Canceled() bool {
	return r.State == StateCanceled
}

// SaveIndividual validates the draft, resolves its cross-references and writes variant scores,
// the individual, its parent link and the scores' back-references, in that order.
func (o *Orchestrator) SaveIndividual(ctx context.Context, req IndividualRequest) (*Result, error) {
	s := o.newSaga("save_individual")

	if err := validateIndividual(req); err != nil {
		return s.reject(err)
	}
	if ctx.Err() != nil {
		return s.cancel()
	}

	s.enter(StateValidatingCrossReferences)
	resolved, err := s.resolve(ctx, req.Draft.OtherPMIDs, req.Draft.Slots.VariantIDs())
	if err != nil {
		return s.resolveFailed(ctx, err)
	}
	req.Draft.Slots = applyVariants(req.Draft.Slots, resolved)

	return s.persistIndividual(ctx, req)
}

func validateIndividual(req IndividualRequest) error {
	if !req.Parent.Kind.IsParent() || req.Parent.ID == "" {
		return validation.New(validation.CodeInvalidParent, "parent")
	}
	d := req.Draft
	if d.Label == "" {
		return validation.New(validation.CodeMissingField, "label")
	}
	if d.Proband {
		if !d.Slots.AllScored() {
			return validation.New(validation.CodeRepresentationMismatch, "variants")
		}
		return zygosity.Validate(d.ZygosityState(req.Mode))
	}
	if !d.Slots.AllPlain() {
		return validation.New(validation.CodeRepresentationMismatch, "variants")
	}
	if d.Slots.Occupied() > zygosity.SlotLimit {
		return validation.New(validation.CodeTooManyVariants, "variants")
	}
	return nil
}

type saga struct {
	store Storage
	log   *zap.Logger
	res   *Result
}

func (o *Orchestrator) newSaga(op string) *saga {
	return &saga{
		store: o.store,
		log:   o.logger.With(zap.String("operation", op)),
		res:   &Result{State: StateIdle, History: []State{StateIdle}},
	}
}

func (s *saga) enter(st State) {
	s.res.State = st
	s.res.History = append(s.res.History, st)
	s.log.Debug("saga state", zap.String("state", string(st)))
}

func (s *saga) created(kind models.Kind, id string) {
	s.res.Created = append(s.res.Created, Ref{Kind: kind, ID: id})
}

func (s *saga) updated(kind models.Kind, id string) {
	ref := Ref{Kind: kind, ID: id}
	if slices.Contains(s.res.Created, ref) || slices.Contains(s.res.Updated, ref) {
		return
	}
	s.res.Updated = append(s.res.Updated, ref)
}

func (s *saga) tombstoned(kind models.Kind, id string) {
	s.res.Tombstoned = append(s.res.Tombstoned, Ref{Kind: kind, ID: id})
}

// committed reports whether any write of this saga reached storage.
func (s *saga) committed() bool {
	return len(s.res.Created) > 0 || len(s.res.Updated) > 0 || len(s.res.Tombstoned) > 0
}

// cancel stops the saga without reporting an error.
func (s *saga) cancel() (*Result, error) {
	s.enter(StateCanceled)
	s.log.Debug("saga canceled", zap.Int("created", len(s.res.Created)))
	return s.res, nil
}

// reject stops the saga on input the curator has to correct.
func (s *saga) reject(err error) (*Result, error) {
	s.enter(StateFailed)
	s.log.Debug("saga rejected", zap.Error(err))
	return s.res, err
}

func (s *saga) fail(ctx context.Context, step State, err error) (*Result, error) {
	if ctx.Err() != nil {
		return s.cancel()
	}
	s.enter(StateFailed)
	if !s.committed() {
		s.log.Warn("saga failed", zap.String("step", string(step)), zap.Error(err))
		return s.res, &StepError{Step: step, Cause: err}
	}

	perr := &PartialPersistenceError{
		Step:       step,
		Created:    append([]Ref(nil), s.res.Created...),
		Updated:    append([]Ref(nil), s.res.Updated...),
		Tombstoned: append([]Ref(nil), s.res.Tombstoned...),
		Orphaned:   s.orphans(),
		Cause:      err,
	}
	s.log.Error("saga left partial state",
		zap.String("step", string(step)),
		zap.Stringers("created", perr.Created),
		zap.Stringers("updated", perr.Updated),
		zap.Stringers("tombstoned", perr.Tombstoned),
		zap.Strings("orphaned", perr.Orphaned),
		zap.Error(err),
	)
	return s.res, perr
}

func (s *saga) resolveFailed(ctx context.Context, err error) (*Result, error) {
	var unresolved *UnresolvedReferenceError
	if errors.As(err, &unresolved) {
		return s.reject(err)
	}
	return s.fail(ctx, StateValidatingCrossReferences, err)
}

func (s *saga) orphans() []string {
	var ids []string
	for _, sc := range s.res.Scores {
		if sc.IsOrphan() {
			ids = append(ids, sc.UUID)
		}
	}
	return ids
}

// resolve looks up every PMID and variant id and reports all misses together.
func (s *saga) resolve(ctx context.Context, pmids, variantIDs []string) (map[string]*models.Variant, error) {
	var missing []Ref
	seen := make(map[Ref]bool)

	for _, pmid := range pmids {
		ref := Ref{Kind: models.KindArticle, ID: pmid}
		if seen[ref] {
			continue
		}
		seen[ref] = true
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, err := s.store.Resolve(ctx, models.KindArticle, pmid)
		switch {
		case errors.Is(err, ErrNotFound):
			missing = append(missing, ref)
		case err != nil:
			return nil, fmt.Errorf("resolve article %s: %w", pmid, err)
		}
	}

	found := make(map[string]*models.Variant)
	for _, id := range variantIDs {
		ref := Ref{Kind: models.KindVariant, ID: id}
		if seen[ref] {
			continue
		}
		seen[ref] = true
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e, err := s.store.Resolve(ctx, models.KindVariant, id)
		switch {
		case errors.Is(err, ErrNotFound):
			missing = append(missing, ref)
			continue
		case err != nil:
			return nil, fmt.Errorf("resolve variant %s: %w", id, err)
		}
		v, err := as[*models.Variant](e)
		if err != nil {
			return nil, err
		}
		found[id] = v
	}

	if len(missing) > 0 {
		return nil, &UnresolvedReferenceError{Refs: missing}
	}
	return found, nil
}

// applyVariants points every slot at the canonical stored variant.
func applyVariants(slots variants.Slots, found map[string]*models.Variant) variants.Slots {
	out := make(variants.Slots, len(slots))
	for i, c := range slots {
		if c == nil {
			continue
		}
		v, ok := found[c.VariantID()]
		if !ok {
			out[i] = c
			continue
		}
		ref := variants.RefFromVariant(v)
		switch sc := c.(type) {
		case variants.PlainRef:
			out[i] = ref
		case variants.ScoredVariant:
			sc.Ref = ref
			sc.Score.VariantUUID = v.UUID
			out[i] = sc
		}
	}
	return out
}

func (s *saga) persistIndividual(ctx context.Context, req IndividualRequest) (*Result, error) {
	if ctx.Err() != nil {
		return s.cancel()
	}
	s.enter(StatePersistingVariantScores)
	if err := s.persistScores(ctx, req); err != nil {
		return s.fail(ctx, StatePersistingVariantScores, err)
	}

	if ctx.Err() != nil {
		return s.cancel()
	}
	s.enter(StatePersistingIndividual)
	isNew, err := s.writeIndividual(ctx, req)
	if err != nil {
		return s.fail(ctx, StatePersistingIndividual, err)
	}

	if ctx.Err() != nil {
		return s.cancel()
	}
	s.enter(StateLinkingToParent)
	if isNew {
		if err := s.link(ctx, req.Parent, s.res.Individual.UUID); err != nil {
			return s.fail(ctx, StateLinkingToParent, err)
		}
	}

	if ctx.Err() != nil {
		return s.cancel()
	}
	s.enter(StateSynchronizingBackReferences)
	if err := s.syncBackReferences(ctx, s.res.Individual.UUID); err != nil {
		return s.fail(ctx, StateSynchronizingBackReferences, err)
	}

	s.enter(StateDone)
	s.log.Info("individual saved",
		zap.String("individual", s.res.Individual.UUID),
		zap.Bool("proband", s.res.Individual.Proband),
		zap.Int("created", len(s.res.Created)),
		zap.Int("tombstoned", len(s.res.Tombstoned)),
	)
	return s.res, nil
}

// persistScores writes every scored slot concurrently and waits for all of them before
// tombstoning scores that dropped out of the slot set.
func (s *saga) persistScores(ctx context.Context, req IndividualRequest) error {
	var scored []variants.ScoredVariant
	if req.Draft.Proband {
		for _, c := range req.Draft.Slots.Filled(zygosity.SlotLimit) {
			if sv, ok := c.(variants.ScoredVariant); ok {
				scored = append(scored, sv)
			}
		}
	}

	results := make([]*models.VariantScore, len(scored))
	isNew := make([]bool, len(scored))

	var g errgroup.Group
	for i, sv := range scored {
		g.Go(func() error {
			score := sv.Score
			score.VariantUUID = sv.Ref.ID
			if score.Status == "" {
				score.Status = models.StatusInProgress
			}
			if sv.Persisted() {
				e, err := s.store.Update(ctx, models.KindVariantScore, score.UUID, &score)
				if err != nil {
					return fmt.Errorf("update variant score %s: %w", score.UUID, err)
				}
				out, err := as[*models.VariantScore](e)
				if err != nil {
					return err
				}
				results[i] = out
				return nil
			}
			e, err := s.store.Create(ctx, models.KindVariantScore, &score)
			if err != nil {
				return fmt.Errorf("create variant score for %s: %w", score.VariantUUID, err)
			}
			out, err := as[*models.VariantScore](e)
			if err != nil {
				return err
			}
			results[i] = out
			isNew[i] = true
			return nil
		})
	}
	err := g.Wait()

	for i, sc := range results {
		if sc == nil {
			continue
		}
		s.res.Scores = append(s.res.Scores, sc)
		if isNew[i] {
			s.created(models.KindVariantScore, sc.UUID)
		} else {
			s.updated(models.KindVariantScore, sc.UUID)
		}
	}
	if err != nil {
		return err
	}

	if req.Previous == nil {
		return nil
	}
	keep := make(map[string]bool, len(s.res.Scores))
	for _, sc := range s.res.Scores {
		keep[sc.UUID] = true
	}
	for _, id := range req.Previous.VariantScores {
		if keep[id] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.store.Tombstone(ctx, models.KindVariantScore, id); err != nil {
			return fmt.Errorf("tombstone variant score %s: %w", id, err)
		}
		s.tombstoned(models.KindVariantScore, id)
	}
	return nil
}

// writeIndividual creates or updates the individual with the representation matching its proband status.
func (s *saga) writeIndividual(ctx context.Context, req IndividualRequest) (bool, error) {
	d := req.Draft
	ind := &models.Individual{
		Label:                 d.Label,
		Sex:                   d.Sex,
		Proband:               d.Proband,
		ProbandClassification: d.Classification.Normalize(),
		Zygosity:              d.Zygosity.Normalize(),
		Variants:              models.StringArray{},
		VariantScores:         models.StringArray{},
		OtherPMIDs:            append(models.StringArray{}, d.OtherPMIDs...),
		Status:                models.StatusInProgress,
	}
	if d.Proband {
		for _, sc := range s.res.Scores {
			ind.VariantScores = append(ind.VariantScores, sc.UUID)
		}
	} else {
		ind.Variants = append(ind.Variants, d.Slots.VariantIDs()...)
	}

	if req.Previous != nil {
		ind.UUID = req.Previous.UUID
		ind.CreatedAt = req.Previous.CreatedAt
		e, err := s.store.Update(ctx, models.KindIndividual, ind.UUID, ind)
		if err != nil {
			return false, fmt.Errorf("update individual %s: %w", ind.UUID, err)
		}
		out, err := as[*models.Individual](e)
		if err != nil {
			return false, err
		}
		s.res.Individual = out
		s.updated(models.KindIndividual, out.UUID)
		return false, nil
	}

	e, err := s.store.Create(ctx, models.KindIndividual, ind)
	if err != nil {
		return false, fmt.Errorf("create individual %s: %w", ind.Label, err)
	}
	out, err := as[*models.Individual](e)
	if err != nil {
		return false, err
	}
	s.res.Individual = out
	s.created(models.KindIndividual, out.UUID)
	return true, nil
}

// link appends the individual to its parent's membership list.
func (s *saga) link(ctx context.Context, parent ParentRef, id string) error {
	e, err := s.store.Resolve(ctx, parent.Kind, parent.ID)
	if err != nil {
		return fmt.Errorf("resolve %s %s: %w", parent.Kind, parent.ID, err)
	}
	p, err := as[models.Parent](e)
	if err != nil {
		return err
	}
	if !p.AddIndividual(id) {
		return nil
	}
	if _, err := s.store.Update(ctx, parent.Kind, parent.ID, p); err != nil {
		return fmt.Errorf("link individual %s to %s %s: %w", id, parent.Kind, parent.ID, err)
	}
	s.updated(parent.Kind, parent.ID)
	return nil
}

// syncBackReferences points each score at its owning individual. The individual id only exists
// once the individual is written, so this runs after it.
func (s *saga) syncBackReferences(ctx context.Context, individualID string) error {
	for _, sc := range s.res.Scores {
		if !sc.IsOrphan() && *sc.EvidenceScored == individualID {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		updated := *sc
		owner := individualID
		updated.EvidenceScored = &owner
		if _, err := s.store.Update(ctx, models.KindVariantScore, sc.UUID, &updated); err != nil {
			return fmt.Errorf("set evidence_scored on variant score %s: %w", sc.UUID, err)
		}
		sc.EvidenceScored = &owner
		s.updated(models.KindVariantScore, sc.UUID)
	}
	return nil
}

func as[T any](e models.Entity) (T, error) {
	v, ok := e.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("storage returned %T, want %T", e, zero)
	}
	return v, nil
}

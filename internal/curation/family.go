package curation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mkoziy/genome/curation/internal/models"
	"github.com/mkoziy/genome/curation/internal/segregation"
	"github.com/mkoziy/genome/curation/internal/validation"
)

// FamilyRequest saves a family with its segregation evidence and, optionally, its proband.
type FamilyRequest struct {
	Mode models.InheritanceMode
	// Parent is the group or annotation the family belongs to.
	Parent     ParentRef
	Label      string
	Form       segregation.FormState
	OtherPMIDs []string
	Previous   *models.Family

	Proband         *IndividualDraft
	PreviousProband *models.Individual
}

type familyParent interface {
	models.Entity
	AddFamily(id string) bool
}

// SaveFamily builds the segregation record, resolves every cross-reference of the family and its
// proband, writes the family and links it to its parent, then saves the proband under the family.
func (o *Orchestrator) SaveFamily(ctx context.Context, req FamilyRequest) (*Result, error) {
	s := o.newSaga("save_family")

	record, err := validateFamily(req)
	if err != nil {
		return s.reject(err)
	}
	if ctx.Err() != nil {
		return s.cancel()
	}

	s.enter(StateValidatingCrossReferences)
	pmids := append([]string(nil), req.OtherPMIDs...)
	variantIDs := append([]string(nil), record.Variants...)
	if req.Proband != nil {
		pmids = append(pmids, req.Proband.OtherPMIDs...)
		variantIDs = append(variantIDs, req.Proband.Slots.VariantIDs()...)
	}
	resolved, err := s.resolve(ctx, pmids, variantIDs)
	if err != nil {
		return s.resolveFailed(ctx, err)
	}
	for i, id := range record.Variants {
		if v, ok := resolved[id]; ok {
			record.Variants[i] = v.UUID
		}
	}

	if ctx.Err() != nil {
		return s.cancel()
	}
	s.enter(StatePersistingFamily)
	if err := s.writeFamily(ctx, req, record); err != nil {
		return s.fail(ctx, StatePersistingFamily, err)
	}

	if req.Proband == nil {
		s.enter(StateDone)
		s.log.Info("family saved", zap.String("family", s.res.Family.UUID))
		return s.res, nil
	}

	draft := *req.Proband
	draft.Slots = applyVariants(draft.Slots, resolved)
	return s.persistIndividual(ctx, IndividualRequest{
		Mode:     req.Mode,
		Parent:   ParentRef{Kind: models.KindFamily, ID: s.res.Family.UUID},
		Draft:    draft,
		Previous: req.PreviousProband,
	})
}

func validateFamily(req FamilyRequest) (models.SegregationRecord, error) {
	if (req.Parent.Kind != models.KindGroup && req.Parent.Kind != models.KindAnnotation) || req.Parent.ID == "" {
		return models.SegregationRecord{}, validation.New(validation.CodeInvalidParent, "parent")
	}
	if req.Label == "" {
		return models.SegregationRecord{}, validation.New(validation.CodeMissingField, "label")
	}
	record, err := segregation.Build(req.Form, req.Mode)
	if err != nil {
		return models.SegregationRecord{}, err
	}
	if req.Proband != nil {
		// The family id does not exist yet; any non-empty id passes the parent check.
		err := validateIndividual(IndividualRequest{
			Mode:   req.Mode,
			Parent: ParentRef{Kind: models.KindFamily, ID: "pending"},
			Draft:  *req.Proband,
		})
		if err != nil {
			return models.SegregationRecord{}, err
		}
	}
	return record, nil
}

func (s *saga) writeFamily(ctx context.Context, req FamilyRequest, record models.SegregationRecord) error {
	fam := &models.Family{
		Label:       req.Label,
		Segregation: &record,
		Individuals: models.StringArray{},
		OtherPMIDs:  append(models.StringArray{}, req.OtherPMIDs...),
		Status:      models.StatusInProgress,
	}

	if req.Previous != nil {
		fam.UUID = req.Previous.UUID
		fam.CreatedAt = req.Previous.CreatedAt
		fam.Individuals = append(fam.Individuals, req.Previous.Individuals...)
		e, err := s.store.Update(ctx, models.KindFamily, fam.UUID, fam)
		if err != nil {
			return fmt.Errorf("update family %s: %w", fam.UUID, err)
		}
		out, err := as[*models.Family](e)
		if err != nil {
			return err
		}
		s.res.Family = out
		s.updated(models.KindFamily, out.UUID)
		return nil
	}

	e, err := s.store.Create(ctx, models.KindFamily, fam)
	if err != nil {
		return fmt.Errorf("create family %s: %w", fam.Label, err)
	}
	out, err := as[*models.Family](e)
	if err != nil {
		return err
	}
	s.res.Family = out
	s.created(models.KindFamily, out.UUID)

	pe, err := s.store.Resolve(ctx, req.Parent.Kind, req.Parent.ID)
	if err != nil {
		return fmt.Errorf("resolve %s %s: %w", req.Parent.Kind, req.Parent.ID, err)
	}
	p, err := as[familyParent](pe)
	if err != nil {
		return err
	}
	if !p.AddFamily(out.UUID) {
		return nil
	}
	if _, err := s.store.Update(ctx, req.Parent.Kind, req.Parent.ID, p); err != nil {
		return fmt.Errorf("link family %s to %s %s: %w", out.UUID, req.Parent.Kind, req.Parent.ID, err)
	}
	s.updated(req.Parent.Kind, req.Parent.ID)
	return nil
}

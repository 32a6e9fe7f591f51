package curation

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkoziy/genome/curation/internal/models"
	"github.com/mkoziy/genome/curation/internal/variants"
	"github.com/mkoziy/genome/curation/internal/zygosity"
)

// IndividualDraft is an individual being edited. Slots hold PlainRef values for non-probands and
// ScoredVariant values for probands.
type IndividualDraft struct {
	Label          string
	Sex            string
	Proband        bool
	Classification models.ProbandClassification
	Zygosity       models.Zygosity
	Slots          variants.Slots
	OtherPMIDs     []string
}

// ZygosityState is the input of the zygosity engine for this draft.
func (d IndividualDraft) ZygosityState(mode models.InheritanceMode) zygosity.State {
	return zygosity.State{
		Mode:           mode,
		Classification: d.Classification.Normalize(),
		Zygosity:       d.Zygosity.Normalize(),
		Occupied:       d.Slots.Occupied(),
	}
}

// SetZygosity applies a zygosity toggle through the constraint engine.
func (d IndividualDraft) SetZygosity(mode models.InheritanceMode, flag models.Zygosity, active bool) (IndividualDraft, error) {
	st, err := zygosity.SetZygosity(d.ZygosityState(mode), flag, active)
	if err != nil {
		return d, err
	}
	d.Zygosity = st.Zygosity
	return d, nil
}

// SetClassification changes the proband classification through the constraint engine.
func (d IndividualDraft) SetClassification(mode models.InheritanceMode, class models.ProbandClassification) (IndividualDraft, error) {
	st, err := zygosity.SetClassification(d.ZygosityState(mode), class)
	if err != nil {
		return d, err
	}
	d.Classification = st.Classification
	d.Zygosity = st.Zygosity
	return d, nil
}

// ToggleProband switches the draft between proband and non-proband, converting every slot.
// Dropping persisted assessments requires confirmLoss.
func ToggleProband(d IndividualDraft, proband, confirmLoss bool) (IndividualDraft, error) {
	if d.Proband == proband {
		return d, nil
	}
	slots, err := variants.ConvertAll(d.Slots, proband, confirmLoss)
	if err != nil {
		return d, err
	}
	d.Slots = slots
	d.Proband = proband
	return d, nil
}

// LoadIndividualDraft reads a stored individual and its variants into an editable draft.
// The returned individual is the Previous value for a following save.
func LoadIndividualDraft(ctx context.Context, store Storage, id string) (IndividualDraft, *models.Individual, error) {
	e, err := store.Resolve(ctx, models.KindIndividual, id)
	if err != nil {
		return IndividualDraft{}, nil, fmt.Errorf("resolve individual %s: %w", id, err)
	}
	ind, err := as[*models.Individual](e)
	if err != nil {
		return IndividualDraft{}, nil, err
	}

	d := IndividualDraft{
		Label:          ind.Label,
		Sex:            ind.Sex,
		Proband:        ind.Proband,
		Classification: ind.ProbandClassification.Normalize(),
		Zygosity:       ind.Zygosity.Normalize(),
		OtherPMIDs:     append([]string(nil), ind.OtherPMIDs...),
	}

	if !ind.Proband {
		for _, vid := range ind.Variants {
			v, err := loadVariant(ctx, store, vid)
			if err != nil {
				return IndividualDraft{}, nil, err
			}
			d.Slots = append(d.Slots, variants.RefFromVariant(v))
		}
		return d, ind, nil
	}

	for _, sid := range ind.VariantScores {
		e, err := store.Resolve(ctx, models.KindVariantScore, sid)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return IndividualDraft{}, nil, fmt.Errorf("resolve variant score %s: %w", sid, err)
		}
		score, err := as[*models.VariantScore](e)
		if err != nil {
			return IndividualDraft{}, nil, err
		}
		if score.Status == models.StatusDeleted {
			continue
		}
		v, err := loadVariant(ctx, store, score.VariantUUID)
		if err != nil {
			return IndividualDraft{}, nil, err
		}
		d.Slots = append(d.Slots, variants.ScoredVariant{Ref: variants.RefFromVariant(v), Score: *score})
	}
	return d, ind, nil
}

func loadVariant(ctx context.Context, store Storage, id string) (*models.Variant, error) {
	e, err := store.Resolve(ctx, models.KindVariant, id)
	if err != nil {
		return nil, fmt.Errorf("resolve variant %s: %w", id, err)
	}
	return as[*models.Variant](e)
}

// Package variants holds the two shapes a curated variant slot can take and the only
// conversions between them.
package variants

import (
	"github.com/mkoziy/genome/curation/internal/models"
	"github.com/mkoziy/genome/curation/internal/validation"
)

// SlotContent is either a PlainRef or a ScoredVariant.
type SlotContent interface {
	VariantID() string
	slotContent()
}

// PlainRef links a non-proband individual to a variant.
type PlainRef struct {
	ID               string `json:"variant_id" yaml:"variant_id"`
	Title            string `json:"title,omitempty" yaml:"title,omitempty"`
	ClinvarVariantID string `json:"clinvar_variant_id,omitempty" yaml:"clinvar_variant_id,omitempty"`
	CarID            string `json:"car_id,omitempty" yaml:"car_id,omitempty"`
}

func (p PlainRef) VariantID() string { return p.ID }
func (PlainRef) slotContent()        {}

// RefFromVariant builds a reference from a stored variant.
func RefFromVariant(v *models.Variant) PlainRef {
	ref := PlainRef{ID: v.UUID, Title: v.DisplayTitle()}
	if v.ClinvarVariantID != nil {
		ref.ClinvarVariantID = *v.ClinvarVariantID
	}
	if v.CarID != nil {
		ref.CarID = *v.CarID
	}
	return ref
}

// ScoredVariant is a proband's variant together with its scoring. Score.UUID is empty until persisted.
type ScoredVariant struct {
	Ref   PlainRef
	Score models.VariantScore
}

func (s ScoredVariant) VariantID() string { return s.Ref.ID }
func (ScoredVariant) slotContent()        {}

// Persisted reports whether the score has been written to storage.
func (s ScoredVariant) Persisted() bool { return s.Score.UUID != "" }

// ToScored wraps a plain reference in an unpersisted score with every scoring field unset.
func ToScored(ref PlainRef) ScoredVariant {
	return ScoredVariant{
		Ref: ref,
		Score: models.VariantScore{
			VariantUUID:                 ref.ID,
			VariantType:                 models.VariantTypeUnset,
			DeNovo:                      models.ScoreFlagUnset,
			MaternityPaternityConfirmed: models.ScoreFlagUnset,
			FunctionalDataSupport:       models.ScoreFlagUnset,
			Status:                      models.StatusInProgress,
		},
	}
}

// ToPlain drops the scoring. Scoring fields cannot be recovered afterwards.
func ToPlain(s ScoredVariant) PlainRef {
	return s.Ref
}

// Slots are the ordered variant positions of an individual; nil entries are empty.
type Slots []SlotContent

// Occupied counts filled slots.
func (s Slots) Occupied() int {
	n := 0
	for _, c := range s {
		if c != nil {
			n++
		}
	}
	return n
}

// Filled returns at most limit filled slots, in order. Empty slots do not count toward limit.
func (s Slots) Filled(limit int) []SlotContent {
	out := make([]SlotContent, 0, len(s))
	for _, c := range s {
		if len(out) >= limit {
			break
		}
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// VariantIDs returns the variant ids of filled slots.
func (s Slots) VariantIDs() []string {
	ids := make([]string, 0, len(s))
	for _, c := range s {
		if c != nil {
			ids = append(ids, c.VariantID())
		}
	}
	return ids
}

// AllScored reports whether every filled slot is scored.
func (s Slots) AllScored() bool {
	for _, c := range s {
		if c == nil {
			continue
		}
		if _, ok := c.(ScoredVariant); !ok {
			return false
		}
	}
	return true
}

// AllPlain reports whether every filled slot is a plain reference.
func (s Slots) AllPlain() bool {
	for _, c := range s {
		if c == nil {
			continue
		}
		if _, ok := c.(PlainRef); !ok {
			return false
		}
	}
	return true
}

// AssessedSlots returns the persisted scored variants that carry scoring answers.
func (s Slots) AssessedSlots() []ScoredVariant {
	var out []ScoredVariant
	for _, c := range s {
		sv, ok := c.(ScoredVariant)
		if ok && sv.Persisted() && sv.Score.HasAssessment() {
			out = append(out, sv)
		}
	}
	return out
}

// ConvertAll converts every filled slot to the representation for proband in a single step.
// Converting scored slots back to plain refuses to drop persisted assessments unless confirmLoss is set.
func ConvertAll(slots Slots, proband, confirmLoss bool) (Slots, error) {
	if !proband && !confirmLoss && len(slots.AssessedSlots()) > 0 {
		return slots, validation.New(validation.CodeAssessmentDataLoss, "proband")
	}

	out := make(Slots, len(slots))
	for i, c := range slots {
		switch v := c.(type) {
		case nil:
		case PlainRef:
			if proband {
				out[i] = ToScored(v)
			} else {
				out[i] = v
			}
		case ScoredVariant:
			if proband {
				out[i] = v
			} else {
				out[i] = ToPlain(v)
			}
		}
	}
	return out, nil
}

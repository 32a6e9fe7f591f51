package main

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mkoziy/genome/curation/internal/curation"
	"github.com/mkoziy/genome/curation/internal/models"
	"github.com/mkoziy/genome/curation/internal/segregation"
	"github.com/mkoziy/genome/curation/internal/variants"
)

// draftFile is the YAML document accepted by save-individual and save-family.
type draftFile struct {
	Mode       string             `yaml:"mode"`
	Parent     curation.ParentRef `yaml:"parent"`
	Individual *individualDraft   `yaml:"individual"`
	Family     *familyDraft       `yaml:"family"`
	Proband    *individualDraft   `yaml:"proband"`
}

type individualDraft struct {
	// ID names a stored individual to edit.
	ID                    string                       `yaml:"id"`
	Label                 string                       `yaml:"label"`
	Sex                   string                       `yaml:"sex"`
	Proband               bool                         `yaml:"proband"`
	ProbandClassification models.ProbandClassification `yaml:"proband_classification"`
	Zygosity              models.Zygosity              `yaml:"zygosity"`
	OtherPMIDs            []string                     `yaml:"other_pmids"`
	Variants              []slotDraft                  `yaml:"variants"`
}

type slotDraft struct {
	// VariantID is a variant uuid, ClinVar variation id or CAR id. Empty leaves the slot empty.
	VariantID string      `yaml:"variant_id"`
	Score     *scoreDraft `yaml:"score"`
}

type scoreDraft struct {
	VariantType                 models.VariantType `yaml:"variant_type"`
	DeNovo                      models.ScoreFlag   `yaml:"de_novo"`
	MaternityPaternityConfirmed models.ScoreFlag   `yaml:"maternity_paternity_confirmed"`
	FunctionalDataSupport       models.ScoreFlag   `yaml:"functional_data_support"`
	Score                       *float64           `yaml:"score"`
	ScoreExplanation            *string            `yaml:"score_explanation"`
}

type familyDraft struct {
	ID          string                `yaml:"id"`
	Label       string                `yaml:"label"`
	OtherPMIDs  []string              `yaml:"other_pmids"`
	Segregation segregation.FormState `yaml:"segregation"`
}

func loadDraftFile(path string) (*draftFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f draftFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse draft %s: %w", path, err)
	}
	if f.Mode == "" {
		return nil, fmt.Errorf("parse draft %s: mode is required", path)
	}
	return &f, nil
}

func (f *draftFile) mode() models.InheritanceMode {
	return models.ParseInheritanceMode(f.Mode)
}

// toDraft builds the editable draft. Slots are scored for probands and plain otherwise.
func (d *individualDraft) toDraft() (curation.IndividualDraft, error) {
	out := curation.IndividualDraft{
		Label:          d.Label,
		Sex:            d.Sex,
		Proband:        d.Proband,
		Classification: d.ProbandClassification.Normalize(),
		Zygosity:       d.Zygosity.Normalize(),
		OtherPMIDs:     d.OtherPMIDs,
	}
	for _, s := range d.Variants {
		if s.VariantID == "" {
			out.Slots = append(out.Slots, nil)
			continue
		}
		ref := variants.PlainRef{ID: s.VariantID}
		if !d.Proband {
			if s.Score != nil {
				return curation.IndividualDraft{}, fmt.Errorf("variant %s: only probands carry scores", s.VariantID)
			}
			out.Slots = append(out.Slots, ref)
			continue
		}
		sv := variants.ToScored(ref)
		s.Score.apply(&sv.Score)
		out.Slots = append(out.Slots, sv)
	}
	return out, nil
}

func (s *scoreDraft) apply(score *models.VariantScore) {
	if s == nil {
		return
	}
	if s.VariantType != "" {
		score.VariantType = s.VariantType
	}
	for _, f := range []struct {
		dst *models.ScoreFlag
		src models.ScoreFlag
	}{
		{&score.DeNovo, s.DeNovo},
		{&score.MaternityPaternityConfirmed, s.MaternityPaternityConfirmed},
		{&score.FunctionalDataSupport, s.FunctionalDataSupport},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}
	score.Score = s.Score
	score.ScoreExplanation = s.ScoreExplanation
}

// reuseScores points scored slots at the stored score of the same variant, so an edit updates
// scores instead of creating new ones.
func reuseScores(draft curation.IndividualDraft, stored curation.IndividualDraft) curation.IndividualDraft {
	previous := make(map[string]variants.ScoredVariant)
	for _, c := range stored.Slots {
		sv, ok := c.(variants.ScoredVariant)
		if !ok {
			continue
		}
		for _, id := range []string{sv.Ref.ID, sv.Ref.ClinvarVariantID, sv.Ref.CarID} {
			if id != "" {
				previous[id] = sv
			}
		}
	}

	slots := make(variants.Slots, len(draft.Slots))
	for i, c := range draft.Slots {
		sv, ok := c.(variants.ScoredVariant)
		if !ok {
			slots[i] = c
			continue
		}
		if prev, found := previous[sv.VariantID()]; found {
			sv.Score.UUID = prev.Score.UUID
			sv.Score.EvidenceScored = prev.Score.EvidenceScored
			sv.Score.CreatedAt = prev.Score.CreatedAt
		}
		slots[i] = sv
	}
	draft.Slots = slots
	return draft
}

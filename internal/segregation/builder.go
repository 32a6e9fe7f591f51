// Package segregation turns a family's segregation form into the record stored on the Family.
package segregation

import (
	"math"
	"strconv"
	"strings"

	"github.com/mkoziy/genome/curation/internal/lod"
	"github.com/mkoziy/genome/curation/internal/models"
	"github.com/mkoziy/genome/curation/internal/validation"
	"github.com/mkoziy/genome/curation/internal/zygosity"
)

// FormState is the raw, as-typed segregation form.
type FormState struct {
	NumberOfAffectedWithGenotype               string                  `yaml:"number_of_affected_with_genotype" json:"number_of_affected_with_genotype"`
	NumberOfUnaffectedWithoutBiallelicGenotype string                  `yaml:"number_of_unaffected_without_biallelic_genotype" json:"number_of_unaffected_without_biallelic_genotype"`
	NumberOfSegregationsForThisFamily          string                  `yaml:"number_of_segregations_for_this_family" json:"number_of_segregations_for_this_family"`
	InconsistentSegregation                    string                  `yaml:"inconsistent_segregation" json:"inconsistent_segregation"`
	ExplanationForInconsistent                 string                  `yaml:"explanation_for_inconsistent" json:"explanation_for_inconsistent"`
	FamilyConsanguineous                       string                  `yaml:"family_consanguineous" json:"family_consanguineous"`
	PedigreeLocation                           string                  `yaml:"pedigree_location" json:"pedigree_location"`
	LodPublished                               string                  `yaml:"lod_published" json:"lod_published"`
	PublishedLodScore                          string                  `yaml:"published_lod_score" json:"published_lod_score"`
	IncludeLodScoreInAggregateCalculation      string                  `yaml:"include_lod_score_in_aggregate_calculation" json:"include_lod_score_in_aggregate_calculation"`
	SequencingMethod                           models.SequencingMethod `yaml:"sequencing_method" json:"sequencing_method"`
	ReasonExplanation                          string                  `yaml:"reason_explanation" json:"reason_explanation"`
	AdditionalInformation                      string                  `yaml:"additional_information" json:"additional_information"`

	ProbandClassification models.ProbandClassification `yaml:"proband_classification" json:"proband_classification"`
	LodRequirements       models.LodRequirement        `yaml:"lod_requirements" json:"lod_requirements"`
	Zygosity              models.Zygosity              `yaml:"zygosity" json:"zygosity"`
	// Variants holds the variant uuid of each slot; empty strings are empty slots.
	Variants []string `yaml:"variants" json:"variants"`
}

// Counts parses the pedigree counts, leaving unanswered or unparseable counts nil.
func (f FormState) Counts() lod.Counts {
	return lod.Counts{
		AffectedWithGenotype:      parseCount(f.NumberOfAffectedWithGenotype),
		UnaffectedWithoutGenotype: parseCount(f.NumberOfUnaffectedWithoutBiallelicGenotype),
		Segregations:              parseCount(f.NumberOfSegregationsForThisFamily),
	}
}

func (f FormState) lodRequirement(mode models.InheritanceMode) *models.LodRequirement {
	if mode != models.ModeSemidominant || f.LodRequirements == "" {
		return nil
	}
	req := f.LodRequirements
	return &req
}

// EstimatedLod returns the estimate for the form, or nil when the inputs do not allow one.
func EstimatedLod(f FormState, mode models.InheritanceMode) *float64 {
	if published := parseYesNo(f.LodPublished); published != nil && *published {
		return nil
	}
	v, ok := lod.Estimate(lod.FormulaFor(mode, f.lodRequirement(mode)), f.Counts())
	if !ok {
		return nil
	}
	return &v
}

// Reconcile clears the include-in-aggregate answer once the form no longer yields a LOD score.
// Callers run it after every change to a LOD input.
func Reconcile(f FormState, mode models.InheritanceMode) FormState {
	if _, ok := effectiveLod(f, mode); !ok {
		f.IncludeLodScoreInAggregateCalculation = ""
	}
	return f
}

func effectiveLod(f FormState, mode models.InheritanceMode) (float64, bool) {
	if published := parseYesNo(f.LodPublished); published != nil && *published {
		return parseFloat(f.PublishedLodScore)
	}
	if est := EstimatedLod(f, mode); est != nil {
		return *est, true
	}
	return 0, false
}

// Build assembles the record persisted on the Family.
func Build(f FormState, mode models.InheritanceMode) (models.SegregationRecord, error) {
	rec := models.SegregationRecord{
		ExplanationForInconsistent: strings.TrimSpace(f.ExplanationForInconsistent),
		PedigreeLocation:           strings.TrimSpace(f.PedigreeLocation),
		ReasonExplanation:          strings.TrimSpace(f.ReasonExplanation),
		AdditionalInformation:      strings.TrimSpace(f.AdditionalInformation),
		InconsistentSegregation:    parseYesNo(f.InconsistentSegregation),
		FamilyConsanguineous:       parseYesNo(f.FamilyConsanguineous),
		LodPublished:               parseYesNo(f.LodPublished),
	}

	counts := f.Counts()
	rec.NumberOfAffectedWithGenotype = counts.AffectedWithGenotype
	rec.NumberOfUnaffectedWithoutBiallelicGenotype = counts.UnaffectedWithoutGenotype
	rec.NumberOfSegregationsForThisFamily = counts.Segregations

	class := f.ProbandClassification.Normalize()
	if mode == models.ModeSemidominant {
		rec.ProbandClassification = &class
		rec.LodRequirements = f.lodRequirement(mode)
	}

	if v, ok := parseFloat(f.PublishedLodScore); ok {
		if v <= 0 {
			return models.SegregationRecord{}, validation.New(validation.CodePublishedLodNotPositive, "published_lod_score")
		}
		rec.PublishedLodScore = &v
	}
	rec.EstimatedLodScore = EstimatedLod(f, mode)

	if f.SequencingMethod.IsSelected() {
		rec.SequencingMethod = f.SequencingMethod
	}
	if _, ok := rec.EffectiveLod(); ok {
		include := parseYesNo(f.IncludeLodScoreInAggregateCalculation)
		if include != nil && *include && !f.SequencingMethod.IsSelected() {
			return models.SegregationRecord{}, validation.New(validation.CodeSequencingMethodRequired, "sequencing_method")
		}
		rec.IncludeLodScoreInAggregateCalculation = include
	}

	zyg := f.Zygosity.Normalize()
	if zyg != models.ZygosityNone {
		rec.Zygosity = zyg
	}
	limit := zygosity.MaxVariantSlots(mode, class, zyg)
	for _, id := range f.Variants {
		if len(rec.Variants) >= limit {
			break
		}
		if id = strings.TrimSpace(id); id != "" {
			rec.Variants = append(rec.Variants, id)
		}
	}

	return rec, nil
}

func parseCount(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseYesNo(s string) *bool {
	var v bool
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true":
		v = true
	case "no", "false":
		v = false
	default:
		return nil
	}
	return &v
}

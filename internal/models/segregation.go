package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// LodRequirement records which LOD requirement a semidominant family satisfies.
type LodRequirement string

const (
	LodRequirementDominantOrXLinked LodRequirement = "autosomal_dominant_or_x_linked"
	LodRequirementRecessive         LodRequirement = "autosomal_recessive"
	LodRequirementNo                LodRequirement = "no"
)

// SequencingMethod used to establish the family's segregation. SequencingNone is the unselected default.
type SequencingMethod string

const (
	SequencingNone          SequencingMethod = "none"
	SequencingCandidateGene SequencingMethod = "candidate_gene"
	SequencingExomeGenome   SequencingMethod = "exome_genome"
)

// IsSelected reports whether a real method was chosen.
func (m SequencingMethod) IsSelected() bool {
	return m == SequencingCandidateGene || m == SequencingExomeGenome
}

// SegregationRecord is persisted inside a Family. Optional answers are pointers so that
// "not answered" is absent from the JSON rather than a zero value.
type SegregationRecord struct {
	NumberOfAffectedWithGenotype               *int             `json:"number_of_affected_with_genotype,omitempty"`
	NumberOfUnaffectedWithoutBiallelicGenotype *int             `json:"number_of_unaffected_without_biallelic_genotype,omitempty"`
	NumberOfSegregationsForThisFamily          *int             `json:"number_of_segregations_for_this_family,omitempty"`
	InconsistentSegregation                    *bool            `json:"inconsistent_segregation,omitempty"`
	ExplanationForInconsistent                 string           `json:"explanation_for_inconsistent,omitempty"`
	FamilyConsanguineous                       *bool            `json:"family_consanguineous,omitempty"`
	PedigreeLocation                           string           `json:"pedigree_location,omitempty"`
	LodPublished                               *bool            `json:"lod_published,omitempty"`
	PublishedLodScore                          *float64         `json:"published_lod_score,omitempty"`
	EstimatedLodScore                          *float64         `json:"estimated_lod_score,omitempty"`
	IncludeLodScoreInAggregateCalculation      *bool            `json:"include_lod_score_in_aggregate_calculation,omitempty"`
	SequencingMethod                           SequencingMethod `json:"sequencing_method,omitempty"`
	ReasonExplanation                          string           `json:"reason_explanation,omitempty"`
	AdditionalInformation                      string           `json:"additional_information,omitempty"`

	ProbandClassification *ProbandClassification `json:"proband_classification,omitempty"`
	LodRequirements       *LodRequirement        `json:"lod_requirements,omitempty"`

	Zygosity Zygosity `json:"zygosity,omitempty"`
	Variants []string `json:"variants,omitempty"`
}

// EffectiveLod returns the published score when the LOD was published, otherwise the estimate.
func (s *SegregationRecord) EffectiveLod() (float64, bool) {
	if s.LodPublished != nil && *s.LodPublished {
		if s.PublishedLodScore == nil {
			return 0, false
		}
		return *s.PublishedLodScore, true
	}
	if s.EstimatedLodScore == nil {
		return 0, false
	}
	return *s.EstimatedLodScore, true
}

// CountsTowardAggregate reports whether the family's LOD is included in the aggregate calculation.
func (s *SegregationRecord) CountsTowardAggregate() bool {
	if s.IncludeLodScoreInAggregateCalculation == nil || !*s.IncludeLodScoreInAggregateCalculation {
		return false
	}
	_, ok := s.EffectiveLod()
	return ok
}

func (s SegregationRecord) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *SegregationRecord) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("failed to scan SegregationRecord")
	}
}

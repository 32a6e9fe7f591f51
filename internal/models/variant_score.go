package models

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// VariantType is the scoring category of a proband's variant.
type VariantType string

const (
	VariantTypeUnset                 VariantType = "unset"
	VariantTypePredictedOrProvenNull VariantType = "predicted_or_proven_null"
	VariantTypeOther                 VariantType = "other_variant_type"
)

// ScoreFlag is a yes/no scoring answer with an explicit unanswered state.
type ScoreFlag string

const (
	ScoreFlagUnset ScoreFlag = "unset"
	ScoreFlagYes   ScoreFlag = "yes"
	ScoreFlagNo    ScoreFlag = "no"
)

// VariantScore binds a variant to the evidence context of one proband.
type VariantScore struct {
	bun.BaseModel `bun:"table:variant_scores,alias:vs"`

	UUID                        string      `bun:"uuid,pk" json:"uuid"`
	VariantUUID                 string      `bun:"variant_uuid,notnull" json:"variant_uuid"`
	EvidenceScored              *string     `bun:"evidence_scored" json:"evidence_scored"`
	VariantType                 VariantType `bun:"variant_type,notnull" json:"variant_type"`
	DeNovo                      ScoreFlag   `bun:"de_novo,notnull" json:"de_novo"`
	MaternityPaternityConfirmed ScoreFlag   `bun:"maternity_paternity_confirmed,notnull" json:"maternity_paternity_confirmed"`
	FunctionalDataSupport       ScoreFlag   `bun:"functional_data_support,notnull" json:"functional_data_support"`
	Score                       *float64    `bun:"score" json:"score,omitempty"`
	CalculatedScore             *float64    `bun:"calculated_score" json:"calculated_score,omitempty"`
	ScoreExplanation            *string     `bun:"score_explanation" json:"score_explanation,omitempty"`
	Status                      Status      `bun:"status,notnull" json:"status"`
	CreatedAt                   time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt                   time.Time   `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Variant *Variant `bun:"rel:belongs-to,join:variant_uuid=uuid" json:"-"`
}

func (s *VariantScore) EntityKind() Kind { return KindVariantScore }
func (s *VariantScore) EntityID() string { return s.UUID }

// BeforeUpdate updates the timestamp on modifications.
func (s *VariantScore) BeforeUpdate(ctx context.Context, query *bun.UpdateQuery) error {
	s.UpdatedAt = time.Now()
	return nil
}

// Validate checks the score references a variant and carries known scoring values.
func (s *VariantScore) Validate() error {
	if s.VariantUUID == "" {
		return errors.New("variant uuid is required")
	}
	switch s.VariantType {
	case VariantTypeUnset, VariantTypePredictedOrProvenNull, VariantTypeOther:
	default:
		return errors.New("unknown variant type")
	}
	for _, f := range []ScoreFlag{s.DeNovo, s.MaternityPaternityConfirmed, s.FunctionalDataSupport} {
		switch f {
		case ScoreFlagUnset, ScoreFlagYes, ScoreFlagNo:
		default:
			return errors.New("unknown score flag")
		}
	}
	return nil
}

// HasAssessment reports whether any scoring field carries a curator's answer.
func (s *VariantScore) HasAssessment() bool {
	return s.VariantType != VariantTypeUnset ||
		s.DeNovo != ScoreFlagUnset ||
		s.MaternityPaternityConfirmed != ScoreFlagUnset ||
		s.FunctionalDataSupport != ScoreFlagUnset ||
		s.Score != nil ||
		s.CalculatedScore != nil ||
		(s.ScoreExplanation != nil && *s.ScoreExplanation != "")
}

// IsOrphan reports whether the score has no owning individual yet.
func (s *VariantScore) IsOrphan() bool {
	return s.EvidenceScored == nil || *s.EvidenceScored == ""
}

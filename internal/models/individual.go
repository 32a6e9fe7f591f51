package models

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// Individual is a curated person. A proband carries variant scores, anyone else plain variants.
type Individual struct {
	bun.BaseModel `bun:"table:individuals,alias:i"`

	UUID                  string                `bun:"uuid,pk" json:"uuid"`
	Label                 string                `bun:"label,notnull" json:"label"`
	Sex                   string                `bun:"sex" json:"sex,omitempty"`
	Proband               bool                  `bun:"proband,notnull,default:false" json:"proband"`
	ProbandClassification ProbandClassification `bun:"proband_classification,notnull" json:"proband_classification"`
	Zygosity              Zygosity              `bun:"zygosity,notnull" json:"zygosity"`
	Variants              StringArray           `bun:"variants,type:json,notnull" json:"variants"`
	VariantScores         StringArray           `bun:"variant_scores,type:json,notnull" json:"variant_scores"`
	OtherPMIDs            StringArray           `bun:"other_pmids,type:json,notnull" json:"other_pmids"`
	Status                Status                `bun:"status,notnull" json:"status"`
	CreatedAt             time.Time             `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt             time.Time             `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

func (i *Individual) EntityKind() Kind { return KindIndividual }
func (i *Individual) EntityID() string { return i.UUID }

// BeforeUpdate updates the timestamp on modifications.
func (i *Individual) BeforeUpdate(ctx context.Context, query *bun.UpdateQuery) error {
	i.UpdatedAt = time.Now()
	return nil
}

// Validate checks the label and that only the representation matching proband status is populated.
func (i *Individual) Validate() error {
	if i.Label == "" {
		return errors.New("label is required")
	}
	if i.Proband && len(i.Variants) > 0 {
		return errors.New("proband must reference variant scores, not plain variants")
	}
	if !i.Proband && len(i.VariantScores) > 0 {
		return errors.New("non-proband must reference plain variants, not variant scores")
	}
	if len(i.Variants) > 2 || len(i.VariantScores) > 2 {
		return errors.New("an individual carries at most two variants")
	}
	return nil
}

package models

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// Variant is a genetic variant known to the curation database.
type Variant struct {
	bun.BaseModel `bun:"table:variants,alias:v"`

	UUID             string      `bun:"uuid,pk" json:"uuid"`
	ClinvarVariantID *string     `bun:"clinvar_variant_id,unique" json:"clinvar_variant_id,omitempty"`
	CarID            *string     `bun:"car_id,unique" json:"car_id,omitempty"`
	PreferredTitle   string      `bun:"preferred_title,notnull" json:"preferred_title"`
	HgvsNames        StringArray `bun:"hgvs_names,type:json,notnull" json:"hgvs_names"`
	CreatedAt        time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time   `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

func (v *Variant) EntityKind() Kind { return KindVariant }
func (v *Variant) EntityID() string { return v.UUID }

// BeforeUpdate updates the timestamp on modifications.
func (v *Variant) BeforeUpdate(ctx context.Context, query *bun.UpdateQuery) error {
	v.UpdatedAt = time.Now()
	return nil
}

// Validate checks that the variant can be identified.
func (v *Variant) Validate() error {
	if v.ClinvarVariantID == nil && v.CarID == nil {
		return errors.New("clinvar variant id or CAR id is required")
	}
	if v.PreferredTitle == "" {
		return errors.New("preferred title is required")
	}
	return nil
}

// DisplayTitle returns the best available human-readable name.
func (v *Variant) DisplayTitle() string {
	if v.PreferredTitle != "" {
		return v.PreferredTitle
	}
	if len(v.HgvsNames) > 0 {
		return v.HgvsNames[0]
	}
	if v.ClinvarVariantID != nil {
		return *v.ClinvarVariantID
	}
	if v.CarID != nil {
		return *v.CarID
	}
	return v.UUID
}

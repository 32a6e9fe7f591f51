// Package validation defines the user-facing rejection reported when curated input breaks a rule.
package validation

import (
	"errors"
	"fmt"
)

// Code identifies the violated rule. Codes are stable and safe to match on.
type Code string

const (
	CodeHomozygousInUse            Code = "homozygous_in_use"
	CodeHomozygousRequired         Code = "homozygous_required"
	CodeHomozygousTooManyVariants  Code = "homozygous_too_many_variants"
	CodeTwoInTransInUse            Code = "two_in_trans_in_use"
	CodeTwoInTransNotAllowed       Code = "two_in_trans_not_allowed"
	CodeBiallelicHomozygousTooMany Code = "biallelic_homozygous_too_many_variants"
	CodeHemizygousNotAvailable     Code = "hemizygous_not_available"
	CodeZygosityExceedsSlots       Code = "zygosity_exceeds_slots"
	CodeClassificationExceedsSlots Code = "classification_exceeds_slots"
	CodeTooManyVariants            Code = "too_many_variants"
	CodeAssessmentDataLoss         Code = "assessment_data_loss"
	CodePublishedLodNotPositive    Code = "published_lod_not_positive"
	CodeSequencingMethodRequired   Code = "sequencing_method_required"
	CodeInvalidParent              Code = "invalid_parent"
	CodeRepresentationMismatch     Code = "representation_mismatch"
	CodeMissingField               Code = "missing_field"
)

var messages = map[Code]string{
	CodeHomozygousInUse:            "Homozygous cannot be unchecked while a variant is selected. Clear the variant first.",
	CodeHomozygousRequired:         "Homozygous is required when the proband is biallelic homozygous.",
	CodeHomozygousTooManyVariants:  "Homozygous cannot be checked while two variants are selected. Clear one variant first.",
	CodeTwoInTransInUse:            "Two variants in trans cannot be unchecked while two variants are selected. Clear one variant first.",
	CodeTwoInTransNotAllowed:       "Two variants in trans cannot be checked when the proband is biallelic homozygous.",
	CodeBiallelicHomozygousTooMany: "The proband cannot be biallelic homozygous while two variants are selected. Clear one variant first.",
	CodeHemizygousNotAvailable:     "Hemizygous can only be checked when the proband is hemizygous.",
	CodeZygosityExceedsSlots:       "This zygosity allows fewer variants than are currently selected. Clear variants first.",
	CodeClassificationExceedsSlots: "This proband classification allows fewer variants than are currently selected. Clear variants first.",
	CodeTooManyVariants:            "More variants are selected than the current zygosity allows.",
	CodeAssessmentDataLoss:         "Variant scoring already entered for this proband will be discarded. Confirm to continue.",
	CodePublishedLodNotPositive:    "Published calculated LOD score must be greater than 0.",
	CodeSequencingMethodRequired:   "A sequencing method must be selected to include the LOD score in the aggregate calculation.",
	CodeInvalidParent:              "Evidence must be attached to exactly one group, family or annotation.",
	CodeRepresentationMismatch:     "Variant representation does not match the individual's proband status.",
	CodeMissingField:               "A required field is missing.",
}

// Error is a rejected input. It never accompanies a partial write.
type Error struct {
	Code  Code
	Field string
}

// New returns the error for code, optionally naming the offending field.
func New(code Code, field string) *Error {
	return &Error{Code: code, Field: field}
}

// Message is the text shown to the curator.
func (e *Error) Message() string {
	if m, ok := messages[e.Code]; ok {
		return m
	}
	return string(e.Code)
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message())
	}
	return e.Message()
}

// Is matches another *Error with the same code, so errors.Is works against code templates.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Field == "" || t.Field == e.Field)
}

// CodeOf returns the code of a validation error anywhere in err's chain.
func CodeOf(err error) (Code, bool) {
	var v *Error
	if errors.As(err, &v) {
		return v.Code, true
	}
	return "", false
}

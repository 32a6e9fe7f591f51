package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// InheritanceMode is the mode of inheritance of the parent gene-disease record.
type InheritanceMode string

const (
	ModeAutosomalDominant  InheritanceMode = "autosomal_dominant"
	ModeXLinked            InheritanceMode = "x_linked"
	ModeAutosomalRecessive InheritanceMode = "autosomal_recessive"
	ModeSemidominant       InheritanceMode = "semidominant"
	ModeOther              InheritanceMode = "other"
)

// ParseInheritanceMode resolves a gene-disease record's mode label once per session.
// Both the enum values and the long labels used by curators ("Autosomal dominant inheritance",
// "X-linked inheritance", ...) are accepted. Anything unknown maps to ModeOther.
func ParseInheritanceMode(label string) InheritanceMode {
	l := strings.ToLower(strings.TrimSpace(label))
	switch InheritanceMode(l) {
	case ModeAutosomalDominant, ModeXLinked, ModeAutosomalRecessive, ModeSemidominant, ModeOther:
		return InheritanceMode(l)
	}
	switch {
	case strings.HasPrefix(l, "autosomal dominant"):
		return ModeAutosomalDominant
	case strings.HasPrefix(l, "x-linked"), strings.HasPrefix(l, "x linked"):
		return ModeXLinked
	case strings.HasPrefix(l, "autosomal recessive"):
		return ModeAutosomalRecessive
	case strings.HasPrefix(l, "semidominant"):
		return ModeSemidominant
	default:
		return ModeOther
	}
}

// IsDominantOrXLinked reports whether the mode scores segregation with the ADX formula.
func (m InheritanceMode) IsDominantOrXLinked() bool {
	return m == ModeAutosomalDominant || m == ModeXLinked
}

// ProbandClassification is the "the proband is" answer of semidominant curations.
type ProbandClassification string

const (
	ProbandNone                          ProbandClassification = "none"
	ProbandMonoallelicHeterozygous       ProbandClassification = "monoallelic_heterozygous"
	ProbandHemizygous                    ProbandClassification = "hemizygous"
	ProbandBiallelicHomozygous           ProbandClassification = "biallelic_homozygous"
	ProbandBiallelicCompoundHeterozygous ProbandClassification = "biallelic_compound_heterozygous"
)

// Normalize maps the empty value to ProbandNone.
func (c ProbandClassification) Normalize() ProbandClassification {
	if c == "" {
		return ProbandNone
	}
	return c
}

func (c ProbandClassification) IsMonoallelic() bool {
	return c == ProbandMonoallelicHeterozygous || c == ProbandHemizygous
}

func (c ProbandClassification) IsBiallelic() bool {
	return c == ProbandBiallelicHomozygous || c == ProbandBiallelicCompoundHeterozygous
}

// Zygosity is a single exclusive flag, so at most one zygosity is ever active.
type Zygosity string

const (
	ZygosityNone       Zygosity = "none"
	ZygosityHomozygous Zygosity = "homozygous"
	ZygosityTwoInTrans Zygosity = "two_in_trans"
	ZygosityHemizygous Zygosity = "hemizygous"
)

// Normalize maps the empty value to ZygosityNone.
func (z Zygosity) Normalize() Zygosity {
	if z == "" {
		return ZygosityNone
	}
	return z
}

// Kind names an entity type handled by the storage collaborator.
type Kind string

const (
	KindArticle      Kind = "article"
	KindVariant      Kind = "variant"
	KindVariantScore Kind = "variant_score"
	KindIndividual   Kind = "individual"
	KindFamily       Kind = "family"
	KindGroup        Kind = "group"
	KindAnnotation   Kind = "annotation"
)

// IsParent reports whether individuals can be attached directly to this kind.
func (k Kind) IsParent() bool {
	return k == KindGroup || k == KindFamily || k == KindAnnotation
}

// Status of a curated record. StatusDeleted is a tombstone; rows are never removed.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusDeleted    Status = "deleted"
)

// Entity is implemented by every record the storage collaborator persists.
type Entity interface {
	EntityKind() Kind
	EntityID() string
}

// StringArray stores a slice of strings in SQLite as JSON.
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringArray) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = StringArray{}
		return nil
	case []byte:
		return json.Unmarshal(v, (*[]string)(s))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(s))
	default:
		return errors.New("failed to scan StringArray")
	}
}

// Contains reports whether id is present.
func (s StringArray) Contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Append returns the array with id added once.
func (s StringArray) Append(id string) StringArray {
	if s.Contains(id) {
		return s
	}
	return append(s, id)
}

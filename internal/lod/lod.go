// Package lod estimates a family's LOD score from pedigree counts.
package lod

import (
	"math"

	"github.com/mkoziy/genome/curation/internal/models"
)

// Formula selects the estimation formula.
type Formula int

const (
	FormulaNone Formula = iota
	// FormulaDominantOrXLinked: log10(1 / 0.5^segregations).
	FormulaDominantOrXLinked
	// FormulaRecessive: log10(1 / (0.25^(affected-1) * 0.75^unaffected)).
	FormulaRecessive
)

// FormulaFor picks the formula for a mode. Semidominant families state which LOD
// requirement they meet; without an answer no estimate is made.
func FormulaFor(mode models.InheritanceMode, req *models.LodRequirement) Formula {
	switch mode {
	case models.ModeAutosomalDominant, models.ModeXLinked:
		return FormulaDominantOrXLinked
	case models.ModeAutosomalRecessive:
		return FormulaRecessive
	case models.ModeSemidominant:
		if req == nil {
			return FormulaNone
		}
		switch *req {
		case models.LodRequirementDominantOrXLinked:
			return FormulaDominantOrXLinked
		case models.LodRequirementRecessive:
			return FormulaRecessive
		}
	}
	return FormulaNone
}

// Counts are the pedigree answers. Nil means not answered.
type Counts struct {
	AffectedWithGenotype      *int
	UnaffectedWithoutGenotype *int
	Segregations              *int
}

// Estimate returns the estimated LOD rounded to two decimals. The second result is false
// when the formula's inputs are missing or negative, or when the result is not finite.
func Estimate(f Formula, c Counts) (float64, bool) {
	var v float64
	switch f {
	case FormulaDominantOrXLinked:
		if c.Segregations == nil || *c.Segregations < 0 {
			return 0, false
		}
		v = math.Log10(1 / math.Pow(0.5, float64(*c.Segregations)))
	case FormulaRecessive:
		if c.AffectedWithGenotype == nil || c.UnaffectedWithoutGenotype == nil {
			return 0, false
		}
		a, u := *c.AffectedWithGenotype, *c.UnaffectedWithoutGenotype
		if a < 0 || u < 0 {
			return 0, false
		}
		v = math.Log10(1 / (math.Pow(0.25, float64(a-1)) * math.Pow(0.75, float64(u))))
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return Round2(v), true
}

// ComputeEstimatedLod estimates the LOD for a non-semidominant mode. Nil means absent.
func ComputeEstimatedLod(mode models.InheritanceMode, affected, unaffected, segregations *int) *float64 {
	v, ok := Estimate(FormulaFor(mode, nil), Counts{
		AffectedWithGenotype:      affected,
		UnaffectedWithoutGenotype: unaffected,
		Segregations:              segregations,
	})
	if !ok {
		return nil
	}
	return &v
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

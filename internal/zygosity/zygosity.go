// Package zygosity enforces the consistency contract between inheritance mode, proband
// classification, zygosity and the number of variant slots a curator may fill.
//
// All functions are pure: they take a State by value and either return the next State or a
// *validation.Error together with the unchanged input.
package zygosity

import (
	"github.com/mkoziy/genome/curation/internal/models"
	"github.com/mkoziy/genome/curation/internal/validation"
)

// SlotLimit is the most variants an individual can carry.
const SlotLimit = 2

// State is the part of a draft that the constraint rules look at.
type State struct {
	Mode           models.InheritanceMode
	Classification models.ProbandClassification
	Zygosity       models.Zygosity
	// Occupied is the number of filled variant slots.
	Occupied int
}

// MaxVariantSlots returns how many variant slots may be filled (0, 1 or 2).
func MaxVariantSlots(mode models.InheritanceMode, class models.ProbandClassification, zyg models.Zygosity) int {
	class, zyg = class.Normalize(), zyg.Normalize()
	switch mode {
	case models.ModeSemidominant:
		switch {
		case class == models.ProbandBiallelicHomozygous:
			return 1
		case class == models.ProbandBiallelicCompoundHeterozygous:
			return recessiveSlots(zyg)
		case class.IsMonoallelic():
			return SlotLimit
		default:
			return 0
		}
	case models.ModeAutosomalRecessive:
		return recessiveSlots(zyg)
	default:
		return SlotLimit
	}
}

func recessiveSlots(zyg models.Zygosity) int {
	switch zyg {
	case models.ZygosityTwoInTrans:
		return 2
	case models.ZygosityHomozygous:
		return 1
	default:
		return 0
	}
}

// MaxSlots returns MaxVariantSlots for the state.
func (s State) MaxSlots() int {
	return MaxVariantSlots(s.Mode, s.Classification, s.Zygosity)
}

func (s State) biallelicHomozygous() bool {
	return s.Mode == models.ModeSemidominant && s.Classification.Normalize() == models.ProbandBiallelicHomozygous
}

// SetZygosity activates or deactivates flag. Activating a flag replaces whichever flag was active.
func SetZygosity(s State, flag models.Zygosity, active bool) (State, error) {
	flag = flag.Normalize()
	if flag == models.ZygosityNone {
		if s.Zygosity.Normalize() == models.ZygosityNone {
			return s, nil
		}
		return SetZygosity(s, s.Zygosity, false)
	}
	if active {
		return activate(s, flag)
	}
	return deactivate(s, flag)
}

func activate(s State, flag models.Zygosity) (State, error) {
	current := s.Zygosity.Normalize()

	switch flag {
	case models.ZygosityHomozygous:
		if s.Occupied > 1 {
			return s, validation.New(validation.CodeHomozygousTooManyVariants, "zygosity")
		}
	case models.ZygosityTwoInTrans:
		if s.biallelicHomozygous() {
			return s, validation.New(validation.CodeTwoInTransNotAllowed, "zygosity")
		}
	case models.ZygosityHemizygous:
		if s.Mode == models.ModeSemidominant && s.Classification.Normalize() != models.ProbandHemizygous {
			return s, validation.New(validation.CodeHemizygousNotAvailable, "zygosity")
		}
	}
	if current == models.ZygosityHomozygous && flag != models.ZygosityHomozygous && s.biallelicHomozygous() {
		return s, validation.New(validation.CodeHomozygousRequired, "zygosity")
	}

	next := s
	next.Zygosity = flag
	if s.Occupied > next.MaxSlots() {
		return s, validation.New(validation.CodeZygosityExceedsSlots, "zygosity")
	}
	return next, nil
}

func deactivate(s State, flag models.Zygosity) (State, error) {
	if s.Zygosity.Normalize() != flag {
		return s, nil
	}

	switch flag {
	case models.ZygosityHomozygous:
		if s.biallelicHomozygous() {
			return s, validation.New(validation.CodeHomozygousRequired, "zygosity")
		}
		if s.Occupied >= 1 {
			return s, validation.New(validation.CodeHomozygousInUse, "zygosity")
		}
	case models.ZygosityTwoInTrans:
		if s.Occupied >= 2 {
			return s, validation.New(validation.CodeTwoInTransInUse, "zygosity")
		}
	}

	next := s
	next.Zygosity = models.ZygosityNone
	return next, nil
}

// SetClassification changes the "the proband is" answer. Choosing biallelic homozygous
// forces the homozygous flag on; a hemizygous flag is cleared when the class no longer allows it.
// A class that leaves fewer slots than are filled is rejected.
func SetClassification(s State, class models.ProbandClassification) (State, error) {
	class = class.Normalize()
	next := s
	next.Classification = class

	if class == models.ProbandBiallelicHomozygous {
		if s.Occupied > 1 {
			return s, validation.New(validation.CodeBiallelicHomozygousTooMany, "proband_classification")
		}
		next.Zygosity = models.ZygosityHomozygous
		return next, nil
	}
	if s.Mode == models.ModeSemidominant && next.Zygosity == models.ZygosityHemizygous && class != models.ProbandHemizygous {
		next.Zygosity = models.ZygosityNone
	}
	if next.Occupied > next.MaxSlots() {
		return s, validation.New(validation.CodeClassificationExceedsSlots, "proband_classification")
	}
	return next, nil
}

// Validate checks a complete state, as submitted, against every rule.
func Validate(s State) error {
	if s.biallelicHomozygous() && s.Zygosity.Normalize() != models.ZygosityHomozygous {
		return validation.New(validation.CodeHomozygousRequired, "zygosity")
	}
	if s.Mode == models.ModeSemidominant && s.Zygosity == models.ZygosityHemizygous &&
		s.Classification.Normalize() != models.ProbandHemizygous {
		return validation.New(validation.CodeHemizygousNotAvailable, "zygosity")
	}
	if s.Occupied > s.MaxSlots() {
		return validation.New(validation.CodeTooManyVariants, "variants")
	}
	return nil
}

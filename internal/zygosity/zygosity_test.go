package zygosity

import (
	"testing"

	"github.com/mkoziy/genome/curation/internal/models"
	"github.com/mkoziy/genome/curation/internal/validation"
)

var (
	allModes = []models.InheritanceMode{
		models.ModeAutosomalDominant, models.ModeXLinked, models.ModeAutosomalRecessive,
		models.ModeSemidominant, models.ModeOther,
	}
	allClasses = []models.ProbandClassification{
		models.ProbandNone, models.ProbandMonoallelicHeterozygous, models.ProbandHemizygous,
		models.ProbandBiallelicHomozygous, models.ProbandBiallelicCompoundHeterozygous,
	}
	allZygosities = []models.Zygosity{
		models.ZygosityNone, models.ZygosityHomozygous, models.ZygosityTwoInTrans, models.ZygosityHemizygous,
	}
)

func expectCode(t *testing.T, err error, want validation.Code) {
	t.Helper()
	code, ok := validation.CodeOf(err)
	if !ok {
		t.Fatalf("expected validation error %s, got %v", want, err)
	}
	if code != want {
		t.Fatalf("expected code %s, got %s", want, code)
	}
}

func TestMaxVariantSlots(t *testing.T) {
	cases := []struct {
		mode  models.InheritanceMode
		class models.ProbandClassification
		zyg   models.Zygosity
		want  int
	}{
		{models.ModeSemidominant, models.ProbandNone, models.ZygosityTwoInTrans, 0},
		{models.ModeSemidominant, "", models.ZygosityNone, 0},
		{models.ModeSemidominant, models.ProbandBiallelicCompoundHeterozygous, models.ZygosityTwoInTrans, 2},
		{models.ModeSemidominant, models.ProbandBiallelicCompoundHeterozygous, models.ZygosityHomozygous, 1},
		{models.ModeSemidominant, models.ProbandBiallelicCompoundHeterozygous, models.ZygosityNone, 0},
		{models.ModeSemidominant, models.ProbandMonoallelicHeterozygous, models.ZygosityNone, 2},
		{models.ModeSemidominant, models.ProbandHemizygous, models.ZygosityHemizygous, 2},
		{models.ModeAutosomalRecessive, models.ProbandNone, models.ZygosityTwoInTrans, 2},
		{models.ModeAutosomalRecessive, models.ProbandBiallelicHomozygous, models.ZygosityHomozygous, 1},
		{models.ModeAutosomalRecessive, models.ProbandNone, models.ZygosityHemizygous, 0},
		{models.ModeAutosomalRecessive, models.ProbandNone, models.ZygosityNone, 0},
		{models.ModeAutosomalDominant, models.ProbandNone, models.ZygosityNone, 2},
		{models.ModeXLinked, models.ProbandNone, models.ZygosityHomozygous, 2},
		{models.ModeOther, models.ProbandNone, models.ZygosityNone, 2},
	}
	for _, tc := range cases {
		if got := MaxVariantSlots(tc.mode, tc.class, tc.zyg); got != tc.want {
			t.Fatalf("MaxVariantSlots(%s, %s, %s) = %d, want %d", tc.mode, tc.class, tc.zyg, got, tc.want)
		}
	}
}

func TestBiallelicHomozygousAlwaysOneSlot(t *testing.T) {
	for _, zyg := range allZygosities {
		if got := MaxVariantSlots(models.ModeSemidominant, models.ProbandBiallelicHomozygous, zyg); got != 1 {
			t.Fatalf("expected 1 slot with zygosity %s, got %d", zyg, got)
		}
	}
}

func TestActivateHomozygousWithTwoVariantsAlwaysRejected(t *testing.T) {
	for _, mode := range allModes {
		for _, class := range allClasses {
			for _, zyg := range allZygosities {
				s := State{Mode: mode, Classification: class, Zygosity: zyg, Occupied: 2}
				for attempt := 0; attempt < 2; attempt++ {
					got, err := SetZygosity(s, models.ZygosityHomozygous, true)
					expectCode(t, err, validation.CodeHomozygousTooManyVariants)
					if got != s {
						t.Fatalf("expected unchanged state, got %+v", got)
					}
				}
			}
		}
	}
}

func TestDeactivationRules(t *testing.T) {
	recessiveHomozygous := State{Mode: models.ModeAutosomalRecessive, Zygosity: models.ZygosityHomozygous, Occupied: 1}
	_, err := SetZygosity(recessiveHomozygous, models.ZygosityHomozygous, false)
	expectCode(t, err, validation.CodeHomozygousInUse)

	required := State{
		Mode:           models.ModeSemidominant,
		Classification: models.ProbandBiallelicHomozygous,
		Zygosity:       models.ZygosityHomozygous,
	}
	_, err = SetZygosity(required, models.ZygosityHomozygous, false)
	expectCode(t, err, validation.CodeHomozygousRequired)

	trans := State{Mode: models.ModeAutosomalRecessive, Zygosity: models.ZygosityTwoInTrans, Occupied: 2}
	_, err = SetZygosity(trans, models.ZygosityTwoInTrans, false)
	expectCode(t, err, validation.CodeTwoInTransInUse)

	trans.Occupied = 1
	next, err := SetZygosity(trans, models.ZygosityTwoInTrans, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Zygosity != models.ZygosityNone {
		t.Fatalf("expected zygosity cleared, got %s", next.Zygosity)
	}

	empty := State{Mode: models.ModeAutosomalRecessive, Zygosity: models.ZygosityHomozygous}
	next, err = SetZygosity(empty, models.ZygosityNone, true)
	if err != nil || next.Zygosity != models.ZygosityNone {
		t.Fatalf("expected clearing through none to succeed, got %+v %v", next, err)
	}
}

func TestActivationRules(t *testing.T) {
	bh := State{
		Mode:           models.ModeSemidominant,
		Classification: models.ProbandBiallelicHomozygous,
		Zygosity:       models.ZygosityHomozygous,
		Occupied:       1,
	}
	_, err := SetZygosity(bh, models.ZygosityTwoInTrans, true)
	expectCode(t, err, validation.CodeTwoInTransNotAllowed)

	mono := State{Mode: models.ModeSemidominant, Classification: models.ProbandMonoallelicHeterozygous}
	_, err = SetZygosity(mono, models.ZygosityHemizygous, true)
	expectCode(t, err, validation.CodeHemizygousNotAvailable)

	hemi := State{Mode: models.ModeSemidominant, Classification: models.ProbandHemizygous, Occupied: 2}
	next, err := SetZygosity(hemi, models.ZygosityHemizygous, true)
	if err != nil || next.Zygosity != models.ZygosityHemizygous {
		t.Fatalf("expected hemizygous activation, got %+v %v", next, err)
	}

	recessive := State{Mode: models.ModeAutosomalRecessive, Occupied: 1}
	_, err = SetZygosity(recessive, models.ZygosityHemizygous, true)
	expectCode(t, err, validation.CodeZygosityExceedsSlots)

	next, err = SetZygosity(recessive, models.ZygosityHomozygous, true)
	if err != nil || next.Zygosity != models.ZygosityHomozygous {
		t.Fatalf("expected homozygous activation, got %+v %v", next, err)
	}

	// switching homozygous to two in trans widens the slots, so it is allowed with a variant selected
	next, err = SetZygosity(next, models.ZygosityTwoInTrans, true)
	if err != nil || next.Zygosity != models.ZygosityTwoInTrans {
		t.Fatalf("expected switch to two in trans, got %+v %v", next, err)
	}
}

func TestSetClassification(t *testing.T) {
	two := State{Mode: models.ModeSemidominant, Classification: models.ProbandMonoallelicHeterozygous, Occupied: 2}
	got, err := SetClassification(two, models.ProbandBiallelicHomozygous)
	expectCode(t, err, validation.CodeBiallelicHomozygousTooMany)
	if got != two {
		t.Fatalf("expected unchanged state, got %+v", got)
	}

	one := two
	one.Occupied = 1
	got, err = SetClassification(one, models.ProbandBiallelicHomozygous)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Zygosity != models.ZygosityHomozygous {
		t.Fatalf("expected homozygous forced on, got %s", got.Zygosity)
	}

	hemi := State{Mode: models.ModeSemidominant, Classification: models.ProbandHemizygous, Zygosity: models.ZygosityHemizygous}
	got, err = SetClassification(hemi, models.ProbandMonoallelicHeterozygous)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Zygosity != models.ZygosityNone {
		t.Fatalf("expected hemizygous cleared, got %s", got.Zygosity)
	}

	homo := State{
		Mode:           models.ModeSemidominant,
		Classification: models.ProbandBiallelicHomozygous,
		Zygosity:       models.ZygosityHomozygous,
		Occupied:       1,
	}
	got, err = SetClassification(homo, models.ProbandNone)
	expectCode(t, err, validation.CodeClassificationExceedsSlots)
	if got != homo {
		t.Fatalf("expected unchanged state, got %+v", got)
	}

	homo.Occupied = 0
	got, err = SetClassification(homo, models.ProbandNone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(got); err != nil {
		t.Fatalf("accepted classification must validate, got %v", err)
	}
}

func TestSetClassificationNeverLeavesInvalidState(t *testing.T) {
	for _, mode := range allModes {
		for _, from := range allClasses {
			for _, zyg := range allZygosities {
				for occupied := 0; occupied <= SlotLimit; occupied++ {
					start := State{Mode: mode, Classification: from, Zygosity: zyg, Occupied: occupied}
					if Validate(start) != nil {
						continue
					}
					for _, to := range allClasses {
						next, err := SetClassification(start, to)
						if err != nil {
							continue
						}
						if err := Validate(next); err != nil {
							t.Fatalf("%s %s->%s zygosity=%s occupied=%d: accepted state fails validation: %v",
								mode, from, to, zyg, occupied, err)
						}
					}
				}
			}
		}
	}
}

func TestRejectionCodesAreDistinct(t *testing.T) {
	codes := map[validation.Code]bool{
		validation.CodeHomozygousInUse:            true,
		validation.CodeHomozygousRequired:         true,
		validation.CodeHomozygousTooManyVariants:  true,
		validation.CodeTwoInTransInUse:            true,
		validation.CodeTwoInTransNotAllowed:       true,
		validation.CodeBiallelicHomozygousTooMany: true,
	}
	msgs := make(map[string]bool)
	for code := range codes {
		msg := validation.New(code, "").Message()
		if msgs[msg] {
			t.Fatalf("duplicate message for %s", code)
		}
		msgs[msg] = true
	}
	if len(msgs) != 6 {
		t.Fatalf("expected 6 distinct messages, got %d", len(msgs))
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(State{Mode: models.ModeAutosomalRecessive, Zygosity: models.ZygosityHomozygous, Occupied: 2}); err == nil {
		t.Fatalf("expected too many variants")
	} else {
		expectCode(t, err, validation.CodeTooManyVariants)
	}

	err := Validate(State{Mode: models.ModeSemidominant, Classification: models.ProbandBiallelicHomozygous})
	expectCode(t, err, validation.CodeHomozygousRequired)

	if err := Validate(State{Mode: models.ModeAutosomalDominant, Occupied: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

package variants

import (
	"testing"

	"github.com/mkoziy/genome/curation/internal/models"
	"github.com/mkoziy/genome/curation/internal/validation"
)

func assessedScore(id, variantID string) ScoredVariant {
	explanation := "segregates with disease"
	score := 1.5
	sv := ToScored(PlainRef{ID: variantID, Title: "NM_000492.4(CFTR):c.1521_1523del"})
	sv.Score.UUID = id
	sv.Score.VariantType = models.VariantTypePredictedOrProvenNull
	sv.Score.DeNovo = models.ScoreFlagYes
	sv.Score.Score = &score
	sv.Score.ScoreExplanation = &explanation
	return sv
}

func TestToScoredStartsUnset(t *testing.T) {
	ref := PlainRef{ID: "v1", Title: "variant one", ClinvarVariantID: "7105"}
	sv := ToScored(ref)

	if sv.Ref != ref {
		t.Fatalf("expected reference carried over, got %+v", sv.Ref)
	}
	if sv.Persisted() {
		t.Fatalf("expected unpersisted score")
	}
	if sv.Score.HasAssessment() {
		t.Fatalf("expected all scoring fields unset")
	}
	if !sv.Score.IsOrphan() {
		t.Fatalf("expected nil evidence_scored")
	}
	if sv.Score.VariantUUID != "v1" {
		t.Fatalf("expected variant uuid v1, got %s", sv.Score.VariantUUID)
	}
}

func TestRoundTripIsLossy(t *testing.T) {
	sv := assessedScore("s1", "v1")

	back := ToScored(ToPlain(sv))
	if back.Score.HasAssessment() {
		t.Fatalf("expected scoring fields to be unset after round trip")
	}
	if back.Score.VariantType != models.VariantTypeUnset || back.Score.DeNovo != models.ScoreFlagUnset {
		t.Fatalf("expected unset sentinels, got %+v", back.Score)
	}
	if back.Score.Score != nil || back.Score.ScoreExplanation != nil {
		t.Fatalf("expected score values dropped")
	}
	if back.Persisted() {
		t.Fatalf("expected the round trip to produce a new unpersisted score")
	}
}

func TestConvertAllToScored(t *testing.T) {
	slots := Slots{PlainRef{ID: "v1"}, nil}
	out, err := ConvertAll(slots, true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.AllScored() || out.Occupied() != 1 {
		t.Fatalf("expected one scored slot, got %+v", out)
	}
	if out[1] != nil {
		t.Fatalf("expected empty slot kept empty")
	}
	if _, ok := slots[0].(PlainRef); !ok {
		t.Fatalf("expected input slots untouched")
	}
}

func TestConvertAllToPlainRequiresConfirmation(t *testing.T) {
	slots := Slots{assessedScore("s1", "v1"), ToScored(PlainRef{ID: "v2"})}

	got, err := ConvertAll(slots, false, false)
	code, ok := validation.CodeOf(err)
	if !ok || code != validation.CodeAssessmentDataLoss {
		t.Fatalf("expected assessment loss error, got %v", err)
	}
	if !got.AllScored() {
		t.Fatalf("expected slots unchanged on rejection")
	}

	out, err := ConvertAll(slots, false, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.AllPlain() || out.Occupied() != 2 {
		t.Fatalf("expected two plain slots, got %+v", out)
	}
	if ids := out.VariantIDs(); ids[0] != "v1" || ids[1] != "v2" {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestConvertAllUnassessedNeedsNoConfirmation(t *testing.T) {
	slots := Slots{ToScored(PlainRef{ID: "v1"})}
	out, err := ConvertAll(slots, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.AllPlain() {
		t.Fatalf("expected plain slot")
	}
}

func TestFilledCountsOccupiedSlots(t *testing.T) {
	slots := Slots{nil, PlainRef{ID: "v2"}}
	if got := slots.Filled(1); len(got) != 1 || got[0].VariantID() != "v2" {
		t.Fatalf("expected v2 within a limit of one, got %v", got)
	}
	if got := slots.Filled(0); len(got) != 0 {
		t.Fatalf("expected nothing with a zero limit, got %v", got)
	}

	slots = Slots{PlainRef{ID: "v1"}, PlainRef{ID: "v2"}}
	if got := slots.Filled(1); len(got) != 1 || got[0].VariantID() != "v1" {
		t.Fatalf("expected only v1, got %v", got)
	}
}

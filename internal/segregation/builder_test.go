package segregation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/mkoziy/genome/curation/internal/models"
	"github.com/mkoziy/genome/curation/internal/validation"
)

func expectCode(t *testing.T, err error, want validation.Code) {
	t.Helper()
	code, ok := validation.CodeOf(err)
	if !ok || code != want {
		t.Fatalf("expected validation code %s, got %v", want, err)
	}
}

func TestBuildRecessiveEstimatesAndOmitsSemidominantKeys(t *testing.T) {
	form := FormState{
		NumberOfAffectedWithGenotype:               "3",
		NumberOfUnaffectedWithoutBiallelicGenotype: "2",
		ProbandClassification:                      models.ProbandBiallelicHomozygous,
		LodRequirements:                            models.LodRequirementRecessive,
	}
	rec, err := Build(form, models.ModeAutosomalRecessive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.EstimatedLodScore == nil || *rec.EstimatedLodScore != 1.45 {
		t.Fatalf("expected estimated LOD 1.45, got %v", rec.EstimatedLodScore)
	}

	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "proband_classification") || strings.Contains(string(b), "lod_requirements") {
		t.Fatalf("expected semidominant keys omitted, got %s", b)
	}
	if strings.Contains(string(b), "published_lod_score") {
		t.Fatalf("expected no published LOD, got %s", b)
	}
}

func TestBuildDistinguishesZeroFromUnanswered(t *testing.T) {
	rec, err := Build(FormState{
		NumberOfAffectedWithGenotype:      "0",
		NumberOfSegregationsForThisFamily: "two",
	}, models.ModeAutosomalDominant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.NumberOfAffectedWithGenotype == nil || *rec.NumberOfAffectedWithGenotype != 0 {
		t.Fatalf("expected answered zero kept")
	}
	if rec.NumberOfSegregationsForThisFamily != nil {
		t.Fatalf("expected unparseable count omitted")
	}
	if rec.NumberOfUnaffectedWithoutBiallelicGenotype != nil {
		t.Fatalf("expected unanswered count omitted")
	}
	if rec.EstimatedLodScore != nil {
		t.Fatalf("expected no estimate without segregations")
	}
}

func TestBuildSemidominantUsesLodRequirement(t *testing.T) {
	form := FormState{
		NumberOfSegregationsForThisFamily: "4",
		ProbandClassification:             models.ProbandMonoallelicHeterozygous,
		LodRequirements:                   models.LodRequirementDominantOrXLinked,
	}
	rec, err := Build(form, models.ModeSemidominant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ProbandClassification == nil || *rec.ProbandClassification != models.ProbandMonoallelicHeterozygous {
		t.Fatalf("expected proband classification kept")
	}
	if rec.LodRequirements == nil || *rec.LodRequirements != models.LodRequirementDominantOrXLinked {
		t.Fatalf("expected lod requirement kept")
	}
	if rec.EstimatedLodScore == nil || *rec.EstimatedLodScore != 1.2 {
		t.Fatalf("expected estimated LOD 1.2, got %v", rec.EstimatedLodScore)
	}
}

func TestBuildRejectsNonPositivePublishedLod(t *testing.T) {
	for _, v := range []string{"0", "-1.5"} {
		_, err := Build(FormState{LodPublished: "yes", PublishedLodScore: v}, models.ModeAutosomalDominant)
		expectCode(t, err, validation.CodePublishedLodNotPositive)
	}

	rec, err := Build(FormState{LodPublished: "yes", PublishedLodScore: "3.1"}, models.ModeAutosomalDominant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.PublishedLodScore == nil || *rec.PublishedLodScore != 3.1 {
		t.Fatalf("expected published LOD 3.1")
	}
}

func TestBuildIncludeRequiresSequencingMethod(t *testing.T) {
	form := FormState{
		NumberOfSegregationsForThisFamily:     "3",
		IncludeLodScoreInAggregateCalculation: "yes",
		SequencingMethod:                      models.SequencingNone,
	}
	_, err := Build(form, models.ModeAutosomalDominant)
	expectCode(t, err, validation.CodeSequencingMethodRequired)

	form.SequencingMethod = models.SequencingExomeGenome
	rec, err := Build(form, models.ModeAutosomalDominant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.CountsTowardAggregate() || rec.SequencingMethod != models.SequencingExomeGenome {
		t.Fatalf("expected LOD included with exome sequencing, got %+v", rec)
	}
}

func TestBuildDropsIncludeWithoutLod(t *testing.T) {
	form := FormState{IncludeLodScoreInAggregateCalculation: "yes"}
	rec, err := Build(form, models.ModeOther)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.IncludeLodScoreInAggregateCalculation != nil {
		t.Fatalf("expected include answer dropped without a LOD score")
	}

	if got := Reconcile(form, models.ModeOther); got.IncludeLodScoreInAggregateCalculation != "" {
		t.Fatalf("expected reconcile to clear include answer")
	}

	form.NumberOfSegregationsForThisFamily = "2"
	if got := Reconcile(form, models.ModeAutosomalDominant); got.IncludeLodScoreInAggregateCalculation != "yes" {
		t.Fatalf("expected include answer kept while a LOD exists")
	}
}

func TestBuildTruncatesVariantSlots(t *testing.T) {
	form := FormState{Zygosity: models.ZygosityHomozygous, Variants: []string{"v1", "v2"}}
	rec, err := Build(form, models.ModeAutosomalRecessive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Variants) != 1 || rec.Variants[0] != "v1" {
		t.Fatalf("expected only first slot, got %v", rec.Variants)
	}

	form = FormState{Variants: []string{"", "v2"}}
	rec, err = Build(form, models.ModeAutosomalDominant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Variants) != 1 || rec.Variants[0] != "v2" {
		t.Fatalf("expected empty slot skipped, got %v", rec.Variants)
	}

	form = FormState{Zygosity: models.ZygosityHomozygous, Variants: []string{"", "v2"}}
	rec, err = Build(form, models.ModeAutosomalRecessive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Variants) != 1 || rec.Variants[0] != "v2" {
		t.Fatalf("expected the only occupied slot kept under a limit of one, got %v", rec.Variants)
	}

	form = FormState{ProbandClassification: models.ProbandNone, Variants: []string{"v1"}}
	rec, err = Build(form, models.ModeSemidominant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Variants) != 0 {
		t.Fatalf("expected no slots without classification, got %v", rec.Variants)
	}
}

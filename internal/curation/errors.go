package curation

import (
	"fmt"
	"strings"

	"github.com/mkoziy/genome/curation/internal/models"
)

// Ref identifies a stored entity.
type Ref struct {
	Kind models.Kind `json:"kind"`
	ID   string      `json:"id"`
}

func (r Ref) String() string {
	return string(r.Kind) + ":" + r.ID
}

func refsString(refs []Ref) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

// UnresolvedReferenceError lists every cross-reference that did not resolve. Nothing was written.
type UnresolvedReferenceError struct {
	Refs []Ref
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved references: %s", refsString(e.Refs))
}

// StepError is a storage failure before anything was committed; resubmitting is safe.
type StepError struct {
	Step  State
	Cause error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Cause)
}

func (e *StepError) Unwrap() error { return e.Cause }

// PartialPersistenceError is a storage failure after earlier writes committed. Created, Updated and
// Tombstoned list every committed write; Orphaned lists variant scores without an owning individual.
// Nothing is rolled back.
type PartialPersistenceError struct {
	Step       State
	Created    []Ref
	Updated    []Ref
	Tombstoned []Ref
	Orphaned   []string
	Cause      error
}

func (e *PartialPersistenceError) Error() string {
	msg := fmt.Sprintf("partial save failed at %s after creating [%s]", e.Step, refsString(e.Created))
	if len(e.Updated) > 0 {
		msg += fmt.Sprintf(", updating [%s]", refsString(e.Updated))
	}
	if len(e.Tombstoned) > 0 {
		msg += fmt.Sprintf(", deleting [%s]", refsString(e.Tombstoned))
	}
	if len(e.Orphaned) > 0 {
		msg += fmt.Sprintf(", orphaned variant scores [%s]", strings.Join(e.Orphaned, ", "))
	}
	return fmt.Sprintf("%s: %v", msg, e.Cause)
}

func (e *PartialPersistenceError) Unwrap() error { return e.Cause }

package curation

// State is a step of the save saga.
type State string

const (
	StateIdle                        State = "idle"
	StateValidatingCrossReferences   State = "validating_cross_references"
	StatePersistingFamily            State = "persisting_family"
	StatePersistingVariantScores     State = "persisting_variant_scores"
	StatePersistingIndividual        State = "persisting_individual"
	StateLinkingToParent             State = "linking_to_parent"
	StateSynchronizingBackReferences State = "synchronizing_back_references"
	StateDone                        State = "done"
	StateFailed                      State = "failed"
	StateCanceled                    State = "canceled"
)

// Terminal reports whether the saga stops in this state.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed || s == StateCanceled
}

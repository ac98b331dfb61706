package domain

// Draft storage keys. Both the writers (wizard engine) and readers (stores,
// hydration) depend on this registry instead of scattering string constants.
//
// The "eventData" special case for the first create section is inherited
// from the web client this engine replaces; changing it would invalidate
// drafts persisted by older sessions.
const (
	KeyEventData = "eventData"

	KeyCompletedSections     = "completedSections"
	KeyEditCompletedSections = "editCompletedSections"

	// KeyCurrentEditEvent holds the id of the record being edited so a
	// reload mid-flow does not lose the identity of the target event.
	KeyCurrentEditEvent = "currentEditEvent"
)

// DraftKey returns the storage key for a section's draft.
func DraftKey(sectionID string) string {
	if sectionID == SectionEvento {
		return KeyEventData
	}
	return "tab_" + sectionID + "_data"
}

// CompletionKey returns the storage key of the CompletionMap for a flow kind.
func CompletionKey(kind FlowKind) string {
	if kind == FlowEdit {
		return KeyEditCompletedSections
	}
	return KeyCompletedSections
}

// FlowKeys lists every storage key a flow kind may have written, in a stable
// order. Cancel and post-submit cleanup clear exactly this set.
func FlowKeys(kind FlowKind) []string {
	keys := make([]string, 0, len(Sections(kind))+2)
	for _, s := range Sections(kind) {
		keys = append(keys, DraftKey(s.ID))
	}
	keys = append(keys, CompletionKey(kind))
	if kind == FlowEdit {
		keys = append(keys, KeyCurrentEditEvent)
	}
	return keys
}

package domain

// FlowStatus defines the current mode of a wizard flow.
type FlowStatus string

const (
	StatusActive     FlowStatus = "active"     // Collecting section input
	StatusSubmitting FlowStatus = "submitting" // Submission pipeline in flight
	StatusSucceeded  FlowStatus = "succeeded"  // Terminal; drafts cleared
	StatusFailed     FlowStatus = "failed"     // Non-terminal; drafts intact
)

// FlowState is the ephemeral, in-memory context of a mounted wizard flow.
// It lives for the lifetime of the flow (drafts outlive it in the store) and
// carries the submission attempt counter used to discard stale responses.
type FlowState struct {
	FlowID           string     `json:"flow_id"`
	Kind             FlowKind   `json:"kind"`
	CurrentSectionID string     `json:"current_section_id"`
	Status           FlowStatus `json:"status"`
	TargetEventID    int        `json:"target_event_id,omitempty"`

	// Attempt increases on every submission; a response is applied only if
	// its token still matches.
	Attempt uint64 `json:"-"`
}

// NewFlowState creates a flow positioned at the first section of its kind.
func NewFlowState(flowID string, kind FlowKind) *FlowState {
	s := &FlowState{
		FlowID: flowID,
		Kind:   kind,
		Status: StatusActive,
	}
	if sections := Sections(kind); len(sections) > 0 {
		s.CurrentSectionID = sections[0].ID
	}
	return s
}

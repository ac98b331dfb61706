package domain

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDraftNotFound is returned by stores when a key has no draft.
var ErrDraftNotFound = errors.New("draft not found")

// ErrFlowNotFound is returned when a flow ID has no in-memory context.
var ErrFlowNotFound = errors.New("flow not found")

// ErrSubmitInFlight is returned when a submission is requested while a
// previous one for the same flow has not settled.
var ErrSubmitInFlight = errors.New("submission already in flight")

// ErrStaleSubmit is returned when a submission response arrives after a
// newer attempt took over the flow. The response was discarded; drafts and
// status belong to the newer attempt.
var ErrStaleSubmit = errors.New("stale submit response discarded")

// ErrorMap maps field names to human-readable validation messages.
// An empty map signals a valid draft.
type ErrorMap map[string]string

// Valid reports whether the map carries no errors.
func (m ErrorMap) Valid() bool { return len(m) == 0 }

// Fields returns the offending field names in stable order.
func (m ErrorMap) Fields() []string {
	fields := make([]string, 0, len(m))
	for k := range m {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// ComposeError reports a failed draft composition. The message names the
// missing dependency conceptually, never a raw field path.
type ComposeError struct {
	Reason string
}

func (e *ComposeError) Error() string { return e.Reason }

// SubmitError wraps a failure of one submission pipeline step, capturing
// which step failed so the shell can present it.
type SubmitError struct {
	Step string
	Err  error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submit step %q: %v", e.Step, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

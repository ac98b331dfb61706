package runtime

import (
	"context"

	"github.com/veladahq/velada/pkg/domain"
)

// Submit runs the whole submission pipeline for a flow: validate every
// section, compose the payloads and call the backend in order. A non-nil
// ErrorMap means validation blocked the submit, keyed "<sectionID>.<field>";
// a SubmitError means a backend step failed; domain.ErrStaleSubmit means the
// response lost to a newer attempt and was discarded. Drafts are only
// cleared after the final step succeeds, so a failed submit can be retried
// with the data intact.
func (e *Engine) Submit(ctx context.Context, flowID string) (*domain.SubmitResult, domain.ErrorMap, error) {
	state, err := e.flow(flowID)
	if err != nil {
		return nil, nil, err
	}

	set, err := e.Drafts(ctx, flowID)
	if err != nil {
		return nil, nil, err
	}

	if errs := e.validateAll(set, state.Kind); !errs.Valid() {
		return nil, errs, nil
	}

	token, err := e.beginSubmit(flowID)
	if err != nil {
		return nil, nil, err
	}

	composed, err := e.composer.Compose(ctx, set)
	if err != nil {
		e.finishSubmit(flowID, token, domain.StatusFailed)
		return nil, nil, err
	}

	var result *domain.SubmitResult
	if state.Kind == domain.FlowEdit {
		result, err = e.submitUpdate(ctx, state.TargetEventID, set, composed)
	} else {
		result, err = e.submitCreate(ctx, composed)
	}
	if err != nil {
		e.finishSubmit(flowID, token, domain.StatusFailed)
		e.logger.Error("submit failed", "flow_id", flowID, "kind", state.Kind, "err", err)
		return nil, nil, err
	}

	// A stale response loses to a newer attempt: it must not clear drafts
	// or flip the status the newer attempt owns.
	if !e.finishSubmit(flowID, token, domain.StatusSucceeded) {
		e.logger.Warn("discarding stale submit response", "flow_id", flowID)
		return nil, nil, domain.ErrStaleSubmit
	}

	if err := e.sessions.Clear(ctx, flowID, domain.FlowKeys(state.Kind)...); err != nil {
		e.logger.Warn("clearing drafts after submit", "flow_id", flowID, "err", err)
	}

	e.logger.Info("flow submitted", "flow_id", flowID, "kind", state.Kind, "event_id", result.EventID)
	return result, nil, nil
}

// validateAll runs every section validator over the draft set. Sections
// reuse field names (name, description, price), so the merged keys are
// namespaced as "<sectionID>.<field>" to keep every message and its
// section attribution.
func (e *Engine) validateAll(set domain.DraftSet, kind domain.FlowKind) domain.ErrorMap {
	editing := kind == domain.FlowEdit
	merged := domain.ErrorMap{}
	for _, section := range domain.Sections(kind) {
		for field, msg := range ValidateSection(section.ID, set, editing) {
			merged[section.ID+"."+field] = msg
		}
	}
	return merged
}

// submitCreate runs the ordered creation steps. Each backend id feeds the
// next step; the main event is created last so a partial failure never
// leaves a visible event pointing at missing parts.
func (e *Engine) submitCreate(ctx context.Context, composed *domain.ComposedEvent) (*domain.SubmitResult, error) {
	typeID, err := e.api.CreateTypeOfEvent(ctx, composed.TypeOfEvent)
	if err != nil {
		return nil, &domain.SubmitError{Step: "tipo de evento", Err: err}
	}
	if typeID == 0 {
		return nil, &domain.ComposeError{Reason: "No se pudo crear el tipo de evento - es requerido"}
	}

	locationID := 0
	if composed.Location != nil {
		locationID, err = e.api.CreateLocation(ctx, *composed.Location)
		if err != nil {
			return nil, &domain.SubmitError{Step: "ubicación", Err: err}
		}
	}

	eventID, err := e.api.CreateEvent(ctx, composed.Event, typeID, locationID)
	if err != nil {
		return nil, &domain.SubmitError{Step: "evento", Err: err}
	}

	return &domain.SubmitResult{EventID: eventID, TypeOfEventID: typeID, LocationID: locationID}, nil
}

// submitUpdate runs the edit pipeline: the type and location updates only
// fire when the draft carries their backend ids, the event update always
// does.
func (e *Engine) submitUpdate(ctx context.Context, eventID int, set domain.DraftSet, composed *domain.ComposedEvent) (*domain.SubmitResult, error) {
	typeID := set.Logistics.IDTypeOfEvent
	if typeID != 0 {
		if err := e.api.UpdateTypeOfEvent(ctx, typeID, composed.TypeOfEvent); err != nil {
			return nil, &domain.SubmitError{Step: "tipo de evento", Err: err}
		}
	}

	locationID := set.Location.IDLocation
	if locationID != 0 && composed.Location != nil {
		if err := e.api.UpdateLocation(ctx, locationID, *composed.Location); err != nil {
			return nil, &domain.SubmitError{Step: "ubicación", Err: err}
		}
	}

	if err := e.api.UpdateEvent(ctx, eventID, composed.Event, typeID, locationID); err != nil {
		return nil, &domain.SubmitError{Step: "evento", Err: err}
	}

	return &domain.SubmitResult{EventID: eventID, TypeOfEventID: typeID, LocationID: locationID}, nil
}

// beginSubmit flips the flow into the submitting state and hands back the
// attempt token the response must present.
func (e *Engine) beginSubmit(flowID string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.flows[flowID]
	if !ok {
		return 0, domain.ErrFlowNotFound
	}
	if state.Status == domain.StatusSubmitting {
		return 0, domain.ErrSubmitInFlight
	}
	state.Attempt++
	state.Status = domain.StatusSubmitting
	return state.Attempt, nil
}

// finishSubmit applies a terminal status if the token is still the current
// attempt. It reports whether the response was accepted.
func (e *Engine) finishSubmit(flowID string, token uint64, status domain.FlowStatus) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.flows[flowID]
	if !ok || state.Attempt != token {
		return false
	}
	state.Status = status
	return true
}

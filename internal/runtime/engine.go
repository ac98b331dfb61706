package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/veladahq/velada/internal/logging"
	"github.com/veladahq/velada/pkg/domain"
	"github.com/veladahq/velada/pkg/ports"
	"github.com/veladahq/velada/pkg/session"
)

// Engine is the wizard shell: it orchestrates the section registry, the
// navigation controller, draft persistence, composition and the submit
// pipeline. Flow contexts are ephemeral and in-memory; only drafts and the
// completion map survive in the store.
type Engine struct {
	sessions *session.Manager
	api      ports.EventService
	composer *Composer
	logger   *slog.Logger

	mu    sync.Mutex
	flows map[string]*domain.FlowState
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithComposer replaces the default composer (tests inject one whose image
// fetches are stubbed).
func WithComposer(c *Composer) EngineOption {
	return func(e *Engine) { e.composer = c }
}

// NewEngine creates an engine over a session manager and a backend client.
func NewEngine(sessions *session.Manager, api ports.EventService, opts ...EngineOption) *Engine {
	e := &Engine{
		sessions: sessions,
		api:      api,
		logger:   logging.NewNop(),
		flows:    make(map[string]*domain.FlowState),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.composer == nil {
		e.composer = NewComposer(nil, e.logger)
	}
	return e
}

// StartCreate opens a new create flow positioned at the first section.
func (e *Engine) StartCreate(ctx context.Context) (*domain.FlowState, error) {
	state := domain.NewFlowState(uuid.NewString(), domain.FlowCreate)

	e.mu.Lock()
	e.flows[state.FlowID] = state
	e.mu.Unlock()

	e.logger.Debug("flow started", "flow_id", state.FlowID, "kind", state.Kind)
	return e.snapshot(state), nil
}

// StartEdit opens an edit flow: it fetches the existing record, splits it
// into section drafts, seeds the completion map and records the target id
// so a reload mid-flow recovers it.
func (e *Engine) StartEdit(ctx context.Context, eventID int) (*domain.FlowState, error) {
	record, err := e.api.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("loading event %d: %w", eventID, err)
	}

	state := domain.NewFlowState(uuid.NewString(), domain.FlowEdit)
	state.TargetEventID = eventID

	if err := e.hydrateEdit(ctx, state, record); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.flows[state.FlowID] = state
	e.mu.Unlock()

	e.logger.Debug("edit flow hydrated", "flow_id", state.FlowID, "event_id", eventID)
	return e.snapshot(state), nil
}

// Flow returns a copy of a flow's current state.
func (e *Engine) Flow(flowID string) (*domain.FlowState, error) {
	state, err := e.flow(flowID)
	if err != nil {
		return nil, err
	}
	return e.snapshot(state), nil
}

// Sections returns the section list of a flow.
func (e *Engine) Sections(flowID string) ([]domain.Section, error) {
	state, err := e.flow(flowID)
	if err != nil {
		return nil, err
	}
	return domain.Sections(state.Kind), nil
}

// SaveSection persists a section draft. Saving also moves the flow's
// current section and mirrors the description/category fields of the
// details section into the logistics draft, as the forms share them.
func (e *Engine) SaveSection(ctx context.Context, flowID, sectionID string, draft domain.SectionDraft) error {
	state, err := e.flow(flowID)
	if err != nil {
		return err
	}

	ctrl := NewController(domain.Sections(state.Kind), sectionID)
	if !ctrl.Found() {
		return fmt.Errorf("unknown section %q for %s flow", sectionID, state.Kind)
	}

	if err := e.sessions.WriteDraft(ctx, flowID, domain.DraftKey(sectionID), draft); err != nil {
		return err
	}

	if sectionID == e.detailsSectionID(state.Kind) {
		if err := e.mirrorDetails(ctx, state, draft); err != nil {
			return err
		}
	}

	e.setCurrent(flowID, sectionID)
	return nil
}

// mirrorDetails copies the description/eventType fields entered on the
// details form into the logistics draft, where their payload lives.
func (e *Engine) mirrorDetails(ctx context.Context, state *domain.FlowState, draft domain.SectionDraft) error {
	desc, hasDesc := draft["description"]
	cat, hasCat := draft["eventType"]
	if !hasDesc && !hasCat {
		return nil
	}

	logKey := domain.DraftKey(e.logisticsSectionID(state.Kind))
	logDraft, err := e.sessions.ReadDraft(ctx, state.FlowID, logKey)
	if err != nil {
		return err
	}
	if hasDesc {
		logDraft["tipo_description"] = desc
	}
	if hasCat {
		logDraft["tipo_eventType"] = cat
	}
	return e.sessions.WriteDraft(ctx, state.FlowID, logKey, logDraft)
}

// Validate computes the error map of one section without navigating.
func (e *Engine) Validate(ctx context.Context, flowID, sectionID string) (domain.ErrorMap, error) {
	state, err := e.flow(flowID)
	if err != nil {
		return nil, err
	}
	set, err := e.Drafts(ctx, flowID)
	if err != nil {
		return nil, err
	}
	return ValidateSection(sectionID, set, state.Kind == domain.FlowEdit), nil
}

// Advance validates the section and, when valid, marks it complete and
// moves to the next one. A non-empty error map blocks the transition.
// next is nil on the last section; the caller submits from there.
func (e *Engine) Advance(ctx context.Context, flowID, sectionID string) (next *domain.Section, errs domain.ErrorMap, err error) {
	state, err := e.flow(flowID)
	if err != nil {
		return nil, nil, err
	}

	errs, err = e.Validate(ctx, flowID, sectionID)
	if err != nil {
		return nil, nil, err
	}
	if !errs.Valid() {
		return nil, errs, nil
	}

	if err := e.MarkCompleted(ctx, flowID, sectionID); err != nil {
		return nil, nil, err
	}

	ctrl := NewController(domain.Sections(state.Kind), sectionID)
	target, ok := ctrl.Next()
	if !ok {
		return nil, nil, nil
	}
	e.setCurrent(flowID, target.ID)
	return &target, nil, nil
}

// Back moves to the previous section, a no-op on the first one.
// Backward navigation is always permitted.
func (e *Engine) Back(ctx context.Context, flowID, sectionID string) (*domain.Section, error) {
	state, err := e.flow(flowID)
	if err != nil {
		return nil, err
	}

	ctrl := NewController(domain.Sections(state.Kind), sectionID)
	target, ok := ctrl.Previous()
	if !ok {
		return nil, nil
	}
	e.setCurrent(flowID, target.ID)
	return &target, nil
}

// JumpTo attempts a non-sequential jump. It is rejected unless the target
// is at or before the current section, or already complete.
func (e *Engine) JumpTo(ctx context.Context, flowID, targetID string) (bool, error) {
	state, err := e.flow(flowID)
	if err != nil {
		return false, err
	}

	completed, err := e.Completion(ctx, flowID)
	if err != nil {
		return false, err
	}

	ctrl := NewController(domain.Sections(state.Kind), state.CurrentSectionID)
	if !ctrl.CanJump(targetID, completed) {
		return false, nil
	}
	e.setCurrent(flowID, targetID)
	return true, nil
}

// Progress reports the flow's position in its section list.
func (e *Engine) Progress(flowID string) (domain.Progress, error) {
	state, err := e.flow(flowID)
	if err != nil {
		return domain.Progress{}, err
	}
	ctrl := NewController(domain.Sections(state.Kind), state.CurrentSectionID)
	return ctrl.Progress(), nil
}

// MarkCompleted records that a section's validation has passed and
// persists the completion map.
func (e *Engine) MarkCompleted(ctx context.Context, flowID, sectionID string) error {
	state, err := e.flow(flowID)
	if err != nil {
		return err
	}
	key := domain.CompletionKey(state.Kind)

	return e.sessions.WithLock(ctx, flowID, func(ctx context.Context) error {
		stored, err := e.sessions.Store().Load(ctx, flowID, key)
		if err != nil && !errors.Is(err, domain.ErrDraftNotFound) {
			return err
		}
		completed := domain.CompletionFromDraft(stored)
		completed[sectionID] = true
		return e.sessions.Store().Save(ctx, flowID, key, completed.Draft())
	})
}

// Completion reads the persisted completion map.
func (e *Engine) Completion(ctx context.Context, flowID string) (domain.CompletionMap, error) {
	state, err := e.flow(flowID)
	if err != nil {
		return nil, err
	}
	stored, err := e.sessions.ReadDraft(ctx, flowID, domain.CompletionKey(state.Kind))
	if err != nil {
		return nil, err
	}
	return domain.CompletionFromDraft(stored), nil
}

// Drafts loads and decodes the three section drafts of a flow.
// Missing or malformed drafts decode as empty typed drafts.
func (e *Engine) Drafts(ctx context.Context, flowID string) (domain.DraftSet, error) {
	state, err := e.flow(flowID)
	if err != nil {
		return domain.DraftSet{}, err
	}

	var set domain.DraftSet

	raw, err := e.sessions.ReadDraft(ctx, flowID, domain.DraftKey(e.detailsSectionID(state.Kind)))
	if err != nil {
		return set, err
	}
	if err := domain.DecodeDraft(raw, &set.Event); err != nil {
		e.logger.Warn("ignoring malformed details draft", "flow_id", flowID, "err", err)
		set.Event = domain.EventDetailsDraft{}
	}

	raw, err = e.sessions.ReadDraft(ctx, flowID, domain.DraftKey(e.logisticsSectionID(state.Kind)))
	if err != nil {
		return set, err
	}
	if err := domain.DecodeDraft(raw, &set.Logistics); err != nil {
		e.logger.Warn("ignoring malformed logistics draft", "flow_id", flowID, "err", err)
		set.Logistics = domain.LogisticsDraft{}
	}

	raw, err = e.sessions.ReadDraft(ctx, flowID, domain.DraftKey(e.locationSectionID(state.Kind)))
	if err != nil {
		return set, err
	}
	if err := domain.DecodeDraft(raw, &set.Location); err != nil {
		e.logger.Warn("ignoring malformed location draft", "flow_id", flowID, "err", err)
		set.Location = domain.LocationDraft{}
	}

	return set, nil
}

// Cancel clears every draft key of the flow and drops its context.
func (e *Engine) Cancel(ctx context.Context, flowID string) error {
	state, err := e.flow(flowID)
	if err != nil {
		return err
	}
	if err := e.sessions.Clear(ctx, flowID, domain.FlowKeys(state.Kind)...); err != nil {
		return err
	}

	e.mu.Lock()
	delete(e.flows, flowID)
	e.mu.Unlock()
	return nil
}

// Categories fetches the reference data for the event type selector.
func (e *Engine) Categories(ctx context.Context) ([]domain.Category, error) {
	return e.api.Categories(ctx)
}

func (e *Engine) flow(flowID string) (*domain.FlowState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.flows[flowID]
	if !ok {
		return nil, domain.ErrFlowNotFound
	}
	return state, nil
}

func (e *Engine) setCurrent(flowID, sectionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if state, ok := e.flows[flowID]; ok {
		state.CurrentSectionID = sectionID
	}
}

func (e *Engine) snapshot(state *domain.FlowState) *domain.FlowState {
	e.mu.Lock()
	defer e.mu.Unlock()
	copied := *state
	return &copied
}

// Section IDs by role: the three flows share a shape, not ids.

func (e *Engine) detailsSectionID(kind domain.FlowKind) string {
	if kind == domain.FlowEdit {
		return domain.SectionEditarEvento
	}
	return domain.SectionEvento
}

func (e *Engine) logisticsSectionID(kind domain.FlowKind) string {
	if kind == domain.FlowEdit {
		return domain.SectionEditarTipoEvento
	}
	return domain.SectionTipoEvento
}

func (e *Engine) locationSectionID(kind domain.FlowKind) string {
	if kind == domain.FlowEdit {
		return domain.SectionEditarUbicacion
	}
	return domain.SectionUbicacion
}

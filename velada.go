package velada

import (
	"context"
	"fmt"
	"net/http"

	"log/slog"

	"github.com/veladahq/velada/internal/logging"
	"github.com/veladahq/velada/internal/runtime"
	"github.com/veladahq/velada/pkg/adapters/memory"
	"github.com/veladahq/velada/pkg/domain"
	"github.com/veladahq/velada/pkg/ports"
	"github.com/veladahq/velada/pkg/session"
)

// Version of the velada module.
const Version = "0.3.0"

// Wizard is the high-level entry point for the velada library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Wizard struct {
	engine   *runtime.Engine
	sessions *session.Manager

	store   ports.DraftStore
	backend ports.EventService
	locker  ports.DistributedLocker
	client  *http.Client
	logger  *slog.Logger
}

// Option defines a functional option for configuring the Wizard.
type Option func(*Wizard)

// WithDraftStore injects a draft store; in-memory is the default.
func WithDraftStore(store ports.DraftStore) Option {
	return func(w *Wizard) { w.store = store }
}

// WithLocker enables distributed flow locking, for deployments where more
// than one process serves the same store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(w *Wizard) { w.locker = locker }
}

// WithHTTPClient sets the client used to fetch remote event images.
func WithHTTPClient(client *http.Client) Option {
	return func(w *Wizard) { w.client = client }
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) { w.logger = logger }
}

// New initializes a Wizard over the given events backend.
func New(backend ports.EventService, opts ...Option) (*Wizard, error) {
	if backend == nil {
		return nil, fmt.Errorf("an events backend is required")
	}

	w := &Wizard{backend: backend}
	for _, opt := range opts {
		opt(w)
	}

	if w.store == nil {
		w.store = memory.NewStore()
	}
	if w.logger == nil {
		w.logger = logging.NewNop()
	}

	sessionOpts := []session.Option{session.WithLogger(w.logger)}
	if w.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(w.locker))
	}
	w.sessions = session.NewManager(w.store, sessionOpts...)

	w.engine = runtime.NewEngine(w.sessions, w.backend,
		runtime.WithLogger(w.logger),
		runtime.WithComposer(runtime.NewComposer(w.client, w.logger)),
	)
	return w, nil
}

// Engine exposes the underlying runtime for transports that serve it
// directly, like the HTTP adapter.
func (w *Wizard) Engine() *runtime.Engine { return w.engine }

// StartCreate opens a new create flow at its first section.
func (w *Wizard) StartCreate(ctx context.Context) (*domain.FlowState, error) {
	return w.engine.StartCreate(ctx)
}

// StartEdit opens an edit flow for an existing event, hydrating the
// section drafts from the backend record.
func (w *Wizard) StartEdit(ctx context.Context, eventID int) (*domain.FlowState, error) {
	return w.engine.StartEdit(ctx, eventID)
}

// Flow returns the current state of a flow.
func (w *Wizard) Flow(flowID string) (*domain.FlowState, error) {
	return w.engine.Flow(flowID)
}

// Sections returns the ordered section list of a flow.
func (w *Wizard) Sections(flowID string) ([]domain.Section, error) {
	return w.engine.Sections(flowID)
}

// SaveSection persists a section draft.
func (w *Wizard) SaveSection(ctx context.Context, flowID, sectionID string, draft domain.SectionDraft) error {
	return w.engine.SaveSection(ctx, flowID, sectionID, draft)
}

// Validate computes the error map of one section without navigating.
func (w *Wizard) Validate(ctx context.Context, flowID, sectionID string) (domain.ErrorMap, error) {
	return w.engine.Validate(ctx, flowID, sectionID)
}

// Advance validates a section and moves to the next one when it passes.
func (w *Wizard) Advance(ctx context.Context, flowID, sectionID string) (*domain.Section, domain.ErrorMap, error) {
	return w.engine.Advance(ctx, flowID, sectionID)
}

// Back moves to the previous section.
func (w *Wizard) Back(ctx context.Context, flowID, sectionID string) (*domain.Section, error) {
	return w.engine.Back(ctx, flowID, sectionID)
}

// JumpTo attempts a non-sequential jump, honoring completion gating.
func (w *Wizard) JumpTo(ctx context.Context, flowID, targetID string) (bool, error) {
	return w.engine.JumpTo(ctx, flowID, targetID)
}

// Progress reports the flow's position in its section list.
func (w *Wizard) Progress(flowID string) (domain.Progress, error) {
	return w.engine.Progress(flowID)
}

// Completion returns the persisted completion map of a flow.
func (w *Wizard) Completion(ctx context.Context, flowID string) (domain.CompletionMap, error) {
	return w.engine.Completion(ctx, flowID)
}

// Drafts loads and decodes the three section drafts of a flow.
func (w *Wizard) Drafts(ctx context.Context, flowID string) (domain.DraftSet, error) {
	return w.engine.Drafts(ctx, flowID)
}

// Submit runs the submission pipeline of a flow.
func (w *Wizard) Submit(ctx context.Context, flowID string) (*domain.SubmitResult, domain.ErrorMap, error) {
	return w.engine.Submit(ctx, flowID)
}

// Cancel discards a flow and clears its drafts.
func (w *Wizard) Cancel(ctx context.Context, flowID string) error {
	return w.engine.Cancel(ctx, flowID)
}

// Categories fetches the event type reference data.
func (w *Wizard) Categories(ctx context.Context) ([]domain.Category, error) {
	return w.engine.Categories(ctx)
}

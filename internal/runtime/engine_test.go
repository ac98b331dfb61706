package runtime

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veladahq/velada/pkg/adapters/memory"
	"github.com/veladahq/velada/pkg/domain"
	"github.com/veladahq/velada/pkg/session"
)

// fakeBackend records every call in order and hands out fixed ids.
type fakeBackend struct {
	calls []string

	event map[string]any

	failStep string
	failErr  error

	// onCreateEvent runs before the create-event response is produced.
	onCreateEvent func()

	lastTypePayload  domain.TypeOfEventPayload
	lastLocPayload   domain.LocationPayload
	lastEventPayload domain.EventPayload
	lastTypeID       int
	lastLocationID   int
}

func (f *fakeBackend) Categories(ctx context.Context) ([]domain.Category, error) {
	f.calls = append(f.calls, "categories")
	return []domain.Category{{ID: 3, Name: "Concierto"}}, nil
}

func (f *fakeBackend) GetEvent(ctx context.Context, eventID int) (map[string]any, error) {
	f.calls = append(f.calls, "getEvent")
	if f.event == nil {
		return nil, errors.New("no such event")
	}
	return f.event, nil
}

func (f *fakeBackend) CreateTypeOfEvent(ctx context.Context, p domain.TypeOfEventPayload) (int, error) {
	f.calls = append(f.calls, "createType")
	f.lastTypePayload = p
	if f.failStep == "createType" {
		return 0, f.failErr
	}
	return 11, nil
}

func (f *fakeBackend) CreateLocation(ctx context.Context, p domain.LocationPayload) (int, error) {
	f.calls = append(f.calls, "createLocation")
	f.lastLocPayload = p
	if f.failStep == "createLocation" {
		return 0, f.failErr
	}
	return 22, nil
}

func (f *fakeBackend) CreateEvent(ctx context.Context, p domain.EventPayload, typeID, locationID int) (int, error) {
	f.calls = append(f.calls, "createEvent")
	f.lastEventPayload = p
	f.lastTypeID = typeID
	f.lastLocationID = locationID
	if f.onCreateEvent != nil {
		f.onCreateEvent()
	}
	if f.failStep == "createEvent" {
		return 0, f.failErr
	}
	return 33, nil
}

func (f *fakeBackend) UpdateTypeOfEvent(ctx context.Context, id int, p domain.TypeOfEventPayload) error {
	f.calls = append(f.calls, "updateType")
	return nil
}

func (f *fakeBackend) UpdateLocation(ctx context.Context, id int, p domain.LocationPayload) error {
	f.calls = append(f.calls, "updateLocation")
	return nil
}

func (f *fakeBackend) UpdateEvent(ctx context.Context, eventID int, p domain.EventPayload, typeID, locationID int) error {
	f.calls = append(f.calls, "updateEvent")
	f.lastEventPayload = p
	f.lastTypeID = typeID
	f.lastLocationID = locationID
	return nil
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestEngine(t *testing.T, backend *fakeBackend) (*Engine, *session.Manager) {
	t.Helper()
	sessions := session.NewManager(memory.NewStore())

	// Image fetches must never leave the test process.
	offline := &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("offline test client")
	})}
	return NewEngine(sessions, backend, WithComposer(NewComposer(offline, nil))), sessions
}

// fillCreateFlow saves valid drafts for all three create sections.
func fillCreateFlow(t *testing.T, e *Engine, flowID string) {
	t.Helper()
	ctx := context.Background()

	details, err := domain.EncodeDraft(validDetails())
	require.NoError(t, err)
	require.NoError(t, e.SaveSection(ctx, flowID, domain.SectionEvento, details))

	logistics, err := domain.EncodeDraft(validLogistics())
	require.NoError(t, err)
	require.NoError(t, e.SaveSection(ctx, flowID, domain.SectionTipoEvento, logistics))

	location, err := domain.EncodeDraft(validLocation())
	require.NoError(t, err)
	require.NoError(t, e.SaveSection(ctx, flowID, domain.SectionUbicacion, location))
}

func TestEngine_CreateFlowWalk(t *testing.T) {
	e, _ := newTestEngine(t, &fakeBackend{})
	ctx := context.Background()

	state, err := e.StartCreate(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.FlowCreate, state.Kind)
	assert.Equal(t, domain.SectionEvento, state.CurrentSectionID)
	assert.Equal(t, domain.StatusActive, state.Status)

	// An empty first section blocks the advance with field errors.
	next, errs, err := e.Advance(ctx, state.FlowID, domain.SectionEvento)
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.False(t, errs.Valid())

	details, err := domain.EncodeDraft(validDetails())
	require.NoError(t, err)
	require.NoError(t, e.SaveSection(ctx, state.FlowID, domain.SectionEvento, details))

	next, errs, err = e.Advance(ctx, state.FlowID, domain.SectionEvento)
	require.NoError(t, err)
	require.True(t, errs.Valid())
	require.NotNil(t, next)
	assert.Equal(t, domain.SectionTipoEvento, next.ID)

	progress, err := e.Progress(state.FlowID)
	require.NoError(t, err)
	assert.Equal(t, domain.Progress{Current: 2, Total: 3, Percentage: 67}, progress)

	completed, err := e.Completion(ctx, state.FlowID)
	require.NoError(t, err)
	assert.True(t, completed[domain.SectionEvento])
	assert.False(t, completed[domain.SectionTipoEvento])

	prev, err := e.Back(ctx, state.FlowID, domain.SectionTipoEvento)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, domain.SectionEvento, prev.ID)
}

func TestEngine_JumpGating(t *testing.T) {
	e, _ := newTestEngine(t, &fakeBackend{})
	ctx := context.Background()

	state, err := e.StartCreate(ctx)
	require.NoError(t, err)

	// Forward jump from the first section to an untouched one is rejected.
	ok, err := e.JumpTo(ctx, state.FlowID, domain.SectionUbicacion)
	require.NoError(t, err)
	assert.False(t, ok)

	details, err := domain.EncodeDraft(validDetails())
	require.NoError(t, err)
	require.NoError(t, e.SaveSection(ctx, state.FlowID, domain.SectionEvento, details))
	_, _, err = e.Advance(ctx, state.FlowID, domain.SectionEvento)
	require.NoError(t, err)

	// Backward jump is always fine.
	ok, err = e.JumpTo(ctx, state.FlowID, domain.SectionEvento)
	require.NoError(t, err)
	assert.True(t, ok)

	// And a completed section is reachable from anywhere behind it.
	ok, err = e.JumpTo(ctx, state.FlowID, domain.SectionTipoEvento)
	require.NoError(t, err)
	assert.False(t, ok, "tipoEvento was never completed and lies ahead of evento")
}

func TestEngine_MirrorsDetailsIntoLogistics(t *testing.T) {
	e, _ := newTestEngine(t, &fakeBackend{})
	ctx := context.Background()

	state, err := e.StartCreate(ctx)
	require.NoError(t, err)

	details, err := domain.EncodeDraft(validDetails())
	require.NoError(t, err)
	require.NoError(t, e.SaveSection(ctx, state.FlowID, domain.SectionEvento, details))

	set, err := e.Drafts(ctx, state.FlowID)
	require.NoError(t, err)
	assert.Equal(t, "Una noche de jazz", set.Logistics.Description)
	assert.Equal(t, "3", set.Logistics.Category)
}

func TestEngine_SubmitPresencialOrder(t *testing.T) {
	backend := &fakeBackend{}
	e, sessions := newTestEngine(t, backend)
	ctx := context.Background()

	state, err := e.StartCreate(ctx)
	require.NoError(t, err)
	fillCreateFlow(t, e, state.FlowID)

	result, errs, err := e.Submit(ctx, state.FlowID)
	require.NoError(t, err)
	require.Nil(t, errs)
	require.NotNil(t, result)

	assert.Equal(t, []string{"createType", "createLocation", "createEvent"}, backend.calls)
	assert.Equal(t, &domain.SubmitResult{EventID: 33, TypeOfEventID: 11, LocationID: 22}, result)
	assert.Equal(t, 11, backend.lastTypeID)
	assert.Equal(t, 22, backend.lastLocationID)

	flow, err := e.Flow(state.FlowID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, flow.Status)

	// Drafts and the completion map are gone after a successful submit.
	for _, key := range domain.FlowKeys(domain.FlowCreate) {
		_, err := sessions.Store().Load(ctx, state.FlowID, key)
		assert.ErrorIs(t, err, domain.ErrDraftNotFound, key)
	}
}

func TestEngine_SubmitVirtualSkipsLocation(t *testing.T) {
	backend := &fakeBackend{}
	e, _ := newTestEngine(t, backend)
	ctx := context.Background()

	state, err := e.StartCreate(ctx)
	require.NoError(t, err)
	fillCreateFlow(t, e, state.FlowID)

	logistics := validLogistics()
	logistics.Mode = "virtual"
	logistics.VideoLink = "https://meet.example.com/sala"
	draft, err := domain.EncodeDraft(logistics)
	require.NoError(t, err)
	require.NoError(t, e.SaveSection(ctx, state.FlowID, domain.SectionTipoEvento, draft))

	result, errs, err := e.Submit(ctx, state.FlowID)
	require.NoError(t, err)
	require.Nil(t, errs)

	assert.Equal(t, []string{"createType", "createEvent"}, backend.calls)
	assert.Zero(t, result.LocationID)
	assert.Zero(t, backend.lastLocationID)
}

func TestEngine_SubmitValidationBlocks(t *testing.T) {
	backend := &fakeBackend{}
	e, _ := newTestEngine(t, backend)
	ctx := context.Background()

	state, err := e.StartCreate(ctx)
	require.NoError(t, err)

	result, errs, err := e.Submit(ctx, state.FlowID)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.False(t, errs.Valid())
	assert.Empty(t, backend.calls, "no backend call may happen while validation fails")
}

func TestEngine_SubmitErrorsKeepSectionAttribution(t *testing.T) {
	backend := &fakeBackend{}
	e, _ := newTestEngine(t, backend)
	ctx := context.Background()

	state, err := e.StartCreate(ctx)
	require.NoError(t, err)

	_, errs, err := e.Submit(ctx, state.FlowID)
	require.NoError(t, err)

	// The sections reuse field names (name, description, price); the
	// merged map must carry every section's message under its own id.
	assert.Equal(t, "El nombre del evento es obligatorio", errs["evento.name"])
	assert.Equal(t, "El nombre del lugar es obligatorio", errs["ubicacion.name"])
	assert.Equal(t, "La descripción es obligatoria", errs["evento.description"])
	assert.Equal(t, "La modalidad es obligatoria", errs["tipoEvento.mode"])
}

func TestEngine_SubmitFailureKeepsDrafts(t *testing.T) {
	backend := &fakeBackend{failStep: "createEvent", failErr: errors.New("boom")}
	e, sessions := newTestEngine(t, backend)
	ctx := context.Background()

	state, err := e.StartCreate(ctx)
	require.NoError(t, err)
	fillCreateFlow(t, e, state.FlowID)

	_, errs, err := e.Submit(ctx, state.FlowID)
	require.Error(t, err)
	assert.Nil(t, errs)

	var submitErr *domain.SubmitError
	require.ErrorAs(t, err, &submitErr)
	assert.Equal(t, "evento", submitErr.Step)

	flow, err := e.Flow(state.FlowID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, flow.Status)

	// Nothing was cleared: the user can fix and resubmit.
	draft, err := sessions.Store().Load(ctx, state.FlowID, domain.KeyEventData)
	require.NoError(t, err)
	assert.NotEmpty(t, draft)

	// And the failed status is not terminal.
	backend.failStep = ""
	result, errs, err := e.Submit(ctx, state.FlowID)
	require.NoError(t, err)
	require.Nil(t, errs)
	assert.Equal(t, 33, result.EventID)
}

func TestEngine_SubmitInFlightGuard(t *testing.T) {
	e, _ := newTestEngine(t, &fakeBackend{})
	ctx := context.Background()

	state, err := e.StartCreate(ctx)
	require.NoError(t, err)
	fillCreateFlow(t, e, state.FlowID)

	_, err = e.beginSubmit(state.FlowID)
	require.NoError(t, err)

	_, _, err = e.Submit(ctx, state.FlowID)
	assert.ErrorIs(t, err, domain.ErrSubmitInFlight)
}

func TestEngine_StaleSubmitResponseDiscarded(t *testing.T) {
	e, _ := newTestEngine(t, &fakeBackend{})
	ctx := context.Background()

	state, err := e.StartCreate(ctx)
	require.NoError(t, err)

	token, err := e.beginSubmit(state.FlowID)
	require.NoError(t, err)
	e.finishSubmit(state.FlowID, token, domain.StatusFailed)

	newer, err := e.beginSubmit(state.FlowID)
	require.NoError(t, err)

	// The older attempt's response arrives after a newer attempt began.
	assert.False(t, e.finishSubmit(state.FlowID, token, domain.StatusSucceeded))

	flow, err := e.Flow(state.FlowID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitting, flow.Status)

	assert.True(t, e.finishSubmit(state.FlowID, newer, domain.StatusSucceeded))
}

func TestEngine_SubmitCancelledMidFlightReportsStale(t *testing.T) {
	backend := &fakeBackend{}
	e, _ := newTestEngine(t, backend)
	ctx := context.Background()

	state, err := e.StartCreate(ctx)
	require.NoError(t, err)
	fillCreateFlow(t, e, state.FlowID)

	// The flow is cancelled while the final backend call is in flight, so
	// the response no longer has a flow to settle.
	backend.onCreateEvent = func() {
		require.NoError(t, e.Cancel(ctx, state.FlowID))
	}

	result, errs, err := e.Submit(ctx, state.FlowID)
	assert.ErrorIs(t, err, domain.ErrStaleSubmit)
	assert.Nil(t, result)
	assert.Nil(t, errs)
}

func TestEngine_Cancel(t *testing.T) {
	e, sessions := newTestEngine(t, &fakeBackend{})
	ctx := context.Background()

	state, err := e.StartCreate(ctx)
	require.NoError(t, err)
	fillCreateFlow(t, e, state.FlowID)

	require.NoError(t, e.Cancel(ctx, state.FlowID))

	_, err = e.Flow(state.FlowID)
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)

	for _, key := range domain.FlowKeys(domain.FlowCreate) {
		_, err := sessions.Store().Load(ctx, state.FlowID, key)
		assert.ErrorIs(t, err, domain.ErrDraftNotFound, key)
	}
}

func TestEngine_StartEditHydrates(t *testing.T) {
	backend := &fakeBackend{event: map[string]any{
		"id_event":               7,
		"event_name":             "Feria del libro",
		"image_url":              "https://cdn.example.com/feria.jpg",
		"id_event_state":         2,
		"id_type_of_event":       11,
		"id_category":            3,
		"event_type":             "presencial",
		"event_type_description": "Feria anual",
		"max_participants":       500,
		"event_price":            10.5,
		"video_conference_link":  "",
		"start_time":             "2025-03-01T09:00:00.000Z",
		"end_time":               "2025-03-01T18:00:00.000Z",
		"id_location":            22,
		"location_name":          "Plaza Mayor",
		"location_description":   "Recinto ferial",
		"location_address":       "Cra 40 # 22-10",
		"location_price":         100.0,
	}}
	e, _ := newTestEngine(t, backend)
	ctx := context.Background()

	state, err := e.StartEdit(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.FlowEdit, state.Kind)
	assert.Equal(t, 7, state.TargetEventID)

	set, err := e.Drafts(ctx, state.FlowID)
	require.NoError(t, err)

	assert.Equal(t, "Feria del libro", set.Event.Name)
	assert.Equal(t, "https://cdn.example.com/feria.jpg", set.Event.ImagePreview)
	assert.Equal(t, "3", set.Event.EventType)

	assert.Equal(t, 11, set.Logistics.IDTypeOfEvent)
	assert.Equal(t, "2025-03-01", set.Logistics.StartDate)
	assert.Equal(t, "09:00", set.Logistics.StartTime)
	assert.Equal(t, "18:00", set.Logistics.EndTime)
	assert.Equal(t, "presencial", set.Logistics.Mode)
	require.NotNil(t, set.Logistics.MaxParticipants)
	assert.Equal(t, 500, *set.Logistics.MaxParticipants)

	assert.Equal(t, 22, set.Location.IDLocation)
	assert.Equal(t, "Plaza Mayor", set.Location.Name)

	// Every existing part of the record counts as a completed section.
	completed, err := e.Completion(ctx, state.FlowID)
	require.NoError(t, err)
	assert.True(t, completed[domain.SectionEditarEvento])
	assert.True(t, completed[domain.SectionEditarTipoEvento])
	assert.True(t, completed[domain.SectionEditarUbicacion])
}

func TestEngine_StartEditWithoutLocation(t *testing.T) {
	backend := &fakeBackend{event: map[string]any{
		"id_event":               8,
		"event_name":             "Webinar Go",
		"image_url":              "https://cdn.example.com/go.png",
		"id_event_state":         1,
		"id_type_of_event":       12,
		"id_category":            4,
		"event_type":             "virtual",
		"event_type_description": "Charla",
		"max_participants":       200,
		"event_price":            0.0,
		"video_conference_link":  "https://meet.example.com/go",
		"start_time":             "2025-04-01T15:00:00.000Z",
		"end_time":               "2025-04-01T16:00:00.000Z",
	}}
	e, _ := newTestEngine(t, backend)
	ctx := context.Background()

	state, err := e.StartEdit(ctx, 8)
	require.NoError(t, err)

	completed, err := e.Completion(ctx, state.FlowID)
	require.NoError(t, err)
	assert.True(t, completed[domain.SectionEditarTipoEvento])
	assert.False(t, completed[domain.SectionEditarUbicacion], "a record with no venue leaves that section incomplete")
}

func TestEngine_SubmitUpdatePipeline(t *testing.T) {
	backend := &fakeBackend{event: map[string]any{
		"id_event":               7,
		"event_name":             "Feria del libro",
		"image_url":              "https://example.invalid/feria.jpg",
		"id_event_state":         2,
		"id_type_of_event":       11,
		"id_category":            3,
		"event_type":             "presencial",
		"event_type_description": "Feria anual",
		"max_participants":       500,
		"event_price":            10.5,
		"start_time":             "2025-03-01T09:00:00.000Z",
		"end_time":               "2025-03-01T18:00:00.000Z",
		"id_location":            22,
		"location_name":          "Plaza Mayor",
		"location_description":   "Recinto ferial",
		"location_address":       "Cra 40 # 22-10",
		"location_price":         100.0,
	}}
	e, _ := newTestEngine(t, backend)
	ctx := context.Background()

	state, err := e.StartEdit(ctx, 7)
	require.NoError(t, err)
	backend.calls = nil

	result, errs, err := e.Submit(ctx, state.FlowID)
	require.NoError(t, err)
	require.Nil(t, errs)

	assert.Equal(t, []string{"updateType", "updateLocation", "updateEvent"}, backend.calls)
	assert.Equal(t, &domain.SubmitResult{EventID: 7, TypeOfEventID: 11, LocationID: 22}, result)
}

func TestEngine_UnknownFlow(t *testing.T) {
	e, _ := newTestEngine(t, &fakeBackend{})
	ctx := context.Background()

	_, err := e.Flow("nope")
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	_, _, err = e.Submit(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	err = e.SaveSection(ctx, "nope", domain.SectionEvento, domain.SectionDraft{})
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
}

package backendapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veladahq/velada/pkg/domain"
)

func TestClient_Categories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/categories", r.URL.Path)
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]map[string]any{
			{"id_category": 1, "name": "Concierto"},
			{"id_category": 2, "name": "Feria"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("s3cret"))
	categories, err := c.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{{ID: 1, Name: "Concierto"}, {ID: 2, Name: "Feria"}}, categories)
}

func TestClient_CreateTypeOfEvent(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/types-of-event", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id_type_of_event": 11})
	}))
	defer srv.Close()

	c := New(srv.URL)
	id, err := c.CreateTypeOfEvent(context.Background(), domain.TypeOfEventPayload{
		EventType:       "presencial",
		Description:     "Una noche de jazz",
		StartTime:       "2025-01-10T14:00:00.000Z",
		EndTime:         "2025-01-10T18:00:00.000Z",
		MaxParticipants: 150,
		Price:           25,
		CategoryID:      3,
	})
	require.NoError(t, err)
	assert.Equal(t, 11, id)

	assert.Equal(t, "presencial", received["event_type"])
	assert.Equal(t, float64(3), received["category_id"])
	assert.Equal(t, "2025-01-10T14:00:00.000Z", received["start_time"])
}

func TestClient_CreateLocation_BareIDFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": 22})
	}))
	defer srv.Close()

	c := New(srv.URL)
	id, err := c.CreateLocation(context.Background(), domain.LocationPayload{Name: "Teatro Colón"})
	require.NoError(t, err)
	assert.Equal(t, 22, id)
}

func TestClient_CreateEvent_Multipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "Concierto de jazz", r.FormValue("name"))
		assert.Equal(t, "1", r.FormValue("event_state_id"))
		assert.Equal(t, "9", r.FormValue("user_id_created_by"))
		assert.Equal(t, "11", r.FormValue("type_of_event_id"))
		assert.Equal(t, "22", r.FormValue("location_id"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "poster.png", header.Filename)

		json.NewEncoder(w).Encode(map[string]any{"id_event": 33})
	}))
	defer srv.Close()

	c := New(srv.URL)
	id, err := c.CreateEvent(context.Background(), domain.EventPayload{
		Name:          "Concierto de jazz",
		EventStateID:  1,
		UserCreatedBy: 9,
		Image:         &domain.ImageFile{Name: "poster.png", MIME: "image/png", Data: []byte("png-bytes")},
	}, 11, 22)
	require.NoError(t, err)
	assert.Equal(t, 33, id)
}

func TestClient_CreateEvent_OmitsMissingParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		// A virtual event has no location; the field must be absent, not "0".
		assert.Empty(t, r.FormValue("location_id"))
		_, _, err := r.FormFile("image")
		assert.Error(t, err)

		json.NewEncoder(w).Encode(map[string]any{"id_event": 34})
	}))
	defer srv.Close()

	c := New(srv.URL)
	id, err := c.CreateEvent(context.Background(), domain.EventPayload{
		Name:          "Webinar Go",
		EventStateID:  1,
		UserCreatedBy: 9,
	}, 11, 0)
	require.NoError(t, err)
	assert.Equal(t, 34, id)
}

func TestClient_UpdatePipelinePaths(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	require.NoError(t, c.UpdateTypeOfEvent(ctx, 11, domain.TypeOfEventPayload{EventType: "virtual"}))
	require.NoError(t, c.UpdateLocation(ctx, 22, domain.LocationPayload{Name: "Plaza Mayor"}))
	require.NoError(t, c.UpdateEvent(ctx, 7, domain.EventPayload{Name: "Feria"}, 11, 22))

	assert.Equal(t, []string{
		"PUT /types-of-event/11",
		"PUT /locations/22",
		"PUT /events/7",
	}, paths)
}

func TestClient_BackendErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{"message": "category_id must exist"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.CreateTypeOfEvent(context.Background(), domain.TypeOfEventPayload{})
	require.Error(t, err)

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "category_id must exist", apiErr.Message)
}

func TestClient_GetEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/7", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"id_event": 7, "event_name": "Feria del libro"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	record, err := c.GetEvent(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Feria del libro", record["event_name"])
}

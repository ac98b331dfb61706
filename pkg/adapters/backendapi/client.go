// Package backendapi implements the events REST backend client.
// It translates the composed payloads into the backend's JSON and
// multipart wire formats.
package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/veladahq/velada/internal/logging"
	"github.com/veladahq/velada/pkg/domain"
	"github.com/veladahq/velada/pkg/ports"
)

// Client talks to the events backend. It implements ports.EventService.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

var _ ports.EventService = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithToken sets the bearer token attached to every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.http = client }
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a backend client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiError carries the backend's own message when it provides one.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// wireError is the error envelope the backend responds with.
type wireError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: reading response: %w", req.Method, req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var wire wireError
		_ = json.Unmarshal(body, &wire)
		msg := wire.Message
		if msg == "" {
			msg = wire.Error
		}
		c.logger.Debug("backend request failed",
			"method", req.Method, "path", req.URL.Path, "status", resp.StatusCode)
		return &apiError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: decoding response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding %s body: %w", path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

type wireCategory struct {
	IDCategory int    `json:"id_category"`
	ID         int    `json:"id"`
	Name       string `json:"name"`
}

// Categories fetches the reference data for the event type selector.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var wire []wireCategory
	if err := c.doJSON(ctx, http.MethodGet, "/categories", nil, &wire); err != nil {
		return nil, err
	}

	categories := make([]domain.Category, 0, len(wire))
	for _, w := range wire {
		id := w.IDCategory
		if id == 0 {
			id = w.ID
		}
		categories = append(categories, domain.Category{ID: id, Name: w.Name})
	}
	return categories, nil
}

// GetEvent fetches the flat merged record used to hydrate the edit flow.
func (c *Client) GetEvent(ctx context.Context, eventID int) (map[string]any, error) {
	var record map[string]any
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/events/%d", eventID), nil, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// CreateTypeOfEvent posts the logistics payload and returns the new id.
func (c *Client) CreateTypeOfEvent(ctx context.Context, p domain.TypeOfEventPayload) (int, error) {
	var resp map[string]any
	if err := c.doJSON(ctx, http.MethodPost, "/types-of-event", p, &resp); err != nil {
		return 0, err
	}
	return idField(resp, "id_type_of_event"), nil
}

// CreateLocation posts the venue payload and returns the new id.
func (c *Client) CreateLocation(ctx context.Context, p domain.LocationPayload) (int, error) {
	var resp map[string]any
	if err := c.doJSON(ctx, http.MethodPost, "/locations", p, &resp); err != nil {
		return 0, err
	}
	return idField(resp, "id_location"), nil
}

// CreateEvent posts the main event as multipart form data, image included.
func (c *Client) CreateEvent(ctx context.Context, p domain.EventPayload, typeOfEventID, locationID int) (int, error) {
	body, contentType, err := eventForm(p, typeOfEventID, locationID)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/events", body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", contentType)

	var resp map[string]any
	if err := c.do(req, &resp); err != nil {
		return 0, err
	}
	return idField(resp, "id_event"), nil
}

// UpdateTypeOfEvent replaces an existing type-of-event record.
func (c *Client) UpdateTypeOfEvent(ctx context.Context, id int, p domain.TypeOfEventPayload) error {
	return c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/types-of-event/%d", id), p, nil)
}

// UpdateLocation replaces an existing location record.
func (c *Client) UpdateLocation(ctx context.Context, id int, p domain.LocationPayload) error {
	return c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/locations/%d", id), p, nil)
}

// UpdateEvent replaces the main event record as multipart form data.
// The image part is only attached when the draft actually changed it.
func (c *Client) UpdateEvent(ctx context.Context, eventID int, p domain.EventPayload, typeOfEventID, locationID int) error {
	body, contentType, err := eventForm(p, typeOfEventID, locationID)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, fmt.Sprintf("%s/events/%d", c.baseURL, eventID), body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req, nil)
}

// eventForm builds the multipart body of the main-event calls.
func eventForm(p domain.EventPayload, typeOfEventID, locationID int) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := map[string]string{
		"name":               p.Name,
		"event_state_id":     strconv.Itoa(p.EventStateID),
		"user_id_created_by": strconv.Itoa(p.UserCreatedBy),
	}
	if typeOfEventID != 0 {
		fields["type_of_event_id"] = strconv.Itoa(typeOfEventID)
	}
	if locationID != 0 {
		fields["location_id"] = strconv.Itoa(locationID)
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("writing form field %s: %w", name, err)
		}
	}

	if p.Image != nil {
		part, err := w.CreateFormFile("image", p.Image.Name)
		if err != nil {
			return nil, "", fmt.Errorf("attaching image: %w", err)
		}
		if _, err := part.Write(p.Image.Data); err != nil {
			return nil, "", fmt.Errorf("attaching image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// idField extracts the id from a create response. The backend names the id
// after the resource but some deployments answer with a bare "id".
func idField(resp map[string]any, key string) int {
	for _, k := range []string{key, "id"} {
		if v, ok := resp[k]; ok {
			switch n := v.(type) {
			case float64:
				return int(n)
			case string:
				if id, err := strconv.Atoi(n); err == nil {
					return id
				}
			}
		}
	}
	return 0
}

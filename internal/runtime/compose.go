package runtime

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/veladahq/velada/internal/logging"
	"github.com/veladahq/velada/pkg/domain"
)

// Composer merges the section drafts of a flow into the backend-shaped
// payloads submitted at the end of the wizard. Beyond the image fetch for
// unchanged remote images it performs no side effects; actual submission
// belongs to the engine's pipeline.
type Composer struct {
	client *http.Client
	logger *slog.Logger
}

// NewComposer creates a composer. The client is used only to dereference
// remote image URLs in the edit flow; pass nil for http.DefaultClient.
func NewComposer(client *http.Client, logger *slog.Logger) *Composer {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Composer{client: client, logger: logger}
}

// Compose assembles the three payloads from a draft set.
// It coerces numeric strings, combines the date/time sub-fields into fixed
// UTC instants, and resolves the event image into a single binary shape.
// A location payload is produced only for presencial events with a venue.
func (c *Composer) Compose(ctx context.Context, set domain.DraftSet) (*domain.ComposedEvent, error) {
	log := set.Logistics

	startInstant, okStart := combineDateTime(log.StartDate, log.StartTime)
	endInstant, okEnd := combineDateTime(log.EndDate, log.EndTime)
	if !okStart || !okEnd {
		return nil, &domain.ComposeError{Reason: "Las fechas del evento no son válidas"}
	}

	typePayload := domain.TypeOfEventPayload{
		EventType:           log.Mode,
		Description:         log.Description,
		StartTime:           isoInstant(startInstant),
		EndTime:             isoInstant(endInstant),
		VideoConferenceLink: strings.TrimSpace(log.VideoLink),
	}
	if log.MaxParticipants != nil {
		typePayload.MaxParticipants = *log.MaxParticipants
	}
	if log.Price != nil {
		typePayload.Price = *log.Price
	}
	if id, err := strconv.Atoi(strings.TrimSpace(log.Category)); err == nil {
		typePayload.CategoryID = id
	}

	var locPayload *domain.LocationPayload
	if log.Mode == "presencial" && strings.TrimSpace(set.Location.Name) != "" {
		locPayload = &domain.LocationPayload{
			Name:        set.Location.Name,
			Description: set.Location.Description,
			Address:     set.Location.Address,
		}
		if set.Location.Price != nil {
			locPayload.Price = *set.Location.Price
		}
	}

	eventPayload := domain.EventPayload{
		Name:          set.Event.Name,
		EventStateID:  set.Event.EventStateID,
		UserCreatedBy: set.Event.UserCreatedBy,
		Image:         c.resolveImage(ctx, set.Event),
	}
	if eventPayload.EventStateID == 0 {
		eventPayload.EventStateID = 1
	}

	return &domain.ComposedEvent{
		Event:       eventPayload,
		TypeOfEvent: typePayload,
		Location:    locPayload,
	}, nil
}

// resolveImage normalizes the three image sources into one shape:
// a data URI selected this session is decoded; the remote URL of an
// unchanged image is fetched (failure tolerated as "no image change");
// a removed image yields nil.
func (c *Composer) resolveImage(ctx context.Context, d domain.EventDetailsDraft) *domain.ImageFile {
	if strings.HasPrefix(d.Image, "data:image/") {
		img, err := decodeDataURI(d.Image, d.ImageFileName)
		if err != nil {
			c.logger.Warn("discarding undecodable image data", "err", err)
			return nil
		}
		return img
	}

	if strings.HasPrefix(d.ImagePreview, "http") {
		img, err := c.fetchImage(ctx, d.ImagePreview)
		if err != nil {
			c.logger.Warn("keeping event image unchanged, fetch failed",
				"url", d.ImagePreview, "err", err)
			return nil
		}
		return img
	}

	return nil
}

func decodeDataURI(uri, fileName string) (*domain.ImageFile, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI")
	}
	mimePart := strings.TrimPrefix(header, "data:")
	mimePart = strings.TrimSuffix(mimePart, ";base64")

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding image payload: %w", err)
	}

	if fileName == "" {
		fileName = "imagen-base64.jpg"
	}
	return &domain.ImageFile{Name: fileName, MIME: mimePart, Data: data}, nil
}

func (c *Composer) fetchImage(ctx context.Context, url string) (*domain.ImageFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/jpeg"
	}
	return &domain.ImageFile{Name: "imagen-original.jpg", MIME: mime, Data: data}, nil
}

// dataURIMIME extracts the MIME type of a data URI, if src is one.
func dataURIMIME(src string) (string, bool) {
	if !strings.HasPrefix(src, "data:") {
		return "", false
	}
	header, _, ok := strings.Cut(src, ",")
	if !ok {
		return "", false
	}
	mime := strings.TrimPrefix(header, "data:")
	mime = strings.TrimSuffix(mime, ";base64")
	return mime, mime != ""
}

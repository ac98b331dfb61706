package runtime

import (
	"context"
	"fmt"
	"strconv"

	"github.com/veladahq/velada/pkg/domain"
)

// flatEventRecord is the shape the backend returns for a single event:
// one flat row joining the event with its type and location.
type flatEventRecord struct {
	IDEvent             int     `json:"id_event"`
	EventName           string  `json:"event_name"`
	ImageURL            string  `json:"image_url"`
	IDEventState        int     `json:"id_event_state"`
	IDTypeOfEvent       int     `json:"id_type_of_event"`
	IDCategory          int     `json:"id_category"`
	EventType           string  `json:"event_type"`
	EventDescription    string  `json:"event_type_description"`
	MaxParticipants     *int    `json:"max_participants"`
	EventPrice          *float64 `json:"event_price"`
	VideoLink           string  `json:"video_conference_link"`
	StartTime           string  `json:"start_time"`
	EndTime             string  `json:"end_time"`
	IDLocation          int     `json:"id_location"`
	LocationName        string  `json:"location_name"`
	LocationDescription string  `json:"location_description"`
	LocationAddress     string  `json:"location_address"`
	LocationPrice       *float64 `json:"location_price"`
}

// hydrateEdit splits the backend's flat event record into the three
// section drafts of the edit flow, seeds the completion map from which
// parts exist, and records the target under its recovery key.
func (e *Engine) hydrateEdit(ctx context.Context, state *domain.FlowState, record map[string]any) error {
	var flat flatEventRecord
	if err := domain.DecodeDraft(record, &flat); err != nil {
		return fmt.Errorf("decoding event record: %w", err)
	}

	mode := "presencial"
	if flat.EventType != "" {
		mode = flat.EventType
	}
	category := ""
	if flat.IDCategory != 0 {
		category = strconv.Itoa(flat.IDCategory)
	}

	startDate, startTime := splitInstant(flat.StartTime)
	endDate, endTime := splitInstant(flat.EndTime)

	details := domain.EventDetailsDraft{
		Name:          flat.EventName,
		EventStateID:  flat.IDEventState,
		TypeOfEventID: flat.IDTypeOfEvent,
		LocationID:    flat.IDLocation,
		Image:         flat.ImageURL,
		ImagePreview:  flat.ImageURL,
		Description:   flat.EventDescription,
		EventType:     category,
	}

	logistics := domain.LogisticsDraft{
		IDTypeOfEvent:   flat.IDTypeOfEvent,
		Category:        category,
		Description:     flat.EventDescription,
		MaxParticipants: flat.MaxParticipants,
		VideoLink:       flat.VideoLink,
		Price:           flat.EventPrice,
		StartDate:       startDate,
		StartTime:       startTime,
		EndDate:         endDate,
		EndTime:         endTime,
		Mode:            mode,
	}

	location := domain.LocationDraft{
		IDLocation:  flat.IDLocation,
		Name:        flat.LocationName,
		Description: flat.LocationDescription,
		Price:       flat.LocationPrice,
		Address:     flat.LocationAddress,
	}

	writes := map[string]domain.SectionDraft{}

	detailsRaw, err := domain.EncodeDraft(details)
	if err != nil {
		return err
	}
	writes[domain.DraftKey(domain.SectionEditarEvento)] = detailsRaw

	logisticsRaw, err := domain.EncodeDraft(logistics)
	if err != nil {
		return err
	}
	writes[domain.DraftKey(domain.SectionEditarTipoEvento)] = logisticsRaw

	locationRaw, err := domain.EncodeDraft(location)
	if err != nil {
		return err
	}
	writes[domain.DraftKey(domain.SectionEditarUbicacion)] = locationRaw

	// Every part that already exists counts as complete, which is what
	// lets the user jump straight to the section they came to change.
	completed := domain.CompletionMap{
		domain.SectionEditarEvento:     true,
		domain.SectionEditarTipoEvento: flat.IDTypeOfEvent != 0,
		domain.SectionEditarUbicacion:  flat.IDLocation != 0,
	}
	writes[domain.KeyEditCompletedSections] = completed.Draft()
	writes[domain.KeyCurrentEditEvent] = domain.SectionDraft{"id": flat.IDEvent}

	for key, draft := range writes {
		if err := e.sessions.WriteDraft(ctx, state.FlowID, key, draft); err != nil {
			return fmt.Errorf("hydrating %s: %w", key, err)
		}
	}
	return nil
}

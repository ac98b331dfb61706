package domain

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// SectionDraft is the persisted, string-keyed form of a section's in-progress
// values. It is what the DraftStore serializes; the typed draft structs below
// are its compile-time checked view.
type SectionDraft map[string]any

// EventDetailsDraft holds the first section of the wizard: the event name,
// its image, and the description/category pair that is mirrored into the
// logistics draft.
type EventDetailsDraft struct {
	Name          string `json:"name"`
	EventStateID  int    `json:"event_state_id"`
	TypeOfEventID int    `json:"type_of_event_id,omitempty"`
	LocationID    int    `json:"location_id,omitempty"`
	UserCreatedBy int    `json:"user_created_by"`

	// Image is either a data URI selected in the current session or empty.
	// ImagePreview carries the remote URL of an already-persisted image in
	// the edit flow. ImageFileName is kept for extension validation.
	Image         string `json:"image"`
	ImagePreview  string `json:"imagePreview"`
	ImageFileName string `json:"imageFileName"`

	// Description and EventType live on this section's form but belong to
	// the logistics payload; the engine mirrors them into the logistics
	// draft on every save.
	Description string `json:"description"`
	EventType   string `json:"eventType"`
}

// LogisticsDraft holds the type-of-event section: modality, schedule,
// capacity and pricing. Numeric fields are pointers so "never entered"
// is distinguishable from zero.
type LogisticsDraft struct {
	IDTypeOfEvent   int      `json:"id_type_of_event,omitempty"`
	Category        string   `json:"tipo_eventType"`
	Description     string   `json:"tipo_description"`
	MaxParticipants *int     `json:"tipo_maxParticipants"`
	VideoLink       string   `json:"tipo_videoLink"`
	Price           *float64 `json:"tipo_price"`
	StartDate       string   `json:"tipo_startDate"`
	StartTime       string   `json:"tipo_startTime"`
	EndDate         string   `json:"tipo_endDate"`
	EndTime         string   `json:"tipo_endTime"`
	Mode            string   `json:"tipo_mode"`
}

// LocationDraft holds the venue section. Only relevant for "presencial"
// events; the composer skips it otherwise.
type LocationDraft struct {
	IDLocation  int      `json:"id_location,omitempty"`
	Name        string   `json:"ubicacion_name"`
	Description string   `json:"ubicacion_description"`
	Price       *float64 `json:"ubicacion_price"`
	Address     string   `json:"ubicacion_address"`
}

// DraftSet groups the three section drafts of one flow for composition.
type DraftSet struct {
	Event     EventDetailsDraft
	Logistics LogisticsDraft
	Location  LocationDraft
}

// DecodeDraft fills a typed draft struct from its stored map form.
// Decoding is weakly typed: numeric strings written by older clients decode
// into numeric fields, and unknown keys are ignored rather than rejected.
func DecodeDraft(src SectionDraft, dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		TagName:          "json",
		WeaklyTypedInput: true,
		ZeroFields:       true,
	})
	if err != nil {
		return fmt.Errorf("building draft decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(src)); err != nil {
		return fmt.Errorf("decoding draft: %w", err)
	}
	return nil
}

// EncodeDraft converts a typed draft struct into its stored map form.
// Round-tripping through JSON keeps the stored shape identical to what the
// original web client wrote to session storage.
func EncodeDraft(src any) (SectionDraft, error) {
	raw, err := json.Marshal(src)
	if err != nil {
		return nil, fmt.Errorf("encoding draft: %w", err)
	}
	var out SectionDraft
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("encoding draft: %w", err)
	}
	return out, nil
}

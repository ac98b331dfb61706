package domain

// Category is a reference-data item used to populate the event type
// selector in the first section.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ImageFile is a resolved event image, normalized from whichever source the
// draft carried (fresh upload, data URI, or the remote URL of an unchanged
// image in the edit flow).
type ImageFile struct {
	Name string
	MIME string
	Data []byte
}

// TypeOfEventPayload is the backend shape for POST/PUT /types-of-event.
type TypeOfEventPayload struct {
	EventType           string  `json:"event_type"`
	Description         string  `json:"description,omitempty"`
	StartTime           string  `json:"start_time,omitempty"`
	EndTime             string  `json:"end_time,omitempty"`
	MaxParticipants     int     `json:"max_participants,omitempty"`
	VideoConferenceLink string  `json:"video_conference_link,omitempty"`
	Price               float64 `json:"price,omitempty"`
	CategoryID          int     `json:"category_id,omitempty"`
}

// LocationPayload is the backend shape for POST/PUT /locations.
type LocationPayload struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Address     string  `json:"address"`
}

// EventPayload is the backend shape for the multipart main-event call.
// TypeOfEventID and LocationID are filled in by the submit pipeline with the
// ids produced by the preceding steps.
type EventPayload struct {
	Name          string
	EventStateID  int
	UserCreatedBy int
	Image         *ImageFile
}

// ComposedEvent is the result of merging all section drafts at submission
// time. Location is nil for non-presencial events.
type ComposedEvent struct {
	Event       EventPayload
	TypeOfEvent TypeOfEventPayload
	Location    *LocationPayload
}

// SubmitResult reports the ids produced (or reused) by a submission.
type SubmitResult struct {
	EventID       int `json:"event_id"`
	TypeOfEventID int `json:"type_of_event_id,omitempty"`
	LocationID    int `json:"location_id,omitempty"`
}

package ports

import (
	"context"

	"github.com/veladahq/velada/pkg/domain"
)

// EventService is the REST backend collaborator. Wire formats are owned by
// the backend; implementations translate the composed payloads into its
// JSON and multipart requests.
//
// The create calls run in a fixed order because the main-event call needs
// the ids produced by the first two; that sequencing is the submit
// pipeline's responsibility, not the service's.
type EventService interface {
	// Categories fetches the reference data for the event type selector.
	Categories(ctx context.Context) ([]domain.Category, error)

	// GetEvent fetches the flat merged record (event + type + location
	// fields) used to hydrate the edit flow.
	GetEvent(ctx context.Context, eventID int) (map[string]any, error)

	CreateTypeOfEvent(ctx context.Context, p domain.TypeOfEventPayload) (int, error)
	CreateLocation(ctx context.Context, p domain.LocationPayload) (int, error)
	CreateEvent(ctx context.Context, p domain.EventPayload, typeOfEventID, locationID int) (int, error)

	UpdateTypeOfEvent(ctx context.Context, id int, p domain.TypeOfEventPayload) error
	UpdateLocation(ctx context.Context, id int, p domain.LocationPayload) error
	UpdateEvent(ctx context.Context, eventID int, p domain.EventPayload, typeOfEventID, locationID int) error
}

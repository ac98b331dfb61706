package ports

import (
	"context"

	"github.com/veladahq/velada/pkg/domain"
)

// DraftStore defines the interface for persisting section drafts.
// Entries are namespaced by flow ID (one browser session / one wizard mount)
// and keyed by the constants in domain/keys.go. Writes are last-write-wins;
// all writers of a given flow go through the session manager.
type DraftStore interface {
	// Save persists a draft under the given flow and key.
	Save(ctx context.Context, flowID, key string, draft domain.SectionDraft) error

	// Load retrieves a draft.
	// Returns domain.ErrDraftNotFound if the key has never been written.
	Load(ctx context.Context, flowID, key string) (domain.SectionDraft, error)

	// Delete removes the given keys for a flow. Missing keys are not errors.
	Delete(ctx context.Context, flowID string, keys ...string) error

	// List returns the keys currently stored for a flow.
	List(ctx context.Context, flowID string) ([]string, error)
}

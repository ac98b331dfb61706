package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veladahq/velada/pkg/domain"
)

func TestPIIMiddleware_MasksMatchingKeys(t *testing.T) {
	ctx := context.Background()
	backing := newMockStore()
	store := NewPIIMiddleware([]string{"(?i)email", "(?i)phone"})(backing)

	draft := domain.SectionDraft{
		"name":          "Concierto de jazz",
		"contact_email": "ana@example.com",
		"contact_phone": "3001234567",
		"nested": map[string]any{
			"organizerEmail": "org@example.com",
		},
	}
	require.NoError(t, store.Save(ctx, "flow-1", domain.KeyEventData, draft))

	raw, ok := backing.raw("flow-1", domain.KeyEventData)
	require.True(t, ok)
	assert.Equal(t, "Concierto de jazz", raw["name"])
	assert.Equal(t, "***", raw["contact_email"])
	assert.Equal(t, "***", raw["contact_phone"])
	assert.Equal(t, "***", raw["nested"].(map[string]any)["organizerEmail"])
}

func TestPIIMiddleware_DoesNotMutateCallerDraft(t *testing.T) {
	ctx := context.Background()
	store := NewPIIMiddleware([]string{"email"})(newMockStore())

	draft := domain.SectionDraft{"email": "ana@example.com"}
	require.NoError(t, store.Save(ctx, "flow-1", domain.KeyEventData, draft))

	assert.Equal(t, "ana@example.com", draft["email"])
}

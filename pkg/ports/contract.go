package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veladahq/velada/pkg/domain"
)

// RunDraftStoreContract runs a suite of tests verifying that a DraftStore
// implementation adheres to the interface contract. Adapter tests call this
// with a freshly constructed store.
func RunDraftStoreContract(t *testing.T, store DraftStore) {
	ctx := context.Background()
	flowID := "contract-flow-" + time.Now().Format("20060102150405")

	t.Run("Save and Load round-trip", func(t *testing.T) {
		draft := domain.SectionDraft{
			"name":        "Launch Party",
			"tipo_mode":   "presencial",
			"tipo_price":  float64(25000),
			"imageHandle": nil,
		}

		err := store.Save(ctx, flowID, domain.KeyEventData, draft)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, flowID, domain.KeyEventData)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "Launch Party", loaded["name"])
		assert.Equal(t, "presencial", loaded["tipo_mode"])
		// JSON-backed stores surface numbers as float64; that is the
		// accepted normalization for drafts.
		assert.EqualValues(t, 25000, loaded["tipo_price"])
	})

	t.Run("Load missing key", func(t *testing.T) {
		_, err := store.Load(ctx, flowID, "tab_nunca_escrito_data")
		assert.ErrorIs(t, err, domain.ErrDraftNotFound)
	})

	t.Run("Last write wins", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, flowID, domain.KeyCompletedSections, domain.SectionDraft{"evento": false}))
		require.NoError(t, store.Save(ctx, flowID, domain.KeyCompletedSections, domain.SectionDraft{"evento": true}))

		loaded, err := store.Load(ctx, flowID, domain.KeyCompletedSections)
		require.NoError(t, err)
		assert.Equal(t, true, loaded["evento"])
	})

	t.Run("Stored drafts are isolated from caller mutation", func(t *testing.T) {
		draft := domain.SectionDraft{"ubicacion_name": "Teatro Colón"}
		require.NoError(t, store.Save(ctx, flowID, "tab_ubicacion_data", draft))
		draft["ubicacion_name"] = "mutated"

		loaded, err := store.Load(ctx, flowID, "tab_ubicacion_data")
		require.NoError(t, err)
		assert.Equal(t, "Teatro Colón", loaded["ubicacion_name"])
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, flowID, "tab_tipoEvento_data", domain.SectionDraft{"tipo_mode": "virtual"}))
		require.NoError(t, store.Delete(ctx, flowID, "tab_tipoEvento_data", "does-not-exist"))

		_, err := store.Load(ctx, flowID, "tab_tipoEvento_data")
		assert.ErrorIs(t, err, domain.ErrDraftNotFound)
	})

	t.Run("List returns written keys", func(t *testing.T) {
		otherFlow := flowID + "-list"
		require.NoError(t, store.Save(ctx, otherFlow, domain.KeyEventData, domain.SectionDraft{"name": "a"}))
		require.NoError(t, store.Save(ctx, otherFlow, "tab_ubicacion_data", domain.SectionDraft{"ubicacion_name": "b"}))

		keys, err := store.List(ctx, otherFlow)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{domain.KeyEventData, "tab_ubicacion_data"}, keys)
	})

	t.Run("Flows are isolated", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, flowID+"-a", domain.KeyEventData, domain.SectionDraft{"name": "A"}))

		_, err := store.Load(ctx, flowID+"-b", domain.KeyEventData)
		assert.ErrorIs(t, err, domain.ErrDraftNotFound)
	})
}

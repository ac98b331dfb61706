package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veladahq/velada/internal/adapters/redis"
	"github.com/veladahq/velada/pkg/domain"
	"github.com/veladahq/velada/pkg/ports"
)

func newTestClient(t *testing.T) *backend.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	return backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	store := redis.NewFromClient(newTestClient(t))
	ports.RunDraftStoreContract(t, store)
}

func TestRedisStore_MalformedEntryIsNoDraft(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	store := redis.NewFromClient(client)

	require.NoError(t, client.HSet(ctx, "velada:flow:f1", domain.KeyEventData, "{broken").Err())

	_, err := store.Load(ctx, "f1", domain.KeyEventData)
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestRedisStore_TTLRefreshedOnWrite(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redis.NewFromClient(client, redis.WithTTL(time.Minute))

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "f2", domain.KeyEventData, domain.SectionDraft{"name": "x"}))
	assert.Greater(t, mr.TTL("velada:flow:f2"), time.Duration(0))
}

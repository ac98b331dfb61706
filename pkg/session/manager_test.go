package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veladahq/velada/pkg/adapters/memory"
	"github.com/veladahq/velada/pkg/domain"
	"github.com/veladahq/velada/pkg/session"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]domain.SectionDraft
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, flowID, key string, draft domain.SectionDraft) error {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[string]domain.SectionDraft)
	}
	s.data[flowID+"/"+key] = draft
	return nil
}

func (s *SlowStore) Load(ctx context.Context, flowID, key string) (domain.SectionDraft, error) {
	time.Sleep(5 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.data[flowID+"/"+key]; ok {
		return d, nil
	}
	return nil, domain.ErrDraftNotFound
}

func (s *SlowStore) Delete(ctx context.Context, flowID string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, flowID+"/"+k)
	}
	return nil
}

func (s *SlowStore) List(ctx context.Context, flowID string) ([]string, error) {
	return nil, nil
}

func TestManager_SerializesWritesPerFlow(t *testing.T) {
	manager := session.NewManager(&SlowStore{})
	ctx := context.Background()

	var order []int
	var orderMu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = manager.WithLock(ctx, "flow-1", func(ctx context.Context) error {
				orderMu.Lock()
				order = append(order, i)
				orderMu.Unlock()
				time.Sleep(time.Millisecond)
				return nil
			})
		}(i)
	}
	wg.Wait()

	assert.Len(t, order, 8, "every locked section must have run")
}

func TestManager_ReadDraftDegradesToEmpty(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	draft, err := manager.ReadDraft(ctx, "flow-1", domain.KeyEventData)
	require.NoError(t, err)
	assert.NotNil(t, draft)
	assert.Empty(t, draft)
}

func TestManager_WriteThenRead(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, manager.WriteDraft(ctx, "flow-1", domain.KeyEventData,
		domain.SectionDraft{"name": "Launch Party"}))

	draft, err := manager.ReadDraft(ctx, "flow-1", domain.KeyEventData)
	require.NoError(t, err)
	assert.Equal(t, "Launch Party", draft["name"])
}

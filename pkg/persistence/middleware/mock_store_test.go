package middleware

import (
	"context"
	"sync"

	"github.com/veladahq/velada/pkg/domain"
)

// mockStore is a raw in-memory store used to observe exactly what a
// middleware hands to its backing store.
type mockStore struct {
	mu   sync.Mutex
	data map[string]domain.SectionDraft
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]domain.SectionDraft)}
}

func (s *mockStore) Save(_ context.Context, flowID, key string, draft domain.SectionDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[flowID+"/"+key] = draft
	return nil
}

func (s *mockStore) Load(_ context.Context, flowID, key string) (domain.SectionDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.data[flowID+"/"+key]
	if !ok {
		return nil, domain.ErrDraftNotFound
	}
	return draft, nil
}

func (s *mockStore) Delete(_ context.Context, flowID string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, flowID+"/"+key)
	}
	return nil
}

func (s *mockStore) List(_ context.Context, flowID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := flowID + "/"
	var keys []string
	for k := range s.data {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k[len(prefix):])
		}
	}
	return keys, nil
}

// raw returns the stored draft without going through any middleware.
func (s *mockStore) raw(flowID, key string) (domain.SectionDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.data[flowID+"/"+key]
	return draft, ok
}

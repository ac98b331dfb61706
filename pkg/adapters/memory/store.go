// Package memory provides an in-memory DraftStore, used as the default
// backend and as the test double everywhere a real store is not needed.
package memory

import (
	"context"
	"sync"

	"github.com/veladahq/velada/pkg/domain"
)

// Store implements ports.DraftStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]map[string]domain.SectionDraft
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]map[string]domain.SectionDraft),
	}
}

// Save persists the draft in memory.
func (s *Store) Save(ctx context.Context, flowID, key string, draft domain.SectionDraft) error {
	// Copy on write so the caller can't mutate stored state by reference.
	copied := make(domain.SectionDraft, len(draft))
	for k, v := range draft {
		copied[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	flow, ok := s.data[flowID]
	if !ok {
		flow = make(map[string]domain.SectionDraft)
		s.data[flowID] = flow
	}
	flow[key] = copied
	return nil
}

// Load retrieves a draft from memory.
func (s *Store) Load(ctx context.Context, flowID, key string) (domain.SectionDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	draft, ok := s.data[flowID][key]
	if !ok {
		return nil, domain.ErrDraftNotFound
	}

	ret := make(domain.SectionDraft, len(draft))
	for k, v := range draft {
		ret[k] = v
	}
	return ret, nil
}

// Delete removes the given keys. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, flowID string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	flow, ok := s.data[flowID]
	if !ok {
		return nil
	}
	for _, key := range keys {
		delete(flow, key)
	}
	if len(flow) == 0 {
		delete(s.data, flowID)
	}
	return nil
}

// List returns the keys stored for a flow.
func (s *Store) List(ctx context.Context, flowID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flow := s.data[flowID]
	keys := make([]string, 0, len(flow))
	for k := range flow {
		keys = append(keys, k)
	}
	return keys, nil
}

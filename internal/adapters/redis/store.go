// Package redis implements a Redis-backed DraftStore. One hash per flow
// keeps all section drafts of a session together so a TTL naturally gives
// the session-scoped lifetime the wizard expects.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/veladahq/velada/pkg/domain"
)

// Store implements ports.DraftStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for a flow's drafts. Every write refreshes it,
// mirroring session-storage semantics: drafts live as long as the session
// stays active.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for flows.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "velada:flow:",
		ttl:    0, // No expiration by default
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(flowID string) string {
	return s.prefix + flowID
}

// Save persists the draft as a hash field, refreshing the flow TTL.
func (s *Store) Save(ctx context.Context, flowID, key string, draft domain.SectionDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.HSet(ctx, s.key(flowID), key, data)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(flowID), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves a draft. Unparseable stored data degrades to "no draft".
func (s *Store) Load(ctx context.Context, flowID, key string) (domain.SectionDraft, error) {
	val, err := s.client.HGet(ctx, s.key(flowID), key).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var draft domain.SectionDraft
	if err := json.Unmarshal([]byte(val), &draft); err != nil {
		return nil, domain.ErrDraftNotFound
	}
	return draft, nil
}

// Delete removes the given hash fields.
func (s *Store) Delete(ctx context.Context, flowID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, s.key(flowID), keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// List returns the draft keys stored for a flow.
func (s *Store) List(ctx context.Context, flowID string) ([]string, error) {
	keys, err := s.client.HKeys(ctx, s.key(flowID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list draft keys: %w", err)
	}
	return keys, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

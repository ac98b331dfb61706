// Package postgres implements a PostgreSQL-backed DraftStore via pgx.
// Drafts are JSONB rows keyed by (flow_id, draft_key); deployments that
// need drafts to outlive a single process or Redis TTL use this backend.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veladahq/velada/pkg/domain"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS wizard_drafts (
    flow_id    TEXT NOT NULL,
    draft_key  TEXT NOT NULL,
    data       JSONB NOT NULL DEFAULT '{}',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (flow_id, draft_key)
);

CREATE INDEX IF NOT EXISTS idx_wizard_drafts_flow ON wizard_drafts(flow_id);
`

// Store implements ports.DraftStore using PostgreSQL.
type Store struct {
	db *pgxpool.Pool
}

// New creates a new Store backed by the given pgx connection pool.
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// CreateSchema creates the wizard_drafts table if it doesn't exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the wizard_drafts table.
func (s *Store) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS wizard_drafts CASCADE;`)
	return err
}

// Save upserts the draft row.
func (s *Store) Save(ctx context.Context, flowID, key string, draft domain.SectionDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("drafts: marshal: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO wizard_drafts (flow_id, draft_key, data, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (flow_id, draft_key)
		DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		flowID, key, data,
	)
	if err != nil {
		return fmt.Errorf("drafts: upsert %s/%s: %w", flowID, key, err)
	}
	return nil
}

// Load retrieves a draft row.
func (s *Store) Load(ctx context.Context, flowID, key string) (domain.SectionDraft, error) {
	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT data FROM wizard_drafts WHERE flow_id = $1 AND draft_key = $2`,
		flowID, key,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDraftNotFound
		}
		return nil, fmt.Errorf("drafts: select %s/%s: %w", flowID, key, err)
	}

	var draft domain.SectionDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, domain.ErrDraftNotFound
	}
	return draft, nil
}

// Delete removes the given draft rows.
func (s *Store) Delete(ctx context.Context, flowID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx,
		`DELETE FROM wizard_drafts WHERE flow_id = $1 AND draft_key = ANY($2)`,
		flowID, keys,
	)
	if err != nil {
		return fmt.Errorf("drafts: delete %s: %w", flowID, err)
	}
	return nil
}

// List returns the draft keys stored for a flow.
func (s *Store) List(ctx context.Context, flowID string) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT draft_key FROM wizard_drafts WHERE flow_id = $1`, flowID)
	if err != nil {
		return nil, fmt.Errorf("drafts: list %s: %w", flowID, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("drafts: scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Package file implements a filesystem-backed DraftStore. Each flow is one
// JSON file holding all of its draft keys, written atomically so a crash
// mid-save never leaves a partial draft behind.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/veladahq/velada/pkg/domain"
)

// Store implements ports.DraftStore using the local filesystem.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".velada/drafts".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".velada", "drafts")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(flowID string) string {
	return filepath.Join(s.BasePath, flowID+".json")
}

// Save persists the draft, rewriting the flow file atomically:
// write to a temp file, fsync, then rename over the destination.
func (s *Store) Save(ctx context.Context, flowID, key string, draft domain.SectionDraft) error {
	if flowID == "" {
		return fmt.Errorf("flowID cannot be empty")
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure draft directory: %w", err)
	}

	flow, err := s.readFlow(flowID)
	if err != nil {
		return err
	}
	flow[key] = draft

	return s.writeFlow(flowID, flow)
}

// Load retrieves one draft key from the flow file.
// Corrupt flow files count as "no draft": the caller degrades to empty
// defaults rather than surfacing a parse error.
func (s *Store) Load(ctx context.Context, flowID, key string) (domain.SectionDraft, error) {
	if flowID == "" {
		return nil, fmt.Errorf("flowID cannot be empty")
	}

	flow, err := s.readFlow(flowID)
	if err != nil {
		return nil, err
	}
	draft, ok := flow[key]
	if !ok {
		return nil, domain.ErrDraftNotFound
	}
	return draft, nil
}

// Delete removes the given keys; the flow file is deleted once empty.
func (s *Store) Delete(ctx context.Context, flowID string, keys ...string) error {
	flow, err := s.readFlow(flowID)
	if err != nil {
		return err
	}
	for _, key := range keys {
		delete(flow, key)
	}
	if len(flow) == 0 {
		if err := os.Remove(s.path(flowID)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete flow file: %w", err)
		}
		return nil
	}
	return s.writeFlow(flowID, flow)
}

// List returns the draft keys stored for a flow.
func (s *Store) List(ctx context.Context, flowID string) ([]string, error) {
	flow, err := s.readFlow(flowID)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(flow))
	for k := range flow {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *Store) readFlow(flowID string) (map[string]domain.SectionDraft, error) {
	data, err := os.ReadFile(s.path(flowID))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]domain.SectionDraft{}, nil
		}
		return nil, fmt.Errorf("failed to read flow file: %w", err)
	}

	var flow map[string]domain.SectionDraft
	if err := json.Unmarshal(data, &flow); err != nil {
		// Malformed stored data is treated as absent.
		return map[string]domain.SectionDraft{}, nil
	}
	if flow == nil {
		flow = map[string]domain.SectionDraft{}
	}
	return flow, nil
}

func (s *Store) writeFlow(flowID string, flow map[string]domain.SectionDraft) error {
	destPath := s.path(flowID)

	data, err := json.MarshalIndent(flow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal drafts: %w", err)
	}

	// Same directory as the destination so the rename stays on one
	// filesystem (required for atomicity).
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+flowID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename replaces the destination on POSIX; on Windows it fails if
	// the destination exists, so remove it first. The tiny window between
	// remove and rename is acceptable for CLI usage.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing flow file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}
	return nil
}

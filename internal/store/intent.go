package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// IntentWrite is one pending document write inside an intent record. The
// full serialized payload is carried so recovery can roll the mutation
// forward without re-deriving any state.
type IntentWrite struct {
	Path    string          `json:"path"`
	Backup  bool            `json:"backup"`
	Payload json.RawMessage `json:"payload"`
}

// Intent is the write-ahead record for a multi-document mutation. It is
// written atomically before the first document write and cleared after
// the last one, so a crash in between leaves a replayable record instead
// of a child document disagreeing with its owner's containment list.
type Intent struct {
	Op        string        `json:"op"`
	CreatedAt time.Time     `json:"created_at"`
	Writes    []IntentWrite `json:"writes"`
}

// NewIntent starts an intent record for the named operation.
func NewIntent(op string) *Intent {
	return &Intent{Op: op, CreatedAt: time.Now().UTC()}
}

// Add serializes doc and appends it as a pending write to path.
func (in *Intent) Add(path string, doc any, backup bool) error {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal intent payload for %s: %w", path, err)
	}
	in.Writes = append(in.Writes, IntentWrite{Path: path, Backup: backup, Payload: payload})
	return nil
}

// RecordIntent persists the intent record for the store's root.
func (s *Store) RecordIntent(in *Intent) error {
	return WriteJSON(s.layout.IntentPath(), in, false)
}

// ClearIntent removes the intent record after all its writes landed.
func (s *Store) ClearIntent() error {
	return Remove(s.layout.IntentPath())
}

// PendingIntent loads a leftover intent record. A nil intent with nil
// error means the previous session shut down cleanly.
func (s *Store) PendingIntent() (*Intent, error) {
	var in Intent
	if err := ReadJSON(s.layout.IntentPath(), &in); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &in, nil
}

// ReplayIntent rolls a leftover intent forward: every pending write is
// re-applied (the writes are idempotent full-document payloads), then the
// record is cleared. Cached copies of the replayed documents are dropped
// so the next read observes the recovered state.
func (s *Store) ReplayIntent(in *Intent) error {
	for _, w := range in.Writes {
		if err := WriteBytes(w.Path, w.Payload, w.Backup); err != nil {
			return fmt.Errorf("replay intent write %s: %w", w.Path, err)
		}
	}
	s.cache.Clear()
	if err := s.ClearIntent(); err != nil {
		return fmt.Errorf("clear intent: %w", err)
	}
	s.logger.Printf("replayed intent %q (%d writes)", in.Op, len(in.Writes))
	return nil
}

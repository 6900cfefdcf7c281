package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pulsekit/vitalvoice/pkg/extract"
)

// Memory is an in-memory Store for development and tests.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record // by ID
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

// Create persists a new record.
func (m *Memory) Create(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	fillDefaults(rec)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = *rec
	return nil
}

// Get returns the record with the given ID.
func (m *Memory) Get(ctx context.Context, userID, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok || rec.UserID != userID {
		return nil, ErrNotFound
	}
	out := rec
	return &out, nil
}

// List returns records newest first.
func (m *Memory) List(ctx context.Context, userID string, metric extract.MetricType, limit int) ([]Record, error) {
	m.mu.RLock()
	var out []Record
	for _, rec := range m.records {
		if rec.UserID == userID && (metric == "" || rec.Type == metric) {
			out = append(out, rec)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Update replaces the value and note of an existing record.
func (m *Memory) Update(ctx context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.records[rec.ID]
	if !ok || existing.UserID != rec.UserID {
		return ErrNotFound
	}
	existing.Value = rec.Value
	existing.Note = rec.Note
	m.records[rec.ID] = existing
	return nil
}

// Delete removes a record.
func (m *Memory) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok || rec.UserID != userID {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

func fillDefaults(rec *Record) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Unit == "" {
		rec.Unit = rec.Type.Unit()
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
}

var _ Store = (*Memory)(nil)

// Package store persists health-metric records. The voice pipeline
// never writes here directly; the surrounding surfaces do, after the
// form collaborator applies extracted values.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/pulsekit/vitalvoice/pkg/extract"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when no record matches the given ID.
	ErrNotFound = errors.New("store: record not found")

	// ErrInvalidRecord is returned for records missing required
	// fields.
	ErrInvalidRecord = errors.New("store: invalid record")
)

// Record is one logged health reading.
type Record struct {
	ID         string             `json:"id"`
	UserID     string             `json:"user_id"`
	Type       extract.MetricType `json:"type"`
	Value      string             `json:"value"`
	Unit       string             `json:"unit"`
	Note       string             `json:"note,omitempty"`
	RecordedAt time.Time          `json:"recorded_at"`
}

// Validate checks required fields.
func (r *Record) Validate() error {
	if r.UserID == "" || r.Value == "" || !r.Type.Valid() {
		return ErrInvalidRecord
	}
	return nil
}

// Store is typed CRUD over health-metric records, keyed by user and
// metric type, listed by recorded timestamp descending.
type Store interface {
	// Create persists a new record. The ID and unit are filled in if
	// empty; RecordedAt defaults to now.
	Create(ctx context.Context, rec *Record) error

	// Get returns the record with the given ID.
	Get(ctx context.Context, userID, id string) (*Record, error)

	// List returns up to limit records for the user and metric type,
	// newest first. An empty metric means all types; limit <= 0 means
	// no limit.
	List(ctx context.Context, userID string, metric extract.MetricType, limit int) ([]Record, error)

	// Update replaces the value and note of an existing record.
	Update(ctx context.Context, rec *Record) error

	// Delete removes a record.
	Delete(ctx context.Context, userID, id string) error

	// Close releases the backing connection.
	Close() error
}

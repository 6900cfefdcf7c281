package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/pulsekit/vitalvoice/pkg/extract"
)

// Redis implements Store on a Redis backend. Records are stored as
// JSON under record keys; a per-user, per-metric sorted set scored by
// recorded-at keeps the newest-first listing cheap.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedis connects to Redis using a connection URL.
func NewRedis(connStr string, logger *slog.Logger) (*Redis, error) {
	opt, err := redis.ParseURL(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store.redis")
	logger.Info("connecting", "addr", opt.Addr, "db", opt.DB)

	return &Redis{
		client: redis.NewClient(opt),
		logger: logger,
	}, nil
}

func keyRecord(userID, id string) string {
	return fmt.Sprintf("user:%s:record:%s", userID, id)
}

func keyIndex(userID string, metric extract.MetricType) string {
	return fmt.Sprintf("user:%s:metrics:%s", userID, metric)
}

// Create persists a new record.
func (r *Redis) Create(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	fillDefaults(rec)

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, keyRecord(rec.UserID, rec.ID), data, 0)
	pipe.ZAdd(ctx, keyIndex(rec.UserID, rec.Type), redis.Z{
		Score:  float64(rec.RecordedAt.UnixMilli()),
		Member: rec.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	return nil
}

// Get returns the record with the given ID.
func (r *Redis) Get(ctx context.Context, userID, id string) (*Record, error) {
	data, err := r.client.Get(ctx, keyRecord(userID, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}

	rec := &Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return rec, nil
}

// List returns records newest first. An empty metric spans every
// per-metric index and merges the results by timestamp.
func (r *Redis) List(ctx context.Context, userID string, metric extract.MetricType, limit int) ([]Record, error) {
	metrics := []extract.MetricType{metric}
	if metric == "" {
		metrics = extract.All()
	}

	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	var out []Record
	for _, m := range metrics {
		ids, err := r.client.ZRevRange(ctx, keyIndex(userID, m), 0, stop).Result()
		if err != nil {
			return nil, fmt.Errorf("list record ids: %w", err)
		}
		for _, id := range ids {
			rec, err := r.Get(ctx, userID, id)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					// Index entry outlived its record; skip.
					continue
				}
				return nil, err
			}
			out = append(out, *rec)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Update replaces the value and note of an existing record.
func (r *Redis) Update(ctx context.Context, rec *Record) error {
	existing, err := r.Get(ctx, rec.UserID, rec.ID)
	if err != nil {
		return err
	}
	existing.Value = rec.Value
	existing.Note = rec.Note

	data, err := json.Marshal(existing)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return r.client.Set(ctx, keyRecord(rec.UserID, rec.ID), data, 0).Err()
}

// Delete removes a record and its index entry.
func (r *Redis) Delete(ctx context.Context, userID, id string) error {
	rec, err := r.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, keyRecord(userID, id))
	pipe.ZRem(ctx, keyIndex(userID, rec.Type), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

var _ Store = (*Redis)(nil)

// internal/adapters/redis_adapter/snapshot.go
package redis_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/rsandford/stockpile/internal/core/domain"
	"github.com/rsandford/stockpile/internal/core/ports"
)

const keyPrefix = "stockpile:snapshot:"

// SnapshotCache mirrors the last known record collection into Redis so
// the service can still come up with data when every backend is down.
// One slot holds one collection; the snapshot has no TTL because stale
// data beats no data here.
type SnapshotCache struct {
	client *redis.Client
	slot   string
	logger *slog.Logger
}

var _ ports.SnapshotCache = (*SnapshotCache)(nil)

// NewSnapshotCache creates a snapshot cache for the given slot.
func NewSnapshotCache(client *redis.Client, slot string, logger *slog.Logger) *SnapshotCache {
	if slot == "" {
		slot = "default"
	}
	return &SnapshotCache{
		client: client,
		slot:   slot,
		logger: logger.With(slog.String("component", "snapshot_cache")),
	}
}

func (c *SnapshotCache) key() string {
	return keyPrefix + c.slot
}

// SaveSnapshot implements ports.SnapshotCache.
func (c *SnapshotCache) SaveSnapshot(ctx context.Context, records []domain.PlainRecord) error {
	if records == nil {
		records = []domain.PlainRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := c.client.Set(ctx, c.key(), data, 0).Err(); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	c.logger.Debug("snapshot saved",
		slog.String("slot", c.slot),
		slog.Int("records", len(records)))
	return nil
}

// LoadSnapshot implements ports.SnapshotCache.
func (c *SnapshotCache) LoadSnapshot(ctx context.Context) ([]domain.PlainRecord, bool, error) {
	data, err := c.client.Get(ctx, c.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading snapshot: %w", err)
	}

	var records []domain.PlainRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false, fmt.Errorf("decoding snapshot: %w", err)
	}
	return records, true, nil
}

// Ping implements ports.SnapshotCache.
func (c *SnapshotCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

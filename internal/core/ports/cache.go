// internal/core/ports/cache.go
package ports

import (
	"context"

	"github.com/rsandford/stockpile/internal/core/domain"
)

//go:generate mockgen -destination=../../../test/mocks/mock_cache.go -package=mocks github.com/rsandford/stockpile/internal/core/ports SnapshotCache

// SnapshotCache keeps the last successfully loaded or written collection
// so the service can come up when every backend is unreachable.
type SnapshotCache interface {
	// SaveSnapshot overwrites the cached collection.
	SaveSnapshot(ctx context.Context, records []domain.PlainRecord) error

	// LoadSnapshot returns the cached collection. The bool reports
	// whether a snapshot was present.
	LoadSnapshot(ctx context.Context) ([]domain.PlainRecord, bool, error)

	// Ping verifies the cache is reachable.
	Ping(ctx context.Context) error
}

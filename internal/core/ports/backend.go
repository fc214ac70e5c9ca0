// internal/core/ports/backend.go
package ports

import (
	"context"

	"github.com/rsandford/stockpile/internal/core/domain"
)

//go:generate mockgen -destination=../../../test/mocks/mock_backend.go -package=mocks github.com/rsandford/stockpile/internal/core/ports Backend,WritableBackend

// Snapshot is the full record collection as a backend holds it,
// together with the version token the backend handed out for it.
// Token is empty for backends that do not version their document.
type Snapshot struct {
	Records []domain.PlainRecord
	Token   string
}

// Backend reads the record collection from one storage location.
//
// A missing document is not an error: Load returns an empty snapshot
// and a nil error so the caller can start from an empty collection.
type Backend interface {
	// Name identifies the backend in logs and status reports.
	Name() string

	// Load fetches and decodes the full collection.
	Load(ctx context.Context) (*Snapshot, error)
}

// WritableBackend is a Backend that also accepts full-collection writes.
type WritableBackend interface {
	Backend

	// Versioned reports whether Store requires a current version token.
	Versioned() bool

	// Store replaces the whole document with records. For versioned
	// backends token must be the token of the revision being replaced;
	// a stale token fails with domain.ErrConflict. The returned token
	// identifies the newly written revision (empty when unversioned).
	Store(ctx context.Context, records []domain.PlainRecord, token string) (string, error)
}

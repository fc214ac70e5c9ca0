// internal/adapters/backend/pgdoc.go
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rsandford/stockpile/internal/core/domain"
	"github.com/rsandford/stockpile/internal/core/ports"
)

//go:generate mockgen -destination=../../../test/mocks/mock_pgdoc.go -package=mocks -source=pgdoc.go PgxPool

// PgxPool is the slice of pgxpool.Pool the backend uses.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgDocConfig configures the Postgres document backend. Slot names the
// row holding this collection, so one table serves many collections.
type PgDocConfig struct {
	Slot string
}

// PgDoc keeps the collection as one jsonb document in a revision-guarded
// table row. The revision counter is the version token: updates assert
// the revision they replace, and a guarded update that matches no row
// means someone else got there first.
type PgDoc struct {
	cfg    PgDocConfig
	pool   PgxPool
	logger *slog.Logger
}

var _ ports.WritableBackend = (*PgDoc)(nil)

// NewPgDoc creates a Postgres document backend.
func NewPgDoc(cfg PgDocConfig, pool PgxPool, logger *slog.Logger) *PgDoc {
	if cfg.Slot == "" {
		cfg.Slot = "default"
	}
	return &PgDoc{
		cfg:    cfg,
		pool:   pool,
		logger: logger.With(slog.String("backend", "pgdoc")),
	}
}

// EnsureSchema creates the document table when it does not exist yet.
func (p *PgDoc) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS collection_documents (
			slot     TEXT PRIMARY KEY,
			payload  JSONB NOT NULL,
			revision BIGINT NOT NULL
		)`)
	if err != nil {
		return wrapTransportErr("pgdoc schema", err)
	}
	return nil
}

// Name implements ports.Backend.
func (p *PgDoc) Name() string { return "pgdoc" }

// Versioned implements ports.WritableBackend.
func (p *PgDoc) Versioned() bool { return true }

// Load implements ports.Backend.
func (p *PgDoc) Load(ctx context.Context) (*ports.Snapshot, error) {
	var payload []byte
	var revision int64

	err := p.pool.QueryRow(ctx,
		`SELECT payload, revision FROM collection_documents WHERE slot = $1`,
		p.cfg.Slot,
	).Scan(&payload, &revision)
	if errors.Is(err, pgx.ErrNoRows) {
		p.logger.Debug("document row absent, starting empty")
		return &ports.Snapshot{}, nil
	}
	if err != nil {
		return nil, wrapTransportErr("pgdoc load", err)
	}

	records, err := decodeRecords(payload)
	if err != nil {
		return nil, err
	}
	return &ports.Snapshot{
		Records: records,
		Token:   strconv.FormatInt(revision, 10),
	}, nil
}

// Store implements ports.WritableBackend.
func (p *PgDoc) Store(ctx context.Context, records []domain.PlainRecord, token string) (string, error) {
	payload, err := encodeRecords(records)
	if err != nil {
		return "", err
	}

	if token == "" {
		// First write for this slot. Insert must not replace a row a
		// concurrent writer created in the meantime.
		tag, err := p.pool.Exec(ctx,
			`INSERT INTO collection_documents (slot, payload, revision)
			 VALUES ($1, $2, 1)
			 ON CONFLICT (slot) DO NOTHING`,
			p.cfg.Slot, payload)
		if err != nil {
			return "", wrapTransportErr("pgdoc store", err)
		}
		if tag.RowsAffected() == 0 {
			return "", fmt.Errorf("pgdoc store: row already exists: %w", domain.ErrConflict)
		}
		return "1", nil
	}

	revision, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return "", fmt.Errorf("pgdoc store: bad revision token %q: %w", token, domain.ErrConflict)
	}

	tag, err := p.pool.Exec(ctx,
		`UPDATE collection_documents
		 SET payload = $2, revision = revision + 1
		 WHERE slot = $1 AND revision = $3`,
		p.cfg.Slot, payload, revision)
	if err != nil {
		return "", wrapTransportErr("pgdoc store", err)
	}
	if tag.RowsAffected() == 0 {
		return "", fmt.Errorf("pgdoc store: revision %d superseded: %w", revision, domain.ErrConflict)
	}

	newToken := strconv.FormatInt(revision+1, 10)
	p.logger.Debug("document replaced",
		slog.Int("records", len(records)),
		slog.String("revision", newToken))
	return newToken, nil
}

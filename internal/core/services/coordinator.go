// internal/core/services/coordinator.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rsandford/stockpile/internal/core/domain"
	"github.com/rsandford/stockpile/internal/core/ports"
)

// State describes where the coordinator is in its lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateWriting
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateWriting:
		return "writing"
	default:
		return "unknown"
	}
}

// Status is a point-in-time report of the coordinator for health and
// status endpoints.
type Status struct {
	State     State     `json:"-"`
	StateName string    `json:"state"`
	Backend   string    `json:"backend"`
	Records   int       `json:"records"`
	HasToken  bool      `json:"has_token"`
	LastSync  time.Time `json:"last_sync,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Coordinator owns the in-memory record collection and keeps it in
// step with the configured backend. All access goes through its lock,
// so there is exactly one writer to the canonical collection.
//
// Loading falls back along remote, then each fallback source, then the
// cache, and finally an empty collection; a failed persist never rolls
// back the in-memory state, it only surfaces the error.
type Coordinator struct {
	mu sync.Mutex

	remote    ports.WritableBackend // nil when running read-only
	fallbacks []ports.Backend
	cache     ports.SnapshotCache // nil when cache is disabled
	timeout   time.Duration
	logger    *slog.Logger

	state    State
	items    []domain.Item
	token    string
	lastSync time.Time
	lastErr  error
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithRemote sets the writable backend mutations persist to.
func WithRemote(remote ports.WritableBackend) CoordinatorOption {
	return func(c *Coordinator) { c.remote = remote }
}

// WithFallbacks sets read-only sources tried when the remote fails.
func WithFallbacks(backends ...ports.Backend) CoordinatorOption {
	return func(c *Coordinator) { c.fallbacks = backends }
}

// WithCache sets the snapshot cache of last resort.
func WithCache(cache ports.SnapshotCache) CoordinatorOption {
	return func(c *Coordinator) { c.cache = cache }
}

// WithCallTimeout bounds each individual backend call.
func WithCallTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) { c.timeout = d }
}

// NewCoordinator creates an uninitialized coordinator.
func NewCoordinator(logger *slog.Logger, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		timeout: 10 * time.Second,
		logger:  logger.With(slog.String("component", "coordinator")),
		state:   StateUninitialized,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// Initialize loads the collection, trying the remote backend, then the
// fallback sources, then the cache. It only returns an error when the
// coordinator is already initialized; an unreachable world still comes
// up Ready with an empty collection, because the user can keep working
// and persist later.
func (c *Coordinator) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateUninitialized {
		return fmt.Errorf("already initialized (state %s)", c.state)
	}
	c.state = StateLoading

	records, token, source := c.loadLocked(ctx)
	c.items = domain.NormalizeAll(records)
	c.token = token
	c.state = StateReady
	c.lastSync = time.Now()

	// Mirror whatever we start with, so the next cold start has it.
	c.mirrorLocked(ctx)

	c.logger.Info("collection loaded",
		slog.String("source", source),
		slog.Int("records", len(c.items)),
		slog.Bool("has_token", token != ""))
	return nil
}

// loadLocked walks the fallback chain and returns the first collection
// it finds, with its token and the name of the winning source.
func (c *Coordinator) loadLocked(ctx context.Context) ([]domain.PlainRecord, string, string) {
	sources := make([]ports.Backend, 0, len(c.fallbacks)+1)
	if c.remote != nil {
		sources = append(sources, c.remote)
	}
	sources = append(sources, c.fallbacks...)

	for _, src := range sources {
		callCtx, cancel := c.callCtx(ctx)
		snap, err := src.Load(callCtx)
		cancel()
		if err != nil {
			c.lastErr = err
			c.logger.Warn("source failed, falling back",
				slog.String("source", src.Name()),
				slog.String("error", err.Error()))
			continue
		}

		token := ""
		if c.remote != nil && src == ports.Backend(c.remote) {
			// A token only means something against the backend that
			// issued it.
			token = snap.Token
		}
		return snap.Records, token, src.Name()
	}

	if c.cache != nil {
		callCtx, cancel := c.callCtx(ctx)
		records, found, err := c.cache.LoadSnapshot(callCtx)
		cancel()
		if err != nil {
			c.lastErr = err
			c.logger.Warn("snapshot cache failed", slog.String("error", err.Error()))
		} else if found {
			return records, "", "cache"
		}
	}

	return nil, "", "empty"
}

// mirrorLocked writes the current collection to the snapshot cache.
// Cache failures are logged and swallowed; the cache is best effort.
func (c *Coordinator) mirrorLocked(ctx context.Context) {
	if c.cache == nil {
		return
	}
	callCtx, cancel := c.callCtx(ctx)
	defer cancel()
	if err := c.cache.SaveSnapshot(callCtx, domain.StripAll(c.items)); err != nil {
		c.logger.Warn("snapshot mirror failed", slog.String("error", err.Error()))
	}
}

// persistLocked writes the collection to the cache and the remote
// backend. The remote write uses the held version token; on a stale
// token the token is cleared so the next attempt re-reads it, but the
// write is NOT retried here. The caller decides whether to try again.
func (c *Coordinator) persistLocked(ctx context.Context) error {
	prev := c.state
	c.state = StateWriting
	defer func() { c.state = prev }()

	c.mirrorLocked(ctx)

	if c.remote == nil {
		return nil
	}

	if c.remote.Versioned() && c.token == "" {
		// No token in hand: fetch the current revision so the write
		// asserts against it rather than clobbering blind.
		callCtx, cancel := c.callCtx(ctx)
		snap, err := c.remote.Load(callCtx)
		cancel()
		if err != nil {
			c.lastErr = err
			return fmt.Errorf("refreshing version token: %w", err)
		}
		c.token = snap.Token
	}

	callCtx, cancel := c.callCtx(ctx)
	newToken, err := c.remote.Store(callCtx, domain.StripAll(c.items), c.token)
	cancel()
	if err != nil {
		c.lastErr = err
		if domain.IsConflict(err) {
			// Someone else wrote since we loaded. Drop the stale token;
			// whoever persists next starts from a fresh one.
			c.token = ""
		}
		return fmt.Errorf("persisting to %s: %w", c.remote.Name(), err)
	}

	c.token = newToken
	c.lastSync = time.Now()
	c.lastErr = nil
	c.logger.Debug("collection persisted",
		slog.String("backend", c.remote.Name()),
		slog.Int("records", len(c.items)))
	return nil
}

// Snapshot returns a copy of the collection in canonical order.
func (c *Coordinator) Snapshot() []domain.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]domain.Item, len(c.items))
	copy(items, c.items)
	return items
}

// Append adds an item and persists.
func (c *Coordinator) Append(ctx context.Context, item domain.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
	return c.persistLocked(ctx)
}

// Replace swaps the item with the given identifier and persists.
// Returns domain.ErrNotFound when no item carries the identifier.
func (c *Coordinator) Replace(ctx context.Context, item domain.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == item.ID {
			c.items[i] = item
			return c.persistLocked(ctx)
		}
	}
	return fmt.Errorf("item %s: %w", item.ID, domain.ErrNotFound)
}

// Remove deletes the item with the given identifier and persists. The
// bool reports whether the item existed; removing a missing item is
// not an error.
func (c *Coordinator) Remove(ctx context.Context, id uuid.UUID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true, c.persistLocked(ctx)
		}
	}
	return false, nil
}

// ReplaceAll swaps the whole collection and persists.
func (c *Coordinator) ReplaceAll(ctx context.Context, items []domain.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	return c.persistLocked(ctx)
}

// Reorder replaces the canonical order of the collection. It persists,
// because order is part of the document.
func (c *Coordinator) Reorder(ctx context.Context, reorder func([]domain.Item)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	reorder(c.items)
	return c.persistLocked(ctx)
}

// Persist writes the current collection out without changing it.
func (c *Coordinator) Persist(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.persistLocked(ctx)
}

// Status reports the coordinator's current condition.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	backend := "none"
	if c.remote != nil {
		backend = c.remote.Name()
	}
	status := Status{
		State:     c.state,
		StateName: c.state.String(),
		Backend:   backend,
		Records:   len(c.items),
		HasToken:  c.token != "",
		LastSync:  c.lastSync,
	}
	if c.lastErr != nil {
		status.LastError = c.lastErr.Error()
	}
	return status
}

// internal/core/services/inventory.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rsandford/stockpile/internal/core/domain"
	"github.com/rsandford/stockpile/internal/core/query"
)

// PersistWarning reports that a mutation was applied to the in-memory
// collection but writing it out failed. The change is not rolled back;
// callers surface the warning and the user can sync again.
type PersistWarning struct {
	Err error
}

func (w *PersistWarning) Error() string {
	return fmt.Sprintf("applied but not persisted: %v", w.Err)
}

func (w *PersistWarning) Unwrap() error { return w.Err }

// InventoryService exposes the record collection operations: listing
// with filters, mutations, import/export, and manual sync.
type InventoryService struct {
	coord  *Coordinator
	logger *slog.Logger

	mu   sync.Mutex
	sort query.SortState
}

// NewInventoryService wires the service to its coordinator.
func NewInventoryService(coord *Coordinator, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		coord:  coord,
		logger: logger.With(slog.String("component", "inventory_service")),
	}
}

// List returns the items matching params, in canonical order.
func (s *InventoryService) List(params query.Params) []domain.Item {
	return query.Filter(s.coord.Snapshot(), params)
}

// Get returns a single item by identifier.
func (s *InventoryService) Get(id uuid.UUID) (domain.Item, error) {
	for _, item := range s.coord.Snapshot() {
		if item.ID == id {
			return item, nil
		}
	}
	return domain.Item{}, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
}

// Create validates and normalizes a record, appends it, and persists.
// When persisting fails the item is still returned, alongside a
// *PersistWarning.
func (s *InventoryService) Create(ctx context.Context, rec domain.PlainRecord) (domain.Item, error) {
	if err := rec.Validate(); err != nil {
		return domain.Item{}, err
	}

	item := domain.Normalize(rec)
	if err := s.coord.Append(ctx, item); err != nil {
		s.logger.Warn("create applied but persist failed",
			slog.String("id", item.ID.String()),
			slog.String("error", err.Error()))
		return item, &PersistWarning{Err: err}
	}
	return item, nil
}

// Update replaces the fields of an existing item.
func (s *InventoryService) Update(ctx context.Context, id uuid.UUID, rec domain.PlainRecord) (domain.Item, error) {
	if err := rec.Validate(); err != nil {
		return domain.Item{}, err
	}

	item := domain.Normalize(rec)
	item.ID = id
	if err := s.coord.Replace(ctx, item); err != nil {
		if domain.IsNotFound(err) {
			return domain.Item{}, err
		}
		s.logger.Warn("update applied but persist failed",
			slog.String("id", id.String()),
			slog.String("error", err.Error()))
		return item, &PersistWarning{Err: err}
	}
	return item, nil
}

// Delete removes an item. The deletion is destructive, so it goes
// through only with confirmed set; otherwise ErrConfirmationRequired.
// Deleting an item that is already gone reports (false, nil).
func (s *InventoryService) Delete(ctx context.Context, id uuid.UUID, confirmed bool) (bool, error) {
	if !confirmed {
		return false, fmt.Errorf("deleting item %s: %w", id, domain.ErrConfirmationRequired)
	}

	existed, err := s.coord.Remove(ctx, id)
	if err != nil {
		s.logger.Warn("delete applied but persist failed",
			slog.String("id", id.String()),
			slog.String("error", err.Error()))
		return existed, &PersistWarning{Err: err}
	}
	return existed, nil
}

// ImportReplace parses payload as a JSON array of records and replaces
// the entire collection with it. Replacement is destructive, so it
// requires confirmation. Every imported record gets a fresh identifier.
func (s *InventoryService) ImportReplace(ctx context.Context, payload []byte, confirmed bool) ([]domain.Item, error) {
	records, err := parseImport(payload)
	if err != nil {
		return nil, err
	}
	if !confirmed {
		return nil, fmt.Errorf("replacing %d records: %w", len(records), domain.ErrConfirmationRequired)
	}

	items := domain.NormalizeAll(records)
	if err := s.coord.ReplaceAll(ctx, items); err != nil {
		s.logger.Warn("import applied but persist failed",
			slog.Int("records", len(items)),
			slog.String("error", err.Error()))
		return items, &PersistWarning{Err: err}
	}

	s.logger.Info("collection replaced by import", slog.Int("records", len(items)))
	return items, nil
}

// parseImport decodes an import payload. Only a bare JSON array is an
// acceptable import document; json.Unmarshal alone would let `null`
// through as a nil slice and wipe the collection.
func parseImport(payload []byte) ([]domain.PlainRecord, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: top-level JSON array required", domain.ErrImportFormat)
	}
	var records []domain.PlainRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImportFormat, err)
	}
	return records, nil
}

// ExportSnapshot returns the collection as plain records, stripped of
// identifiers, in canonical order.
func (s *InventoryService) ExportSnapshot() []domain.PlainRecord {
	return domain.StripAll(s.coord.Snapshot())
}

// ToggleSort flips or switches the active sort column and reorders the
// canonical collection accordingly. The new order persists with the
// document.
func (s *InventoryService) ToggleSort(ctx context.Context, column string) (query.SortState, error) {
	s.mu.Lock()
	s.sort.Toggle(column)
	state := s.sort
	s.mu.Unlock()

	err := s.coord.Reorder(ctx, func(items []domain.Item) {
		query.Sort(items, state)
	})
	if err != nil {
		s.logger.Warn("sort applied but persist failed",
			slog.String("column", state.Column),
			slog.String("error", err.Error()))
		return state, &PersistWarning{Err: err}
	}
	return state, nil
}

// SortState reports the active sort column and direction.
func (s *InventoryService) SortState() query.SortState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort
}

// SyncNow writes the current collection out immediately.
func (s *InventoryService) SyncNow(ctx context.Context) error {
	return s.coord.Persist(ctx)
}

// Status reports the sync coordinator's condition.
func (s *InventoryService) Status() Status {
	return s.coord.Status()
}

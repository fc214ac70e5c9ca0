// internal/core/domain/item.go
package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Quantity is a numeric item count coerced from any numeric-like JSON
// input. Numbers, numeric strings and null all decode; anything else
// coerces to zero. A Quantity is never NaN or infinite.
type Quantity float64

// UnmarshalJSON never fails: malformed or non-numeric input decodes as 0.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*q = 0
		return nil
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*q = sanitize(f)
		return nil
	}

	// Quoted numeric string, e.g. "1.5".
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			*q = sanitize(f)
			return nil
		}
	}

	*q = 0
	return nil
}

// MarshalJSON always emits a bare, finite JSON number.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(sanitizeQ(q)), 'f', -1, 64)), nil
}

// Float64 returns the sanitized numeric value.
func (q Quantity) Float64() float64 {
	return float64(sanitizeQ(q))
}

func sanitize(f float64) Quantity {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return Quantity(f)
}

func sanitizeQ(q Quantity) Quantity {
	return sanitize(float64(q))
}

// PlainRecord is the identifier-free wire shape of an item. It is what
// every backend stores and what export produces; remote copies never
// carry identifiers, so they stay anonymous and portable.
type PlainRecord struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Qty      Quantity `json:"qty"`
	Unit     string   `json:"unit"`
	Location string   `json:"location"`
	Notes    string   `json:"notes"`
}

// Item is one inventory record. The ID is a local editing handle: it is
// generated on load or create, unique within a collection, stable for
// the collection's in-memory lifetime, and stripped before any write to
// a backend.
type Item struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Qty      Quantity  `json:"qty"`
	Unit     string    `json:"unit"`
	Location string    `json:"location"`
	Notes    string    `json:"notes"`
}

// Normalize converts a raw record into a canonical Item. It is
// best-effort and never fails: the quantity is already coerced by
// Quantity decoding, text fields default to empty strings, and a fresh
// identifier is assigned because identifiers never round-trip through a
// backend.
func Normalize(rec PlainRecord) Item {
	return Item{
		ID:       uuid.New(),
		Name:     rec.Name,
		Category: rec.Category,
		Qty:      sanitizeQ(rec.Qty),
		Unit:     rec.Unit,
		Location: rec.Location,
		Notes:    rec.Notes,
	}
}

// Strip removes the identifier for transmission.
func (i Item) Strip() PlainRecord {
	return PlainRecord{
		Name:     i.Name,
		Category: i.Category,
		Qty:      sanitizeQ(i.Qty),
		Unit:     i.Unit,
		Location: i.Location,
		Notes:    i.Notes,
	}
}

// Validate performs domain validation on the record fields that gate a
// mutation. Only the name is required; everything else is free text.
func (r PlainRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required: %w", ErrValidation)
	}
	return nil
}

// StripAll strips a whole collection, preserving order.
func StripAll(items []Item) []PlainRecord {
	records := make([]PlainRecord, 0, len(items))
	for _, item := range items {
		records = append(records, item.Strip())
	}
	return records
}

// NormalizeAll normalizes a whole record list, preserving order.
func NormalizeAll(records []PlainRecord) []Item {
	items := make([]Item, 0, len(records))
	for _, rec := range records {
		items = append(items, Normalize(rec))
	}
	return items
}

// internal/core/query/query.go
package query

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/rsandford/stockpile/internal/core/domain"
)

// Params narrows a listing. Category matches exactly; Search matches a
// case-insensitive substring of the item's name and notes joined
// together. Zero values mean no constraint.
type Params struct {
	Category string
	Search   string
}

// Filter returns the items matching params, preserving input order.
// The input slice is never modified.
func Filter(items []domain.Item, params Params) []domain.Item {
	search := strings.ToLower(strings.TrimSpace(params.Search))

	result := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if params.Category != "" && item.Category != params.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(item.Name+item.Notes), search) {
			continue
		}
		result = append(result, item)
	}
	return result
}

// SortState tracks which column a collection is ordered by.
type SortState struct {
	Column    string `json:"column"`
	Ascending bool   `json:"ascending"`
}

// Toggle flips direction when column is already active, otherwise
// switches to column ascending.
func (s *SortState) Toggle(column string) {
	if s.Column == column {
		s.Ascending = !s.Ascending
		return
	}
	s.Column = column
	s.Ascending = true
}

// Sort orders items in place by the given state. Quantity compares
// numerically; every other column compares as case-insensitive text
// with language-neutral collation. The sort is stable so equal keys
// keep their relative order.
func Sort(items []domain.Item, state SortState) {
	if state.Column == "" {
		return
	}

	var less func(a, b domain.Item) bool
	if state.Column == "qty" {
		less = func(a, b domain.Item) bool {
			return a.Qty.Float64() < b.Qty.Float64()
		}
	} else {
		col := collate.New(language.Und, collate.IgnoreCase)
		key := textKey(state.Column)
		less = func(a, b domain.Item) bool {
			return col.CompareString(key(a), key(b)) < 0
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if state.Ascending {
			return less(items[i], items[j])
		}
		return less(items[j], items[i])
	})
}

func textKey(column string) func(domain.Item) string {
	switch column {
	case "category":
		return func(i domain.Item) string { return i.Category }
	case "unit":
		return func(i domain.Item) string { return i.Unit }
	case "location":
		return func(i domain.Item) string { return i.Location }
	case "notes":
		return func(i domain.Item) string { return i.Notes }
	default:
		return func(i domain.Item) string { return i.Name }
	}
}

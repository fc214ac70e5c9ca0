// internal/core/query/query_test.go
package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsandford/stockpile/internal/core/domain"
	"github.com/rsandford/stockpile/internal/core/query"
)

func items(names ...string) []domain.Item {
	result := make([]domain.Item, len(names))
	for i, n := range names {
		result[i] = domain.Normalize(domain.PlainRecord{Name: n})
	}
	return result
}

func names(items []domain.Item) []string {
	result := make([]string, len(items))
	for i, item := range items {
		result[i] = item.Name
	}
	return result
}

func TestFilter(t *testing.T) {
	collection := []domain.Item{
		domain.Normalize(domain.PlainRecord{Name: "Flour", Category: "Baking", Notes: "whole wheat"}),
		domain.Normalize(domain.PlainRecord{Name: "Sugar", Category: "Baking"}),
		domain.Normalize(domain.PlainRecord{Name: "Olive Oil", Category: "Pantry", Notes: "extra virgin"}),
	}

	tests := []struct {
		name     string
		params   query.Params
		expected []string
	}{
		{name: "no_constraints", params: query.Params{}, expected: []string{"Flour", "Sugar", "Olive Oil"}},
		{name: "category", params: query.Params{Category: "Baking"}, expected: []string{"Flour", "Sugar"}},
		{name: "search_name_case_insensitive", params: query.Params{Search: "oLIVe"}, expected: []string{"Olive Oil"}},
		{name: "search_matches_notes", params: query.Params{Search: "wheat"}, expected: []string{"Flour"}},
		{name: "search_spans_name_and_notes", params: query.Params{Search: "flourwhole"}, expected: []string{"Flour"}},
		{name: "search_and_category", params: query.Params{Category: "Baking", Search: "sug"}, expected: []string{"Sugar"}},
		{name: "no_match", params: query.Params{Search: "bread"}, expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := query.Filter(collection, tt.params)
			assert.Equal(t, tt.expected, names(got))
		})
	}
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	collection := items("B", "A", "C")
	query.Filter(collection, query.Params{Search: "a"})
	assert.Equal(t, []string{"B", "A", "C"}, names(collection))
}

func TestSort_ByName(t *testing.T) {
	collection := items("banana", "Apple", "cherry")

	query.Sort(collection, query.SortState{Column: "name", Ascending: true})
	assert.Equal(t, []string{"Apple", "banana", "cherry"}, names(collection),
		"text sort ignores case")

	query.Sort(collection, query.SortState{Column: "name", Ascending: false})
	assert.Equal(t, []string{"cherry", "banana", "Apple"}, names(collection))
}

func TestSort_ByQuantityIsNumeric(t *testing.T) {
	collection := []domain.Item{
		domain.Normalize(domain.PlainRecord{Name: "A", Qty: 10}),
		domain.Normalize(domain.PlainRecord{Name: "B", Qty: 2}),
		domain.Normalize(domain.PlainRecord{Name: "C", Qty: 1.5}),
	}

	query.Sort(collection, query.SortState{Column: "qty", Ascending: true})
	assert.Equal(t, []string{"C", "B", "A"}, names(collection),
		"10 sorts after 2 numerically, not lexically")
}

func TestSort_IsStable(t *testing.T) {
	collection := []domain.Item{
		domain.Normalize(domain.PlainRecord{Name: "Flour", Category: "Baking"}),
		domain.Normalize(domain.PlainRecord{Name: "Sugar", Category: "Baking"}),
		domain.Normalize(domain.PlainRecord{Name: "Salt", Category: "Baking"}),
	}

	query.Sort(collection, query.SortState{Column: "category", Ascending: true})
	assert.Equal(t, []string{"Flour", "Sugar", "Salt"}, names(collection),
		"equal keys keep their relative order")
}

func TestSort_EmptyColumnIsNoop(t *testing.T) {
	collection := items("B", "A")
	query.Sort(collection, query.SortState{})
	assert.Equal(t, []string{"B", "A"}, names(collection))
}

func TestSortState_Toggle(t *testing.T) {
	var state query.SortState

	state.Toggle("name")
	require.Equal(t, query.SortState{Column: "name", Ascending: true}, state)

	state.Toggle("name")
	require.Equal(t, query.SortState{Column: "name", Ascending: false}, state)

	state.Toggle("qty")
	require.Equal(t, query.SortState{Column: "qty", Ascending: true}, state,
		"switching column resets direction to ascending")
}

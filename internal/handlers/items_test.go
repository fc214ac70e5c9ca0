// internal/handlers/items_test.go
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rsandford/stockpile/internal/core/domain"
	"github.com/rsandford/stockpile/internal/core/ports"
	"github.com/rsandford/stockpile/internal/core/query"
	"github.com/rsandford/stockpile/internal/core/services"
	"github.com/rsandford/stockpile/internal/handlers"
	"github.com/rsandford/stockpile/test/helpers"
	"github.com/rsandford/stockpile/test/mocks"
)

// newHandlerService builds an initialized service over an unversioned
// mock backend seeded with the given records.
func newHandlerService(t *testing.T, seed ...domain.PlainRecord) (*services.InventoryService, *mocks.MockWritableBackend) {
	t.Helper()

	ctrl := gomock.NewController(t)
	remote := mocks.NewMockWritableBackend(ctrl)
	remote.EXPECT().Name().Return("test-backend").AnyTimes()
	remote.EXPECT().Versioned().Return(false).AnyTimes()
	remote.EXPECT().Load(gomock.Any()).Return(&ports.Snapshot{Records: seed}, nil)

	coord := services.NewCoordinator(helpers.TestLogger(), services.WithRemote(remote))
	require.NoError(t, coord.Initialize(context.Background()))

	return services.NewInventoryService(coord, helpers.TestLogger()), remote
}

func expectStore(remote *mocks.MockWritableBackend) {
	remote.EXPECT().
		Store(gomock.Any(), gomock.Any(), "").
		Return("", nil)
}

func TestItemsHandler_ListItems(t *testing.T) {
	seed := []domain.PlainRecord{
		helpers.CreateTestRecord(),
		helpers.CreateTestRecord(func(r *domain.PlainRecord) {
			r.Name = "Olive Oil"
			r.Category = "Pantry"
		}),
	}

	tests := []struct {
		name          string
		queryParams   map[string]string
		expectedCount int
		expectedNames []string
	}{
		{
			name:          "lists_everything_without_filters",
			queryParams:   map[string]string{},
			expectedCount: 2,
			expectedNames: []string{"Flour", "Olive Oil"},
		},
		{
			name:          "filters_by_category",
			queryParams:   map[string]string{"category": "Pantry"},
			expectedCount: 1,
			expectedNames: []string{"Olive Oil"},
		},
		{
			name:          "searches_by_name_case_insensitively",
			queryParams:   map[string]string{"search": "flour"},
			expectedCount: 1,
			expectedNames: []string{"Flour"},
		},
		{
			name:          "no_matches_yields_empty_list",
			queryParams:   map[string]string{"search": "anchovies"},
			expectedCount: 0,
			expectedNames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newHandlerService(t, seed...)
			handler := handlers.NewItemsHandler(service, helpers.TestLogger())

			req := httptest.NewRequest("GET", "/api/v1/items", nil)
			q := req.URL.Query()
			for k, v := range tt.queryParams {
				q.Add(k, v)
			}
			req.URL.RawQuery = q.Encode()
			w := httptest.NewRecorder()

			handler.ListItems(w, req)

			resp := w.Result()
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			var response struct {
				Items []domain.Item `json:"items"`
				Count int           `json:"count"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedCount, response.Count)

			names := make([]string, 0, len(response.Items))
			for _, item := range response.Items {
				names = append(names, item.Name)
			}
			assert.Equal(t, tt.expectedNames, names)
		})
	}
}

func TestItemsHandler_GetItem(t *testing.T) {
	service, remote := newHandlerService(t)
	expectStore(remote)

	created, err := service.Create(context.Background(), helpers.CreateTestRecord())
	require.NoError(t, err)

	handler := handlers.NewItemsHandler(service, helpers.TestLogger())

	tests := []struct {
		name           string
		itemID         string
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name:           "successfully_retrieves_item",
			itemID:         created.ID.String(),
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				var response domain.Item
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, created.ID, response.ID)
				assert.Equal(t, "Flour", response.Name)
			},
		},
		{
			name:           "invalid_uuid_format",
			itemID:         "not-a-uuid",
			expectedStatus: http.StatusBadRequest,
			validateBody: func(t *testing.T, body []byte) {
				var response map[string]string
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, "Invalid item ID format", response["error"])
			},
		},
		{
			name:           "item_not_found",
			itemID:         uuid.New().String(),
			expectedStatus: http.StatusNotFound,
			validateBody: func(t *testing.T, body []byte) {
				var response map[string]string
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, "Item not found", response["error"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/items/"+tt.itemID, nil)
			req.SetPathValue("id", tt.itemID)
			w := httptest.NewRecorder()

			handler.GetItem(w, req)

			resp := w.Result()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestItemsHandler_CreateItem(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		setupMocks     func(*mocks.MockWritableBackend)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name:        "successfully_creates_item",
			requestBody: `{"name":"Sugar","category":"Baking","qty":1,"unit":"kg"}`,
			setupMocks:  expectStore,
			expectedStatus: http.StatusCreated,
			validateBody: func(t *testing.T, body []byte) {
				var response handlers.MutationResponse
				require.NoError(t, json.Unmarshal(body, &response))
				require.NotNil(t, response.Item)
				assert.Equal(t, "Sugar", response.Item.Name)
				assert.NotEqual(t, uuid.Nil, response.Item.ID)
				assert.True(t, response.Persisted)
				assert.Empty(t, response.Warning)
			},
		},
		{
			name:        "coerces_string_quantity",
			requestBody: `{"name":"Rice","qty":"2.5"}`,
			setupMocks:  expectStore,
			expectedStatus: http.StatusCreated,
			validateBody: func(t *testing.T, body []byte) {
				var response handlers.MutationResponse
				require.NoError(t, json.Unmarshal(body, &response))
				require.NotNil(t, response.Item)
				assert.InDelta(t, 2.5, response.Item.Qty.Float64(), 0.0001)
			},
		},
		{
			name:           "invalid_json_body",
			requestBody:    "not json",
			setupMocks:     func(m *mocks.MockWritableBackend) {},
			expectedStatus: http.StatusBadRequest,
			validateBody: func(t *testing.T, body []byte) {
				var response map[string]string
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, "Invalid request body", response["error"])
			},
		},
		{
			name:           "blank_name_is_rejected",
			requestBody:    `{"name":"   ","qty":1}`,
			setupMocks:     func(m *mocks.MockWritableBackend) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "write_failure_still_creates_with_warning",
			requestBody: `{"name":"Salt","qty":1}`,
			setupMocks: func(m *mocks.MockWritableBackend) {
				m.EXPECT().
					Store(gomock.Any(), gomock.Any(), "").
					Return("", domain.ErrNetworkFailure)
			},
			expectedStatus: http.StatusCreated,
			validateBody: func(t *testing.T, body []byte) {
				var response handlers.MutationResponse
				require.NoError(t, json.Unmarshal(body, &response))
				require.NotNil(t, response.Item)
				assert.Equal(t, "Salt", response.Item.Name)
				assert.False(t, response.Persisted)
				assert.NotEmpty(t, response.Warning)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, remote := newHandlerService(t)
			handler := handlers.NewItemsHandler(service, helpers.TestLogger())
			tt.setupMocks(remote)

			req := httptest.NewRequest("POST", "/api/v1/items", strings.NewReader(tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.CreateItem(w, req)

			resp := w.Result()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestItemsHandler_UpdateItem(t *testing.T) {
	tests := []struct {
		name           string
		itemID         func(created domain.Item) string
		requestBody    string
		setupMocks     func(*mocks.MockWritableBackend)
		expectedStatus int
		validateBody   func(*testing.T, domain.Item, []byte)
	}{
		{
			name:           "successfully_updates_item",
			itemID:         func(created domain.Item) string { return created.ID.String() },
			requestBody:    `{"name":"Bread Flour","category":"Baking","qty":5,"unit":"kg"}`,
			setupMocks:     expectStore,
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, created domain.Item, body []byte) {
				var response handlers.MutationResponse
				require.NoError(t, json.Unmarshal(body, &response))
				require.NotNil(t, response.Item)
				assert.Equal(t, created.ID, response.Item.ID, "identity must survive the update")
				assert.Equal(t, "Bread Flour", response.Item.Name)
				assert.InDelta(t, 5.0, response.Item.Qty.Float64(), 0.0001)
			},
		},
		{
			name:           "invalid_uuid",
			itemID:         func(domain.Item) string { return "not-a-uuid" },
			requestBody:    `{"name":"X"}`,
			setupMocks:     func(m *mocks.MockWritableBackend) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "item_not_found",
			itemID:         func(domain.Item) string { return uuid.New().String() },
			requestBody:    `{"name":"X","qty":1}`,
			setupMocks:     func(m *mocks.MockWritableBackend) {},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, remote := newHandlerService(t)
			expectStore(remote)
			created, err := service.Create(context.Background(), helpers.CreateTestRecord())
			require.NoError(t, err)

			handler := handlers.NewItemsHandler(service, helpers.TestLogger())
			tt.setupMocks(remote)

			id := tt.itemID(created)
			req := httptest.NewRequest("PUT", "/api/v1/items/"+id, bytes.NewReader([]byte(tt.requestBody)))
			req.SetPathValue("id", id)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.UpdateItem(w, req)

			resp := w.Result()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.validateBody != nil {
				tt.validateBody(t, created, w.Body.Bytes())
			}
		})
	}
}

func TestItemsHandler_DeleteItem(t *testing.T) {
	tests := []struct {
		name           string
		confirm        string
		itemID         func(created domain.Item) string
		setupMocks     func(*mocks.MockWritableBackend)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name:           "unconfirmed_delete_is_rejected",
			confirm:        "",
			itemID:         func(created domain.Item) string { return created.ID.String() },
			setupMocks:     func(m *mocks.MockWritableBackend) {},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "confirmed_delete_removes_item",
			confirm:        "true",
			itemID:         func(created domain.Item) string { return created.ID.String() },
			setupMocks:     expectStore,
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				var response handlers.MutationResponse
				require.NoError(t, json.Unmarshal(body, &response))
				require.NotNil(t, response.Deleted)
				assert.True(t, *response.Deleted)
				assert.True(t, response.Persisted)
			},
		},
		{
			name:           "deleting_a_missing_item_is_a_noop",
			confirm:        "true",
			itemID:         func(domain.Item) string { return uuid.New().String() },
			setupMocks:     func(m *mocks.MockWritableBackend) {},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				var response handlers.MutationResponse
				require.NoError(t, json.Unmarshal(body, &response))
				require.NotNil(t, response.Deleted)
				assert.False(t, *response.Deleted)
			},
		},
		{
			name:           "invalid_uuid",
			confirm:        "true",
			itemID:         func(domain.Item) string { return "not-a-uuid" },
			setupMocks:     func(m *mocks.MockWritableBackend) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, remote := newHandlerService(t)
			expectStore(remote)
			created, err := service.Create(context.Background(), helpers.CreateTestRecord())
			require.NoError(t, err)

			handler := handlers.NewItemsHandler(service, helpers.TestLogger())
			tt.setupMocks(remote)

			id := tt.itemID(created)
			url := "/api/v1/items/" + id
			if tt.confirm != "" {
				url += "?confirm=" + tt.confirm
			}
			req := httptest.NewRequest("DELETE", url, nil)
			req.SetPathValue("id", id)
			w := httptest.NewRecorder()

			handler.DeleteItem(w, req)

			resp := w.Result()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestItemsHandler_ToggleSort(t *testing.T) {
	seed := []domain.PlainRecord{
		helpers.CreateTestRecord(func(r *domain.PlainRecord) { r.Name = "Zucchini" }),
		helpers.CreateTestRecord(func(r *domain.PlainRecord) { r.Name = "Apples" }),
	}

	t.Run("missing_column_is_rejected", func(t *testing.T) {
		service, _ := newHandlerService(t, seed...)
		handler := handlers.NewItemsHandler(service, helpers.TestLogger())

		req := httptest.NewRequest("POST", "/api/v1/items/sort", strings.NewReader(`{}`))
		w := httptest.NewRecorder()

		handler.ToggleSort(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
	})

	t.Run("toggling_reorders_and_persists", func(t *testing.T) {
		service, remote := newHandlerService(t, seed...)
		expectStore(remote)
		handler := handlers.NewItemsHandler(service, helpers.TestLogger())

		req := httptest.NewRequest("POST", "/api/v1/items/sort", strings.NewReader(`{"column":"name"}`))
		w := httptest.NewRecorder()

		handler.ToggleSort(w, req)

		resp := w.Result()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response struct {
			Sort struct {
				Column    string `json:"column"`
				Ascending bool   `json:"ascending"`
			} `json:"sort"`
			Persisted bool `json:"persisted"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "name", response.Sort.Column)
		assert.True(t, response.Sort.Ascending)
		assert.True(t, response.Persisted)

		items := service.List(query.Params{})
		require.Len(t, items, 2)
		assert.Equal(t, "Apples", items[0].Name)
		assert.Equal(t, "Zucchini", items[1].Name)
	})
}

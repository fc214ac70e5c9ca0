// internal/handlers/importexport_test.go
package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"

	"github.com/rsandford/stockpile/internal/core/domain"
	"github.com/rsandford/stockpile/internal/handlers"
	"github.com/rsandford/stockpile/test/helpers"
	"github.com/rsandford/stockpile/test/mocks"
)

func TestImportExportHandler_Import(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		confirm        string
		setupMocks     func(*mocks.MockWritableBackend)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name:           "rejects_non_array_payload",
			requestBody:    `{"items":[]}`,
			confirm:        "true",
			setupMocks:     func(m *mocks.MockWritableBackend) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "requires_confirmation",
			requestBody:    `[{"name":"Sugar","qty":1}]`,
			confirm:        "",
			setupMocks:     func(m *mocks.MockWritableBackend) {},
			expectedStatus: http.StatusConflict,
		},
		{
			name:        "replaces_the_whole_collection",
			requestBody: `[{"name":"Sugar","qty":1},{"name":"Rice","qty":"2"}]`,
			confirm:     "true",
			setupMocks:  expectStore,
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				var response struct {
					Imported  int    `json:"imported"`
					Persisted bool   `json:"persisted"`
					Warning   string `json:"warning"`
				}
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, 2, response.Imported)
				assert.True(t, response.Persisted)
				assert.Empty(t, response.Warning)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, remote := newHandlerService(t, helpers.CreateTestRecord())
			handler := handlers.NewImportExportHandler(service, helpers.TestLogger())
			tt.setupMocks(remote)

			url := "/api/v1/import"
			if tt.confirm != "" {
				url += "?confirm=" + tt.confirm
			}
			req := httptest.NewRequest("POST", url, strings.NewReader(tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Import(w, req)

			resp := w.Result()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestImportExportHandler_ExportJSON(t *testing.T) {
	service, _ := newHandlerService(t,
		helpers.CreateTestRecord(),
		helpers.CreateTestRecord(func(r *domain.PlainRecord) { r.Name = "Olive Oil" }),
	)
	handler := handlers.NewImportExportHandler(service, helpers.TestLogger())

	req := httptest.NewRequest("GET", "/api/v1/export", nil)
	w := httptest.NewRecorder()

	handler.ExportJSON(w, req)

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".json")

	// The export is the canonical backend document: a bare array with
	// no identifier noise.
	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.NotContains(t, rec, "id")
	}
	assert.Equal(t, "Flour", records[0]["name"])
	assert.Equal(t, "Olive Oil", records[1]["name"])
}

func TestImportExportHandler_ExportXLSX(t *testing.T) {
	service, _ := newHandlerService(t, helpers.CreateTestRecord())
	handler := handlers.NewImportExportHandler(service, helpers.TestLogger())

	req := httptest.NewRequest("GET", "/api/v1/export/xlsx", nil)
	w := httptest.NewRecorder()

	handler.ExportXLSX(w, req)

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")

	file, err := xlsx.OpenBinary(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, "Stock", sheet.Name)
	assert.Equal(t, 2, sheet.MaxRow)

	header, err := sheet.Cell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Name", header.Value)

	name, err := sheet.Cell(1, 0)
	require.NoError(t, err)
	assert.Equal(t, "Flour", name.Value)

	qty, err := sheet.Cell(1, 2)
	require.NoError(t, err)
	qtyValue, err := qty.Float()
	require.NoError(t, err)
	assert.InDelta(t, 2.0, qtyValue, 0.0001)
}

// internal/handlers/sync_test.go
package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rsandford/stockpile/internal/core/domain"
	"github.com/rsandford/stockpile/internal/core/ports"
	"github.com/rsandford/stockpile/internal/core/services"
	"github.com/rsandford/stockpile/internal/handlers"
	"github.com/rsandford/stockpile/test/helpers"
	"github.com/rsandford/stockpile/test/mocks"
)

func TestSyncHandler_SyncNow(t *testing.T) {
	t.Run("writes_out_and_reports_status", func(t *testing.T) {
		service, remote := newHandlerService(t, helpers.CreateTestRecord())
		expectStore(remote)
		handler := handlers.NewSyncHandler(service, helpers.TestLogger())

		req := httptest.NewRequest("POST", "/api/v1/sync", nil)
		w := httptest.NewRecorder()

		handler.SyncNow(w, req)

		resp := w.Result()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var status services.Status
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, "ready", status.StateName)
		assert.Equal(t, "test-backend", status.Backend)
		assert.Equal(t, 1, status.Records)
	})

	t.Run("stale_token_conflict_maps_to_409", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		remote := mocks.NewMockWritableBackend(ctrl)
		remote.EXPECT().Name().Return("test-backend").AnyTimes()
		remote.EXPECT().Versioned().Return(true).AnyTimes()
		remote.EXPECT().Load(gomock.Any()).
			Return(&ports.Snapshot{Records: []domain.PlainRecord{helpers.CreateTestRecord()}, Token: "v1"}, nil)

		coord := services.NewCoordinator(helpers.TestLogger(), services.WithRemote(remote))
		require.NoError(t, coord.Initialize(context.Background()))
		service := services.NewInventoryService(coord, helpers.TestLogger())

		remote.EXPECT().
			Store(gomock.Any(), gomock.Any(), "v1").
			Return("", domain.ErrConflict)

		handler := handlers.NewSyncHandler(service, helpers.TestLogger())
		req := httptest.NewRequest("POST", "/api/v1/sync", nil)
		w := httptest.NewRecorder()

		handler.SyncNow(w, req)

		assert.Equal(t, http.StatusConflict, w.Result().StatusCode)
	})
}

func TestSyncHandler_Status(t *testing.T) {
	service, _ := newHandlerService(t, helpers.CreateTestRecord(), helpers.CreateTestRecord())
	handler := handlers.NewSyncHandler(service, helpers.TestLogger())

	req := httptest.NewRequest("GET", "/api/v1/sync/status", nil)
	w := httptest.NewRecorder()

	handler.Status(w, req)

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status services.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "ready", status.StateName)
	assert.Equal(t, 2, status.Records)
	assert.False(t, status.HasToken)
}

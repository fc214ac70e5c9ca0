// internal/adapters/backend/codec_test.go
package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsandford/stockpile/internal/core/domain"
)

func TestDecodeRecords(t *testing.T) {
	tests := []struct {
		name          string
		payload       string
		expectedLen   int
		expectedError error
	}{
		{
			name:        "bare_array",
			payload:     `[{"name":"Flour","qty":2},{"name":"Sugar","qty":1.5}]`,
			expectedLen: 2,
		},
		{
			name:        "items_wrapper",
			payload:     `{"items":[{"name":"Flour"}]}`,
			expectedLen: 1,
		},
		{
			name:        "record_wrapper",
			payload:     `{"record":[{"name":"Flour"}]}`,
			expectedLen: 1,
		},
		{
			name:        "empty_array",
			payload:     `[]`,
			expectedLen: 0,
		},
		{
			name:          "wrapper_without_array",
			payload:       `{"data":"nope"}`,
			expectedError: domain.ErrMalformedPayload,
		},
		{
			name:          "not_json",
			payload:       `<html>`,
			expectedError: domain.ErrMalformedPayload,
		},
		{
			name:          "wrapper_with_non_array_items",
			payload:       `{"items":"oops"}`,
			expectedError: domain.ErrMalformedPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := decodeRecords([]byte(tt.payload))
			if tt.expectedError != nil {
				require.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Len(t, records, tt.expectedLen)
		})
	}
}

func TestEncodeRecords_NilBecomesEmptyArray(t *testing.T) {
	data, err := encodeRecords(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestWrapTransportErr(t *testing.T) {
	deadline := wrapTransportErr("load", context.DeadlineExceeded)
	assert.ErrorIs(t, deadline, domain.ErrTimeout)
	assert.NotErrorIs(t, deadline, domain.ErrNetworkFailure)

	network := wrapTransportErr("load", errors.New("connection refused"))
	assert.ErrorIs(t, network, domain.ErrNetworkFailure)
	assert.NotErrorIs(t, network, domain.ErrTimeout)
}

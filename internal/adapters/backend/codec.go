// internal/adapters/backend/codec.go
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/rsandford/stockpile/internal/core/domain"
)

// decodeRecords parses a backend document into plain records. The
// document is either a bare JSON array or an object wrapping the array
// under "items" or "record" (older documents used either key).
func decodeRecords(data []byte) ([]domain.PlainRecord, error) {
	var records []domain.PlainRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var wrapper struct {
		Items  json.RawMessage `json:"items"`
		Record json.RawMessage `json:"record"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	inner := wrapper.Items
	if inner == nil {
		inner = wrapper.Record
	}
	if inner == nil {
		return nil, fmt.Errorf("%w: no record array found", domain.ErrMalformedPayload)
	}
	if err := json.Unmarshal(inner, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	return records, nil
}

// encodeRecords renders the canonical document form, a bare JSON array.
func encodeRecords(records []domain.PlainRecord) ([]byte, error) {
	if records == nil {
		records = []domain.PlainRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encoding records: %w", err)
	}
	return data, nil
}

// httpStatusErr maps a non-success HTTP status to an error kind.
func httpStatusErr(op string, status int) error {
	switch status {
	case http.StatusConflict, http.StatusPreconditionFailed:
		return fmt.Errorf("%s: status %d: %w", op, status, domain.ErrConflict)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return fmt.Errorf("%s: status %d: %w", op, status, domain.ErrTimeout)
	default:
		return fmt.Errorf("%s: status %d: %w", op, status, domain.ErrBackendRejected)
	}
}

// wrapTransportErr classifies a transport-level failure. Deadline
// expiry surfaces as a timeout, everything else as a network failure.
func wrapTransportErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrNetworkFailure, err)
}

// internal/adapters/backend/raw.go
package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/rsandford/stockpile/internal/core/ports"
)

// Raw reads the collection from a plain HTTP URL serving the JSON
// document directly (a gist raw URL, a static file host). It cannot
// write, so it only ever serves as a fallback source.
type Raw struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

var _ ports.Backend = (*Raw)(nil)

// NewRaw creates a read-only backend for the given document URL.
func NewRaw(url string, client *http.Client, logger *slog.Logger) *Raw {
	if client == nil {
		client = http.DefaultClient
	}
	return &Raw{
		url:    url,
		client: client,
		logger: logger.With(slog.String("backend", "raw")),
	}
}

// Name implements ports.Backend.
func (r *Raw) Name() string { return "raw" }

// Load implements ports.Backend.
func (r *Raw) Load(ctx context.Context) (*ports.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, wrapTransportErr("raw load", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		r.logger.Debug("document absent, starting empty")
		return &ports.Snapshot{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpStatusErr("raw load", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapTransportErr("raw load", err)
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}
	return &ports.Snapshot{Records: records}, nil
}

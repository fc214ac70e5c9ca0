// internal/adapters/backend/keyvalue.go
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/rsandford/stockpile/internal/core/domain"
	"github.com/rsandford/stockpile/internal/core/ports"
)

// KeyValueConfig configures a hosted key/value document store. The
// endpoint addresses one bin holding the whole collection; the access
// key authorizes both reads and writes.
type KeyValueConfig struct {
	Endpoint  string
	AccessKey string
}

// KeyValue stores the collection as a single document in a hosted
// key/value bin. Writes replace the whole document and carry no
// version token, so concurrent writers race last-write-wins.
type KeyValue struct {
	cfg    KeyValueConfig
	client *http.Client
	logger *slog.Logger
}

var _ ports.WritableBackend = (*KeyValue)(nil)

// NewKeyValue creates a key/value bin backend.
func NewKeyValue(cfg KeyValueConfig, client *http.Client, logger *slog.Logger) *KeyValue {
	if client == nil {
		client = http.DefaultClient
	}
	return &KeyValue{
		cfg:    cfg,
		client: client,
		logger: logger.With(slog.String("backend", "keyvalue")),
	}
}

// Name implements ports.Backend.
func (k *KeyValue) Name() string { return "keyvalue" }

// Versioned implements ports.WritableBackend.
func (k *KeyValue) Versioned() bool { return false }

// Load implements ports.Backend.
func (k *KeyValue) Load(ctx context.Context) (*ports.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.cfg.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	k.setHeaders(req)

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, wrapTransportErr("keyvalue load", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		k.logger.Debug("bin absent, starting empty")
		return &ports.Snapshot{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpStatusErr("keyvalue load", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapTransportErr("keyvalue load", err)
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}
	return &ports.Snapshot{Records: records}, nil
}

// Store implements ports.WritableBackend.
func (k *KeyValue) Store(ctx context.Context, records []domain.PlainRecord, _ string) (string, error) {
	body, err := encodeRecords(records)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, k.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	k.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := k.client.Do(req)
	if err != nil {
		return "", wrapTransportErr("keyvalue store", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", httpStatusErr("keyvalue store", resp.StatusCode)
	}

	k.logger.Debug("bin replaced", slog.Int("records", len(records)))
	return "", nil
}

func (k *KeyValue) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if k.cfg.AccessKey != "" {
		req.Header.Set("X-Access-Key", k.cfg.AccessKey)
	}
}

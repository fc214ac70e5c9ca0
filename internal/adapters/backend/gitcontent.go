// internal/adapters/backend/gitcontent.go
package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/rsandford/stockpile/internal/core/domain"
	"github.com/rsandford/stockpile/internal/core/ports"
)

// GitContentConfig configures a git-hosted document reached through a
// contents API. URL addresses the file itself, e.g.
// https://api.github.com/repos/owner/repo/contents/stock.json.
type GitContentConfig struct {
	URL           string
	Branch        string
	Token         string
	CommitMessage string
}

// GitContent keeps the collection as one JSON file in a git repository,
// driven through the hosting provider's contents API. The file's blob
// SHA serves as the version token: writes carry the SHA of the revision
// they replace, and the provider rejects stale ones.
type GitContent struct {
	cfg    GitContentConfig
	client *http.Client
	logger *slog.Logger
}

var _ ports.WritableBackend = (*GitContent)(nil)

// NewGitContent creates a git contents-API backend.
func NewGitContent(cfg GitContentConfig, client *http.Client, logger *slog.Logger) *GitContent {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.CommitMessage == "" {
		cfg.CommitMessage = "update stock records"
	}
	return &GitContent{
		cfg:    cfg,
		client: client,
		logger: logger.With(slog.String("backend", "gitcontent")),
	}
}

// Name implements ports.Backend.
func (g *GitContent) Name() string { return "gitcontent" }

// Versioned implements ports.WritableBackend.
func (g *GitContent) Versioned() bool { return true }

type gitContentFile struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

// loadURL adds the ref parameter to the configured URL, preserving any
// query string the URL already carries.
func (g *GitContent) loadURL() (string, error) {
	if g.cfg.Branch == "" {
		return g.cfg.URL, nil
	}
	u, err := url.Parse(g.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint: %w", err)
	}
	q := u.Query()
	q.Set("ref", g.cfg.Branch)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Load implements ports.Backend.
func (g *GitContent) Load(ctx context.Context) (*ports.Snapshot, error) {
	endpoint, err := g.loadURL()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	g.setHeaders(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, wrapTransportErr("gitcontent load", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		g.logger.Debug("file absent, starting empty")
		return &ports.Snapshot{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpStatusErr("gitcontent load", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapTransportErr("gitcontent load", err)
	}

	var file gitContentFile
	if err := json.Unmarshal(body, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	// The API base64-encodes file content, with line breaks.
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding file content: %v", domain.ErrMalformedPayload, err)
	}

	records, err := decodeRecords(raw)
	if err != nil {
		return nil, err
	}
	return &ports.Snapshot{Records: records, Token: file.SHA}, nil
}

// Store implements ports.WritableBackend.
func (g *GitContent) Store(ctx context.Context, records []domain.PlainRecord, token string) (string, error) {
	content, err := encodeRecords(records)
	if err != nil {
		return "", err
	}

	payload := map[string]string{
		"message": g.cfg.CommitMessage,
		"content": base64.StdEncoding.EncodeToString(content),
	}
	if g.cfg.Branch != "" {
		payload["branch"] = g.cfg.Branch
	}
	if token != "" {
		payload["sha"] = token
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding commit payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, g.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	g.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", wrapTransportErr("gitcontent store", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", wrapTransportErr("gitcontent store", err)
	}

	// 422 with a sha mismatch message is how some providers report a
	// stale token on update; 409 and 412 are the documented codes.
	if resp.StatusCode == http.StatusUnprocessableEntity && bytes.Contains(respBody, []byte("sha")) {
		return "", fmt.Errorf("gitcontent store: %w", domain.ErrConflict)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", httpStatusErr("gitcontent store", resp.StatusCode)
	}

	var result struct {
		Content gitContentFile `json:"content"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("%w: commit response: %v", domain.ErrMalformedPayload, err)
	}

	g.logger.Debug("file committed",
		slog.Int("records", len(records)),
		slog.String("sha", result.Content.SHA))
	return result.Content.SHA, nil
}

func (g *GitContent) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	if g.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.Token)
	}
}

// ABOUTME: HTTP client for the backend's site data endpoint
// ABOUTME: Fetches and pushes the full document, attaching the admin token on writes

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/2389/schoolsite/internal/content"
)

// Wire constants shared with the backend.
const (
	DefaultDataPath   = "/api/site-data"
	DefaultUploadPath = "/api/upload"
	AdminTokenHeader  = "x-admin-token"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 32 << 20

// Client talks to the data endpoint.
type Client struct {
	baseURL    string
	dataPath   string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL    string
	DataPath   string // defaults to DefaultDataPath
	Token      string // sent as x-admin-token on mutating calls when set
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient creates a data endpoint client.
func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	dataPath := cfg.DataPath
	if dataPath == "" {
		dataPath = DefaultDataPath
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		dataPath:   dataPath,
		token:      cfg.Token,
		httpClient: httpClient,
		logger:     logger.With("component", "remote"),
	}
}

// Fetch downloads the remote document. An empty body, null or {} is
// reported as ErrNoRemoteCopy.
func (c *Client) Fetch(ctx context.Context) (*content.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.dataPath, nil)
	if err != nil {
		return nil, newRemoteError("fetch", 0, err)
	}
	req.Header.Set("Accept", "application/json")

	return c.doDocument("fetch", req)
}

// Push uploads doc and returns the server's canonical copy.
func (c *Client) Push(ctx context.Context, doc content.Document) (*content.Document, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.dataPath, bytes.NewReader(body))
	if err != nil {
		return nil, newRemoteError("push", 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	return c.doDocument("push", req)
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set(AdminTokenHeader, c.token)
	}
}

func (c *Client) doDocument(op string, req *http.Request) (*content.Document, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newRemoteError(op, 0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, newRemoteError(op, resp.StatusCode, fmt.Errorf("reading body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newRemoteError(op, resp.StatusCode, fmt.Errorf("unexpected status: %s", errorMessage(raw, resp.Status)))
	}
	if content.IsEmptyPayload(raw) {
		return nil, newRemoteError(op, resp.StatusCode, ErrNoRemoteCopy)
	}

	// The server's copy goes through the same migration as local data so a
	// partial response cannot strip fields.
	doc, err := content.Migrate(raw)
	if err != nil {
		return nil, newRemoteError(op, resp.StatusCode, err)
	}

	c.logger.Debug("remote document received", "op", op, "bytes", len(raw))
	return &doc, nil
}

// errorMessage pulls the "error" field out of a JSON error body, falling back
// to the HTTP status text.
func errorMessage(body []byte, fallback string) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return fallback
}

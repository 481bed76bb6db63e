// ABOUTME: Asset upload client turning a selected image into a usable URL
// ABOUTME: Tries the backend upload endpoint first, falls back to an inline data URL

package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"

	"github.com/2389/schoolsite/internal/content"
	"github.com/2389/schoolsite/internal/remote"
)

// FormField is the multipart field carrying the file.
const FormField = "file"

// Response is the backend's upload reply.
type Response struct {
	URL string `json:"url"`
}

// Client uploads images.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Config configures a Client. An empty Endpoint skips the remote attempt.
type Config struct {
	Endpoint   string // full URL of the upload endpoint
	Token      string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient creates an upload client.
func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		token:      cfg.Token,
		httpClient: httpClient,
		logger:     logger.With("component", "upload"),
	}
}

// Upload returns a URL for the image. Invalid input fails with a
// *ValidationError before any network call. For valid input the remote
// endpoint is tried first; any remote failure falls back to a data URL, so
// this only fails on validation.
func (c *Client) Upload(ctx context.Context, data []byte, mimeType string, size int64) (string, error) {
	if err := Validate(mimeType, size); err != nil {
		return "", err
	}
	mimeType = normalizeType(mimeType)

	if c.endpoint != "" {
		url, err := c.uploadRemote(ctx, data, mimeType)
		if err == nil {
			return url, nil
		}
		if remote.IsUnauthorized(err) {
			c.logger.Warn("upload rejected admin token, using inline image", "error", err)
		} else {
			c.logger.Debug("remote upload failed, using inline image", "error", err)
		}
	}

	return content.EncodeDataURL(mimeType, data), nil
}

// UploadFile reads path and uploads it. Read errors are returned as-is since
// there is nothing to fall back to.
func (c *Client) UploadFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return c.Upload(ctx, data, DetectType(path, data), int64(len(data)))
}

func (c *Client) uploadRemote(ctx context.Context, data []byte, mimeType string) (string, error) {
	body, contentType, err := multipartBody(data, mimeType)
	if err != nil {
		return "", fmt.Errorf("building multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", &remote.RemoteError{Op: "upload", Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set(remote.AdminTokenHeader, c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &remote.RemoteError{Op: "upload", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &remote.RemoteError{Op: "upload", Status: resp.StatusCode, Err: fmt.Errorf("unexpected status: %s", resp.Status)}
	}

	var out Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", &remote.RemoteError{Op: "upload", Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if !content.ValidImageRef(out.URL) {
		return "", &remote.RemoteError{Op: "upload", Status: resp.StatusCode, Err: errors.New("response url is neither absolute nor inline")}
	}
	return out.URL, nil
}

func multipartBody(data []byte, mimeType string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FormField, "upload"+ExtensionFor(mimeType)))
	header.Set("Content-Type", mimeType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// ExtensionFor returns the file extension for an allowed image type.
func ExtensionFor(mimeType string) string {
	switch normalizeType(mimeType) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	}
	return ""
}

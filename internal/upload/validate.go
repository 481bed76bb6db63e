// ABOUTME: Upload preconditions shared by the upload client and the backend
// ABOUTME: Restricts MIME types to common image formats and caps file size at 5 MiB

package upload

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// MaxBytes is the largest accepted image.
const MaxBytes = 5 << 20

// AllowedTypes lists the accepted image MIME types.
var AllowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/svg+xml",
}

// ValidationError reports a rejected upload before any I/O happens.
type ValidationError struct {
	Field string // "type" or "size"
	Value any
	Limit any
}

func (e *ValidationError) Error() string {
	switch e.Field {
	case "size":
		return fmt.Sprintf("file too large: %v bytes (max %v)", e.Value, e.Limit)
	case "type":
		return fmt.Sprintf("unsupported file type %q", e.Value)
	default:
		return fmt.Sprintf("invalid upload %s: %v", e.Field, e.Value)
	}
}

// Validate checks the MIME type and size of an upload.
func Validate(mimeType string, size int64) error {
	if !Allowed(mimeType) {
		return &ValidationError{Field: "type", Value: mimeType, Limit: AllowedTypes}
	}
	if size < 0 || size > MaxBytes {
		return &ValidationError{Field: "size", Value: size, Limit: MaxBytes}
	}
	return nil
}

// Allowed reports whether mimeType is an accepted image type. Parameters
// such as "; charset=utf-8" are ignored.
func Allowed(mimeType string) bool {
	base := normalizeType(mimeType)
	for _, t := range AllowedTypes {
		if base == t {
			return true
		}
	}
	return false
}

// DetectType works out the MIME type of a file from its extension, falling
// back to content sniffing.
func DetectType(name string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return normalizeType(t)
	}
	return normalizeType(http.DetectContentType(data))
}

func normalizeType(mimeType string) string {
	base, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return base
}

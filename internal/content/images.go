// ABOUTME: Image reference helpers for remote URLs and inline data URLs
// ABOUTME: Encodes bytes as data URLs and filters invalid hero image entries

package content

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
)

// Data URL errors
var (
	ErrNotDataURL       = errors.New("not a data url")
	ErrDataURLEncoding  = errors.New("data url must be base64")
	ErrDataURLMIMEEmpty = errors.New("missing data url mime type")
)

// IsRemoteURL reports whether ref is an absolute http(s) address.
func IsRemoteURL(ref string) bool {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsInlineImage reports whether ref is a base64 image data URL.
func IsInlineImage(ref string) bool {
	_, _, err := ParseDataURL(ref)
	return err == nil
}

// ValidImageRef reports whether ref can be used directly as an image source.
func ValidImageRef(ref string) bool {
	return IsRemoteURL(ref) || IsInlineImage(ref)
}

// FilterImages drops empty and invalid entries, keeping order.
func FilterImages(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ValidImageRef(ref) {
			out = append(out, ref)
		}
	}
	return out
}

// EncodeDataURL produces a self-contained data URL for the given bytes.
func EncodeDataURL(mimeType string, data []byte) string {
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(mimeType) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(mimeType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// ParseDataURL decodes an image data URL into its MIME type and bytes.
func ParseDataURL(ref string) (string, []byte, error) {
	raw := strings.TrimSpace(ref)
	if !strings.HasPrefix(raw, "data:") {
		return "", nil, ErrNotDataURL
	}
	comma := strings.Index(raw, ",")
	if comma <= len("data:") {
		return "", nil, ErrNotDataURL
	}
	meta := raw[len("data:"):comma]
	if !strings.HasSuffix(strings.ToLower(meta), ";base64") {
		return "", nil, ErrDataURLEncoding
	}
	mimeType := strings.TrimSpace(meta[:len(meta)-len(";base64")])
	if mimeType == "" {
		return "", nil, ErrDataURLMIMEEmpty
	}
	if !strings.HasPrefix(strings.ToLower(mimeType), "image/") {
		return "", nil, ErrNotDataURL
	}
	data, err := base64.StdEncoding.DecodeString(raw[comma+1:])
	if err != nil {
		return "", nil, ErrDataURLEncoding
	}
	return mimeType, data, nil
}

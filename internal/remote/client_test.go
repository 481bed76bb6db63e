// ABOUTME: Tests for the site data HTTP client
// ABOUTME: Covers fetch/push success, token header, status errors, empty bodies

package remote

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/schoolsite/internal/content"
)

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, DefaultDataPath, r.URL.Path)
		assert.Empty(t, r.Header.Get(AdminTokenHeader), "reads carry no token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"schoolName": "Remote High", "services": [{"category": "Arts", "subjects": ["Art"]}]}`)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, Token: "secret"})
	doc, err := c.Fetch(t.Context())
	require.NoError(t, err)

	assert.Equal(t, "Remote High", doc.SchoolName)
	assert.Equal(t, []content.Subject{{Name: "Art", PassMark: "50%"}}, doc.Services[0].Subjects)
	assert.Equal(t, content.Default().Team, doc.Team, "absent fields are default-filled")
}

func TestFetch_EmptyBodies(t *testing.T) {
	for _, body := range []string{"", "null", "{}"} {
		t.Run(body, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			}))
			defer srv.Close()

			_, err := NewClient(ClientConfig{BaseURL: srv.URL}).Fetch(t.Context())
			assert.ErrorIs(t, err, ErrNoRemoteCopy)
			assert.ErrorIs(t, err, ErrTransient)
		})
	}
}

func TestFetch_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"disk full"}`)
	}))
	defer srv.Close()

	_, err := NewClient(ClientConfig{BaseURL: srv.URL}).Fetch(t.Context())

	var remoteErr *RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, "fetch", remoteErr.Op)
	assert.Equal(t, http.StatusInternalServerError, remoteErr.Status)
	assert.Contains(t, err.Error(), "disk full")
	assert.ErrorIs(t, err, ErrTransient)
	assert.False(t, IsUnauthorized(err))
}

func TestFetch_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(ClientConfig{BaseURL: url}).Fetch(t.Context())
	assert.ErrorIs(t, err, ErrTransient)
}

func TestPush_SendsTokenAndReturnsCanonical(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get(AdminTokenHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var doc content.Document
		require.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
		doc.Tagline = "Canonicalized by server"
		_ = json.NewEncoder(w).Encode(doc)
	}))
	defer srv.Close()

	sent := content.Default()
	sent.SchoolName = "Pushed"

	got, err := NewClient(ClientConfig{BaseURL: srv.URL + "/", Token: "secret"}).Push(t.Context(), sent)
	require.NoError(t, err)
	assert.Equal(t, "Pushed", got.SchoolName)
	assert.Equal(t, "Canonicalized by server", got.Tagline)
}

func TestPush_NoTokenConfigured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header[http.CanonicalHeaderKey(AdminTokenHeader)]
		assert.False(t, present)
		_, _ = io.Copy(w, r.Body)
	}))
	defer srv.Close()

	_, err := NewClient(ClientConfig{BaseURL: srv.URL}).Push(t.Context(), content.Default())
	require.NoError(t, err)
}

func TestPush_Unauthorized(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `{"error":"invalid admin token"}`)
		}))

		_, err := NewClient(ClientConfig{BaseURL: srv.URL, Token: "wrong"}).Push(t.Context(), content.Default())
		srv.Close()

		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.ErrorIs(t, err, ErrTransient, "unauthorized is a transient subtype")
		assert.True(t, IsUnauthorized(err))
	}
}

func TestPush_CustomDataPath(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = io.Copy(w, r.Body)
	}))
	defer srv.Close()

	_, err := NewClient(ClientConfig{BaseURL: srv.URL, DataPath: "/site.json"}).Push(t.Context(), content.Default())
	require.NoError(t, err)
	assert.Equal(t, "/site.json", path)
}

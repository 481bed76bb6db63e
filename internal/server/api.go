// ABOUTME: HTTP handlers for site data, image uploads, and admin login
// ABOUTME: Canonicalizes documents through migration before storing and returning them

package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/2389/schoolsite/internal/auth"
	"github.com/2389/schoolsite/internal/content"
	"github.com/2389/schoolsite/internal/sitedata"
	"github.com/2389/schoolsite/internal/store"
	"github.com/2389/schoolsite/internal/upload"
)

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleGetSiteData returns the stored document, or 404 when nothing has been saved.
func (s *Server) handleGetSiteData(w http.ResponseWriter, r *http.Request) {
	raw, err := s.slot.Get(r.Context(), sitedata.DefaultKey)
	if errors.Is(err, store.ErrNotFound) {
		s.sendJSONError(w, http.StatusNotFound, "no site data stored")
		return
	}
	if err != nil {
		s.logger.Error("reading site data", "error", err, "request_id", RequestID(r.Context()))
		s.sendJSONError(w, http.StatusInternalServerError, "failed to read site data")
		return
	}

	doc, err := content.Migrate(raw)
	if err != nil {
		s.logger.Error("stored site data unusable", "error", err, "request_id", RequestID(r.Context()))
		s.sendJSONError(w, http.StatusInternalServerError, "stored site data is corrupt")
		return
	}

	s.writeJSON(w, http.StatusOK, doc)
}

// handlePostSiteData replaces the stored document with the canonical form of the body.
func (s *Server) handlePostSiteData(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.sendJSONError(w, http.StatusRequestEntityTooLarge, "document too large")
			return
		}
		s.sendJSONError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	if content.IsEmptyPayload(body) {
		s.sendJSONError(w, http.StatusBadRequest, "empty site data")
		return
	}

	doc, err := content.Migrate(body)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid site data: "+err.Error())
		return
	}

	if err := s.site.Overwrite(r.Context(), doc); err != nil {
		s.logger.Error("storing site data", "error", err, "request_id", RequestID(r.Context()))
		if errors.Is(err, store.ErrQuotaExceeded) {
			s.sendJSONError(w, http.StatusRequestEntityTooLarge, "document too large")
			return
		}
		s.sendJSONError(w, http.StatusInternalServerError, "failed to store site data")
		return
	}

	s.logger.Info("site data updated", "school", doc.SchoolName, "request_id", RequestID(r.Context()))
	s.writeJSON(w, http.StatusOK, doc)
}

// handleUpload stores one image from the multipart "file" field and returns its URL.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxBytes+1<<20)
	if err := r.ParseMultipartForm(upload.MaxBytes + 1<<20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.sendJSONError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		s.sendJSONError(w, http.StatusBadRequest, "expected multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(upload.FormField)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "missing "+upload.FormField+" field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = upload.DetectType(header.Filename, data)
	}
	if err := upload.Validate(mimeType, int64(len(data))); err != nil {
		status := http.StatusBadRequest
		var verr *upload.ValidationError
		if errors.As(err, &verr) && verr.Field == "size" {
			status = http.StatusRequestEntityTooLarge
		}
		s.sendJSONError(w, status, err.Error())
		return
	}

	name := uuid.New().String() + upload.ExtensionFor(mimeType)
	if err := os.WriteFile(filepath.Join(s.config.Uploads.Dir, name), data, 0o644); err != nil {
		s.logger.Error("writing upload", "error", err, "request_id", RequestID(r.Context()))
		s.sendJSONError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	url := s.uploadURL(r, name)
	s.logger.Info("image uploaded", "name", name, "bytes", len(data), "type", mimeType)
	s.writeJSON(w, http.StatusOK, upload.Response{URL: url})
}

// uploadURL builds the absolute URL of a stored upload.
func (s *Server) uploadURL(r *http.Request, name string) string {
	if base := s.config.Uploads.PublicURL; base != "" {
		return strings.TrimRight(base, "/") + "/" + name
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host + "/uploads/" + name
}

// handleLogin exchanges the admin credential for a write token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.login == nil {
		s.sendJSONError(w, http.StatusNotFound, "login not configured")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := s.login.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			s.logger.Warn("failed admin login", "username", req.Username, "request_id", RequestID(r.Context()))
			s.sendJSONError(w, http.StatusUnauthorized, err.Error())
			return
		}
		s.logger.Error("admin login", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "login failed")
		return
	}

	s.writeJSON(w, http.StatusOK, res)
}

// writeJSON writes payload as a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

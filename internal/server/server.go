// ABOUTME: Reference backend serving the site data document and image uploads
// ABOUTME: Manages the SQLite slot, admin guard, HTTP routes, and graceful shutdown

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/schoolsite/internal/admin"
	"github.com/2389/schoolsite/internal/auth"
	"github.com/2389/schoolsite/internal/broadcast"
	"github.com/2389/schoolsite/internal/config"
	"github.com/2389/schoolsite/internal/preview"
	"github.com/2389/schoolsite/internal/remote"
	"github.com/2389/schoolsite/internal/sitedata"
	"github.com/2389/schoolsite/internal/store"
)

// maxDocumentBytes bounds POST /api/site-data bodies. Inline images make
// documents large, so this sits well above the upload limit.
const maxDocumentBytes = 32 << 20

// Server is the site data backend.
type Server struct {
	config     *config.Config
	slot       *store.SQLiteStore
	site       *sitedata.Store
	bus        *broadcast.Broadcaster
	guard      *auth.Guard
	login      *admin.LoginService
	renderer   *preview.Renderer
	httpServer *http.Server
	logger     *slog.Logger

	// cancel ends subscriptions tied to the server lifetime
	cancel context.CancelFunc
}

// New opens the backing store and wires the HTTP routes.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}

	slot, err := store.NewSQLiteStore(cfg.Server.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus := broadcast.New(logger)
	s := &Server{
		config:   cfg,
		slot:     slot,
		bus:      bus,
		site:     sitedata.New(sitedata.Config{Slot: slot, Bus: bus, Logger: logger}),
		renderer: preview.NewRenderer(logger),
		logger:   logger.With("component", "server"),
		cancel:   cancel,
	}

	var verifier auth.TokenVerifier
	if cfg.Admin.JWTSecret != "" {
		jwtVerifier := auth.NewJWTVerifier([]byte(cfg.Admin.JWTSecret))
		verifier = jwtVerifier
		if cfg.Admin.Username != "" {
			creds := auth.Credentials{Username: cfg.Admin.Username, PasswordHash: cfg.Admin.PasswordHash}
			s.login = admin.NewLoginService(creds, jwtVerifier, cfg.Admin.TokenTTL)
		}
	}
	s.guard = auth.NewGuard(cfg.Admin.Token, verifier)
	if !s.guard.Required() {
		s.logger.Warn("no admin token or jwt_secret configured, writes are unauthenticated")
	}

	s.renderer.Update(s.site.Load(ctx))
	s.renderer.Attach(ctx, bus)

	s.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler returns the full route table wrapped in request middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET "+remote.DefaultDataPath, s.handleGetSiteData)
	mux.Handle("POST "+remote.DefaultDataPath, s.guard.Middleware(http.HandlerFunc(s.handlePostSiteData)))
	mux.Handle("POST "+remote.DefaultUploadPath, s.guard.Middleware(http.HandlerFunc(s.handleUpload)))
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", serveUploads(http.FileServer(http.Dir(s.config.Uploads.Dir)))))
	mux.Handle("GET /preview", s.renderer)

	return s.withMiddleware(mux)
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := s.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout, since
// the Run context is already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown stops accepting requests and closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", s.httpServer.Shutdown(ctx))
	s.cancel()
	s.bus.Close()
	errs = appendCloseError(errs, "store close", s.slot.Close())

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type requestIDKey struct{}

// RequestID returns the request ID assigned by the middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// withMiddleware assigns request IDs, sets CORS headers, answers preflight
// requests and logs every request.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID))

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		writer.Header().Set("X-Request-ID", requestID)
		if origin := s.config.Server.CORSOrigin; origin != "" {
			setCORSHeaders(writer.Header(), origin)
		}

		if r.Method == http.MethodOptions {
			writer.WriteHeader(http.StatusNoContent)
		} else {
			next.ServeHTTP(writer, r)
		}

		s.logger.Debug("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", writer.status,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	})
}

func setCORSHeaders(header http.Header, origin string) {
	header.Set("Access-Control-Allow-Origin", origin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID, "+auth.HeaderName)
	header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	header.Add("Vary", "Origin")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// serveUploads hides directory indexes under /uploads/ and keeps uploaded
// SVGs from running script in the site's origin.
func serveUploads(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if strings.EqualFold(path.Ext(r.URL.Path), ".svg") {
			w.Header().Set("Content-Security-Policy", "sandbox; default-src 'none'; style-src 'unsafe-inline'")
		}
		next.ServeHTTP(w, r)
	})
}

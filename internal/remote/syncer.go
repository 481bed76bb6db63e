// ABOUTME: Sync orchestration between the local store and the backend
// ABOUTME: Pull-on-start overwrites local data; push-on-save never rolls back a local save

package remote

import (
	"context"
	"log/slog"

	"github.com/2389/schoolsite/internal/content"
)

// LocalStore is the part of the local persistence store the syncer needs.
type LocalStore interface {
	Load(ctx context.Context) content.Document
	Save(ctx context.Context, p content.Partial) (content.Document, error)
	Overwrite(ctx context.Context, doc content.Document) error
}

// DocumentClient fetches and pushes whole documents.
type DocumentClient interface {
	Fetch(ctx context.Context) (*content.Document, error)
	Push(ctx context.Context, doc content.Document) (*content.Document, error)
}

// Tier says how far a save got.
type Tier int

const (
	// TierLocal means the document is persisted locally only.
	TierLocal Tier = iota
	// TierRemote means the backend accepted the document and its canonical
	// copy is now the local copy.
	TierRemote
)

func (t Tier) String() string {
	switch t {
	case TierRemote:
		return "synced"
	default:
		return "saved locally"
	}
}

// SaveResult is the outcome of Syncer.Save.
type SaveResult struct {
	Document  content.Document
	Tier      Tier
	RemoteErr error // why the push did not confirm, nil when Tier is TierRemote
}

// Syncer wires a local store to a remote client. A nil client makes every
// remote step a no-op, which is how an offline site runs.
type Syncer struct {
	local  LocalStore
	client DocumentClient
	logger *slog.Logger
}

// NewSyncer creates a Syncer. Pass nil logger for default.
func NewSyncer(local LocalStore, client DocumentClient, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		local:  local,
		client: client,
		logger: logger.With("component", "sync"),
	}
}

// PullOnStart fetches the remote document and, when one exists, makes it the
// local copy. Any failure falls back to the local document silently.
func (s *Syncer) PullOnStart(ctx context.Context) content.Document {
	if s.client == nil {
		return s.local.Load(ctx)
	}

	doc, err := s.client.Fetch(ctx)
	if err != nil {
		s.logRemoteFailure("pull", err)
		return s.local.Load(ctx)
	}

	if err := s.local.Overwrite(ctx, *doc); err != nil {
		s.logger.Warn("storing remote copy failed, keeping local data", "error", err)
		return s.local.Load(ctx)
	}

	s.logger.Info("pulled remote site data")
	return *doc
}

// Save persists p locally, then pushes the merged document. A failed local
// save returns the persistence error and skips the push. A failed push
// leaves the local save in place and reports TierLocal.
func (s *Syncer) Save(ctx context.Context, p content.Partial) (SaveResult, error) {
	saved, err := s.local.Save(ctx, p)
	if err != nil {
		return SaveResult{}, err
	}

	result := SaveResult{Document: saved, Tier: TierLocal}
	if s.client == nil {
		return result, nil
	}

	canonical, err := s.client.Push(ctx, saved)
	if err != nil {
		s.logRemoteFailure("push", err)
		result.RemoteErr = err
		return result, nil
	}

	if err := s.local.Overwrite(ctx, *canonical); err != nil {
		s.logger.Warn("storing canonical copy failed, keeping local save", "error", err)
		result.RemoteErr = err
		return result, nil
	}

	result.Document = *canonical
	result.Tier = TierRemote
	return result, nil
}

func (s *Syncer) logRemoteFailure(op string, err error) {
	if IsUnauthorized(err) {
		s.logger.Warn("remote rejected admin token", "op", op, "error", err)
		return
	}
	s.logger.Debug("remote unavailable", "op", op, "error", err)
}

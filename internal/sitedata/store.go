// ABOUTME: Local persistence store for the site content document
// ABOUTME: Loads with back-compat migration, saves partial edits, broadcasts every change

package sitedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/2389/schoolsite/internal/broadcast"
	"github.com/2389/schoolsite/internal/content"
	"github.com/2389/schoolsite/internal/store"
)

// DefaultKey is the slot name the document is stored under.
const DefaultKey = "siteData"

// ErrPersistence is returned when the durable slot rejects a write.
var ErrPersistence = errors.New("persisting site data")

// Store owns the durable copy of the content document.
type Store struct {
	slot   store.Slot
	key    string
	bus    *broadcast.Broadcaster
	logger *slog.Logger

	// mu serializes read-modify-write; publishing happens after unlock so
	// handlers may call back into the store.
	mu      sync.Mutex
	current atomic.Pointer[content.Document]
}

// Config holds Store dependencies.
type Config struct {
	Slot   store.Slot
	Key    string // defaults to DefaultKey
	Bus    *broadcast.Broadcaster
	Logger *slog.Logger
}

// New creates a Store. Bus defaults to broadcast.Default().
func New(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bus := cfg.Bus
	if bus == nil {
		bus = broadcast.Default()
	}
	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}
	return &Store{
		slot:   cfg.Slot,
		key:    key,
		bus:    bus,
		logger: logger.With("component", "sitedata"),
	}
}

// Load returns the persisted document merged over the defaults. A missing,
// unreadable or malformed slot yields the default snapshot; Load never fails.
func (s *Store) Load(ctx context.Context) content.Document {
	doc := s.load(ctx)
	s.remember(doc)
	return doc
}

func (s *Store) load(ctx context.Context) content.Document {
	raw, err := s.slot.Get(ctx, s.key)
	if errors.Is(err, store.ErrNotFound) {
		return content.Default()
	}
	if err != nil {
		s.logger.Warn("reading slot failed, using defaults", "key", s.key, "error", err)
		return content.Default()
	}

	doc, err := content.Migrate(raw)
	if err != nil {
		s.logger.Warn("stored site data unusable, using defaults", "key", s.key, "error", err)
		return content.Default()
	}
	return doc
}

// Save merges p over the current persisted document, writes the result and
// broadcasts it. Every subscriber has seen the new document by the time Save
// returns. On a failed write nothing is broadcast and ErrPersistence is
// returned alongside the zero Document.
func (s *Store) Save(ctx context.Context, p content.Partial) (content.Document, error) {
	s.mu.Lock()
	doc, err := s.write(ctx, p.Apply(s.load(ctx)))
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("save failed", "keys", p.Keys(), "error", err)
		return content.Document{}, err
	}

	s.logger.Info("site data saved", "keys", p.Keys())
	s.publish(doc)
	return doc, nil
}

// Overwrite replaces the persisted document wholesale, without merging, and
// broadcasts it.
func (s *Store) Overwrite(ctx context.Context, doc content.Document) error {
	s.mu.Lock()
	stored, err := s.write(ctx, doc)
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("overwrite failed", "error", err)
		return err
	}

	s.publish(stored)
	return nil
}

// Reset removes the persisted document and broadcasts the default snapshot.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	err := s.slot.Delete(ctx, s.key)
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("reset failed", "key", s.key, "error", err)
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.logger.Info("site data reset to defaults")
	s.publish(content.Default())
	return nil
}

// Current returns the most recently loaded or published document, loading
// from the slot on first use.
func (s *Store) Current(ctx context.Context) content.Document {
	if doc := s.current.Load(); doc != nil {
		return doc.Clone()
	}
	return s.Load(ctx)
}

// Bus returns the broadcaster this store publishes on.
func (s *Store) Bus() *broadcast.Broadcaster {
	return s.bus
}

// write stores doc in the form Load reads it back as and returns that form.
// Callers publish the returned document, never the one they passed in.
func (s *Store) write(ctx context.Context, doc content.Document) (content.Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return content.Document{}, fmt.Errorf("%w: encoding: %v", ErrPersistence, err)
	}
	canonical, err := content.Migrate(raw)
	if err != nil {
		return content.Document{}, fmt.Errorf("%w: canonicalizing: %v", ErrPersistence, err)
	}
	if raw, err = json.Marshal(canonical); err != nil {
		return content.Document{}, fmt.Errorf("%w: encoding: %v", ErrPersistence, err)
	}
	if err := s.slot.Put(ctx, s.key, raw); err != nil {
		return content.Document{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return canonical, nil
}

func (s *Store) publish(doc content.Document) {
	s.remember(doc)
	s.bus.Publish(doc)
}

func (s *Store) remember(doc content.Document) {
	cp := doc.Clone()
	s.current.Store(&cp)
}

// ABOUTME: In-process synchronous broadcaster for content document changes
// ABOUTME: Delivers each published Document to current subscribers in registration order

package broadcast

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/2389/schoolsite/internal/content"
)

// EventSiteDataUpdated names the broadcast in logs and in the HTTP layer.
const EventSiteDataUpdated = "site-data-updated"

// Handler receives a published document. Each call gets its own copy.
type Handler func(doc content.Document)

type subscriber struct {
	id string
	fn Handler
}

// Broadcaster is a publish/subscribe channel scoped to the process lifetime.
// Publish runs every handler synchronously on the caller's goroutine, in the
// order the handlers were registered. There is no queue: a handler added
// after a publish never sees it.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   []subscriber
	closed bool
	logger *slog.Logger
}

// New creates a broadcaster. Pass nil logger for default.
func New(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		logger: logger.With("component", "broadcaster"),
	}
}

var (
	defaultOnce sync.Once
	defaultBus  *Broadcaster
)

// Default returns the process-wide broadcaster. Components should still take
// a *Broadcaster explicitly; Default is for wiring in main.
func Default() *Broadcaster {
	defaultOnce.Do(func() {
		defaultBus = New(nil)
	})
	return defaultBus
}

// Subscribe registers fn and returns a subscription ID for Unsubscribe.
// Subscribing to a closed broadcaster returns an empty ID and registers nothing.
func (b *Broadcaster) Subscribe(fn Handler) string {
	subID := uuid.New().String()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ""
	}
	b.subs = append(b.subs, subscriber{id: subID, fn: fn})
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "sub_id", subID)
	return subID
}

// SubscribeContext registers fn until ctx is cancelled.
func (b *Broadcaster) SubscribeContext(ctx context.Context, fn Handler) string {
	subID := b.Subscribe(fn)
	if subID == "" {
		return ""
	}

	// Auto-cleanup on context cancellation
	go func() {
		<-ctx.Done()
		b.Unsubscribe(subID)
	}()

	return subID
}

// Unsubscribe removes a subscription. Unknown IDs are ignored.
func (b *Broadcaster) Unsubscribe(subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id != subID {
			continue
		}
		// Build a new slice so a Publish holding the old one is unaffected.
		next := make([]subscriber, 0, len(b.subs)-1)
		next = append(next, b.subs[:i]...)
		next = append(next, b.subs[i+1:]...)
		b.subs = next

		b.logger.Debug("subscriber removed", "sub_id", subID)
		return
	}
}

// Publish delivers doc to every handler registered at the moment of the call.
// Handlers subscribing or unsubscribing during delivery do not change who
// receives this publish. A panicking handler is logged and skipped.
func (b *Broadcaster) Publish(doc content.Document) {
	// Copy subscriber list under read lock to avoid holding lock during calls
	b.mu.RLock()
	targets := b.subs
	b.mu.RUnlock()

	for _, s := range targets {
		b.deliver(s, doc.Clone())
	}

	b.logger.Debug("published", "event", EventSiteDataUpdated, "subscribers", len(targets))
}

func (b *Broadcaster) deliver(s subscriber, doc content.Document) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("subscriber panicked",
				"event", EventSiteDataUpdated,
				"sub_id", s.id,
				"panic", r)
		}
	}()
	s.fn(doc)
}

// Len returns the number of registered subscribers.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close drops every subscription. Later Subscribe calls are no-ops.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = nil
	b.closed = true

	b.logger.Debug("broadcaster closed")
}

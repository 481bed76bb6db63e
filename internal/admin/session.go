// ABOUTME: Editing session holding a disposable draft over the persisted document
// ABOUTME: Drafts never reach storage or subscribers until Save succeeds locally

package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/2389/schoolsite/internal/broadcast"
	"github.com/2389/schoolsite/internal/content"
	"github.com/2389/schoolsite/internal/remote"
)

// ErrNoChanges is returned by Save when the draft is empty.
var ErrNoChanges = errors.New("no unsaved changes")

// ErrNoTeamMember is returned when an image targets a team index that does not exist.
var ErrNoTeamMember = errors.New("no such team member")

// Saver persists a draft. *remote.Syncer satisfies it.
type Saver interface {
	Save(ctx context.Context, p content.Partial) (remote.SaveResult, error)
}

// Uploader turns image bytes into a URL. *upload.Client satisfies it.
type Uploader interface {
	Upload(ctx context.Context, data []byte, mimeType string, size int64) (string, error)
}

// TargetKind selects which field an attached image lands in.
type TargetKind int

const (
	TargetSchoolImage TargetKind = iota
	TargetHeroImage
	TargetTeamMember
)

// ImageTarget names the destination of an attached image.
type ImageTarget struct {
	Kind  TargetKind
	Index int // team member index for TargetTeamMember
}

// SchoolImage targets the schoolImage field.
func SchoolImage() ImageTarget { return ImageTarget{Kind: TargetSchoolImage} }

// HeroImage appends to heroImages.
func HeroImage() ImageTarget { return ImageTarget{Kind: TargetHeroImage} }

// TeamMemberImage targets the image of team[i].
func TeamMemberImage(i int) ImageTarget { return ImageTarget{Kind: TargetTeamMember, Index: i} }

// Session is one admin's editing pass. Edits accumulate in a draft that is
// applied on top of the base document only for previews until Save.
type Session struct {
	mu       sync.Mutex
	base     content.Document
	draft    content.Partial
	gen      uint64
	saver    Saver
	uploader Uploader
	logger   *slog.Logger
}

// NewSession starts a session over base. uploader may be nil if images are
// never attached.
func NewSession(base content.Document, saver Saver, uploader Uploader, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		base:     base.Clone(),
		saver:    saver,
		uploader: uploader,
		logger:   logger.With("component", "admin"),
	}
}

// Follow keeps the base in step with published documents until ctx is done.
func (s *Session) Follow(ctx context.Context, bus *broadcast.Broadcaster) {
	bus.SubscribeContext(ctx, s.Rebase)
}

// Rebase replaces the base document without touching the draft.
func (s *Session) Rebase(doc content.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = doc.Clone()
}

// Base returns the last persisted document the session knows about.
func (s *Session) Base() content.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.base.Clone()
}

// Draft returns the pending edits. The returned value must not be mutated;
// use Edit instead.
func (s *Session) Draft() content.Partial {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Edit mutates the draft.
func (s *Session) Edit(fn func(p *content.Partial)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.draft)
	s.gen++
}

// Preview returns the base with the draft applied, as it would look after Save.
func (s *Session) Preview() content.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Apply(s.base)
}

// Dirty reports whether there are unsaved edits.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.draft.IsEmpty()
}

// Discard drops all unsaved edits.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = content.Partial{}
	s.gen++
}

// Save persists the draft. A local failure keeps the draft so the admin can
// retry. On success the draft is cleared unless it was edited while the save
// was in flight, and the base becomes the saved document.
func (s *Session) Save(ctx context.Context) (remote.SaveResult, error) {
	s.mu.Lock()
	draft, gen := s.draft, s.gen
	s.mu.Unlock()

	if draft.IsEmpty() {
		return remote.SaveResult{}, ErrNoChanges
	}

	// Subscribers may call Rebase during Save, so the lock is not held here.
	result, err := s.saver.Save(ctx, draft)
	if err != nil {
		s.logger.Error("save failed, keeping draft", "error", err, "fields", draft.Keys())
		return remote.SaveResult{}, err
	}

	s.mu.Lock()
	s.base = result.Document.Clone()
	if s.gen == gen {
		s.draft = content.Partial{}
	}
	s.mu.Unlock()

	s.logger.Info("site data saved", "tier", result.Tier.String(), "fields", draft.Keys())
	return result, nil
}

// AttachImage uploads an image and records its URL in the draft at target.
// The URL is returned; a validation failure leaves the draft untouched.
func (s *Session) AttachImage(ctx context.Context, target ImageTarget, data []byte, mimeType string) (string, error) {
	if s.uploader == nil {
		return "", errors.New("no uploader configured")
	}

	if target.Kind == TargetTeamMember {
		if n := len(s.Preview().Team); target.Index < 0 || target.Index >= n {
			return "", fmt.Errorf("%w: index %d of %d", ErrNoTeamMember, target.Index, n)
		}
	}

	url, err := s.uploader.Upload(ctx, data, mimeType, int64(len(data)))
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.draft.Apply(s.base)
	switch target.Kind {
	case TargetSchoolImage:
		s.draft.SchoolImage = content.Ptr(url)
	case TargetHeroImage:
		s.draft.HeroImages = content.Ptr(append(slices.Clone(current.HeroImages), url))
	case TargetTeamMember:
		if target.Index >= len(current.Team) {
			return "", fmt.Errorf("%w: index %d of %d", ErrNoTeamMember, target.Index, len(current.Team))
		}
		team := slices.Clone(current.Team)
		team[target.Index].Image = url
		s.draft.Team = &team
	default:
		return "", fmt.Errorf("unknown image target %d", target.Kind)
	}
	s.gen++
	return url, nil
}

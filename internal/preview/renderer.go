// ABOUTME: Presentational consumer rendering the about section from published documents
// ABOUTME: Converts the markdown description with goldmark and keeps the latest HTML fragment

package preview

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"

	"github.com/2389/schoolsite/internal/broadcast"
	"github.com/2389/schoolsite/internal/content"
)

//go:embed templates/*.html
var templateFS embed.FS

var aboutTemplate = template.Must(template.ParseFS(templateFS, "templates/about.html"))

// Renderer keeps an HTML rendering of the most recent document it was given.
type Renderer struct {
	mu      sync.RWMutex
	html    string
	renders int
	logger  *slog.Logger
}

// NewRenderer creates a renderer with the default document already rendered.
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{logger: logger.With("component", "preview")}
	r.Update(content.Default())
	r.renders = 0
	return r
}

// Attach re-renders on every document published on bus until ctx is done.
// Rendering happens on the publisher's goroutine.
func (r *Renderer) Attach(ctx context.Context, bus *broadcast.Broadcaster) {
	bus.SubscribeContext(ctx, r.Update)
}

// Update renders doc and replaces the current fragment. Render failures keep
// the previous fragment.
func (r *Renderer) Update(doc content.Document) {
	out, err := Render(doc)
	if err != nil {
		r.logger.Error("failed to render preview", "error", err)
		return
	}

	r.mu.Lock()
	r.html = out
	r.renders++
	r.mu.Unlock()
}

// HTML returns the latest rendered fragment.
func (r *Renderer) HTML() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.html
}

// Renders reports how many documents have been rendered since creation.
func (r *Renderer) Renders() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.renders
}

// ServeHTTP writes the latest fragment.
func (r *Renderer) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(r.HTML()))
}

type aboutView struct {
	content.Document
	Description  template.HTML
	HeroImages   []template.URL
	SchoolImage  template.URL
	Streams      []streamView
	Team         []memberView
	BadgeColor   string
	TransitionMs int
}

type streamView struct {
	Category string
	Subjects []content.Subject
	More     int
}

type memberView struct {
	content.TeamMember
	Image template.URL
}

// Render produces the about section for doc.
func Render(doc content.Document) (string, error) {
	var desc bytes.Buffer
	if err := goldmark.Convert([]byte(doc.Description), &desc); err != nil {
		return "", err
	}

	view := aboutView{
		Document:     doc,
		Description:  template.HTML(desc.String()),
		BadgeColor:   doc.UI.BadgeColor,
		TransitionMs: doc.UI.TransitionMs,
	}

	// Only references that passed FilterImages are marked safe.
	for _, ref := range content.FilterImages(doc.HeroImages) {
		view.HeroImages = append(view.HeroImages, template.URL(ref))
	}
	if content.ValidImageRef(doc.SchoolImage) {
		view.SchoolImage = template.URL(doc.SchoolImage)
	}

	limit := doc.UI.ServicesPreviewCount
	for _, s := range doc.Services {
		sv := streamView{Category: s.Category, Subjects: s.Subjects}
		if limit > 0 && len(s.Subjects) > limit {
			sv.Subjects = s.Subjects[:limit]
			sv.More = len(s.Subjects) - limit
		}
		view.Streams = append(view.Streams, sv)
	}

	for _, m := range doc.Team {
		mv := memberView{TeamMember: m}
		if content.ValidImageRef(m.Image) {
			mv.Image = template.URL(m.Image)
		}
		if mv.Initials == "" {
			mv.Initials = initials(m.Name)
		}
		view.Team = append(view.Team, mv)
	}

	var out bytes.Buffer
	if err := aboutTemplate.Execute(&out, view); err != nil {
		return "", err
	}
	return out.String(), nil
}

// initials takes the first letter of the last two words, skipping words
// ending in a dot such as titles.
func initials(name string) string {
	var letters []rune
	for _, word := range strings.Fields(name) {
		if strings.HasSuffix(word, ".") {
			continue
		}
		r, _ := utf8.DecodeRuneInString(word)
		letters = append(letters, unicode.ToUpper(r))
	}
	if len(letters) > 2 {
		letters = letters[len(letters)-2:]
	}
	return string(letters)
}

// ABOUTME: Migration pipeline turning a raw persisted payload into a complete Document
// ABOUTME: Upgrades bare-string subjects, appends missing default staff, fills absent fields

package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Migration errors
var (
	ErrEmpty     = errors.New("empty content payload")
	ErrMalformed = errors.New("malformed content payload")
)

// persisted mirrors Document with presence tracking. A nil pointer means the
// key was absent (or null) in the stored payload.
type persisted struct {
	SchoolName      *string            `json:"schoolName"`
	ShortName       *string            `json:"shortName"`
	Tagline         *string            `json:"tagline"`
	Description     *string            `json:"description"`
	Address         *string            `json:"address"`
	Postal          *string            `json:"postal"`
	Phone           *string            `json:"phone"`
	ContactEmail    *string            `json:"contactEmail"`
	Principal       *string            `json:"principal"`
	DeputyPrincipal *string            `json:"deputyPrincipal"`
	PassRate        *string            `json:"passRate"`
	Stats           *[]Stat            `json:"stats"`
	Services        *[]persistedStream `json:"services"`
	Team            *[]TeamMember      `json:"team"`
	Sponsors        *[]Sponsor         `json:"sponsors"`
	HeroImages      *[]string          `json:"heroImages"`
	SchoolImage     *string            `json:"schoolImage"`
	UI              *persistedUI       `json:"ui"`

	// streams is filled by upgradeSubjects from Services.
	streams []Stream
}

type persistedStream struct {
	Category string            `json:"category"`
	Subjects []json.RawMessage `json:"subjects"`
}

type persistedUI struct {
	ServicesPreviewCount *int    `json:"servicesPreviewCount"`
	BadgeColor           *string `json:"badgeColor"`
	TransitionMs         *int    `json:"transitionMs"`
}

// stage is one step of the back-compat pipeline. Stages run in order over the
// decoded payload; a new migration is one more entry in stages.
type stage func(p *persisted) error

var stages = []stage{
	upgradeSubjects,
	appendDefaultTeam,
}

// Migrate decodes a raw persisted payload and returns a complete Document.
// It is pure: the same input always yields the same output.
func Migrate(raw []byte) (Document, error) {
	p, err := decodePersisted(raw)
	if err != nil {
		return Document{}, err
	}
	for _, run := range stages {
		if err := run(p); err != nil {
			return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	return fillDefaults(p), nil
}

// IsEmptyPayload reports whether raw carries no document at all: blank,
// null, or an object with no keys.
func IsEmptyPayload(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &keys); err != nil {
		return false
	}
	return len(keys) == 0
}

func decodePersisted(raw []byte) (*persisted, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrEmpty
	}
	var p persisted
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &p, nil
}

// upgradeSubjects normalizes every bare-string subject to {name, passMark: "50%"}.
// Object subjects are left untouched.
func upgradeSubjects(p *persisted) error {
	if p.Services == nil {
		return nil
	}
	streams := make([]Stream, 0, len(*p.Services))
	for i, ps := range *p.Services {
		subjects := make([]Subject, 0, len(ps.Subjects))
		for j, raw := range ps.Subjects {
			subject, err := decodeSubject(raw)
			if err != nil {
				return fmt.Errorf("services[%d].subjects[%d]: %w", i, j, err)
			}
			subjects = append(subjects, subject)
		}
		streams = append(streams, Stream{Category: ps.Category, Subjects: subjects})
	}
	p.streams = streams
	return nil
}

// appendDefaultTeam appends every default member whose name is not already
// present (case-insensitive). Persisted entries are never dropped or replaced.
func appendDefaultTeam(p *persisted) error {
	if p.Team == nil {
		return nil
	}
	team := *p.Team
	seen := make(map[string]bool, len(team))
	for _, m := range team {
		seen[strings.ToLower(m.Name)] = true
	}
	for _, m := range defaultDocument.Team {
		key := strings.ToLower(m.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		team = append(team, m)
	}
	p.Team = &team
	return nil
}

// fillDefaults merges the payload over the default baseline field by field:
// a present value wins, an absent one takes the default.
func fillDefaults(p *persisted) Document {
	d := Default()

	// Free text must never be empty after the merge.
	d.SchoolName = pickText(p.SchoolName, d.SchoolName)
	d.ShortName = pickText(p.ShortName, d.ShortName)
	d.Tagline = pickText(p.Tagline, d.Tagline)
	d.Description = pickText(p.Description, d.Description)

	d.Address = pick(p.Address, d.Address)
	d.Postal = pick(p.Postal, d.Postal)
	d.Phone = pick(p.Phone, d.Phone)
	d.ContactEmail = pick(p.ContactEmail, d.ContactEmail)
	d.Principal = pick(p.Principal, d.Principal)
	d.DeputyPrincipal = pick(p.DeputyPrincipal, d.DeputyPrincipal)
	d.PassRate = pick(p.PassRate, d.PassRate)
	d.SchoolImage = pick(p.SchoolImage, d.SchoolImage)

	d.Stats = pickSlice(p.Stats, d.Stats)
	d.Team = pickSlice(p.Team, d.Team)
	d.Sponsors = pickSlice(p.Sponsors, d.Sponsors)
	d.HeroImages = pickSlice(p.HeroImages, d.HeroImages)
	if p.Services != nil {
		d.Services = p.streams
	}

	if p.UI != nil {
		d.UI.ServicesPreviewCount = pick(p.UI.ServicesPreviewCount, d.UI.ServicesPreviewCount)
		d.UI.BadgeColor = pickText(p.UI.BadgeColor, d.UI.BadgeColor)
		d.UI.TransitionMs = pick(p.UI.TransitionMs, d.UI.TransitionMs)
	}
	return d
}

func pick[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

func pickText(v *string, fallback string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return fallback
	}
	return *v
}

func pickSlice[T any](v *[]T, fallback []T) []T {
	if v == nil {
		return fallback
	}
	return cloneSlice(*v)
}

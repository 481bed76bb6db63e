// ABOUTME: Content schema for the school site's single editable document
// ABOUTME: Defines Document and its nested records plus deep-copy helpers

package content

import (
	"encoding/json"
	"fmt"
)

// DefaultPassMark is assigned to subjects persisted as bare strings.
const DefaultPassMark = "50%"

// Document is the site's editable content record. Exactly one logical
// instance exists per client; replacements are new snapshots.
type Document struct {
	SchoolName      string       `json:"schoolName"`
	ShortName       string       `json:"shortName"`
	Tagline         string       `json:"tagline"`
	Description     string       `json:"description"`
	Address         string       `json:"address"`
	Postal          string       `json:"postal"`
	Phone           string       `json:"phone"`
	ContactEmail    string       `json:"contactEmail"`
	Principal       string       `json:"principal"`
	DeputyPrincipal string       `json:"deputyPrincipal"`
	PassRate        string       `json:"passRate"`
	Stats           []Stat       `json:"stats"`
	Services        []Stream     `json:"services"`
	Team            []TeamMember `json:"team"`
	Sponsors        []Sponsor    `json:"sponsors"`
	HeroImages      []string     `json:"heroImages"`
	SchoolImage     string       `json:"schoolImage"`
	UI              UIPrefs      `json:"ui"`
}

// Stat is a display metric. Order within Document.Stats is render order.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Stream is a curriculum stream with its subjects.
type Stream struct {
	Category string    `json:"category"`
	Subjects []Subject `json:"subjects"`
}

// Subject is a single subject inside a stream.
type Subject struct {
	Name     string `json:"name"`
	PassMark string `json:"passMark,omitempty"`
}

// UnmarshalJSON accepts both the object form and the legacy bare-string form.
func (s *Subject) UnmarshalJSON(data []byte) error {
	subject, err := decodeSubject(data)
	if err != nil {
		return err
	}
	*s = subject
	return nil
}

// decodeSubject upgrades a bare string to {name, passMark: "50%"} and
// decodes objects untouched.
func decodeSubject(data []byte) (Subject, error) {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		return Subject{Name: name, PassMark: DefaultPassMark}, nil
	}

	// alias drops the method set so we don't recurse
	type subjectObject Subject
	var obj subjectObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return Subject{}, fmt.Errorf("decoding subject: %w", err)
	}
	return Subject(obj), nil
}

// TeamMember is a staff directory entry. Name is the merge key.
type TeamMember struct {
	Name          string `json:"name"`
	Role          string `json:"role"`
	Image         string `json:"image,omitempty"`
	ImagePosition string `json:"imagePosition,omitempty"`
	Initials      string `json:"initials,omitempty"`
}

// Sponsor is a partner or sponsor logo entry.
type Sponsor struct {
	Name  string `json:"name"`
	URL   string `json:"url,omitempty"`
	Image string `json:"image,omitempty"`
}

// UIPrefs holds presentation preferences edited from the admin surface.
type UIPrefs struct {
	ServicesPreviewCount int    `json:"servicesPreviewCount"`
	BadgeColor           string `json:"badgeColor"`
	TransitionMs         int    `json:"transitionMs"`
}

// Clone returns a deep copy so callers can never alias another snapshot's slices.
func (d Document) Clone() Document {
	out := d
	out.Stats = cloneSlice(d.Stats)
	out.Team = cloneSlice(d.Team)
	out.Sponsors = cloneSlice(d.Sponsors)
	out.HeroImages = cloneSlice(d.HeroImages)
	out.Services = cloneStreams(d.Services)
	return out
}

func cloneStreams(in []Stream) []Stream {
	if in == nil {
		return nil
	}
	out := make([]Stream, len(in))
	for i, s := range in {
		out[i] = Stream{Category: s.Category, Subjects: cloneSlice(s.Subjects)}
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

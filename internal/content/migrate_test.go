// ABOUTME: Tests for the content migration pipeline
// ABOUTME: Covers default completeness, subject upgrade, team append, malformed input

package content

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_EmptyObjectYieldsDefault(t *testing.T) {
	doc, err := Migrate([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, Default(), doc)
}

func TestMigrate_EmptyPayload(t *testing.T) {
	_, err := Migrate([]byte("   "))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestMigrate_Malformed(t *testing.T) {
	tests := []string{
		`{not json`,
		`[1, 2, 3]`,
		`{"services": [{"category": "Science", "subjects": [42]}]}`,
		`{"team": "everyone"}`,
	}
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			_, err := Migrate([]byte(raw))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestMigrate_PersistedFieldsWin(t *testing.T) {
	raw := `{
		"schoolName": "Hillcrest High",
		"phone": "",
		"stats": [{"label": "Learners", "value": "900"}],
		"sponsors": []
	}`

	doc, err := Migrate([]byte(raw))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, "Hillcrest High", doc.SchoolName)
	assert.Equal(t, "", doc.Phone, "optional scalar keeps an explicit empty value")
	assert.Equal(t, []Stat{{Label: "Learners", Value: "900"}}, doc.Stats)
	assert.Equal(t, []Sponsor{}, doc.Sponsors)

	// Everything else comes from the defaults.
	assert.Equal(t, def.Tagline, doc.Tagline)
	assert.Equal(t, def.Services, doc.Services)
	assert.Equal(t, def.Team, doc.Team)
	assert.Equal(t, def.HeroImages, doc.HeroImages)
	assert.Equal(t, def.UI, doc.UI)
}

func TestMigrate_FreeTextNeverEmpty(t *testing.T) {
	doc, err := Migrate([]byte(`{"schoolName": "", "tagline": "   ", "description": null}`))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.SchoolName, doc.SchoolName)
	assert.Equal(t, def.Tagline, doc.Tagline)
	assert.Equal(t, def.Description, doc.Description)
}

func TestMigrate_DefaultCompletenessForEveryField(t *testing.T) {
	def := Default()
	full, err := json.Marshal(def)
	require.NoError(t, err)

	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(full, &keys))

	// Drop each key in turn; the result must equal the default for that key.
	for key := range keys {
		t.Run(key, func(t *testing.T) {
			reduced := map[string]json.RawMessage{}
			for k, v := range keys {
				if k != key {
					reduced[k] = v
				}
			}
			raw, err := json.Marshal(reduced)
			require.NoError(t, err)

			doc, err := Migrate(raw)
			require.NoError(t, err)
			assert.Equal(t, def, doc)
		})
	}
}

func TestMigrate_SubjectStringsUpgraded(t *testing.T) {
	raw := `{"services": [
		{"category": "Science", "subjects": ["Mathematics", {"name": "Physics", "passMark": "60%"}, {"name": "Biology"}]},
		{"category": "Arts", "subjects": ["Music"]}
	]}`

	doc, err := Migrate([]byte(raw))
	require.NoError(t, err)

	require.Len(t, doc.Services, 2)
	assert.Equal(t, []Subject{
		{Name: "Mathematics", PassMark: "50%"},
		{Name: "Physics", PassMark: "60%"},
		{Name: "Biology"},
	}, doc.Services[0].Subjects)
	assert.Equal(t, []Subject{{Name: "Music", PassMark: "50%"}}, doc.Services[1].Subjects)
}

func TestMigrate_TeamAppendsMissingDefaults(t *testing.T) {
	def := Default()
	raw := `{"team": [
		{"name": "Ms. A. Khumalo", "role": "Librarian"},
		{"name": "MRS. N. DLAMINI", "role": "Acting Principal", "initials": "X"}
	]}`

	doc, err := Migrate([]byte(raw))
	require.NoError(t, err)

	want := []TeamMember{
		{Name: "Ms. A. Khumalo", Role: "Librarian"},
		{Name: "MRS. N. DLAMINI", Role: "Acting Principal", Initials: "X"},
	}
	// The colliding default (index 0) is skipped; the rest follow in default order.
	want = append(want, def.Team[1:]...)
	assert.Equal(t, want, doc.Team)
}

func TestMigrate_TeamSupersetUnchanged(t *testing.T) {
	def := Default()
	team := append([]TeamMember{{Name: "Coach P. Botha", Role: "Sport"}}, def.Team...)
	payload, err := json.Marshal(map[string]any{"team": team})
	require.NoError(t, err)

	doc, err := Migrate(payload)
	require.NoError(t, err)
	assert.Equal(t, team, doc.Team)
}

func TestMigrate_EmptyTeamGetsAllDefaults(t *testing.T) {
	doc, err := Migrate([]byte(`{"team": []}`))
	require.NoError(t, err)
	assert.Equal(t, Default().Team, doc.Team)
}

func TestMigrate_UIFilledPerField(t *testing.T) {
	doc, err := Migrate([]byte(`{"ui": {"badgeColor": "green"}}`))
	require.NoError(t, err)

	assert.Equal(t, UIPrefs{
		ServicesPreviewCount: DefaultServicesPreviewCount,
		BadgeColor:           "green",
		TransitionMs:         DefaultTransitionMs,
	}, doc.UI)
}

func TestMigrate_DoesNotMutateDefaults(t *testing.T) {
	doc, err := Migrate([]byte(`{"team": [{"name": "Someone", "role": "Clerk"}]}`))
	require.NoError(t, err)
	doc.Team[1].Role = "changed"
	doc.Services[0].Subjects[0].Name = "changed"

	def := Default()
	assert.NotEqual(t, "changed", def.Team[0].Role)
	assert.NotEqual(t, "changed", def.Services[0].Subjects[0].Name)
}

func TestIsEmptyPayload(t *testing.T) {
	assert.True(t, IsEmptyPayload(nil))
	assert.True(t, IsEmptyPayload([]byte("null")))
	assert.True(t, IsEmptyPayload([]byte(" {} ")))
	assert.False(t, IsEmptyPayload([]byte(`{"schoolName": "x"}`)))
	assert.False(t, IsEmptyPayload([]byte(`garbage`)))
}

func TestSubject_UnmarshalBareString(t *testing.T) {
	var stream Stream
	err := json.NewDecoder(strings.NewReader(`{"category": "Science", "subjects": ["Chemistry", {"name": "Physics"}]}`)).Decode(&stream)
	require.NoError(t, err)
	assert.Equal(t, []Subject{{Name: "Chemistry", PassMark: "50%"}, {Name: "Physics"}}, stream.Subjects)
}

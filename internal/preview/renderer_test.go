// ABOUTME: Tests for the about section renderer
// ABOUTME: Covers markdown conversion, image filtering, escaping, and bus-driven re-rendering

package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/schoolsite/internal/broadcast"
	"github.com/2389/schoolsite/internal/content"
	"github.com/2389/schoolsite/internal/sitedata"
	"github.com/2389/schoolsite/internal/store"
)

func TestRender_Default(t *testing.T) {
	out, err := Render(content.Default())
	require.NoError(t, err)

	def := content.Default()
	assert.Contains(t, out, def.SchoolName)
	for _, m := range def.Team {
		assert.Contains(t, out, m.Role)
	}
}

func TestRender_MarkdownDescription(t *testing.T) {
	doc := content.Default()
	doc.Description = "We are **proud**.\n\n<script>alert(1)</script>"

	out, err := Render(doc)
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>proud</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestRender_EscapesPlainFields(t *testing.T) {
	doc := content.Default()
	doc.SchoolName = `<b>"Hill" & Co</b>`

	out, err := Render(doc)
	require.NoError(t, err)
	assert.NotContains(t, out, "<b>")
	assert.Contains(t, out, "&lt;b&gt;")
}

func TestRender_FiltersImages(t *testing.T) {
	inline := content.EncodeDataURL("image/png", []byte("png"))
	doc := content.Default()
	doc.HeroImages = []string{"", "not a url", "javascript:alert(1)", "https://cdn.example/a.jpg", inline}
	doc.SchoolImage = "ftp://old.example/school.jpg"

	out, err := Render(doc)
	require.NoError(t, err)
	assert.Contains(t, out, `src="https://cdn.example/a.jpg"`)
	assert.Contains(t, out, inline)
	assert.NotContains(t, out, "javascript:")
	assert.NotContains(t, out, "ftp://")
	assert.NotContains(t, out, "ZgotmplZ")
}

func TestRender_ServicesPreviewCount(t *testing.T) {
	doc := content.Default()
	doc.UI.ServicesPreviewCount = 1
	doc.Services = []content.Stream{{
		Category: "Science",
		Subjects: []content.Subject{{Name: "Physics"}, {Name: "Chemistry"}, {Name: "Biology"}},
	}}

	out, err := Render(doc)
	require.NoError(t, err)
	assert.Contains(t, out, "Physics")
	assert.NotContains(t, out, "Chemistry")
	assert.Contains(t, out, "+2 more")
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "D", initials("Mrs. N. Dlamini"))
	assert.Equal(t, "VW", initials("Ms. L. van Wyk"))
	assert.Equal(t, "JS", initials("Jane Smith"))
	assert.Equal(t, "", initials(""))
}

func TestRenderer_FollowsBus(t *testing.T) {
	bus := broadcast.New(nil)
	local := sitedata.New(sitedata.Config{Slot: store.NewMockStore(), Bus: bus})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := NewRenderer(nil)
	r.Attach(ctx, bus)
	assert.Zero(t, r.Renders())
	assert.Contains(t, r.HTML(), content.Default().SchoolName)

	_, err := local.Save(ctx, content.Partial{SchoolName: content.Ptr("Hillcrest High")})
	require.NoError(t, err)

	assert.Equal(t, 1, r.Renders())
	assert.Contains(t, r.HTML(), "Hillcrest High")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview", nil))
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Hillcrest High")
}

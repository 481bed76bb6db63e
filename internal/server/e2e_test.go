// ABOUTME: End-to-end tests driving the backend through the editor-side clients
// ABOUTME: Exercises pull-on-start, push-on-save, and uploads against a live handler

package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/schoolsite/internal/admin"
	"github.com/2389/schoolsite/internal/broadcast"
	"github.com/2389/schoolsite/internal/content"
	"github.com/2389/schoolsite/internal/remote"
	"github.com/2389/schoolsite/internal/sitedata"
	"github.com/2389/schoolsite/internal/store"
	"github.com/2389/schoolsite/internal/upload"
)

type editor struct {
	local  *sitedata.Store
	syncer *remote.Syncer
	upload *upload.Client
}

func newEditor(t *testing.T, baseURL, token string) *editor {
	t.Helper()
	local := sitedata.New(sitedata.Config{Slot: store.NewMockStore(), Bus: broadcast.New(nil)})
	client := remote.NewClient(remote.ClientConfig{BaseURL: baseURL, Token: token})
	return &editor{
		local:  local,
		syncer: remote.NewSyncer(local, client, nil),
		upload: upload.NewClient(upload.Config{Endpoint: baseURL + remote.DefaultUploadPath, Token: token}),
	}
}

func TestEndToEnd_SaveOnOneEditorPullOnAnother(t *testing.T) {
	_, ts := newTestServer(t, testConfig(t))
	ctx := context.Background()

	first := newEditor(t, ts.URL, testToken)
	assert.Equal(t, content.Default(), first.syncer.PullOnStart(ctx), "empty backend keeps defaults")

	result, err := first.syncer.Save(ctx, content.Partial{Tagline: content.Ptr("Learning for life")})
	require.NoError(t, err)
	assert.Equal(t, remote.TierRemote, result.Tier)

	second := newEditor(t, ts.URL, "")
	doc := second.syncer.PullOnStart(ctx)
	assert.Equal(t, "Learning for life", doc.Tagline)
	assert.Equal(t, "Learning for life", second.local.Load(ctx).Tagline)
}

func TestEndToEnd_WrongTokenStaysLocal(t *testing.T) {
	_, ts := newTestServer(t, testConfig(t))
	ctx := context.Background()

	ed := newEditor(t, ts.URL, "wrong-token")
	result, err := ed.syncer.Save(ctx, content.Partial{Phone: content.Ptr("021 000 0000")})
	require.NoError(t, err)
	assert.Equal(t, remote.TierLocal, result.Tier)
	assert.True(t, remote.IsUnauthorized(result.RemoteErr))
	assert.Equal(t, "021 000 0000", ed.local.Load(ctx).Phone)
}

func TestEndToEnd_SessionUploadsThroughBackend(t *testing.T) {
	_, ts := newTestServer(t, testConfig(t))
	ctx := context.Background()

	ed := newEditor(t, ts.URL, testToken)
	sess := admin.NewSession(ed.local.Load(ctx), ed.syncer, ed.upload, nil)

	url, err := sess.AttachImage(ctx, admin.HeroImage(), pngBytes, "image/png")
	require.NoError(t, err)
	assert.True(t, content.IsRemoteURL(url), "backend upload returns a hosted URL: %s", url)

	result, err := sess.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, remote.TierRemote, result.Tier)
	assert.Contains(t, result.Document.HeroImages, url)
}

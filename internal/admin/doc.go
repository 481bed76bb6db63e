// Package admin holds the editor-side workflow for changing site content.
//
// # Editing sessions
//
// A Session keeps a disposable draft (a content.Partial) over the last
// persisted document. Edits, previews and image attachments touch only the
// draft; nothing is written or broadcast until Save. When the local save
// fails the draft is kept so the admin can retry, and when only the remote
// push fails the save still counts and the result reports the local tier.
//
//	sess := admin.NewSession(store.Load(ctx), syncer, uploader, logger)
//	sess.Edit(func(p *content.Partial) { p.Tagline = content.Ptr("Excellence") })
//	_, _ = sess.AttachImage(ctx, admin.HeroImage(), data, "image/png")
//	result, err := sess.Save(ctx)
//
// # Login
//
// LoginService exchanges the shared admin credential for a short-lived JWT
// that the backend accepts in place of the static admin token.
package admin

// Package preview renders the public about section from site documents.
//
// A Renderer attached to the change bus re-renders on every published
// document, so pages never read the store directly.
package preview

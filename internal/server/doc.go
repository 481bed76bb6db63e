// Package server is the reference backend for the site data document.
//
// # Endpoints
//
//   - GET /health - liveness
//   - GET /api/site-data - stored document, 404 when nothing is stored
//   - POST /api/site-data - replace the document (admin)
//   - POST /api/upload - store an image from the multipart "file" field (admin)
//   - GET /uploads/{name} - uploaded images
//   - POST /api/login - exchange username and password for a write token
//   - GET /preview - rendered about section for the stored document
//
// Admin endpoints read the credential from the x-admin-token header. Posted
// documents go through the same migration as local loads, so legacy shapes
// such as bare-string subjects are stored and returned in canonical form.
//
// Errors are JSON bodies of the form {"error": "..."}.
package server

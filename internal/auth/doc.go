// Package auth guards writes to the site data backend.
//
// Writers present a credential in the x-admin-token header. Two forms are
// accepted: the shared admin token from configuration, compared in constant
// time, or an HS256 JWT issued by POST /api/login after the admin username
// and bcrypt-hashed password check out.
//
// Reads are never guarded.
package auth

// ABOUTME: Admin write guard for the site data backend
// ABOUTME: Accepts the shared admin token or a signed login JWT in the x-admin-token header

package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// HeaderName carries the admin credential on write requests.
const HeaderName = "x-admin-token"

// Credential errors
var (
	ErrMissingToken       = errors.New("missing admin token")
	ErrWrongToken         = errors.New("invalid admin token")
	ErrBadCredentials     = errors.New("invalid username or password")
	ErrLoginNotConfigured = errors.New("admin login is not configured")
)

// Guard decides whether a request may write. With neither a static token nor
// a verifier configured, every request is allowed.
type Guard struct {
	token    string
	verifier TokenVerifier
}

// NewGuard creates a guard. Either argument may be empty/nil.
func NewGuard(staticToken string, verifier TokenVerifier) *Guard {
	return &Guard{token: staticToken, verifier: verifier}
}

// Required reports whether writes need a credential.
func (g *Guard) Required() bool {
	return g.token != "" || g.verifier != nil
}

// Check validates a presented credential.
func (g *Guard) Check(presented string) error {
	if !g.Required() {
		return nil
	}
	if presented == "" {
		return ErrMissingToken
	}
	if g.token != "" && subtle.ConstantTimeCompare([]byte(presented), []byte(g.token)) == 1 {
		return nil
	}
	if g.verifier != nil {
		if _, err := g.verifier.Verify(presented); err == nil {
			return nil
		}
	}
	return ErrWrongToken
}

// Middleware rejects requests whose x-admin-token fails Check with a 401 JSON error.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := g.Check(r.Header.Get(HeaderName)); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Credentials is the single shared admin login.
type Credentials struct {
	Username     string
	PasswordHash string // bcrypt
}

// Check compares username and password against the stored pair.
func (c Credentials) Check(username, password string) error {
	if c.Username == "" || c.PasswordHash == "" {
		return ErrLoginNotConfigured
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	hashErr := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password))
	if !userOK || hashErr != nil {
		return ErrBadCredentials
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for admin.password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

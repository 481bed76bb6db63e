// ABOUTME: Admin login issuing short-lived write tokens
// ABOUTME: Checks the shared credential pair and signs a JWT usable as x-admin-token

package admin

import (
	"errors"
	"fmt"
	"time"

	"github.com/2389/schoolsite/internal/auth"
)

// Default TTL for login tokens: 12 hours.
const defaultTokenTTL = 12 * time.Hour

// Maximum TTL for login tokens: 7 days.
const maxTokenTTL = 7 * 24 * time.Hour

// ErrLoginDisabled is returned when no token generator is configured.
var ErrLoginDisabled = errors.New("token generation not configured (no jwt_secret)")

// TokenGenerator generates JWT tokens.
type TokenGenerator interface {
	Generate(subject string, ttl time.Duration) (string, error)
}

// CredentialChecker validates a username and password.
type CredentialChecker interface {
	Check(username, password string) error
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LoginService exchanges the admin credential for a write token.
type LoginService struct {
	creds    CredentialChecker
	tokenGen TokenGenerator
	ttl      time.Duration
}

// NewLoginService creates a login service. A ttl of zero uses the default;
// ttl is capped at seven days.
func NewLoginService(creds CredentialChecker, tokenGen TokenGenerator, ttl time.Duration) *LoginService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	ttl = min(ttl, maxTokenTTL)
	return &LoginService{creds: creds, tokenGen: tokenGen, ttl: ttl}
}

// Login verifies the credential pair and returns a signed token.
func (s *LoginService) Login(username, password string) (LoginResult, error) {
	if s.tokenGen == nil {
		return LoginResult{}, ErrLoginDisabled
	}
	if err := s.creds.Check(username, password); err != nil {
		return LoginResult{}, err
	}

	token, err := s.tokenGen.Generate(username, s.ttl)
	if err != nil {
		return LoginResult{}, fmt.Errorf("generating token: %w", err)
	}

	return LoginResult{
		Token:     token,
		ExpiresAt: time.Now().Add(s.ttl).UTC().Truncate(time.Second),
	}, nil
}

var _ CredentialChecker = auth.Credentials{}

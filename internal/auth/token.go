// ABOUTME: Signed admin write tokens issued by login and accepted as x-admin-token
// ABOUTME: HS256 tokens carry the admin username, the schoolsite issuer, and a write scope

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is stamped on every token this package signs.
const Issuer = "schoolsite"

// WriteScope grants replacing the site document and uploading images.
const WriteScope = "site-data:write"

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// TokenVerifier checks a presented token and returns the admin it was issued to.
type TokenVerifier interface {
	Verify(tokenString string) (subject string, err error)
}

// AdminClaims are the claims of an admin write token.
type AdminClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// JWTVerifier signs and verifies admin tokens with a shared secret.
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTVerifier creates a verifier for tokens signed with secret.
func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{
		secret: secret,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(Issuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// Verify parses tokenString into AdminClaims and returns the subject.
// The token must be unexpired, issued by schoolsite and carry WriteScope.
func (v *JWTVerifier) Verify(tokenString string) (string, error) {
	claims, err := v.Parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Parse validates tokenString and returns its claims.
func (v *JWTVerifier) Parse(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	_, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}
	if claims.Scope != WriteScope {
		return nil, fmt.Errorf("%w: scope", ErrMissingClaim)
	}
	return claims, nil
}

// Generate signs a write token for the admin named subject.
func (v *JWTVerifier) Generate(subject string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		Scope: WriteScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

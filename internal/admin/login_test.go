// ABOUTME: Tests for admin login token issuance
// ABOUTME: Covers successful login, bad credentials, disabled login, and TTL capping

package admin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/schoolsite/internal/auth"
)

var testSecret = []byte("admin-token-test-secret-32bytes!")

func testCredentials(t *testing.T) auth.Credentials {
	t.Helper()
	hash, err := auth.HashPassword("hunter2")
	require.NoError(t, err)
	return auth.Credentials{Username: "admin", PasswordHash: hash}
}

func TestLogin_Success(t *testing.T) {
	verifier := auth.NewJWTVerifier(testSecret)
	svc := NewLoginService(testCredentials(t), verifier, time.Hour)

	before := time.Now()
	res, err := svc.Login("admin", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.WithinDuration(t, before.Add(time.Hour), res.ExpiresAt, 2*time.Second)

	sub, err := verifier.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", sub)

	assert.NoError(t, auth.NewGuard("", verifier).Check(res.Token))
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := NewLoginService(testCredentials(t), auth.NewJWTVerifier(testSecret), 0)

	_, err := svc.Login("admin", "wrong")
	assert.ErrorIs(t, err, auth.ErrBadCredentials)
}

func TestLogin_Disabled(t *testing.T) {
	svc := NewLoginService(testCredentials(t), nil, 0)

	_, err := svc.Login("admin", "hunter2")
	assert.ErrorIs(t, err, ErrLoginDisabled)
}

func TestLogin_TTLBounds(t *testing.T) {
	creds := testCredentials(t)
	verifier := auth.NewJWTVerifier(testSecret)

	assert.Equal(t, defaultTokenTTL, NewLoginService(creds, verifier, 0).ttl)
	assert.Equal(t, maxTokenTTL, NewLoginService(creds, verifier, 365*24*time.Hour).ttl)
	assert.Equal(t, time.Minute, NewLoginService(creds, verifier, time.Minute).ttl)
}

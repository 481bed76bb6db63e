// ABOUTME: Error types for remote sync and upload calls
// ABOUTME: Every remote failure is transient; unauthorized is a distinguishable subtype

package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// Remote errors
var (
	ErrTransient    = errors.New("remote unavailable")
	ErrUnauthorized = errors.New("remote rejected admin token")
	ErrNoRemoteCopy = errors.New("no remote copy")
)

// RemoteError describes a failed call to the backend.
type RemoteError struct {
	Op     string // "fetch", "push", "upload"
	Status int    // HTTP status, 0 when the request never got a response
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is makes every RemoteError match ErrTransient, and 401/403 responses
// additionally match ErrUnauthorized.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrTransient:
		return true
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

// IsUnauthorized reports whether err is a token rejection.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func newRemoteError(op string, status int, err error) *RemoteError {
	return &RemoteError{Op: op, Status: status, Err: err}
}

package session

import (
	"context"
	"errors"
	"time"

	"github.com/taskgate/taskgate/pkg/auth"
)

// Session mirrors the auth service's session row. Only PrincipalID,
// ExpiresAt, and Revoked feed the validity decision; LastActivityAt is
// advisory and carried for completeness only.
type Session struct {
	ID             string
	PrincipalID    string
	TokenHash      string
	ExpiresAt      time.Time
	Revoked        bool
	LastActivityAt time.Time
}

// ErrNoSession is returned by stores when no session matches a token hash.
var ErrNoSession = errors.New("no session for token hash")

// Store is the narrow, read-only view of the shared session table.
type Store interface {
	// FindByTokenHash returns the session whose token_hash equals digest,
	// or ErrNoSession. Any other error means the store was unreachable.
	FindByTokenHash(ctx context.Context, digest string) (*Session, error)
}

// InvalidError is an authentication failure with a machine-readable
// reason. The reason feeds logs and metrics only; externally every
// InvalidError collapses into the same 401 so a caller holding a stale
// token cannot learn whether the session still exists.
type InvalidError struct {
	Reason string
}

// Error implements the error interface.
func (e *InvalidError) Error() string {
	return "invalid session: " + e.Reason
}

// Unwrap makes every InvalidError match auth.ErrUnauthenticated.
func (e *InvalidError) Unwrap() error {
	return auth.ErrUnauthenticated
}

// FailureReason returns the internal reason label. The auth middleware
// uses it for the auth_failures_total metric.
func (e *InvalidError) FailureReason() string {
	return e.Reason
}

// Validation failure modes, distinguished internally for observability.
var (
	ErrSessionNotFound = &InvalidError{Reason: "session_not_found"}
	ErrSessionExpired  = &InvalidError{Reason: "session_expired"}
	ErrSessionRevoked  = &InvalidError{Reason: "session_revoked"}
)

package auth

import (
	"context"
	"errors"
)

// Principal represents an authenticated caller. It carries only the stable
// identity extracted from a valid session; ownership checks compare IDs
// and nothing else.
type Principal struct {
	// ID is the unique identifier (required, non-empty).
	ID string
}

// Sentinel errors.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access denied")
	ErrTooManyRequests = errors.New("rate limit exceeded")
)

// TokenValidator resolves a raw bearer token to a Principal.
//
// Implementations must distinguish an invalid token (ErrUnauthenticated,
// possibly wrapped with a more specific cause for logging) from a failure
// to reach the session store (any other error). The gateway fails closed
// on both, but they surface as 401 and 503 respectively.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (Principal, error)
}

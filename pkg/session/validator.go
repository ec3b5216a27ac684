package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taskgate/taskgate/pkg/auth"
)

// Validator resolves bearer tokens to principals: hash the token with the
// shared secret, look the digest up in the session store, and apply the
// validity rules. One read per validation, no writes.
type Validator struct {
	store  Store
	hasher *auth.TokenHasher

	// now is replaceable for tests.
	now func() time.Time
}

// Ensure Validator implements auth.TokenValidator at compile time.
var _ auth.TokenValidator = (*Validator)(nil)

// NewValidator creates a validator over the given store and hasher.
func NewValidator(store Store, hasher *auth.TokenHasher) *Validator {
	return &Validator{
		store:  store,
		hasher: hasher,
		now:    time.Now,
	}
}

// ValidateToken maps a raw token to a Principal.
//
//	no matching session        -> ErrSessionNotFound
//	session revoked            -> ErrSessionRevoked
//	session expiry in the past -> ErrSessionExpired
//	otherwise                  -> Principal(session.PrincipalID)
//
// Revocation is checked before expiry: a revoked session stays revoked
// even if its expiry has also passed. A store failure is returned
// unwrapped from the unauthenticated family so callers surface it as a
// transient error, never as a 401.
func (v *Validator) ValidateToken(ctx context.Context, token string) (auth.Principal, error) {
	digest := v.hasher.Hash(token)

	sess, err := v.store.FindByTokenHash(ctx, digest)
	if errors.Is(err, ErrNoSession) {
		return auth.Principal{}, ErrSessionNotFound
	}
	if err != nil {
		return auth.Principal{}, fmt.Errorf("looking up session: %w", err)
	}

	if sess.Revoked {
		return auth.Principal{}, ErrSessionRevoked
	}
	if !sess.ExpiresAt.After(v.now()) {
		return auth.Principal{}, ErrSessionExpired
	}

	return auth.Principal{ID: sess.PrincipalID}, nil
}

// SetNowFunc overrides the clock. Test hook.
func (v *Validator) SetNowFunc(now func() time.Time) {
	v.now = now
}

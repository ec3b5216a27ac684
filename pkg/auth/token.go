package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

// TokenHasher computes keyed digests of bearer tokens using HMAC-SHA256.
//
// The key is the process-wide secret shared out-of-band with the token
// issuing service. Without the secret, possession of the session table
// alone allows neither token forgery nor reconstruction. Mismatched
// secrets between the two services make every token hash to a different
// digest, so validation degrades to "all tokens invalid" rather than
// producing partial matches.
type TokenHasher struct {
	secret []byte
}

// NewTokenHasher creates a hasher from the shared secret. An empty secret
// is a configuration error, never a silent default.
func NewTokenHasher(secret string) (*TokenHasher, error) {
	if secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	return &TokenHasher{secret: []byte(secret)}, nil
}

// Hash returns the hex-encoded HMAC-SHA256 digest of the token.
// Same token and secret always produce the same digest.
func (h *TokenHasher) Hash(token string) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether the token hashes to storedDigest. The comparison
// is constant-time to avoid timing side channels.
func (h *TokenHasher) Verify(token, storedDigest string) bool {
	computed := h.Hash(token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedDigest)) == 1
}

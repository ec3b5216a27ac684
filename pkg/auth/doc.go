// Package auth implements the gateway's trust boundary: it turns an opaque
// bearer token into a Principal and enforces per-principal rate limits
// before any resource handler runs.
//
// The token is treated as a capability handle, never as a claims container.
// Validation is hash-and-lookup only: the token is hashed with a keyed HMAC
// and the digest is matched against a session table owned by the external
// authentication service. No JWT decoding or claim parsing happens here.
//
// Auth is implemented as HTTP middleware, keeping it decoupled from the
// task handlers. The middleware injects the Principal into the request
// context for downstream ownership scoping.
package auth

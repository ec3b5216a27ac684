// Package session validates bearer tokens against the session table owned
// by the external authentication service.
//
// The table is shared mutable truth between two services, so this package
// deliberately accesses it through a single narrow read: find a session by
// token hash. No implementation ever creates, updates, or deletes a row:
// no sliding-expiration touch, no last-activity update. Schema evolution
// stays the auth service's problem.
//
// A session is valid iff it is not revoked and its expiry is in the
// future. No other field affects the decision.
package session

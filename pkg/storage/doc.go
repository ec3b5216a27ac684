// Package storage defines persistence for task resources with ownership
// enforced in the query predicate.
//
// Every read and write takes the owning principal and applies it inside
// the lookup itself. There is deliberately no fetch-by-id-then-check-owner
// path: a task that exists but belongs to another principal is
// indistinguishable from a missing one at this layer (ErrNotFound).
// Endpoints that want to answer 403 instead can combine ErrNotFound with
// the unscoped Exists probe; both outcomes stay distinct so the policy
// choice lives at the endpoint, not here.
package storage

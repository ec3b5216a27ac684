// Package transport exposes the task API over HTTP and maps internal
// outcomes onto the external error taxonomy.
//
// The middleware chain per request is: recovery, request ID, metrics,
// logging, then auth and rate limiting, then the resource handlers.
// Handlers never write raw errors; every failure goes through the
// APIError envelope so the response shape stays uniform and internal
// reasons stay internal.
package transport

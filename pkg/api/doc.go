// Package api defines the wire types for the taskgate task API: the task
// resource, request/response shapes, validation, and the structured error
// taxonomy shared by all layers.
//
// Error types map 1:1 to HTTP status codes at the transport boundary. The
// taxonomy deliberately collapses all authentication failure causes into a
// single "unauthorized" type so that responses never reveal whether a token
// was unknown, expired, or revoked.
package api

// Package api is the HTTP gateway to the storefront REST backend.
//
// Every call is a single JSON request with a bearer token taken from the
// configured token source. A 401 response runs the Unauthorized hook before the
// error is returned, so callers observe the session teardown by the time they see
// [ErrUnauthorized]. Any other failure is an [*Error] matching [ErrOperationFailed]
// that carries the server's message. Nothing is retried.
package api

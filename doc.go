// Package goCart is a storefront client that keeps a session and a shopping cart in
// step with a remote REST backend.
//
// A [Client] holds three pieces of state: the persisted session token, the advisory
// identity decoded from it, and a local cart snapshot. Cart edits are applied to the
// snapshot immediately and then reconciled against the server list, so readers see
// the edit before the round trip completes. Client methods are safe to call from
// multiple goroutines after [Builder.Build].
//
// # Architecture boundaries
//
// goCart is the public surface: [Client], [Builder], [Config] and the value types it
// returns. Token decoding lives in jwt, token persistence in session, HTTP in api,
// the reconciler in cart and the order list view in order. Audit dispatch lives
// under internal/.
//
// # What this package must NOT do
//
//   - Treat decoded token claims as an authorization decision. The backend verifies
//     the token on every call; the session here only drives display and routing.
//   - Retry gateway calls.
//   - Leave a session or cart behind after a 401: the teardown completes before the
//     error reaches the caller.
package goCart

// Package session owns the client-side session model, persistence of the raw session
// token, and the single-writer holder for the current session.
//
// # Token persistence
//
// The raw token is kept under one key with a fixed expiry, the equivalent of the
// storefront's authToken cookie. [RedisTokenStore] keeps it in Redis so several
// processes acting for the same shopper share it; [MemoryTokenStore] keeps it in
// process.
//
// # Architecture boundaries
//
// This package does NOT decode tokens (see package jwt) and does NOT talk to the
// storefront API. Lifecycle orchestration (initialize, login, logout) belongs to the
// Client in the root package.
package session

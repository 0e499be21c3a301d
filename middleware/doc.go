// Package middleware guards storefront HTTP routes by the role of the current
// goCart session.
//
// # Guards
//
//   - [RequireRole]: pass when a session exists and its role is one of the allowed
//     roles, otherwise redirect to the not-found route.
//   - [RequireAdmin]: the back-office guard, ADMIN only.
//   - [RequireShopper]: any signed-in USER or ADMIN.
//
// Passing requests carry the session in their context; read it with
// [SessionFromContext]. The guard only reads the client's decoded session and
// never calls the backend: the server still verifies the token on every call.
package middleware

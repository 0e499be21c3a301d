// Package jwt derives the advisory session view from a compact session token.
//
// The storefront never holds the signing key, so tokens are decoded without signature
// verification. Verification happens server-side on every API call; the decoded
// fields only drive display and navigation.
package jwt

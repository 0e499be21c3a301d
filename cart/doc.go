// Package cart keeps a local mirror of the shopper's server-side cart.
//
// Every mutation is applied optimistically to the local snapshot, sent to the
// storefront API, and then confirmed by re-listing the cart and replacing the
// snapshot wholesale. A rejected mutation either keeps its optimistic state until the
// next Sync (DeferToSync, the storefront's historical behavior) or restores the
// snapshot taken before it (RestorePrior), as chosen by [RejectPolicy].
//
// # Consistency
//
// The snapshot is best-effort between syncs. Overlapping mutations are not
// sequenced: whichever confirming list lands last wins.
package cart

// Package order models storefront orders and the customer order list view:
// tab filtering, id search and fixed-size pagination.
package order

// Package catalog models the public product catalog and the storefront's product
// listing: name search, price range, category selection and fixed-size pages.
package catalog

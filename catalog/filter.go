package catalog

import (
	"slices"
	"strings"
)

// DefaultPageSize is the number of products shown per page.
const DefaultPageSize = 6

// Filter selects which products are listed. Zero values select everything.
type Filter struct {
	// Search is matched case-insensitively against product names.
	Search string
	// MinPrice and MaxPrice bound the price inclusively. MaxPrice 0 means no upper
	// bound.
	MinPrice float64
	MaxPrice float64
	// Categories keeps only products in one of the named categories.
	Categories []string
	// Page is 1-based. Values outside [1, TotalPages] are clamped.
	Page     int
	PageSize int
}

// Page is the result of applying a Filter.
type Page struct {
	Products   []Product
	Page       int
	TotalPages int
	Matched    int
}

// Apply filters products in server order and returns the requested page. The
// input slice is not modified.
func (f Filter) Apply(products []Product) Page {
	size := f.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))

	var matched []Product
	for _, p := range products {
		if term != "" && !strings.Contains(strings.ToLower(p.Name), term) {
			continue
		}
		if p.Price < f.MinPrice || (f.MaxPrice > 0 && p.Price > f.MaxPrice) {
			continue
		}
		if len(f.Categories) > 0 && !slices.Contains(f.Categories, p.CategoryName()) {
			continue
		}
		matched = append(matched, p)
	}

	total := (len(matched) + size - 1) / size
	page := min(f.Page, total)
	if page < 1 {
		page = 1
	}

	out := Page{Page: page, TotalPages: total, Matched: len(matched), Products: []Product{}}
	if total == 0 {
		return out
	}
	start := (page - 1) * size
	end := min(start+size, len(matched))
	out.Products = append(out.Products, matched[start:end]...)
	return out
}

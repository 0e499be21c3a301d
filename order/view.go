package order

import (
	"sort"
	"strings"
)

// DefaultPageSize is the number of orders shown per page.
const DefaultPageSize = 5

// TabAll lists every order except deleted ones.
const TabAll = "ALL"

// View selects which slice of a customer's orders is shown.
type View struct {
	// Tab is TabAll or a Status value. Empty means TabAll.
	Tab string
	// Search is matched case-insensitively against order ids.
	Search string
	// Page is 1-based. Values outside [1, TotalPages] are clamped.
	Page     int
	PageSize int
}

// Page is the result of applying a View.
type Page struct {
	Orders     []Order
	Page       int
	TotalPages int
	// Matched is the number of orders that passed the tab and search filters.
	Matched int
}

// Apply sorts orders newest first, filters by tab and search, and returns the
// requested page. The input slice is not modified.
func (v View) Apply(orders []Order) Page {
	size := v.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	tab := strings.ToUpper(strings.TrimSpace(v.Tab))
	if tab == "" {
		tab = TabAll
	}
	term := strings.ToLower(strings.TrimSpace(v.Search))

	sorted := make([]Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	matched := sorted[:0]
	for _, o := range sorted {
		if tab == TabAll {
			if o.Status == StatusDeleted {
				continue
			}
		} else if string(o.Status) != tab {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(o.ID), term) {
			continue
		}
		matched = append(matched, o)
	}

	total := (len(matched) + size - 1) / size
	page := v.Page
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}

	out := Page{Page: page, TotalPages: total, Matched: len(matched), Orders: []Order{}}
	if total == 0 {
		return out
	}
	start := (page - 1) * size
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	out.Orders = append(out.Orders, matched[start:end]...)
	return out
}

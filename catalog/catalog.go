package catalog

import "slices"

// Category groups products.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Product is a catalog entry. Its ID is the product reference taken by cart
// operations.
type Product struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Price    float64   `json:"price"`
	Stock    int       `json:"stock,omitempty"`
	ImageURL string    `json:"imageUrl,omitempty"`
	Category *Category `json:"category,omitempty"`
}

// CategoryName returns the category name, or "" for uncategorized products.
func (p Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

// CategoryNames lists the distinct category names of products in first-seen
// order. Uncategorized products contribute nothing.
func CategoryNames(products []Product) []string {
	var out []string
	for _, p := range products {
		name := p.CategoryName()
		if name == "" || slices.Contains(out, name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// InCategory returns the products whose category id is categoryID.
func InCategory(products []Product, categoryID string) []Product {
	out := []Product{}
	for _, p := range products {
		if p.Category != nil && p.Category.ID == categoryID {
			out = append(out, p)
		}
	}
	return out
}

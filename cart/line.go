package cart

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const placeholderPrefix = "temp-"

// Line is one product-and-quantity entry of the cart.
type Line struct {
	ID         string `json:"id"`
	ProductRef string `json:"productRef"`
	Quantity   int    `json:"quantity"`
}

// Placeholder reports whether the line id was generated locally and has not been
// confirmed by the server yet.
func (l Line) Placeholder() bool {
	return IsPlaceholderID(l.ID)
}

// Record is a cart line as returned by GET /cart. The server may return the product
// reference flat (productId) or nested (product.id).
type Record struct {
	ID        string         `json:"id,omitempty"`
	ProductID string         `json:"productId,omitempty"`
	Product   *RecordProduct `json:"product,omitempty"`
	Quantity  int            `json:"quantity,omitempty"`
}

// RecordProduct is the nested product of a [Record].
type RecordProduct struct {
	ID    string  `json:"id"`
	Name  string  `json:"name,omitempty"`
	Price float64 `json:"price,omitempty"`
}

// Snapshot is the set of lines at one point in time. Order carries no meaning.
type Snapshot []Line

// Count returns the number of lines.
func (s Snapshot) Count() int {
	return len(s)
}

// TotalQuantity sums line quantities.
func (s Snapshot) TotalQuantity() int {
	total := 0
	for _, l := range s {
		total += l.Quantity
	}
	return total
}

// FindProduct returns the line holding productRef.
func (s Snapshot) FindProduct(productRef string) (Line, bool) {
	for _, l := range s {
		if l.ProductRef == productRef {
			return l, true
		}
	}
	return Line{}, false
}

// FindLine returns the line with the given id.
func (s Snapshot) FindLine(lineID string) (Line, bool) {
	for _, l := range s {
		if l.ID == lineID {
			return l, true
		}
	}
	return Line{}, false
}

// Clone returns an independent copy. A nil snapshot clones to an empty one.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	copy(out, s)
	return out
}

// NewPlaceholderID returns a local line id of the form temp-<unix-millis>-<random>.
func NewPlaceholderID(now time.Time) string {
	return fmt.Sprintf("%s%d-%s", placeholderPrefix, now.UnixMilli(), uuid.NewString())
}

// IsPlaceholderID reports whether id was produced by [NewPlaceholderID].
func IsPlaceholderID(id string) bool {
	return strings.HasPrefix(id, placeholderPrefix)
}

// Normalize converts server records into a snapshot. A record without id gets a
// placeholder id; a missing or non-positive quantity becomes 1.
func Normalize(records []Record, newID func() string) Snapshot {
	out := make(Snapshot, 0, len(records))
	for _, rec := range records {
		line := Line{
			ID:         rec.ID,
			ProductRef: rec.ProductID,
			Quantity:   rec.Quantity,
		}
		if line.ID == "" {
			line.ID = newID()
		}
		if line.ProductRef == "" && rec.Product != nil {
			line.ProductRef = rec.Product.ID
		}
		if line.Quantity <= 0 {
			line.Quantity = 1
		}
		out = append(out, line)
	}
	return out
}

func mergeAdd(lines Snapshot, productRef string, quantity int, newID func() string) Snapshot {
	for i := range lines {
		if lines[i].ProductRef == productRef {
			lines[i].Quantity += quantity
			return lines
		}
	}
	return append(lines, Line{ID: newID(), ProductRef: productRef, Quantity: quantity})
}

func removeLine(lines Snapshot, lineID string) Snapshot {
	out := lines[:0]
	for _, l := range lines {
		if l.ID != lineID {
			out = append(out, l)
		}
	}
	return out
}

func replaceQuantity(lines Snapshot, lineID string, quantity int) Snapshot {
	for i := range lines {
		if lines[i].ID == lineID {
			lines[i].Quantity = quantity
		}
	}
	return lines
}

package order

import (
	"encoding/json"
	"strings"
	"time"
)

// Status is the server-side order state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusApproved  Status = "APPROVED"
	StatusCanceled  Status = "CANCELED"
	StatusDeleted   Status = "DELETED"
	StatusPaid      Status = "PAID"
	StatusFailed    Status = "FAILED"
)

var labels = map[Status]string{
	StatusPending:   "Chờ xử lý",
	StatusConfirmed: "Đã xác nhận",
	StatusApproved:  "Đang giao hàng",
	StatusCanceled:  "Đã hủy",
	StatusDeleted:   "Đã xóa",
	StatusPaid:      "Đã thanh toán",
	StatusFailed:    "Thanh toán thất bại",
}

// Label returns the storefront display label, or the raw status when unknown.
func (s Status) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// Known reports whether s is one of the defined statuses.
func (s Status) Known() bool {
	_, ok := labels[s]
	return ok
}

// Item is one order line as returned by the server.
type Item struct {
	ID          string  `json:"id,omitempty"`
	ProductName string  `json:"productName,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Subtotal    float64 `json:"subtotal,omitempty"`
}

// Order is a placed order.
type Order struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId,omitempty"`
	TotalAmount float64   `json:"totalAmount"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	Items       []Item    `json:"items,omitempty"`
}

// The server emits local timestamps without a zone.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalJSON accepts zone-less timestamps and a nested user object in place of
// userId.
func (o *Order) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          string  `json:"id"`
		UserID      string  `json:"userId"`
		TotalAmount float64 `json:"totalAmount"`
		Status      Status  `json:"status"`
		CreatedAt   string  `json:"createdAt"`
		Items       []Item  `json:"items"`
		User        *struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*o = Order{
		ID:          raw.ID,
		UserID:      raw.UserID,
		TotalAmount: raw.TotalAmount,
		Status:      Status(strings.ToUpper(string(raw.Status))),
		Items:       raw.Items,
	}
	if o.UserID == "" && raw.User != nil {
		o.UserID = raw.User.ID
	}
	if raw.CreatedAt != "" {
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, raw.CreatedAt); err == nil {
				o.CreatedAt = t
				break
			}
		}
	}
	return nil
}

// ItemCount sums item quantities.
func (o Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

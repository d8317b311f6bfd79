package order

import (
	"errors"
	"time"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

// ErrNotFound indicates no order matches the given number or id.
var ErrNotFound = errors.New("order not found")

// ErrInvalidStatus indicates an unknown or disallowed status transition.
var ErrInvalidStatus = errors.New("invalid order status")

// ErrEmptyOrder indicates an attempt to create an order with no lines.
var ErrEmptyOrder = errors.New("order has no items")

// Order statuses. Kiosk orders start pending and are marked paid by the
// payment notification; the rest are driven from the admin console.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusPaid, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Item is a priced order line frozen at checkout time. Name, unit price and
// the chosen options are snapshots; later menu edits do not affect it.
type Item struct {
	ID         int64           `json:"id"`
	MenuItemID int64           `json:"menuItemId"`
	Name       string          `json:"name"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  pricing.Money   `json:"unitPrice"`
	Size       string          `json:"size,omitempty"`
	Pieces     int64           `json:"pieces,omitempty"`
	Extras     []pricing.Extra `json:"extras,omitempty"`
	Total      pricing.Money   `json:"total"`
}

// Order is a persisted kiosk order.
type Order struct {
	ID         int64         `json:"id"`
	Number     string        `json:"orderNumber"`
	Email      string        `json:"email,omitempty"`
	Phone      string        `json:"phone,omitempty"`
	Total      pricing.Money `json:"total"`
	Status     string        `json:"status"`
	PaymentRef string        `json:"paymentRef,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	Items      []Item        `json:"items"`
}

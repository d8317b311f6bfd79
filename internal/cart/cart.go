package cart

import (
	"errors"
	"sort"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

// ErrLineNotFound indicates a mutation targeted a cart line that is no longer present.
var ErrLineNotFound = errors.New("cart line not found")

// Line is one configured, quantity-bearing entry in the cart. Extras are
// snapshot copies taken at add time, not live catalog references.
type Line struct {
	CartID    string          `json:"cartId"`
	ItemID    int64           `json:"itemId"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	UnitPrice pricing.Money   `json:"unitPrice"`
	Size      string          `json:"size,omitempty"`
	PieceID   int64           `json:"pieceId,omitempty"`
	Pieces    int             `json:"pieces,omitempty"`
	Extras    []pricing.Extra `json:"extras,omitempty"`
	Quantity  int             `json:"quantity"`
	Total     pricing.Money   `json:"total"`
}

// Cart is the session-scoped aggregate: insertion-ordered lines plus the
// derived grand total. Total is never mutated directly, only recomputed.
type Cart struct {
	Lines []Line        `json:"lines"`
	Total pricing.Money `json:"total"`
}

// Add merges the line into an existing one with identical option identity
// (same item, same variant, set-equal extras) by bumping its quantity, or
// appends it as a new line. It returns the cartId of the affected line.
func (c *Cart) Add(line Line) string {
	for i := range c.Lines {
		if sameIdentity(c.Lines[i], line) {
			c.Lines[i].Quantity += line.Quantity
			c.recompute()
			return c.Lines[i].CartID
		}
	}
	c.Lines = append(c.Lines, line)
	c.recompute()
	return line.CartID
}

// UpdateQuantity sets the quantity for a line. A quantity below 1 removes the
// line instead of persisting a zero-quantity entry.
func (c *Cart) UpdateQuantity(cartID string, qty int) error {
	if qty < 1 {
		if !c.remove(cartID) {
			return ErrLineNotFound
		}
		c.recompute()
		return nil
	}
	for i := range c.Lines {
		if c.Lines[i].CartID == cartID {
			c.Lines[i].Quantity = qty
			c.recompute()
			return nil
		}
	}
	return ErrLineNotFound
}

// Remove deletes the line if present. Removing an absent cartId is a no-op.
func (c *Cart) Remove(cartID string) {
	if c.remove(cartID) {
		c.recompute()
	}
}

// Clear empties the cart and resets the total.
func (c *Cart) Clear() {
	c.Lines = nil
	c.Total = 0
}

// Snapshot returns a deep copy safe to hand to the checkout flow.
func (c *Cart) Snapshot() Cart {
	copied := Cart{Total: c.Total}
	if len(c.Lines) > 0 {
		copied.Lines = make([]Line, len(c.Lines))
		copy(copied.Lines, c.Lines)
		for i := range copied.Lines {
			if len(c.Lines[i].Extras) > 0 {
				copied.Lines[i].Extras = append([]pricing.Extra(nil), c.Lines[i].Extras...)
			}
		}
	}
	return copied
}

func (c *Cart) remove(cartID string) bool {
	for i := range c.Lines {
		if c.Lines[i].CartID == cartID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// recompute re-derives every line total and the grand total from scratch so
// the aggregate can never drift from an incremental running sum.
func (c *Cart) recompute() {
	var total pricing.Money
	for i := range c.Lines {
		c.Lines[i].Total = pricing.LineTotal(c.Lines[i].UnitPrice, c.Lines[i].Extras, c.Lines[i].Quantity)
		total += c.Lines[i].Total
	}
	c.Total = total
}

// sameIdentity matches lines on catalog item, variant identity, and extras as
// an order-independent id set. Two extras selections in different orders merge
// into the same line.
func sameIdentity(a, b Line) bool {
	if a.ItemID != b.ItemID || a.Size != b.Size || a.PieceID != b.PieceID {
		return false
	}
	aIDs := sortedExtraIDs(a.Extras)
	bIDs := sortedExtraIDs(b.Extras)
	if len(aIDs) != len(bIDs) {
		return false
	}
	for i := range aIDs {
		if aIDs[i] != bIDs[i] {
			return false
		}
	}
	return true
}

func sortedExtraIDs(extras []pricing.Extra) []int64 {
	if len(extras) == 0 {
		return nil
	}
	ids := make([]int64, len(extras))
	for i, extra := range extras {
		ids[i] = extra.ID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

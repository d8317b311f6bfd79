package pricing

import (
	"errors"
	"fmt"
)

// ErrInvalidSelection is returned when a referenced size, piece option, or extra does not exist on the item.
var ErrInvalidSelection = errors.New("invalid selection")

// ErrInvalidQuantity is returned when a quantity below 1 is requested.
var ErrInvalidQuantity = errors.New("invalid quantity")

// Extra is an independently toggled additive option.
type Extra struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price Money  `json:"price"`
}

// SizeVariant replaces the item base price with its own absolute price when selected.
type SizeVariant struct {
	Name  string `json:"name"`
	Price Money  `json:"price"`
}

// PieceVariant is a piece-count option with an absolute price replacing the base price.
type PieceVariant struct {
	ID      int64 `json:"id"`
	Pieces  int   `json:"quantity"`
	Price   Money `json:"price"`
	Default bool  `json:"is_default"`
}

// Item is the catalog shape the pricing engine operates on. At most one of
// Sizes and PieceOptions may be populated.
type Item struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Image        string         `json:"image_url"`
	Category     string         `json:"category"`
	Price        Money          `json:"price"`
	Extras       []Extra        `json:"extras"`
	Sizes        []SizeVariant  `json:"sizes"`
	PieceOptions []PieceVariant `json:"piece_options"`
}

// Selection identifies the chosen variant: a size name or a piece-variant id,
// never both. The zero value means "no explicit selection".
type Selection struct {
	Size  string
	Piece int64
}

// None reports whether no explicit selection was made.
func (s Selection) None() bool { return s.Size == "" && s.Piece == 0 }

// Resolved carries the outcome of variant resolution for a selection.
type Resolved struct {
	UnitPrice Money
	Size      string
	PieceID   int64
	Pieces    int
}

// Quote is the deterministic pricing result for one configured line.
type Quote struct {
	Resolved
	Extras      []Extra
	ExtrasTotal Money
	Quantity    int
	LineTotal   Money
}

// DefaultSelection derives the selection used when the caller supplies none:
// the piece variant flagged as default (first declared when none is flagged),
// or the first declared size. Items without variants yield the zero Selection.
func DefaultSelection(item Item) Selection {
	if len(item.PieceOptions) > 0 {
		def := item.PieceOptions[0]
		for _, opt := range item.PieceOptions {
			if opt.Default {
				def = opt
				break
			}
		}
		return Selection{Piece: def.ID}
	}
	if len(item.Sizes) > 0 {
		return Selection{Size: item.Sizes[0].Name}
	}
	return Selection{}
}

// Resolve determines the unit price and variant identity for the given
// selection. An empty selection falls back to DefaultSelection; it never
// errors merely because nothing was chosen.
func Resolve(item Item, sel Selection) (Resolved, error) {
	if sel.Size != "" && sel.Piece != 0 {
		return Resolved{}, fmt.Errorf("size and piece option are mutually exclusive: %w", ErrInvalidSelection)
	}
	if sel.None() {
		sel = DefaultSelection(item)
	}
	if sel.Piece != 0 {
		for _, opt := range item.PieceOptions {
			if opt.ID == sel.Piece {
				return Resolved{UnitPrice: opt.Price, PieceID: opt.ID, Pieces: opt.Pieces}, nil
			}
		}
		return Resolved{}, fmt.Errorf("piece option %d not on item %d: %w", sel.Piece, item.ID, ErrInvalidSelection)
	}
	if sel.Size != "" {
		for _, size := range item.Sizes {
			if size.Name == sel.Size {
				return Resolved{UnitPrice: size.Price, Size: size.Name}, nil
			}
		}
		return Resolved{}, fmt.Errorf("size %q not on item %d: %w", sel.Size, item.ID, ErrInvalidSelection)
	}
	return Resolved{UnitPrice: item.Price}, nil
}

// PickExtras snapshots the item extras referenced by id. Snapshot copies keep
// a cart line stable when the catalog changes later.
func PickExtras(item Item, extraIDs []int64) ([]Extra, error) {
	if len(extraIDs) == 0 {
		return nil, nil
	}
	picked := make([]Extra, 0, len(extraIDs))
	for _, id := range extraIDs {
		found := false
		for _, extra := range item.Extras {
			if extra.ID == id {
				picked = append(picked, extra)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("extra %d not on item %d: %w", id, item.ID, ErrInvalidSelection)
		}
	}
	return picked, nil
}

// ExtrasTotal sums extra prices. Extras are always additive to the resolved
// unit price, never mutually exclusive with variants.
func ExtrasTotal(extras []Extra) Money {
	var total Money
	for _, extra := range extras {
		total += extra.Price
	}
	return total
}

// LineTotal computes (unit price + extras total) x quantity.
func LineTotal(unitPrice Money, extras []Extra, qty int) Money {
	return (unitPrice + ExtrasTotal(extras)) * Money(qty)
}

// Compute quotes a line: resolves the variant, snapshots the selected extras,
// and computes the line total. It has no side effects.
func Compute(item Item, sel Selection, extraIDs []int64, qty int) (Quote, error) {
	if qty < 1 {
		return Quote{}, fmt.Errorf("quantity %d: %w", qty, ErrInvalidQuantity)
	}
	resolved, err := Resolve(item, sel)
	if err != nil {
		return Quote{}, err
	}
	extras, err := PickExtras(item, extraIDs)
	if err != nil {
		return Quote{}, err
	}
	extrasTotal := ExtrasTotal(extras)
	return Quote{
		Resolved:    resolved,
		Extras:      extras,
		ExtrasTotal: extrasTotal,
		Quantity:    qty,
		LineTotal:   (resolved.UnitPrice + extrasTotal) * Money(qty),
	}, nil
}

package menu

import (
	"errors"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

// ErrNotFound indicates the requested menu entity does not exist.
var ErrNotFound = errors.New("menu entity not found")

// ErrInvalidInput indicates an admin payload failed validation.
var ErrInvalidInput = errors.New("invalid menu input")

// Category groups menu items on the kiosk home screen.
type Category struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Image        string `json:"image_url,omitempty"`
	DisplayOrder int    `json:"display_order"`
}

// Item is a menu item with its option definitions. Prices are minor units.
// An item carries sizes or piece options, never both.
type Item struct {
	ID           int64                  `json:"id"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	Price        pricing.Money          `json:"price"`
	Category     string                 `json:"category"`
	Image        string                 `json:"image_url,omitempty"`
	Available    bool                   `json:"available"`
	Extras       []pricing.Extra        `json:"extras"`
	Sizes        []pricing.SizeVariant  `json:"sizes"`
	PieceOptions []pricing.PieceVariant `json:"piece_options"`
}

// Pricing projects the item onto the shape the pricing engine consumes.
func (i Item) Pricing() pricing.Item {
	return pricing.Item{
		ID:           i.ID,
		Name:         i.Name,
		Image:        i.Image,
		Category:     i.Category,
		Price:        i.Price,
		Extras:       i.Extras,
		Sizes:        i.Sizes,
		PieceOptions: i.PieceOptions,
	}
}

// ExtraInput defines one extra on an item payload.
type ExtraInput struct {
	Name  string        `json:"name" validate:"required"`
	Price pricing.Money `json:"price" validate:"gte=0"`
}

// SizeInput defines one size variant on an item payload.
type SizeInput struct {
	Name  string        `json:"name" validate:"required"`
	Price pricing.Money `json:"price" validate:"gte=0"`
}

// PieceInput defines one piece-count option on an item payload.
type PieceInput struct {
	Quantity  int           `json:"quantity" validate:"gte=1"`
	Price     pricing.Money `json:"price" validate:"gte=0"`
	IsDefault bool          `json:"is_default"`
}

// ItemInput is the admin create/update payload for a menu item.
type ItemInput struct {
	Name         string        `json:"name" validate:"required"`
	Description  string        `json:"description"`
	Price        pricing.Money `json:"price" validate:"gte=0"`
	Category     string        `json:"category" validate:"required"`
	Image        string        `json:"image_url"`
	Available    *bool         `json:"available"`
	Extras       []ExtraInput  `json:"extras" validate:"dive"`
	Sizes        []SizeInput   `json:"sizes" validate:"dive"`
	PieceOptions []PieceInput  `json:"piece_options" validate:"dive"`
}

// CheckVariants enforces what the field tags cannot: an item carries either
// size variants or piece options, never both, and at most one piece option
// may be flagged as the default.
func (in ItemInput) CheckVariants() error {
	if len(in.Sizes) > 0 && len(in.PieceOptions) > 0 {
		return errors.New("sizes and piece_options are mutually exclusive")
	}
	defaults := 0
	for _, p := range in.PieceOptions {
		if p.IsDefault {
			defaults++
		}
	}
	if defaults > 1 {
		return errors.New("at most one piece option can be the default")
	}
	return nil
}

// CategoryInput is the admin create/update payload for a category.
type CategoryInput struct {
	Name         string `json:"name" validate:"required"`
	Image        string `json:"image_url"`
	DisplayOrder int    `json:"display_order" validate:"gte=0"`
}

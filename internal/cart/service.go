package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

// ItemSource supplies fully-resolved catalog items for pricing. The cart never
// caches or merges catalog data across fetches itself.
type ItemSource interface {
	PricingItem(ctx context.Context, id int64) (pricing.Item, error)
}

// AddInput describes one add-to-cart request. Size and PieceID are mutually
// exclusive; leaving both empty applies default variant resolution.
type AddInput struct {
	ItemID   int64   `json:"itemId"`
	Size     string  `json:"size"`
	PieceID  int64   `json:"pieceId"`
	ExtraIDs []int64 `json:"extraIds"`
}

// Service owns all cart mutations for kiosk sessions. Every operation loads
// the persisted aggregate, applies one atomic mutation, and saves it back,
// leaving the cart fully consistent before returning.
type Service struct {
	Catalog ItemSource
	Store   *Store
	NewID   func() string
}

func (s *Service) newID() string {
	if s != nil && s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// AddItem prices the configured item and appends or merges a quantity-1 line.
// A rejected add (invalid selection) leaves the cart unchanged.
func (s *Service) AddItem(ctx context.Context, session string, in AddInput) (Cart, error) {
	if s == nil || s.Catalog == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	item, err := s.Catalog.PricingItem(ctx, in.ItemID)
	if err != nil {
		return Cart{}, fmt.Errorf("resolve item %d: %w", in.ItemID, err)
	}
	quote, err := pricing.Compute(item, pricing.Selection{Size: in.Size, Piece: in.PieceID}, in.ExtraIDs, 1)
	if err != nil {
		return Cart{}, err
	}
	c, err := s.Store.Load(ctx, session)
	if err != nil {
		return Cart{}, err
	}
	c.Add(Line{
		CartID:    s.newID(),
		ItemID:    item.ID,
		Name:      item.Name,
		Image:     item.Image,
		UnitPrice: quote.UnitPrice,
		Size:      quote.Size,
		PieceID:   quote.PieceID,
		Pieces:    quote.Pieces,
		Extras:    quote.Extras,
		Quantity:  1,
	})
	if err := s.Store.Save(ctx, session, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// UpdateQuantity changes a line quantity; a quantity below 1 removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, session, cartID string, qty int) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	c, err := s.Store.Load(ctx, session)
	if err != nil {
		return Cart{}, err
	}
	if err := c.UpdateQuantity(cartID, qty); err != nil {
		return Cart{}, err
	}
	if err := s.Store.Save(ctx, session, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Remove drops a line. Removing an absent cartId is benign.
func (s *Service) Remove(ctx context.Context, session, cartID string) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	c, err := s.Store.Load(ctx, session)
	if err != nil {
		return Cart{}, err
	}
	c.Remove(cartID)
	if err := s.Store.Save(ctx, session, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Clear empties the session cart.
func (s *Service) Clear(ctx context.Context, session string) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	return s.Store.Delete(ctx, session)
}

// Get returns the current cart for display.
func (s *Service) Get(ctx context.Context, session string) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	return s.Store.Load(ctx, session)
}

// Snapshot returns an immutable copy of the cart for the checkout flow.
func (s *Service) Snapshot(ctx context.Context, session string) (Cart, error) {
	c, err := s.Get(ctx, session)
	if err != nil {
		return Cart{}, err
	}
	return c.Snapshot(), nil
}

package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/cart"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/order"
)

// ErrEmptyCart indicates checkout was attempted on a cart with no lines.
var ErrEmptyCart = errors.New("cart is empty")

// CartSource is the cart surface checkout needs.
type CartSource interface {
	Snapshot(ctx context.Context, session string) (cart.Cart, error)
	Clear(ctx context.Context, session string) error
}

// OrderCreator persists an order from a cart snapshot.
type OrderCreator interface {
	Create(ctx context.Context, snapshot cart.Cart, in order.CreateInput) (order.Order, error)
}

// Input is the checkout request payload.
type Input struct {
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	PaymentRef    string `json:"paymentRef"`
	PaymentMethod string `json:"paymentMethod"`
}

// Service turns a session cart into a persisted order. The cart is snapshot
// first and only cleared after the order is stored, so a failed checkout
// leaves the cart exactly as it was.
type Service struct {
	Carts  CartSource
	Orders OrderCreator
	Log    zerolog.Logger
}

// Complete creates an order from the session's cart and clears the cart.
func (s *Service) Complete(ctx context.Context, session string, in Input) (order.Order, error) {
	if s == nil || s.Carts == nil || s.Orders == nil {
		return order.Order{}, errors.New("checkout service not configured")
	}
	// Contact details are optional; without them the order simply gets no
	// receipt notification.
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	snapshot, err := s.Carts.Snapshot(ctx, session)
	if err != nil {
		return order.Order{}, fmt.Errorf("snapshot cart: %w", err)
	}
	if len(snapshot.Lines) == 0 {
		return order.Order{}, ErrEmptyCart
	}

	o, err := s.Orders.Create(ctx, snapshot, order.CreateInput{
		Email:      in.Email,
		Phone:      in.Phone,
		PaymentRef: in.PaymentRef,
	})
	if err != nil {
		return order.Order{}, err
	}

	// The order is already durable; a failed clear only risks a stale cart.
	if err := s.Carts.Clear(ctx, session); err != nil {
		s.Log.Error().Err(err).Str("session", session).Str("order_number", o.Number).Msg("clear cart after checkout")
	}
	return o, nil
}

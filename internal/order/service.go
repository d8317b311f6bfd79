package order

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/cart"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/events"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/obs"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

// Store is the persistence surface the service needs. *Repo satisfies it.
type Store interface {
	Create(ctx context.Context, o *Order) error
	GetByNumber(ctx context.Context, number string) (Order, error)
	List(ctx context.Context, status string, limit, offset int) ([]Order, int, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	MarkPaid(ctx context.Context, number string, amount pricing.Money, paymentRef string) error
}

// CreateInput carries the contact details captured at checkout.
type CreateInput struct {
	Email      string
	Phone      string
	PaymentRef string
}

// Service owns the order lifecycle.
type Service struct {
	Store  Store
	Events *events.Bus
	Log    zerolog.Logger
}

const numberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const numberLength = 8

// NewNumber returns a random 8-character order number.
func NewNumber() (string, error) {
	buf := make([]byte, numberLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}
	for i, b := range buf {
		buf[i] = numberAlphabet[int(b)%len(numberAlphabet)]
	}
	return string(buf), nil
}

// Create persists an order built from a cart snapshot. Line prices are carried
// over verbatim; the stored total is the snapshot total, not a re-sum, so the
// order reflects exactly what the kiosk displayed. Number collisions are
// retried with a fresh number.
func (s *Service) Create(ctx context.Context, snapshot cart.Cart, in CreateInput) (Order, error) {
	if s == nil || s.Store == nil {
		return Order{}, errors.New("order service not configured")
	}
	if len(snapshot.Lines) == 0 {
		return Order{}, ErrEmptyOrder
	}
	items := make([]Item, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		items = append(items, Item{
			MenuItemID: line.ItemID,
			Name:       line.Name,
			Quantity:   int64(line.Quantity),
			UnitPrice:  line.UnitPrice,
			Size:       line.Size,
			Pieces:     int64(line.Pieces),
			Extras:     append([]pricing.Extra(nil), line.Extras...),
			Total:      line.Total,
		})
	}

	var o Order
	for attempt := 0; attempt < 5; attempt++ {
		number, err := NewNumber()
		if err != nil {
			return Order{}, err
		}
		o = Order{
			Number:     number,
			Email:      in.Email,
			Phone:      in.Phone,
			Total:      snapshot.Total,
			Status:     StatusPending,
			PaymentRef: in.PaymentRef,
			Items:      items,
		}
		err = s.Store.Create(ctx, &o)
		if err == nil {
			if obs.OrdersCreatedTotal != nil {
				obs.OrdersCreatedTotal.Inc()
			}
			s.Log.Info().Str("order_number", o.Number).Int64("total", o.Total).Int("lines", len(o.Items)).Msg("order created")
			if s.Events != nil {
				if _, emitErr := s.Events.Emit(ctx, events.TopicOrderCreated, o.Number, o); emitErr != nil {
					s.Log.Error().Err(emitErr).Str("order_number", o.Number).Msg("emit order.created")
				}
			}
			return o, nil
		}
		if !errors.Is(err, ErrDuplicateNumber) {
			return Order{}, err
		}
	}
	return Order{}, errors.New("could not allocate a unique order number")
}

// ByNumber returns the order for a kiosk status lookup.
func (s *Service) ByNumber(ctx context.Context, number string) (Order, error) {
	return s.Store.GetByNumber(ctx, number)
}

// AmountDue reports the total owed on an order, for payment intents.
func (s *Service) AmountDue(ctx context.Context, number string) (pricing.Money, error) {
	o, err := s.Store.GetByNumber(ctx, number)
	if err != nil {
		return 0, err
	}
	return o.Total, nil
}

// MarkPaid settles an order from a verified payment notification and emits
// order.paid. Redelivered notifications are absorbed by the store.
func (s *Service) MarkPaid(ctx context.Context, number string, amount pricing.Money) error {
	if err := s.Store.MarkPaid(ctx, number, amount, ""); err != nil {
		return err
	}
	if s.Events != nil {
		if _, err := s.Events.Emit(ctx, events.TopicOrderPaid, number, map[string]any{"amount": amount}); err != nil {
			s.Log.Error().Err(err).Str("order_number", number).Msg("emit order.paid")
		}
	}
	return nil
}

// List returns orders for the admin console.
func (s *Service) List(ctx context.Context, status string, page, perPage int) ([]Order, int, error) {
	if status != "" && !ValidStatus(status) {
		return nil, 0, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	return s.Store.List(ctx, status, perPage, (page-1)*perPage)
}

// SetStatus applies an admin status transition.
func (s *Service) SetStatus(ctx context.Context, id int64, status string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	return s.Store.UpdateStatus(ctx, id, status)
}

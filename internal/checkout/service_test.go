package checkout_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/cart"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/checkout"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/order"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

type fakeCarts struct {
	carts   map[string]cart.Cart
	cleared []string
}

func (f *fakeCarts) Snapshot(_ context.Context, session string) (cart.Cart, error) {
	return f.carts[session], nil
}

func (f *fakeCarts) Clear(_ context.Context, session string) error {
	f.cleared = append(f.cleared, session)
	delete(f.carts, session)
	return nil
}

type fakeOrders struct {
	created []order.CreateInput
	err     error
}

func (f *fakeOrders) Create(_ context.Context, snapshot cart.Cart, in order.CreateInput) (order.Order, error) {
	if f.err != nil {
		return order.Order{}, f.err
	}
	f.created = append(f.created, in)
	items := make([]order.Item, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		items = append(items, order.Item{Name: line.Name, Quantity: int64(line.Quantity), Total: line.Total})
	}
	return order.Order{ID: 1, Number: "AB12CD34", Total: snapshot.Total, Status: order.StatusPending, Items: items}, nil
}

func filledCart() cart.Cart {
	return cart.Cart{
		Lines: []cart.Line{{CartID: "c1", ItemID: 1, Name: "Classic Burger", UnitPrice: 7000, Quantity: 2, Total: 14000}},
		Total: 14000,
	}
}

func TestCompleteCreatesOrderAndClearsCart(t *testing.T) {
	carts := &fakeCarts{carts: map[string]cart.Cart{"sess-1": filledCart()}}
	orders := &fakeOrders{}
	svc := &checkout.Service{Carts: carts, Orders: orders}

	o, err := svc.Complete(context.Background(), "sess-1", checkout.Input{Email: "jo@example.com", PaymentRef: "pi_123"})
	require.NoError(t, err)
	require.Equal(t, "AB12CD34", o.Number)
	require.Equal(t, pricing.Money(14000), o.Total)
	require.Equal(t, []string{"sess-1"}, carts.cleared)
	require.Len(t, orders.created, 1)
	require.Equal(t, "pi_123", orders.created[0].PaymentRef)
}

func TestCompleteAllowsAnonymousOrders(t *testing.T) {
	carts := &fakeCarts{carts: map[string]cart.Cart{"sess-1": filledCart()}}
	orders := &fakeOrders{}
	svc := &checkout.Service{Carts: carts, Orders: orders}

	o, err := svc.Complete(context.Background(), "sess-1", checkout.Input{PaymentRef: "pf_456"})
	require.NoError(t, err)
	require.NotEmpty(t, o.Number)
	require.Len(t, orders.created, 1)
	require.Empty(t, orders.created[0].Email)
	require.Empty(t, orders.created[0].Phone)
}

func TestCompleteRejectsEmptyCart(t *testing.T) {
	carts := &fakeCarts{carts: map[string]cart.Cart{}}
	svc := &checkout.Service{Carts: carts, Orders: &fakeOrders{}}

	_, err := svc.Complete(context.Background(), "sess-1", checkout.Input{Phone: "0821234567"})
	require.ErrorIs(t, err, checkout.ErrEmptyCart)
	require.Empty(t, carts.cleared)
}

func TestCompleteLeavesCartOnOrderFailure(t *testing.T) {
	carts := &fakeCarts{carts: map[string]cart.Cart{"sess-1": filledCart()}}
	boom := errors.New("db down")
	svc := &checkout.Service{Carts: carts, Orders: &fakeOrders{err: boom}}

	_, err := svc.Complete(context.Background(), "sess-1", checkout.Input{Email: "jo@example.com"})
	require.ErrorIs(t, err, boom)
	require.Empty(t, carts.cleared)
	require.Len(t, carts.carts["sess-1"].Lines, 1, "cart is untouched on failure")
}

func TestCheckoutHandler(t *testing.T) {
	carts := &fakeCarts{carts: map[string]cart.Cart{"sess-1": filledCart()}}
	h := &checkout.Handler{Svc: &checkout.Service{Carts: carts, Orders: &fakeOrders{}}}
	router := chi.NewRouter()
	router.Mount("/api/v1/checkout", h.Routes())

	body, _ := json.Marshal(checkout.Input{Email: "jo@example.com"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/checkout/sess-1", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data order.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "AB12CD34", resp.Data.Number)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/checkout/sess-1", bytes.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, rec.Code, "cart already consumed")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/checkout/sess-2", bytes.NewReader([]byte(`{}`))))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

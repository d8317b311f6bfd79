package order_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/cart"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/events"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/order"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

type fakeStore struct {
	byNumber   map[string]order.Order
	nextID     int64
	failNumber string
}

func newFakeStore() *fakeStore {
	return &fakeStore{byNumber: map[string]order.Order{}, nextID: 1}
}

func (f *fakeStore) Create(_ context.Context, o *order.Order) error {
	if _, exists := f.byNumber[o.Number]; exists || o.Number == f.failNumber {
		return order.ErrDuplicateNumber
	}
	o.ID = f.nextID
	f.nextID++
	f.byNumber[o.Number] = *o
	return nil
}

func (f *fakeStore) GetByNumber(_ context.Context, number string) (order.Order, error) {
	o, ok := f.byNumber[number]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}
	return o, nil
}

func (f *fakeStore) List(_ context.Context, status string, limit, offset int) ([]order.Order, int, error) {
	var out []order.Order
	for _, o := range f.byNumber {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id int64, status string) error {
	for number, o := range f.byNumber {
		if o.ID == id {
			o.Status = status
			f.byNumber[number] = o
			return nil
		}
	}
	return order.ErrNotFound
}

func (f *fakeStore) MarkPaid(_ context.Context, number string, amount pricing.Money, ref string) error {
	o, ok := f.byNumber[number]
	if !ok {
		return order.ErrNotFound
	}
	if o.Status == order.StatusPaid {
		return nil
	}
	o.Status = order.StatusPaid
	o.Total = amount
	f.byNumber[number] = o
	return nil
}

type capturingNotifier struct {
	events []events.Event
}

func (c *capturingNotifier) Notify(_ context.Context, ev events.Event) error {
	c.events = append(c.events, ev)
	return nil
}

func snapshot() cart.Cart {
	return cart.Cart{
		Lines: []cart.Line{
			{
				CartID:    "c1",
				ItemID:    1,
				Name:      "Classic Burger",
				UnitPrice: 6500,
				Size:      "Large",
				Extras:    []pricing.Extra{{ID: 10, Name: "Cheese", Price: 500}},
				Quantity:  3,
				Total:     21000,
			},
			{CartID: "c2", ItemID: 2, Name: "Chicken Wings", UnitPrice: 8000, PieceID: 5, Pieces: 8, Quantity: 1, Total: 8000},
		},
		Total: 29000,
	}
}

func newService(store *fakeStore) (*order.Service, *capturingNotifier) {
	notifier := &capturingNotifier{}
	return &order.Service{
		Store:  store,
		Events: &events.Bus{Notifiers: []events.Notifier{notifier}},
	}, notifier
}

func TestCreateFromSnapshot(t *testing.T) {
	store := newFakeStore()
	svc, notifier := newService(store)

	o, err := svc.Create(context.Background(), snapshot(), order.CreateInput{Email: "jo@example.com", Phone: "0821234567"})
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{8}$`), o.Number)
	require.Equal(t, order.StatusPending, o.Status)
	require.Equal(t, pricing.Money(29000), o.Total)
	require.Len(t, o.Items, 2)
	require.Equal(t, "Classic Burger", o.Items[0].Name)
	require.Equal(t, int64(3), o.Items[0].Quantity)
	require.Equal(t, "Large", o.Items[0].Size)
	require.Len(t, o.Items[0].Extras, 1)
	require.Equal(t, int64(8), o.Items[1].Pieces)

	require.Len(t, notifier.events, 1)
	require.Equal(t, events.TopicOrderCreated, notifier.events[0].Topic)
	require.Equal(t, o.Number, notifier.events[0].OrderNumber)
}

func TestCreateRejectsEmptySnapshot(t *testing.T) {
	svc, _ := newService(newFakeStore())
	_, err := svc.Create(context.Background(), cart.Cart{}, order.CreateInput{})
	require.ErrorIs(t, err, order.ErrEmptyOrder)
}

func TestCreateRetriesOnNumberCollision(t *testing.T) {
	store := newFakeStore()
	svc, _ := newService(store)

	first, err := svc.Create(context.Background(), snapshot(), order.CreateInput{})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), snapshot(), order.CreateInput{})
	require.NoError(t, err)
	require.NotEqual(t, first.Number, second.Number)
}

func TestMarkPaidEmitsEvent(t *testing.T) {
	store := newFakeStore()
	svc, notifier := newService(store)

	o, err := svc.Create(context.Background(), snapshot(), order.CreateInput{})
	require.NoError(t, err)

	require.NoError(t, svc.MarkPaid(context.Background(), o.Number, 29000))
	got, err := svc.ByNumber(context.Background(), o.Number)
	require.NoError(t, err)
	require.Equal(t, order.StatusPaid, got.Status)

	require.Len(t, notifier.events, 2)
	require.Equal(t, events.TopicOrderPaid, notifier.events[1].Topic)

	require.NoError(t, svc.MarkPaid(context.Background(), o.Number, 29000), "redelivery is a no-op")
	require.ErrorIs(t, svc.MarkPaid(context.Background(), "NOPE0000", 100), order.ErrNotFound)
}

func TestAmountDue(t *testing.T) {
	store := newFakeStore()
	svc, _ := newService(store)

	o, err := svc.Create(context.Background(), snapshot(), order.CreateInput{})
	require.NoError(t, err)

	amount, err := svc.AmountDue(context.Background(), o.Number)
	require.NoError(t, err)
	require.Equal(t, pricing.Money(29000), amount)

	_, err = svc.AmountDue(context.Background(), "MISSING1")
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestStatusTransitions(t *testing.T) {
	store := newFakeStore()
	svc, _ := newService(store)

	o, err := svc.Create(context.Background(), snapshot(), order.CreateInput{})
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(context.Background(), o.ID, order.StatusPreparing))
	got, err := svc.ByNumber(context.Background(), o.Number)
	require.NoError(t, err)
	require.Equal(t, order.StatusPreparing, got.Status)

	require.ErrorIs(t, svc.SetStatus(context.Background(), o.ID, "shipped"), order.ErrInvalidStatus)
	require.ErrorIs(t, svc.SetStatus(context.Background(), 999, order.StatusReady), order.ErrNotFound)

	_, _, err = svc.List(context.Background(), "bogus", 1, 20)
	require.ErrorIs(t, err, order.ErrInvalidStatus)
}

func TestNewNumberShape(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		n, err := order.NewNumber()
		require.NoError(t, err)
		require.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{8}$`), n)
		seen[n] = true
	}
	require.Greater(t, len(seen), 45, "numbers should be effectively unique")
}

package cart_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/cart"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

type fakeCatalog struct {
	items map[int64]pricing.Item
}

func (f fakeCatalog) PricingItem(_ context.Context, id int64) (pricing.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return pricing.Item{}, fmt.Errorf("item %d not found", id)
	}
	return item, nil
}

func newTestService(t *testing.T) *cart.Service {
	t.Helper()
	store, _ := newTestStore(t)
	catalog := fakeCatalog{items: map[int64]pricing.Item{
		1: {
			ID:    1,
			Name:  "Classic Burger",
			Price: 5000,
			Extras: []pricing.Extra{
				{ID: 10, Name: "Cheese", Price: 500},
				{ID: 11, Name: "Bacon", Price: 700},
			},
			Sizes: []pricing.SizeVariant{
				{Name: "Regular", Price: 5000},
				{Name: "Large", Price: 6500},
			},
		},
		2: {
			ID:    2,
			Name:  "Chicken Wings",
			Price: 4500,
			PieceOptions: []pricing.PieceVariant{
				{ID: 20, Pieces: 4, Price: 4500},
				{ID: 21, Pieces: 8, Price: 8000, Default: true},
			},
		},
	}}
	return &cart.Service{Catalog: catalog, Store: store}
}

func TestServiceAddMergesAcrossRequests(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.AddItem(ctx, "sess", cart.AddInput{ItemID: 1, Size: "Large", ExtraIDs: []int64{10}})
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	require.Equal(t, pricing.Money(7000), c.Total)

	c, err = svc.AddItem(ctx, "sess", cart.AddInput{ItemID: 1, Size: "Large", ExtraIDs: []int64{10}})
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	require.Equal(t, 2, c.Lines[0].Quantity)

	c, err = svc.AddItem(ctx, "sess", cart.AddInput{ItemID: 1, Size: "Large", ExtraIDs: []int64{10, 11}})
	require.NoError(t, err)
	require.Len(t, c.Lines, 2)
	require.Equal(t, pricing.Money(21700), c.Total)
}

func TestServiceAddAppliesDefaultPieceOption(t *testing.T) {
	svc := newTestService(t)
	c, err := svc.AddItem(context.Background(), "sess", cart.AddInput{ItemID: 2})
	require.NoError(t, err)
	require.Equal(t, int64(21), c.Lines[0].PieceID)
	require.Equal(t, 8, c.Lines[0].Pieces)
	require.Equal(t, pricing.Money(8000), c.Total)
}

func TestServiceInvalidSelectionLeavesCartUnchanged(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess", cart.AddInput{ItemID: 1, Size: "Large"})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, "sess", cart.AddInput{ItemID: 1, Size: "Mega"})
	require.ErrorIs(t, err, pricing.ErrInvalidSelection)

	c, err := svc.Get(ctx, "sess")
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	require.Equal(t, pricing.Money(6500), c.Total)
}

func TestServiceSessionsAreIsolated(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "till-1", cart.AddInput{ItemID: 1})
	require.NoError(t, err)

	c, err := svc.Get(ctx, "till-2")
	require.NoError(t, err)
	require.Empty(t, c.Lines)
}

func TestServiceUpdateRemoveClear(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.AddItem(ctx, "sess", cart.AddInput{ItemID: 1})
	require.NoError(t, err)
	id := c.Lines[0].CartID

	c, err = svc.UpdateQuantity(ctx, "sess", id, 4)
	require.NoError(t, err)
	require.Equal(t, 4, c.Lines[0].Quantity)

	_, err = svc.UpdateQuantity(ctx, "sess", "missing", 4)
	require.ErrorIs(t, err, cart.ErrLineNotFound)

	c, err = svc.UpdateQuantity(ctx, "sess", id, 0)
	require.NoError(t, err)
	require.Empty(t, c.Lines)

	c, err = svc.AddItem(ctx, "sess", cart.AddInput{ItemID: 2})
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "sess"))

	snap, err := svc.Snapshot(ctx, "sess")
	require.NoError(t, err)
	require.Empty(t, snap.Lines)
	require.Zero(t, snap.Total)
}

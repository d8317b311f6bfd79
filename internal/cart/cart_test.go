package cart_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/cart"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

var (
	cheese = pricing.Extra{ID: 10, Name: "Cheese", Price: 500}
	bacon  = pricing.Extra{ID: 11, Name: "Bacon", Price: 700}
)

func largeBurgerLine(cartID string, extras ...pricing.Extra) cart.Line {
	return cart.Line{
		CartID:    cartID,
		ItemID:    1,
		Name:      "Classic Burger",
		UnitPrice: 6500,
		Size:      "Large",
		Extras:    extras,
		Quantity:  1,
	}
}

func sumOfLineTotals(c cart.Cart) pricing.Money {
	var sum pricing.Money
	for _, line := range c.Lines {
		sum += line.Total
	}
	return sum
}

func TestAddMergesIdenticalOptions(t *testing.T) {
	var c cart.Cart
	first := c.Add(largeBurgerLine("a", cheese))
	second := c.Add(largeBurgerLine("b", cheese))
	require.Equal(t, first, second)
	require.Len(t, c.Lines, 1)
	require.Equal(t, 2, c.Lines[0].Quantity)
	require.Equal(t, pricing.Money(14000), c.Lines[0].Total)
}

func TestAddMergesExtrasRegardlessOfOrder(t *testing.T) {
	var c cart.Cart
	c.Add(largeBurgerLine("a", cheese, bacon))
	c.Add(largeBurgerLine("b", bacon, cheese))
	require.Len(t, c.Lines, 1)
	require.Equal(t, 2, c.Lines[0].Quantity)
}

func TestAddDistinctVariantStaysSeparate(t *testing.T) {
	var c cart.Cart
	c.Add(largeBurgerLine("a", cheese))
	regular := largeBurgerLine("b", cheese)
	regular.Size = "Regular"
	regular.UnitPrice = 5000
	c.Add(regular)
	require.Len(t, c.Lines, 2)
}

func TestAddDistinctExtrasStaysSeparate(t *testing.T) {
	var c cart.Cart
	c.Add(largeBurgerLine("a", cheese))
	c.Add(largeBurgerLine("b", cheese))
	c.Add(largeBurgerLine("c", cheese, bacon))
	require.Len(t, c.Lines, 2)
	require.Equal(t, 2, c.Lines[0].Quantity)
	require.Equal(t, pricing.Money(14000), c.Lines[0].Total)
	require.Equal(t, pricing.Money(7700), c.Lines[1].Total)
	require.Equal(t, pricing.Money(21700), c.Total)
}

func TestUpdateQuantityRecomputesTotals(t *testing.T) {
	var c cart.Cart
	id := c.Add(largeBurgerLine("a", cheese))
	require.NoError(t, c.UpdateQuantity(id, 3))
	require.Equal(t, pricing.Money(21000), c.Lines[0].Total)
	require.Equal(t, c.Lines[0].Total, c.Total)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	var c cart.Cart
	keep := c.Add(largeBurgerLine("a", cheese))
	drop := c.Add(largeBurgerLine("b", bacon))
	before := c.Total
	dropped := c.Lines[1].Total
	require.NoError(t, c.UpdateQuantity(drop, 0))
	require.Len(t, c.Lines, 1)
	require.Equal(t, keep, c.Lines[0].CartID)
	require.Equal(t, before-dropped, c.Total)
}

func TestUpdateQuantityUnknownLine(t *testing.T) {
	var c cart.Cart
	c.Add(largeBurgerLine("a"))
	require.ErrorIs(t, c.UpdateQuantity("missing", 2), cart.ErrLineNotFound)
	require.ErrorIs(t, c.UpdateQuantity("missing", 0), cart.ErrLineNotFound)
}

func TestRemoveIsIdempotent(t *testing.T) {
	var c cart.Cart
	id := c.Add(largeBurgerLine("a"))
	c.Remove(id)
	require.Empty(t, c.Lines)
	c.Remove(id)
	require.Empty(t, c.Lines)
	require.Equal(t, pricing.Money(0), c.Total)
}

func TestGrandTotalNeverDrifts(t *testing.T) {
	var c cart.Cart
	id1 := c.Add(largeBurgerLine("a", cheese))
	require.Equal(t, sumOfLineTotals(c), c.Total)
	id2 := c.Add(largeBurgerLine("b", cheese, bacon))
	require.Equal(t, sumOfLineTotals(c), c.Total)
	require.NoError(t, c.UpdateQuantity(id1, 5))
	require.Equal(t, sumOfLineTotals(c), c.Total)
	c.Remove(id2)
	require.Equal(t, sumOfLineTotals(c), c.Total)
	require.NoError(t, c.UpdateQuantity(id1, 1))
	require.Equal(t, sumOfLineTotals(c), c.Total)
}

func TestClearResetsEverything(t *testing.T) {
	var c cart.Cart
	c.Add(largeBurgerLine("a", cheese))
	c.Clear()
	require.Empty(t, c.Lines)
	require.Equal(t, pricing.Money(0), c.Total)
	snap := c.Snapshot()
	require.Empty(t, snap.Lines)
	require.Equal(t, pricing.Money(0), snap.Total)
}

func TestSnapshotIsDetached(t *testing.T) {
	var c cart.Cart
	c.Add(largeBurgerLine("a", cheese))
	snap := c.Snapshot()
	snap.Lines[0].Quantity = 99
	snap.Lines[0].Extras[0].Price = 1
	require.Equal(t, 1, c.Lines[0].Quantity)
	require.Equal(t, pricing.Money(500), c.Lines[0].Extras[0].Price)
}

func TestScenarioFromMenuBoard(t *testing.T) {
	// base 50.00, Cheese +5.00, Bacon +7.00, Large absolute 65.00
	var c cart.Cart
	c.Add(largeBurgerLine("a", cheese))
	require.Equal(t, pricing.Money(7000), c.Total)
	c.Add(largeBurgerLine("b", cheese))
	require.Len(t, c.Lines, 1)
	require.Equal(t, pricing.Money(14000), c.Lines[0].Total)
	c.Add(largeBurgerLine("c", cheese, bacon))
	require.Len(t, c.Lines, 2)
	require.Equal(t, pricing.Money(7700), c.Lines[1].Total)
	require.Equal(t, pricing.Money(21700), c.Total)
}

package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

func burger() pricing.Item {
	return pricing.Item{
		ID:       1,
		Name:     "Classic Burger",
		Category: "burgers",
		Price:    5000,
		Extras: []pricing.Extra{
			{ID: 10, Name: "Cheese", Price: 500},
			{ID: 11, Name: "Bacon", Price: 700},
		},
		Sizes: []pricing.SizeVariant{
			{Name: "Regular", Price: 5000},
			{Name: "Large", Price: 6500},
		},
	}
}

func wings() pricing.Item {
	return pricing.Item{
		ID:    2,
		Name:  "Chicken Wings",
		Price: 4500,
		PieceOptions: []pricing.PieceVariant{
			{ID: 20, Pieces: 4, Price: 4500},
			{ID: 21, Pieces: 8, Price: 8000, Default: true},
			{ID: 22, Pieces: 12, Price: 11000},
		},
	}
}

func TestComputePlainItem(t *testing.T) {
	item := pricing.Item{ID: 3, Name: "Chips", Price: 2500}
	for qty := 1; qty <= 5; qty++ {
		quote, err := pricing.Compute(item, pricing.Selection{}, nil, qty)
		require.NoError(t, err)
		require.Equal(t, pricing.Money(2500), quote.UnitPrice)
		require.Equal(t, pricing.Money(0), quote.ExtrasTotal)
		require.Equal(t, pricing.Money(2500)*pricing.Money(qty), quote.LineTotal)
	}
}

func TestComputeSizeAndExtras(t *testing.T) {
	quote, err := pricing.Compute(burger(), pricing.Selection{Size: "Large"}, []int64{10}, 1)
	require.NoError(t, err)
	require.Equal(t, pricing.Money(6500), quote.UnitPrice)
	require.Equal(t, pricing.Money(500), quote.ExtrasTotal)
	require.Equal(t, pricing.Money(7000), quote.LineTotal)

	quote, err = pricing.Compute(burger(), pricing.Selection{Size: "Large"}, []int64{10, 11}, 1)
	require.NoError(t, err)
	require.Equal(t, pricing.Money(7700), quote.LineTotal)
}

func TestDefaultSelectionPieceFlag(t *testing.T) {
	sel := pricing.DefaultSelection(wings())
	require.Equal(t, int64(21), sel.Piece)

	unflagged := wings()
	for i := range unflagged.PieceOptions {
		unflagged.PieceOptions[i].Default = false
	}
	sel = pricing.DefaultSelection(unflagged)
	require.Equal(t, int64(20), sel.Piece)
}

func TestDefaultSelectionSize(t *testing.T) {
	sel := pricing.DefaultSelection(burger())
	require.Equal(t, "Regular", sel.Size)

	require.True(t, pricing.DefaultSelection(pricing.Item{ID: 9, Price: 100}).None())
}

func TestComputeNoSelectionUsesDefault(t *testing.T) {
	quote, err := pricing.Compute(wings(), pricing.Selection{}, nil, 1)
	require.NoError(t, err)
	require.Equal(t, int64(21), quote.PieceID)
	require.Equal(t, 8, quote.Pieces)
	require.Equal(t, pricing.Money(8000), quote.LineTotal)
}

func TestComputePieceReplacesBasePrice(t *testing.T) {
	quote, err := pricing.Compute(wings(), pricing.Selection{Piece: 22}, nil, 2)
	require.NoError(t, err)
	require.Equal(t, pricing.Money(11000), quote.UnitPrice)
	require.Equal(t, pricing.Money(22000), quote.LineTotal)
}

func TestComputeInvalidSelection(t *testing.T) {
	_, err := pricing.Compute(burger(), pricing.Selection{Size: "Mega"}, nil, 1)
	require.ErrorIs(t, err, pricing.ErrInvalidSelection)

	_, err = pricing.Compute(wings(), pricing.Selection{Piece: 99}, nil, 1)
	require.ErrorIs(t, err, pricing.ErrInvalidSelection)

	_, err = pricing.Compute(burger(), pricing.Selection{}, []int64{99}, 1)
	require.ErrorIs(t, err, pricing.ErrInvalidSelection)

	_, err = pricing.Compute(burger(), pricing.Selection{Size: "Large", Piece: 20}, nil, 1)
	require.ErrorIs(t, err, pricing.ErrInvalidSelection)
}

func TestComputeInvalidQuantity(t *testing.T) {
	for _, qty := range []int{0, -1, -10} {
		_, err := pricing.Compute(burger(), pricing.Selection{}, nil, qty)
		require.ErrorIs(t, err, pricing.ErrInvalidQuantity)
	}
}

func TestExtrasAreSnapshots(t *testing.T) {
	item := burger()
	extras, err := pricing.PickExtras(item, []int64{10})
	require.NoError(t, err)
	item.Extras[0].Price = 9999
	require.Equal(t, pricing.Money(500), extras[0].Price)
}

func TestParseMoney(t *testing.T) {
	cases := map[string]pricing.Money{
		"50.00":  5000,
		"65.00":  6500,
		"5.5":    550,
		"7":      700,
		"0.05":   5,
		"-12.34": -1234,
	}
	for in, want := range cases {
		got, err := pricing.ParseMoney(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "abc", "1.234", "1.2.3"} {
		_, err := pricing.ParseMoney(in)
		require.ErrorIs(t, err, pricing.ErrInvalidAmount, in)
	}
}

func TestFormatMoney(t *testing.T) {
	require.Equal(t, "70.00", pricing.FormatMoney(7000))
	require.Equal(t, "0.05", pricing.FormatMoney(5))
	require.Equal(t, "-3.50", pricing.FormatMoney(-350))
	require.Equal(t, "217.00", pricing.FormatMoney(21700))
}

package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeScenarios(t *testing.T) {
	cases := []struct {
		name      string
		items     []Item
		manual    Manual
		promo     Money
		taxBps    int32
		subtotal  Money
		discount  Money
		tax       Money
		total     Money
	}{
		{
			name:     "no discount no tax",
			items:    []Item{{Qty: 2, UnitPrice: 10_000}},
			subtotal: 20_000,
			total:    20_000,
		},
		{
			name:     "manual percent",
			items:    []Item{{Qty: 1, UnitPrice: 100_000}},
			manual:   Manual{PercentBps: 1000},
			subtotal: 100_000,
			discount: 10_000,
			total:    90_000,
		},
		{
			name:     "promotion percent",
			items:    []Item{{Qty: 1, UnitPrice: 50_000}},
			promo:    10_000,
			subtotal: 50_000,
			discount: 10_000,
			total:    40_000,
		},
		{
			name:     "full discount floors tax and total at zero",
			items:    []Item{{Qty: 1, UnitPrice: 100_000}},
			promo:    100_000,
			taxBps:   1000,
			subtotal: 100_000,
			discount: 100_000,
			tax:      0,
			total:    0,
		},
		{
			name:     "discount exceeding subtotal never goes negative",
			items:    []Item{{Qty: 1, UnitPrice: 30_000}},
			manual:   Manual{Amount: 50_000},
			taxBps:   1000,
			subtotal: 30_000,
			discount: 50_000,
			tax:      0,
			total:    0,
		},
		{
			name:     "tax applies to discounted base",
			items:    []Item{{Qty: 2, UnitPrice: 50_000}},
			manual:   Manual{PercentBps: 1000},
			taxBps:   800,
			subtotal: 100_000,
			discount: 10_000,
			tax:      7_200,
			total:    97_200,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Compute(tc.items, tc.manual, tc.promo, tc.taxBps)
			assert.Equal(t, tc.subtotal, got.Subtotal)
			assert.Equal(t, tc.discount, got.Discount)
			assert.Equal(t, tc.tax, got.Tax)
			assert.Equal(t, tc.total, got.Total)
		})
	}
}

func TestManualDiscountPercentWins(t *testing.T) {
	// Both fields non-zero: the percent value is authoritative.
	got := ManualDiscount(200_000, Manual{PercentBps: 500, Amount: 99_999})
	assert.Equal(t, Money(10_000), got)

	got = ManualDiscount(200_000, Manual{Amount: 15_000})
	assert.Equal(t, Money(15_000), got)

	assert.Zero(t, ManualDiscount(200_000, Manual{}))
}

func TestSubtotalOrderIndependent(t *testing.T) {
	a := []Item{{Qty: 1, UnitPrice: 5_000}, {Qty: 3, UnitPrice: 12_000}, {Qty: 2, UnitPrice: 700}}
	b := []Item{{Qty: 2, UnitPrice: 700}, {Qty: 1, UnitPrice: 5_000}, {Qty: 3, UnitPrice: 12_000}}
	assert.Equal(t, Subtotal(a), Subtotal(b))
}

func TestSubtotalSkipsNonPositiveQty(t *testing.T) {
	items := []Item{{Qty: 0, UnitPrice: 10_000}, {Qty: -2, UnitPrice: 10_000}, {Qty: 1, UnitPrice: 3_000}}
	assert.Equal(t, Money(3_000), Subtotal(items))
}

func TestComputeIsPure(t *testing.T) {
	items := []Item{{Qty: 4, UnitPrice: 25_000}}
	manual := Manual{PercentBps: 250}
	first := Compute(items, manual, 5_000, 1000)
	second := Compute(items, manual, 5_000, 1000)
	require.Equal(t, first, second)
}

func TestChange(t *testing.T) {
	assert.Equal(t, Money(30_000), Change(120_000, 150_000))
	assert.Zero(t, Change(120_000, 120_000))
	assert.Zero(t, Change(120_000, 100_000))
	assert.Zero(t, Change(0, 0))
}

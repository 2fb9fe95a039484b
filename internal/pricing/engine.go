package pricing

// Money represents a monetary value stored in minor units. VND has no
// subunit, so values are whole dong.
type Money = int64

// Item describes a line item used for totals calculation.
type Item struct {
	Qty       int
	UnitPrice Money
}

// Manual is the cashier-entered discount. Percent and Amount are mutually
// exclusive in the POS UI; when both arrive non-zero the percent value is
// authoritative.
type Manual struct {
	PercentBps int32
	Amount     Money
}

// Totals aggregates the computed pricing components for a cart.
type Totals struct {
	Subtotal       Money `json:"subtotal"`
	ManualDiscount Money `json:"manualDiscount"`
	PromoDiscount  Money `json:"promoDiscount"`
	Discount       Money `json:"discount"`
	TaxableBase    Money `json:"taxableBase"`
	Tax            Money `json:"tax"`
	Total          Money `json:"total"`
}

// Subtotal sums qty × unit price over the provided items. Lines with a
// non-positive quantity contribute nothing.
func Subtotal(items []Item) Money {
	var subtotal Money
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		subtotal += Money(it.Qty) * it.UnitPrice
	}
	return subtotal
}

// ManualDiscount resolves the cashier discount against the subtotal.
// Percent wins over a flat amount when both are set.
func ManualDiscount(subtotal Money, m Manual) Money {
	if m.PercentBps > 0 {
		return subtotal * Money(m.PercentBps) / 10000
	}
	if m.Amount > 0 {
		return m.Amount
	}
	return 0
}

// Compute calculates cart totals given the provided inputs. The evaluation
// order is a contract: subtotal, manual discount, promotion discount, tax on
// the discounted base, grand total. Discounts are additive and not capped at
// the subtotal; the taxable base and grand total saturate at zero instead.
func Compute(items []Item, m Manual, promoDiscount Money, taxRateBps int32) Totals {
	subtotal := Subtotal(items)

	manual := ManualDiscount(subtotal, m)
	if promoDiscount < 0 {
		promoDiscount = 0
	}
	discount := manual + promoDiscount

	taxable := subtotal - discount
	if taxable < 0 {
		taxable = 0
	}
	var tax Money
	if taxRateBps > 0 {
		tax = taxable * Money(taxRateBps) / 10000
	}

	total := subtotal - discount + tax
	if total < 0 {
		total = 0
	}

	return Totals{
		Subtotal:       subtotal,
		ManualDiscount: manual,
		PromoDiscount:  promoDiscount,
		Discount:       discount,
		TaxableBase:    taxable,
		Tax:            tax,
		Total:          total,
	}
}

// Change returns the amount due back to the customer. It never goes
// negative; the sufficiency check for cash payments lives in checkout.
func Change(total, received Money) Money {
	if received <= total {
		return 0
	}
	return received - total
}

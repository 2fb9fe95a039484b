package promo

import "github.com/noah-isme/pos-toko/internal/pricing"

// Quote resolves the promotion discount for the items' subtotal and hands
// the rest to the pricing engine. rule may be nil.
func Quote(items []pricing.Item, m pricing.Manual, rule *Rule, taxRateBps int32) pricing.Totals {
	subtotal := pricing.Subtotal(items)
	return pricing.Compute(items, m, rule.Discount(subtotal), taxRateBps)
}

package promo

import (
	"strings"
	"time"

	"github.com/noah-isme/pos-toko/internal/pricing"
)

// Kind is the discount type carried by a promotion.
type Kind string

const (
	// KindPercent discounts a percentage of the order subtotal.
	KindPercent Kind = "percent"
	// KindAmount discounts a flat amount.
	KindAmount Kind = "amount"
)

// Scope describes what a promotion applies to. Only order-scoped rules
// participate in cart totals; category and product scopes are resolved by
// the upstream when the invoice is created.
type Scope string

const (
	ScopeOrder    Scope = "order"
	ScopeCategory Scope = "category"
	ScopeProduct  Scope = "product"
)

// Rule captures the runtime constraints of a promotion as normalized by the
// catalog boundary.
type Rule struct {
	ID       int64         `json:"id"`
	Code     string        `json:"code"`
	Name     string        `json:"name"`
	Kind     Kind          `json:"kind"`
	ValueBps int32         `json:"valueBps"` // percent kinds, basis points
	Value    pricing.Money `json:"value"`    // amount kinds, flat value
	Scope    Scope         `json:"scope"`
	MinOrder pricing.Money `json:"minOrder"`
	Active   bool          `json:"active"`
	StartsAt *time.Time    `json:"startsAt,omitempty"`
	EndsAt   *time.Time    `json:"endsAt,omitempty"`
}

// Applies reports whether the rule discounts the given order subtotal. A nil
// rule, an inactive rule, a non-order scope or an unmet minimum order amount
// all make the rule inapplicable.
func (r *Rule) Applies(subtotal pricing.Money) bool {
	if r == nil || !r.Active {
		return false
	}
	if r.Scope != "" && r.Scope != ScopeOrder {
		return false
	}
	if r.MinOrder > 0 && subtotal < r.MinOrder {
		return false
	}
	return true
}

// Discount returns the promotion discount for the subtotal, or zero when the
// rule does not apply. The result is not capped at the subtotal: discounts
// stack additively with the manual discount and the pricing engine floors
// the taxable base and grand total at zero.
func (r *Rule) Discount(subtotal pricing.Money) pricing.Money {
	if !r.Applies(subtotal) {
		return 0
	}
	switch r.Kind {
	case KindPercent:
		if r.ValueBps <= 0 {
			return 0
		}
		return subtotal * pricing.Money(r.ValueBps) / 10000
	default:
		if r.Value < 0 {
			return 0
		}
		return r.Value
	}
}

// WithinWindow reports whether now falls inside the rule's validity window.
// Nil bounds are open ended. Checked when the cashier selects a promotion;
// the engine itself only looks at Active, Scope and MinOrder.
func (r *Rule) WithinWindow(now time.Time) bool {
	if r == nil {
		return false
	}
	if r.StartsAt != nil && now.Before(*r.StartsAt) {
		return false
	}
	if r.EndsAt != nil && now.After(*r.EndsAt) {
		return false
	}
	return true
}

// ParseKind maps upstream discount type spellings onto a Kind. Anything that
// is not a percent variant is treated as a flat amount.
func ParseKind(value string) Kind {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "percent", "percentage":
		return KindPercent
	default:
		return KindAmount
	}
}

// ParseScope maps upstream applyTo spellings onto a Scope. The upstream uses
// "order" and "invoice" interchangeably, and an empty value defaults to the
// order scope.
func ParseScope(value string) Scope {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "order", "invoice":
		return ScopeOrder
	case "category":
		return ScopeCategory
	case "product":
		return ScopeProduct
	default:
		return Scope(strings.ToLower(strings.TrimSpace(value)))
	}
}

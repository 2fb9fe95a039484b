package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/pos-toko/internal/cart"
	"github.com/noah-isme/pos-toko/internal/invoice"
	"github.com/noah-isme/pos-toko/internal/lock"
	"github.com/noah-isme/pos-toko/internal/obs"
	"github.com/noah-isme/pos-toko/internal/pricing"
)

// ErrInsufficientPayment is returned when a cash payment does not cover the
// grand total. The session is left untouched.
var ErrInsufficientPayment = errors.New("insufficient payment")

// ErrUnknownMethod is returned for payment methods outside cash, card and
// transfer.
var ErrUnknownMethod = errors.New("unknown payment method")

// methodNames maps the POS method keys onto the upstream's enum.
var methodNames = map[string]string{
	"cash":     "Cash",
	"card":     "Card",
	"transfer": "Bank",
}

// Payment is the cashier's confirm input.
type Payment struct {
	Method   string
	Received pricing.Money
	Notes    string
}

// Result is returned to the terminal after a successful confirm. Currency
// is display metadata for the receipt; all amounts are minor units of it.
type Result struct {
	Receipt  *invoice.Receipt `json:"receipt"`
	Totals   pricing.Totals   `json:"totals"`
	Change   pricing.Money    `json:"change"`
	Currency string           `json:"currency"`
}

// Service turns a checkout session into an upstream invoice.
type Service struct {
	Carts    *cart.Service
	Invoices *invoice.Client
	Locker   *lock.Locker
	Currency string
	Log      zerolog.Logger
}

// Confirm validates the payment against the session totals, submits the
// invoice and clears the session. Confirms for the same session are
// serialized so a double-tapped button cannot race two invoices. Any failure
// before the upstream accepts the invoice leaves the session untouched so
// the cashier can retry.
func (s *Service) Confirm(ctx context.Context, sessionID string, p Payment) (*Result, error) {
	if s.Locker != nil {
		var result *Result
		err := s.Locker.WithLock(ctx, "checkout:"+sessionID, 30*time.Second, func(ctx context.Context) error {
			var err error
			result, err = s.confirm(ctx, sessionID, p)
			return err
		})
		return result, err
	}
	return s.confirm(ctx, sessionID, p)
}

func (s *Service) confirm(ctx context.Context, sessionID string, p Payment) (*Result, error) {
	method, ok := methodNames[strings.ToLower(strings.TrimSpace(p.Method))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, p.Method)
	}
	if p.Received < 0 {
		return nil, fmt.Errorf("received amount must not be negative: %w", cart.ErrInvalidInput)
	}

	session, err := s.Carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(session.Lines) == 0 {
		return nil, cart.ErrEmptyCart
	}

	totals := session.Totals()
	received := p.Received
	if method == "Cash" {
		if received < totals.Total {
			recordCheckout(method, "insufficient")
			return nil, fmt.Errorf("received %d of %d: %w", received, totals.Total, ErrInsufficientPayment)
		}
	} else if received == 0 {
		// card and transfer settle exactly
		received = totals.Total
	}

	inv := invoice.Invoice{
		CustomerID:    session.CustomerID,
		UserID:        session.CashierID,
		Discount:      totals.ManualDiscount,
		PaidAmount:    received,
		PaymentMethod: method,
		Notes:         p.Notes,
		Details:       make([]invoice.Detail, 0, len(session.Lines)),
	}
	if session.Promotion != nil {
		id := session.Promotion.ID
		inv.PromotionID = &id
		inv.PromotionCode = session.Promotion.Code
	}
	for _, line := range session.Lines {
		inv.Details = append(inv.Details, invoice.Detail{
			ProductID: line.ProductID,
			Quantity:  line.Qty,
			UnitPrice: line.UnitPrice,
		})
	}

	receipt, err := s.Invoices.Create(ctx, inv)
	if err != nil {
		recordCheckout(method, "upstream_error")
		return nil, err
	}

	if _, err := s.Carts.Clear(ctx, sessionID); err != nil {
		// the sale already went through; log and hand the receipt back
		s.Log.Error().Err(err).Str("session_id", sessionID).
			Str("invoice_number", receipt.InvoiceNumber).
			Msg("invoice created but session clear failed")
	}

	recordCheckout(method, "ok")
	s.Log.Info().Str("session_id", sessionID).
		Str("invoice_number", receipt.InvoiceNumber).
		Str("method", method).
		Int64("total", totals.Total).
		Msg("checkout confirmed")

	return &Result{
		Receipt:  receipt,
		Totals:   totals,
		Change:   pricing.Change(totals.Total, received),
		Currency: s.Currency,
	}, nil
}

func recordCheckout(method, result string) {
	if obs.CheckoutTotal == nil {
		return
	}
	obs.CheckoutTotal.WithLabelValues(method, result).Inc()
}

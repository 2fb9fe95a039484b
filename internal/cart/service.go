package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/pos-toko/internal/catalog"
	"github.com/noah-isme/pos-toko/internal/obs"
	"github.com/noah-isme/pos-toko/internal/pricing"
)

// ErrNotFound indicates the requested session or held order could not be located.
var ErrNotFound = errors.New("cart not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// ErrOutOfStock is returned when a quantity change would exceed the stock
// ceiling. The cart is left unmutated.
var ErrOutOfStock = errors.New("insufficient stock")

// ErrEmptyCart is returned for operations that need at least one line.
var ErrEmptyCart = errors.New("cart is empty")

// Service encapsulates checkout session operations. Every mutation
// re-persists the session and the caller reads totals off the returned
// state, so displayed totals always reflect the latest completed mutation.
type Service struct {
	Store   *Store
	Catalog *catalog.Service
	Now     func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create starts an empty checkout session.
func (s *Service) Create(ctx context.Context, cashierID, customerID string) (*Session, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("cart service not configured")
	}
	now := s.now()
	session := &Session{
		ID:         uuid.NewString(),
		CashierID:  cashierID,
		CustomerID: customerID,
		Lines:      []Line{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Store.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get loads a session.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("cart service not configured")
	}
	return s.Store.GetSession(ctx, id)
}

// AddItem adds qty units of a product, incrementing an existing line. The
// stock level observed at add time becomes the line's ceiling.
func (s *Service) AddItem(ctx context.Context, sessionID string, productID int64, qty int) (*Session, error) {
	if qty <= 0 {
		qty = 1
	}
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	product, err := s.Catalog.ProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return nil, err
	}
	if product.Stock <= 0 {
		recordOutOfStock()
		return nil, fmt.Errorf("product %q: %w", product.Name, ErrOutOfStock)
	}
	if idx := session.lineIndex(productID); idx >= 0 {
		line := session.Lines[idx]
		if line.Qty+qty > line.StockCeiling {
			recordOutOfStock()
			return nil, fmt.Errorf("product %q: %w", line.Name, ErrOutOfStock)
		}
		session.Lines[idx].Qty += qty
	} else {
		if qty > product.Stock {
			recordOutOfStock()
			return nil, fmt.Errorf("product %q: %w", product.Name, ErrOutOfStock)
		}
		session.Lines = append(session.Lines, Line{
			ProductID:    product.ID,
			Name:         product.Name,
			UnitPrice:    product.Price,
			Qty:          qty,
			StockCeiling: product.Stock,
		})
	}
	return s.save(ctx, session)
}

// SetQuantity sets the quantity for an existing line. A non-positive
// quantity removes the line; exceeding the stock ceiling leaves the cart
// unchanged and reports ErrOutOfStock.
func (s *Service) SetQuantity(ctx context.Context, sessionID string, productID int64, qty int) (*Session, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	idx := session.lineIndex(productID)
	if idx < 0 {
		return nil, fmt.Errorf("line %d: %w", productID, ErrNotFound)
	}
	if qty <= 0 {
		session.Lines = append(session.Lines[:idx], session.Lines[idx+1:]...)
		return s.save(ctx, session)
	}
	if qty > session.Lines[idx].StockCeiling {
		recordOutOfStock()
		return nil, fmt.Errorf("product %q: %w", session.Lines[idx].Name, ErrOutOfStock)
	}
	session.Lines[idx].Qty = qty
	return s.save(ctx, session)
}

// RemoveItem deletes a line.
func (s *Service) RemoveItem(ctx context.Context, sessionID string, productID int64) (*Session, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	idx := session.lineIndex(productID)
	if idx < 0 {
		return nil, fmt.Errorf("line %d: %w", productID, ErrNotFound)
	}
	session.Lines = append(session.Lines[:idx], session.Lines[idx+1:]...)
	return s.save(ctx, session)
}

// SetManualDiscount stores the cashier discount. Percent and amount are
// mutually exclusive: setting one clears the other, mirroring the POS
// inputs. Negative values are rejected with the prior state intact.
func (s *Service) SetManualDiscount(ctx context.Context, sessionID string, percentBps *int32, amount *pricing.Money) (*Session, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch {
	case percentBps != nil:
		if *percentBps < 0 {
			return nil, fmt.Errorf("discount percent must not be negative: %w", ErrInvalidInput)
		}
		session.ManualPercentBps = *percentBps
		session.ManualAmount = 0
	case amount != nil:
		if *amount < 0 {
			return nil, fmt.Errorf("discount amount must not be negative: %w", ErrInvalidInput)
		}
		session.ManualAmount = *amount
		session.ManualPercentBps = 0
	default:
		return nil, fmt.Errorf("discount percent or amount required: %w", ErrInvalidInput)
	}
	return s.save(ctx, session)
}

// ApplyPromotion resolves and attaches a promotion. Selection is rejected
// outside the validity window; once attached, eligibility (scope, minimum
// order) is re-evaluated on every totals read.
func (s *Service) ApplyPromotion(ctx context.Context, sessionID string, promotionID int64) (*Session, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	rule, err := s.Catalog.PromotionByID(ctx, promotionID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("promotion %d: %w", promotionID, ErrNotFound)
		}
		return nil, err
	}
	if !rule.Active || !rule.WithinWindow(s.now()) {
		return nil, fmt.Errorf("promotion %q not active: %w", rule.Code, ErrInvalidInput)
	}
	session.Promotion = &rule
	return s.save(ctx, session)
}

// ClearPromotion detaches the selected promotion.
func (s *Service) ClearPromotion(ctx context.Context, sessionID string) (*Session, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Promotion = nil
	return s.save(ctx, session)
}

// ApplyTax resolves and attaches a tax.
func (s *Service) ApplyTax(ctx context.Context, sessionID string, taxID int64) (*Session, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	tax, err := s.Catalog.TaxByID(ctx, taxID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("tax %d: %w", taxID, ErrNotFound)
		}
		return nil, err
	}
	session.Tax = &tax
	return s.save(ctx, session)
}

// ClearTax detaches the selected tax.
func (s *Service) ClearTax(ctx context.Context, sessionID string) (*Session, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Tax = nil
	return s.save(ctx, session)
}

// Clear empties the lines and the manual discount. Promotion and tax
// selections survive; they belong to the session, not the cart contents.
func (s *Service) Clear(ctx context.Context, sessionID string) (*Session, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Lines = []Line{}
	session.ManualPercentBps = 0
	session.ManualAmount = 0
	return s.save(ctx, session)
}

// Delete removes the session entirely.
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	return s.Store.DeleteSession(ctx, sessionID)
}

// Hold parks the current cart under a new held-order id and clears the live
// session so the cashier can serve the next customer.
func (s *Service) Hold(ctx context.Context, sessionID string) (*HeldOrder, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(session.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	held := &HeldOrder{
		ID:      uuid.NewString(),
		HeldAt:  s.now(),
		Session: *session,
	}
	if err := s.Store.SaveHeld(ctx, held); err != nil {
		return nil, err
	}
	if _, err := s.Clear(ctx, sessionID); err != nil {
		return nil, err
	}
	if obs.HeldOrdersTotal != nil {
		obs.HeldOrdersTotal.Inc()
	}
	return held, nil
}

// ListHeld returns parked orders.
func (s *Service) ListHeld(ctx context.Context) ([]HeldOrder, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("cart service not configured")
	}
	return s.Store.ListHeld(ctx)
}

// Resume restores a held order into the given session, replacing its
// current contents.
func (s *Service) Resume(ctx context.Context, heldID, sessionID string) (*Session, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	held, err := s.Store.TakeHeld(ctx, heldID)
	if err != nil {
		return nil, err
	}
	session.Lines = held.Session.Lines
	session.ManualPercentBps = held.Session.ManualPercentBps
	session.ManualAmount = held.Session.ManualAmount
	session.Promotion = held.Session.Promotion
	session.Tax = held.Session.Tax
	session.CustomerID = held.Session.CustomerID
	return s.save(ctx, session)
}

func (s *Service) save(ctx context.Context, session *Session) (*Session, error) {
	session.UpdatedAt = s.now()
	if err := s.Store.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func recordOutOfStock() {
	if obs.OutOfStockTotal != nil {
		obs.OutOfStockTotal.Inc()
	}
}

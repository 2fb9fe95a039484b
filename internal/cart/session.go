package cart

import (
	"time"

	"github.com/noah-isme/pos-toko/internal/catalog"
	"github.com/noah-isme/pos-toko/internal/pricing"
	"github.com/noah-isme/pos-toko/internal/promo"
)

// Line is one product entry in an in-progress sale. StockCeiling is the
// stock level observed when the product entered the cart; quantity never
// exceeds it.
type Line struct {
	ProductID    int64         `json:"productId"`
	Name         string        `json:"name"`
	UnitPrice    pricing.Money `json:"unitPrice"`
	Qty          int           `json:"qty"`
	StockCeiling int           `json:"stockCeiling"`
}

// Session is the mutable checkout state for one terminal. It replaces the
// browser-local cart the old front end kept in localStorage. Totals are
// never stored; they are recomputed from this state on every read.
type Session struct {
	ID               string         `json:"id"`
	CashierID        string         `json:"cashierId,omitempty"`
	CustomerID       string         `json:"customerId,omitempty"`
	Lines            []Line         `json:"lines"`
	ManualPercentBps int32          `json:"manualPercentBps"`
	ManualAmount     pricing.Money  `json:"manualAmount"`
	Promotion        *promo.Rule    `json:"promotion,omitempty"`
	Tax              *catalog.Tax   `json:"tax,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// HeldOrder is a parked cart snapshot the cashier can resume later.
type HeldOrder struct {
	ID      string    `json:"id"`
	HeldAt  time.Time `json:"heldAt"`
	Session Session   `json:"session"`
}

func (s *Session) items() []pricing.Item {
	items := make([]pricing.Item, 0, len(s.Lines))
	for _, l := range s.Lines {
		items = append(items, pricing.Item{Qty: l.Qty, UnitPrice: l.UnitPrice})
	}
	return items
}

func (s *Session) manual() pricing.Manual {
	return pricing.Manual{PercentBps: s.ManualPercentBps, Amount: s.ManualAmount}
}

// Totals projects the session onto cart totals. Pure: the same session
// state always yields the same totals.
func (s *Session) Totals() pricing.Totals {
	var taxBps int32
	if s.Tax != nil && s.Tax.Active {
		taxBps = s.Tax.RateBps
	}
	return promo.Quote(s.items(), s.manual(), s.Promotion, taxBps)
}

func (s *Session) lineIndex(productID int64) int {
	for i, l := range s.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

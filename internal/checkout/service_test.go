package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pos-toko/internal/cart"
	"github.com/noah-isme/pos-toko/internal/catalog"
	"github.com/noah-isme/pos-toko/internal/invoice"
	"github.com/noah-isme/pos-toko/internal/lock"
	"github.com/noah-isme/pos-toko/internal/pricing"
	"github.com/noah-isme/pos-toko/internal/resilience"
)

type upstream struct {
	srv      *httptest.Server
	invoices []map[string]any
	fail     bool
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products":
			_, _ = w.Write([]byte(`[
				{"productId": 1, "productName": "Coca Cola 330ml", "sellingPrice": 12000, "stockQuantity": 5}
			]`))
		case "/taxes":
			_, _ = w.Write([]byte(`[{"taxId": 1, "taxCode": "VAT10", "taxRate": 10}]`))
		case "/promotions":
			_, _ = w.Write([]byte(`[
				{"promotionId": 7, "promotionCode": "FLAT5K", "discountType": "AMOUNT",
				 "discountValue": 5000, "applyTo": "order", "minOrderAmount": 20000}
			]`))
		case "/invoices":
			if u.fail {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			u.invoices = append(u.invoices, payload)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"data": {"id": 1, "invoiceNumber": "INV-0001"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(u.srv.Close)
	return u
}

func httpClient(srv *httptest.Server) resilience.HTTPClient {
	return resilience.HTTPClient{
		Client:      srv.Client(),
		Breaker:     resilience.NewBreaker(10, 0.9, time.Minute),
		MaxAttempts: 1,
	}
}

func newTestService(t *testing.T) (*Service, *upstream, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	u := newUpstream(t)
	carts := &cart.Service{
		Store: &cart.Store{R: rdb},
		Catalog: &catalog.Service{
			Client: &catalog.Client{BaseURL: u.srv.URL, HTTP: httpClient(u.srv)},
			Cache:  catalog.NewCache(rdb, time.Minute),
		},
	}
	svc := &Service{
		Carts:    carts,
		Invoices: &invoice.Client{BaseURL: u.srv.URL, HTTP: httpClient(u.srv)},
		Locker:   &lock.Locker{R: rdb, RetryBackoff: 5 * time.Millisecond},
		Currency: "VND",
		Log:      zerolog.Nop(),
	}
	return svc, u, rdb
}

func TestConfirmCashInsufficientPayment(t *testing.T) {
	svc, u, _ := newTestService(t)
	ctx := context.Background()

	session := seedCart(t, svc, 2) // 24000 subtotal

	_, err := svc.Confirm(ctx, session, Payment{Method: "cash", Received: 20000})
	assert.ErrorIs(t, err, ErrInsufficientPayment)
	assert.Empty(t, u.invoices, "no invoice may be submitted")

	// session untouched
	got, err := svc.Carts.Get(ctx, session)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 1)
}

func TestConfirmCashSuccess(t *testing.T) {
	svc, u, _ := newTestService(t)
	ctx := context.Background()

	session := seedCart(t, svc, 2) // 24000

	result, err := svc.Confirm(ctx, session, Payment{Method: "cash", Received: 50000})
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", result.Receipt.InvoiceNumber)
	assert.Equal(t, pricing.Money(24000), result.Totals.Total)
	assert.Equal(t, pricing.Money(26000), result.Change)
	assert.Equal(t, "VND", result.Currency)

	require.Len(t, u.invoices, 1)
	assert.Equal(t, "Cash", u.invoices[0]["paymentMethod"])

	// session cleared after the sale
	got, err := svc.Carts.Get(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, got.Lines)
}

func TestConfirmTransmitsManualDiscountOnly(t *testing.T) {
	svc, u, _ := newTestService(t)
	ctx := context.Background()

	session := seedCart(t, svc, 2) // 24000
	percent := int32(1000)        // 10%
	_, err := svc.Carts.SetManualDiscount(ctx, session, &percent, nil)
	require.NoError(t, err)
	_, err = svc.Carts.ApplyPromotion(ctx, session, 7)
	require.NoError(t, err)
	_, err = svc.Carts.ApplyTax(ctx, session, 1)
	require.NoError(t, err)

	// 24000 - 2400 manual - 5000 promo = 16600 base, +1660 tax = 18260
	result, err := svc.Confirm(ctx, session, Payment{Method: "cash", Received: 20000})
	require.NoError(t, err)
	assert.Equal(t, pricing.Money(18260), result.Totals.Total)
	assert.Equal(t, pricing.Money(1740), result.Change)

	require.Len(t, u.invoices, 1)
	payload := u.invoices[0]
	assert.Equal(t, float64(2400), payload["discount"], "manual discount only")
	assert.Equal(t, float64(7), payload["promotionId"])
	assert.Equal(t, "FLAT5K", payload["promotionCode"])
	assert.NotContains(t, payload, "taxId")
}

func TestConfirmCardSettlesExactly(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	session := seedCart(t, svc, 1) // 12000

	result, err := svc.Confirm(ctx, session, Payment{Method: "card"})
	require.NoError(t, err)
	assert.Zero(t, result.Change)
}

func TestConfirmEmptyCart(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Carts.Create(ctx, "", "")
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, session.ID, Payment{Method: "cash", Received: 10000})
	assert.ErrorIs(t, err, cart.ErrEmptyCart)
}

func TestConfirmUnknownMethod(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Confirm(context.Background(), "any", Payment{Method: "crypto"})
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestConfirmUpstreamFailureKeepsCart(t *testing.T) {
	svc, u, _ := newTestService(t)
	ctx := context.Background()

	session := seedCart(t, svc, 1)
	u.fail = true

	_, err := svc.Confirm(ctx, session, Payment{Method: "cash", Received: 20000})
	require.Error(t, err)

	got, err := svc.Carts.Get(ctx, session)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 1, "failed submission must not clear the cart")
}

func seedCart(t *testing.T, svc *Service, qty int) string {
	t.Helper()
	ctx := context.Background()
	session, err := svc.Carts.Create(ctx, "cashier-1", "")
	require.NoError(t, err)
	_, err = svc.Carts.AddItem(ctx, session.ID, 1, qty)
	require.NoError(t, err)
	return session.ID
}

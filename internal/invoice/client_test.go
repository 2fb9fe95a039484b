package invoice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pos-toko/internal/resilience"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{
		BaseURL: srv.URL,
		Token:   "test-token",
		HTTP: resilience.HTTPClient{
			Client:      srv.Client(),
			Breaker:     resilience.NewBreaker(10, 0.9, time.Minute),
			MaxAttempts: 1,
		},
	}
}

func TestCreateSendsManualDiscountOnly(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/invoices", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data": {"id": 42, "invoiceNumber": "INV-0042"}}`))
	})

	promotionID := int64(7)
	receipt, err := client.Create(context.Background(), Invoice{
		Discount:      9000,
		PromotionID:   &promotionID,
		PromotionCode: "SUMMER20",
		PaidAmount:    100000,
		PaymentMethod: "Cash",
		Details: []Detail{
			{ProductID: 1, Quantity: 2, UnitPrice: 12000},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), receipt.ID)
	assert.Equal(t, "INV-0042", receipt.InvoiceNumber)

	// only the manual discount amount travels; tax and the computed
	// promotion discount stay server-side
	assert.Equal(t, float64(9000), got["discount"])
	assert.Equal(t, float64(7), got["promotionId"])
	assert.NotContains(t, got, "taxId")
	assert.NotContains(t, got, "tax")
	assert.NotContains(t, got, "promoDiscount")
	assert.Nil(t, got["invoiceNumber"])

	details, ok := got["details"].([]any)
	require.True(t, ok)
	require.Len(t, details, 1)
	line := details[0].(map[string]any)
	assert.Equal(t, float64(1), line["productId"])
	assert.Equal(t, float64(2), line["quantity"])
	assert.Equal(t, float64(12000), line["unitPrice"])
	assert.Equal(t, float64(0), line["discount"])
}

func TestCreateAcceptsBareReceipt(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 9, "invoiceNumber": "INV-0009"}`))
	})
	receipt, err := client.Create(context.Background(), Invoice{
		PaymentMethod: "Card",
		Details:       []Detail{{ProductID: 1, Quantity: 1, UnitPrice: 100}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), receipt.ID)
}

func TestCreateRejectsEmptyInvoice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := client.Create(context.Background(), Invoice{PaymentMethod: "Cash"})
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestCreateSurfacesUpstreamFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"code":"VALIDATION_ERROR"}}`))
	})
	_, err := client.Create(context.Background(), Invoice{
		PaymentMethod: "Cash",
		Details:       []Detail{{ProductID: 1, Quantity: 1, UnitPrice: 100}},
	})
	assert.ErrorIs(t, err, ErrUpstream)
}

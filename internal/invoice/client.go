package invoice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/noah-isme/pos-toko/internal/pricing"
	"github.com/noah-isme/pos-toko/internal/resilience"
)

// ErrUpstream indicates the retail backend rejected or failed the invoice
// submission.
var ErrUpstream = errors.New("invoice submission failed")

// Detail is one invoice line. Line-level discount is always zero; the cart
// only supports order-level discounts.
type Detail struct {
	ProductID int64         `json:"productId"`
	Quantity  int           `json:"quantity"`
	UnitPrice pricing.Money `json:"unitPrice"`
	Discount  pricing.Money `json:"discount"`
}

// Invoice is the payload submitted to the upstream on checkout. Discount
// carries the manual discount amount only; promotion effect and tax are not
// transmitted, the upstream recomputes them server-side from the promotion
// reference.
type Invoice struct {
	InvoiceNumber *string       `json:"invoiceNumber"`
	CustomerID    string        `json:"customerId,omitempty"`
	UserID        string        `json:"userId,omitempty"`
	Discount      pricing.Money `json:"discount"`
	PromotionID   *int64        `json:"promotionId,omitempty"`
	PromotionCode string        `json:"promotionCode,omitempty"`
	PaidAmount    pricing.Money `json:"paidAmount"`
	PaymentMethod string        `json:"paymentMethod"`
	Notes         string        `json:"notes,omitempty"`
	Details       []Detail      `json:"details"`
}

// Receipt is the upstream's record of a created invoice.
type Receipt struct {
	ID            int64  `json:"id"`
	InvoiceNumber string `json:"invoiceNumber"`
}

// Client submits invoices to the upstream retail API.
type Client struct {
	BaseURL string
	Token   string
	HTTP    resilience.HTTPClient
}

// Create posts the invoice and returns the upstream receipt.
func (c *Client) Create(ctx context.Context, inv Invoice) (*Receipt, error) {
	if len(inv.Details) == 0 {
		return nil, fmt.Errorf("%w: invoice has no lines", ErrUpstream)
	}
	payload, err := json.Marshal(inv)
	if err != nil {
		return nil, err
	}
	target := strings.TrimRight(c.BaseURL, "/") + "/invoices"
	req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: %s: %s", ErrUpstream, resp.Status, truncate(body, 200))
	}
	receipt, err := decodeReceipt(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	return receipt, nil
}

// decodeReceipt tolerates both a bare object and a {"data": {...}} envelope.
func decodeReceipt(body []byte) (*Receipt, error) {
	var envelope struct {
		Data *Receipt `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}
	var receipt Receipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n]
	}
	return s
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/noah-isme/pos-toko/internal/obs"
	"github.com/noah-isme/pos-toko/internal/promo"
	"github.com/noah-isme/pos-toko/internal/resilience"
)

// ErrUpstream indicates the retail backend rejected or failed a request.
var ErrUpstream = errors.New("upstream request failed")

// Client reads catalog data from the upstream retail management API.
type Client struct {
	BaseURL string
	Token   string
	HTTP    resilience.HTTPClient
}

// ListOptions narrows catalog list reads.
type ListOptions struct {
	Search     string
	CategoryID int64
	ActiveOnly bool
}

// Products returns normalized product records.
func (c *Client) Products(ctx context.Context, opts ListOptions) ([]Product, error) {
	query := url.Values{}
	if opts.ActiveOnly {
		query.Set("isActive", "true")
	}
	if s := strings.TrimSpace(opts.Search); s != "" {
		query.Set("search", s)
	}
	if opts.CategoryID > 0 {
		query.Set("categoryId", strconv.FormatInt(opts.CategoryID, 10))
	}
	body, err := c.get(ctx, "/products", query)
	if err != nil {
		return nil, err
	}
	raw, err := decodeList[rawProduct](body)
	if err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(raw))
	for _, r := range raw {
		p := r.normalize()
		if opts.ActiveOnly && !p.Active {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// Categories returns normalized category records.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	body, err := c.get(ctx, "/categories", nil)
	if err != nil {
		return nil, err
	}
	raw, err := decodeList[rawCategory](body)
	if err != nil {
		return nil, err
	}
	categories := make([]Category, 0, len(raw))
	for _, r := range raw {
		categories = append(categories, r.normalize())
	}
	return categories, nil
}

// Taxes returns normalized tax records, active ones only.
func (c *Client) Taxes(ctx context.Context) ([]Tax, error) {
	query := url.Values{}
	query.Set("isActive", "true")
	body, err := c.get(ctx, "/taxes", query)
	if err != nil {
		return nil, err
	}
	raw, err := decodeList[rawTax](body)
	if err != nil {
		return nil, err
	}
	taxes := make([]Tax, 0, len(raw))
	for _, r := range raw {
		t := r.normalize()
		if !t.Active {
			continue
		}
		taxes = append(taxes, t)
	}
	return taxes, nil
}

// Promotions returns normalized promotion rules, active ones only.
func (c *Client) Promotions(ctx context.Context) ([]promo.Rule, error) {
	query := url.Values{}
	query.Set("isActive", "true")
	body, err := c.get(ctx, "/promotions", query)
	if err != nil {
		return nil, err
	}
	raw, err := decodeList[rawPromotion](body)
	if err != nil {
		return nil, err
	}
	rules := make([]promo.Rule, 0, len(raw))
	for _, r := range raw {
		rule := r.normalize()
		if !rule.Active {
			continue
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := strings.TrimRight(c.BaseURL, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		recordUpstream(path, "error")
		return nil, fmt.Errorf("%w: GET %s: %v", ErrUpstream, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		recordUpstream(path, "error")
		return nil, fmt.Errorf("%w: read %s: %v", ErrUpstream, path, err)
	}
	if resp.StatusCode >= 400 {
		recordUpstream(path, "error")
		return nil, fmt.Errorf("%w: GET %s: %s", ErrUpstream, path, resp.Status)
	}
	recordUpstream(path, "ok")
	return body, nil
}

func recordUpstream(endpoint, result string) {
	if obs.UpstreamRequestTotal == nil {
		return
	}
	obs.UpstreamRequestTotal.WithLabelValues(endpoint, result).Inc()
}

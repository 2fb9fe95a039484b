package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/noah-isme/pos-toko/internal/pricing"
	"github.com/noah-isme/pos-toko/internal/promo"
)

// Product is the canonical internal record for an upstream product. All
// upstream field fallbacks are resolved at decode time; nothing past this
// boundary looks at alternate spellings.
type Product struct {
	ID           int64         `json:"id"`
	Code         string        `json:"code"`
	Barcode      string        `json:"barcode,omitempty"`
	Name         string        `json:"name"`
	CategoryID   int64         `json:"categoryId,omitempty"`
	CategoryName string        `json:"categoryName,omitempty"`
	Unit         string        `json:"unit,omitempty"`
	CostPrice    pricing.Money `json:"costPrice"`
	Price        pricing.Money `json:"price"`
	Stock        int           `json:"stock"`
	MinStock     int           `json:"minStock"`
	ImageURL     string        `json:"imageUrl,omitempty"`
	Active       bool          `json:"isActive"`
}

// Category is a canonical product category record.
type Category struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"isActive"`
}

// Tax is a canonical tax record. The upstream percent rate is converted to
// basis points once here.
type Tax struct {
	ID      int64  `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	RateBps int32  `json:"rateBps"`
	Active  bool   `json:"isActive"`
}

// rawProduct accepts both upstream spellings of each product field.
type rawProduct struct {
	ProductID     *int64   `json:"productId"`
	ID            *int64   `json:"id"`
	ProductCode   string   `json:"productCode"`
	Code          string   `json:"code"`
	Barcode       string   `json:"barcode"`
	ProductName   string   `json:"productName"`
	Name          string   `json:"name"`
	CategoryID    *int64   `json:"categoryId"`
	CategoryName  string   `json:"categoryName"`
	Unit          string   `json:"unit"`
	CostPrice     *float64 `json:"costPrice"`
	SellingPrice  *float64 `json:"sellingPrice"`
	Price         *float64 `json:"price"`
	StockQuantity *int     `json:"stockQuantity"`
	Stock         *int     `json:"stock"`
	MinStock      *int     `json:"minStock"`
	ImageURL      string   `json:"imageUrl"`
	IsActive      *bool    `json:"isActive"`
}

func (r rawProduct) normalize() Product {
	return Product{
		ID:           firstInt64(r.ProductID, r.ID),
		Code:         firstString(r.ProductCode, r.Code),
		Barcode:      r.Barcode,
		Name:         firstString(r.ProductName, r.Name),
		CategoryID:   firstInt64(r.CategoryID),
		CategoryName: r.CategoryName,
		Unit:         r.Unit,
		CostPrice:    toMoney(r.CostPrice),
		Price:        toMoney(r.SellingPrice, r.Price),
		Stock:        firstInt(r.StockQuantity, r.Stock),
		MinStock:     firstInt(r.MinStock),
		ImageURL:     r.ImageURL,
		Active:       activeFlag(r.IsActive),
	}
}

type rawCategory struct {
	CategoryID   *int64 `json:"categoryId"`
	ID           *int64 `json:"id"`
	CategoryName string `json:"categoryName"`
	Name         string `json:"name"`
	IsActive     *bool  `json:"isActive"`
}

func (r rawCategory) normalize() Category {
	return Category{
		ID:     firstInt64(r.CategoryID, r.ID),
		Name:   firstString(r.CategoryName, r.Name),
		Active: activeFlag(r.IsActive),
	}
}

type rawTax struct {
	TaxID    *int64   `json:"taxId"`
	ID       *int64   `json:"id"`
	TaxCode  string   `json:"taxCode"`
	Code     string   `json:"code"`
	TaxName  string   `json:"taxName"`
	Name     string   `json:"name"`
	TaxRate  *float64 `json:"taxRate"`
	Rate     *float64 `json:"rate"`
	IsActive *bool    `json:"isActive"`
}

func (r rawTax) normalize() Tax {
	return Tax{
		ID:      firstInt64(r.TaxID, r.ID),
		Code:    firstString(r.TaxCode, r.Code),
		Name:    firstString(r.TaxName, r.Name),
		RateBps: toBps(r.TaxRate, r.Rate),
		Active:  activeFlag(r.IsActive),
	}
}

type rawPromotion struct {
	PromotionID    *int64   `json:"promotionId"`
	ID             *int64   `json:"id"`
	PromotionCode  string   `json:"promotionCode"`
	Code           string   `json:"code"`
	PromotionName  string   `json:"promotionName"`
	Name           string   `json:"name"`
	DiscountType   string   `json:"discountType"`
	DiscountValue  *float64 `json:"discountValue"`
	ApplyTo        string   `json:"applyTo"`
	MinOrderAmount *float64 `json:"minOrderAmount"`
	IsActive       *bool    `json:"isActive"`
	StartDate      string   `json:"startDate"`
	EndDate        string   `json:"endDate"`
}

func (r rawPromotion) normalize() promo.Rule {
	rule := promo.Rule{
		ID:       firstInt64(r.PromotionID, r.ID),
		Code:     firstString(r.PromotionCode, r.Code),
		Name:     firstString(r.PromotionName, r.Name),
		Kind:     promo.ParseKind(r.DiscountType),
		Scope:    promo.ParseScope(r.ApplyTo),
		MinOrder: toMoney(r.MinOrderAmount),
		Active:   activeFlag(r.IsActive),
		StartsAt: parseDate(r.StartDate),
		EndsAt:   parseDate(r.EndDate),
	}
	if rule.Kind == promo.KindPercent {
		rule.ValueBps = toBps(r.DiscountValue)
	} else {
		rule.Value = toMoney(r.DiscountValue)
	}
	return rule
}

// decodeList accepts either a bare JSON array or a {"data": [...]} envelope.
// Anything else is an upstream fault; letting it decode to an empty list
// would cache an empty catalog for the TTL.
func decodeList[T any](data []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(data, &items); err == nil {
		return items, nil
	}
	var envelope struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}
	return nil, fmt.Errorf("%w: unexpected list payload", ErrUpstream)
}

// activeFlag implements the upstream's `isActive !== false` convention: a
// missing flag means active.
func activeFlag(v *bool) bool {
	return v == nil || *v
}

func firstInt64(values ...*int64) int64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

func firstInt(values ...*int) int {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

func firstString(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func toMoney(values ...*float64) pricing.Money {
	for _, v := range values {
		if v != nil {
			return pricing.Money(math.Round(*v))
		}
	}
	return 0
}

// toBps converts a percent value (10 == 10%, 12.5 == 12.5%) to basis points.
func toBps(values ...*float64) int32 {
	for _, v := range values {
		if v != nil {
			return int32(math.Round(*v * 100))
		}
	}
	return 0
}

func parseDate(value string) *time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return &ts
		}
	}
	return nil
}

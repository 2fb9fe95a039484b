package catalog

import (
	"context"
	"errors"

	"github.com/noah-isme/pos-toko/internal/promo"
)

// ErrNotFound indicates the requested catalog record does not exist upstream.
var ErrNotFound = errors.New("catalog record not found")

// Service layers the Redis cache over the upstream client and resolves
// records by id for cart mutations.
type Service struct {
	Client *Client
	Cache  *Cache
}

// Products returns the active product list, served from cache when fresh.
func (s *Service) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if ok, _ := s.Cache.GetJSON(ctx, keyProducts, &products); ok {
		return products, nil
	}
	products, err := s.Client.Products(ctx, ListOptions{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	_ = s.Cache.SetJSON(ctx, keyProducts, products)
	return products, nil
}

// Categories returns the category list, served from cache when fresh.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if ok, _ := s.Cache.GetJSON(ctx, keyCategories, &categories); ok {
		return categories, nil
	}
	categories, err := s.Client.Categories(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.Cache.SetJSON(ctx, keyCategories, categories)
	return categories, nil
}

// Taxes returns active taxes, served from cache when fresh.
func (s *Service) Taxes(ctx context.Context) ([]Tax, error) {
	var taxes []Tax
	if ok, _ := s.Cache.GetJSON(ctx, keyTaxes, &taxes); ok {
		return taxes, nil
	}
	taxes, err := s.Client.Taxes(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.Cache.SetJSON(ctx, keyTaxes, taxes)
	return taxes, nil
}

// Promotions returns active promotion rules, served from cache when fresh.
func (s *Service) Promotions(ctx context.Context) ([]promo.Rule, error) {
	var rules []promo.Rule
	if ok, _ := s.Cache.GetJSON(ctx, keyPromotions, &rules); ok {
		return rules, nil
	}
	rules, err := s.Client.Promotions(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.Cache.SetJSON(ctx, keyPromotions, rules)
	return rules, nil
}

// ProductByID resolves a single product from the active list.
func (s *Service) ProductByID(ctx context.Context, id int64) (Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

// TaxByID resolves a single active tax.
func (s *Service) TaxByID(ctx context.Context, id int64) (Tax, error) {
	taxes, err := s.Taxes(ctx)
	if err != nil {
		return Tax{}, err
	}
	for _, t := range taxes {
		if t.ID == id {
			return t, nil
		}
	}
	return Tax{}, ErrNotFound
}

// PromotionByID resolves a single active promotion rule.
func (s *Service) PromotionByID(ctx context.Context, id int64) (promo.Rule, error) {
	rules, err := s.Promotions(ctx)
	if err != nil {
		return promo.Rule{}, err
	}
	for _, rule := range rules {
		if rule.ID == id {
			return rule, nil
		}
	}
	return promo.Rule{}, ErrNotFound
}

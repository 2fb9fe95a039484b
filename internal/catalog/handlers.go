package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/noah-isme/pos-toko/internal/common"
)

// Handler exposes read-through catalog endpoints consumed by the POS grid
// and the promotion/tax selectors.
type Handler struct {
	Svc          *Service
	DefaultLimit int
}

func (h *Handler) limit() int {
	if h.DefaultLimit <= 0 {
		return 50
	}
	return h.DefaultLimit
}

// Products lists active products with optional search and category filters.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	products, err := h.Svc.Products(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "unable to load products", nil)
		return
	}

	search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search")))
	categoryID, _ := strconv.ParseInt(r.URL.Query().Get("categoryId"), 10, 64)
	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if categoryID > 0 && p.CategoryID != categoryID {
			continue
		}
		filtered = append(filtered, p)
	}

	page, perPage := common.ParsePagination(r, h.limit())
	start := (page - 1) * perPage
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + perPage
	if end > len(filtered) {
		end = len(filtered)
	}

	common.JSON(w, http.StatusOK, map[string]any{
		"data": filtered[start:end],
		"meta": common.Pagination{Page: page, PerPage: perPage, TotalItems: len(filtered)},
	})
}

// Categories lists product categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	categories, err := h.Svc.Categories(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "unable to load categories", nil)
		return
	}
	common.JSONData(w, http.StatusOK, categories)
}

// Taxes lists active taxes.
func (h *Handler) Taxes(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	taxes, err := h.Svc.Taxes(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "unable to load taxes", nil)
		return
	}
	common.JSONData(w, http.StatusOK, taxes)
}

// Promotions lists active promotions.
func (h *Handler) Promotions(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	rules, err := h.Svc.Promotions(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "unable to load promotions", nil)
		return
	}
	common.JSONData(w, http.StatusOK, rules)
}

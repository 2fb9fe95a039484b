package cart

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/pos-toko/internal/catalog"
	"github.com/noah-isme/pos-toko/internal/common"
	"github.com/noah-isme/pos-toko/internal/pricing"
)

// Handler exposes the checkout session API.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type createCartRequest struct {
	CashierID  string `json:"cashierId"`
	CustomerID string `json:"customerId"`
}

type addItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Qty       int   `json:"qty"`
}

type setQuantityRequest struct {
	Qty int `json:"qty"`
}

type discountRequest struct {
	Percent *float64 `json:"percent" validate:"omitempty,gte=0,lte=100"`
	Amount  *int64   `json:"amount" validate:"omitempty,gte=0"`
}

type promotionRequest struct {
	PromotionID int64 `json:"promotionId" validate:"required,gt=0"`
}

type taxRequest struct {
	TaxID int64 `json:"taxId" validate:"required,gt=0"`
}

type resumeRequest struct {
	HeldID string `json:"heldId" validate:"required"`
}

// sessionEnvelope is the canonical cart response: the session state plus the
// totals recomputed from it.
type sessionEnvelope struct {
	Session *Session       `json:"session"`
	Totals  pricing.Totals `json:"totals"`
}

func envelope(s *Session) sessionEnvelope {
	return sessionEnvelope{Session: s, Totals: s.Totals()}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body", nil)
		return false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(dst); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", map[string]any{"error": err.Error()})
			return false
		}
	}
	return true
}

func writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrOutOfStock):
		common.JSONError(w, http.StatusConflict, "OUT_OF_STOCK", err.Error(), nil)
	case errors.Is(err, ErrEmptyCart):
		common.JSONError(w, http.StatusConflict, "EMPTY_CART", err.Error(), nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	case errors.Is(err, catalog.ErrUpstream):
		common.JSONError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "upstream catalog unavailable", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}

// Create starts a new empty session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCartRequest
	if r.ContentLength > 0 {
		if !h.decode(w, r, &req) {
			return
		}
	}
	session, err := h.Svc.Create(r.Context(), req.CashierID, req.CustomerID)
	if err != nil {
		writeCartError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, envelope(session))
}

// Get returns a session with its totals.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeCartError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, envelope(session))
}

// Delete removes a session.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeCartError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddItem adds a product to the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.Svc.AddItem(r.Context(), chi.URLParam(r, "id"), req.ProductID, req.Qty)
	if err != nil {
		writeCartError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, envelope(session))
}

// SetQuantity sets a line's quantity; zero removes the line.
func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil || productID <= 0 {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid product id", nil)
		return
	}
	var req setQuantityRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.Svc.SetQuantity(r.Context(), chi.URLParam(r, "id"), productID, req.Qty)
	if err != nil {
		writeCartError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, envelope(session))
}

// RemoveItem deletes a line from the cart.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil || productID <= 0 {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid product id", nil)
		return
	}
	session, err := h.Svc.RemoveItem(r.Context(), chi.URLParam(r, "id"), productID)
	if err != nil {
		writeCartError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, envelope(session))
}

// SetDiscount stores the cashier discount. The API speaks percent values
// ("percent": 7.5); they are converted to basis points at this boundary.
func (h *Handler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if !h.decode(w, r, &req) {
		return
	}
	var (
		bps    *int32
		amount *pricing.Money
	)
	if req.Percent != nil {
		v := int32(math.Round(*req.Percent * 100))
		bps = &v
	}
	if req.Amount != nil {
		v := pricing.Money(*req.Amount)
		amount = &v
	}
	session, err := h.Svc.SetManualDiscount(r.Context(), chi.URLParam(r, "id"), bps, amount)
	if err != nil {
		writeCartError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, envelope(session))
}

// SetPromotion attaches a promotion to the session.
func (h *Handler) SetPromotion(w http.ResponseWriter, r *http.Request) {
	var req promotionRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.Svc.ApplyPromotion(r.Context(), chi.URLParam(r, "id"), req.PromotionID)
	if err != nil {
		writeCartError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, envelope(session))
}

// ClearPromotion detaches the promotion.
func (h *Handler) ClearPromotion(w http.ResponseWriter, r *http.Request) {
	session, err := h.Svc.ClearPromotion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeCartError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, envelope(session))
}

// SetTax attaches a tax to the session.
func (h *Handler) SetTax(w http.ResponseWriter, r *http.Request) {
	var req taxRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.Svc.ApplyTax(r.Context(), chi.URLParam(r, "id"), req.TaxID)
	if err != nil {
		writeCartError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, envelope(session))
}

// ClearTax detaches the tax.
func (h *Handler) ClearTax(w http.ResponseWriter, r *http.Request) {
	session, err := h.Svc.ClearTax(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeCartError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, envelope(session))
}

// Clear empties the cart lines and the manual discount.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	session, err := h.Svc.Clear(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeCartError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, envelope(session))
}

// Hold parks the current cart and clears the live session.
func (h *Handler) Hold(w http.ResponseWriter, r *http.Request) {
	held, err := h.Svc.Hold(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeCartError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, held)
}

// ListHeld lists parked orders.
func (h *Handler) ListHeld(w http.ResponseWriter, r *http.Request) {
	held, err := h.Svc.ListHeld(r.Context())
	if err != nil {
		writeCartError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, held)
}

// Resume restores a held order into the session.
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	var req resumeRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.Svc.Resume(r.Context(), req.HeldID, chi.URLParam(r, "id"))
	if err != nil {
		writeCartError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, envelope(session))
}

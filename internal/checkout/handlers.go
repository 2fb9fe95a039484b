package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/pos-toko/internal/cart"
	"github.com/noah-isme/pos-toko/internal/common"
	"github.com/noah-isme/pos-toko/internal/invoice"
)

// Handler exposes the confirm-payment endpoint.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type confirmRequest struct {
	Method   string `json:"method" validate:"required,oneof=cash card transfer"`
	Received int64  `json:"received" validate:"gte=0"`
	Notes    string `json:"notes"`
}

// Confirm settles the session and submits the invoice upstream.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(&req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", map[string]any{"error": err.Error()})
			return
		}
	}

	result, err := h.Svc.Confirm(r.Context(), chi.URLParam(r, "id"), Payment{
		Method:   req.Method,
		Received: req.Received,
		Notes:    req.Notes,
	})
	if err != nil {
		writeConfirmError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, result)
}

func writeConfirmError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInsufficientPayment):
		common.JSONError(w, http.StatusUnprocessableEntity, "INSUFFICIENT_PAYMENT", err.Error(), nil)
	case errors.Is(err, ErrUnknownMethod), errors.Is(err, cart.ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	case errors.Is(err, cart.ErrEmptyCart):
		common.JSONError(w, http.StatusConflict, "EMPTY_CART", err.Error(), nil)
	case errors.Is(err, cart.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, invoice.ErrUpstream):
		common.JSONError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "invoice submission failed", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}

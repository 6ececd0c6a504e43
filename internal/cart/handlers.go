package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/agriai/backend-mandi/internal/common"
	"github.com/agriai/backend-mandi/internal/fees"
	"github.com/agriai/backend-mandi/internal/repo"
)

// Handler wires the cart service to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type cartView struct {
	Items []repo.CartItem `json:"items"`
	Fees  fees.Breakdown  `json:"fees"`
	Role  string          `json:"role"`
	View  View            `json:"view,omitempty"`
}

func identity(r *http.Request) (string, string, bool) {
	userID, ok := common.UserID(r.Context())
	if !ok || userID == "" {
		return "", "", false
	}
	role, ok := common.Role(r.Context())
	if !ok || role == "" {
		return "", "", false
	}
	return userID, role, true
}

// Get returns the cart contents with the full fee breakdown.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := identity(r)
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	view := View(r.URL.Query().Get("view"))
	items, breakdown, err := h.Svc.Breakdown(r.Context(), userID, role, view)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, cartView{Items: items, Fees: breakdown, Role: role, View: view})
}

// Totals returns only the aggregated fee summary for the cart.
func (h *Handler) Totals(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := identity(r)
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	view := View(r.URL.Query().Get("view"))
	_, breakdown, err := h.Svc.Breakdown(r.Context(), userID, role, view)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, breakdown.Summary)
}

type addItemPayload struct {
	CropID   string  `json:"cropId" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
}

// AddItem adds a crop to the cart or tops up an existing line.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := identity(r)
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	var payload addItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	item, err := h.Svc.AddItem(r.Context(), userID, role, payload.CropID, payload.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, item)
}

type updateItemPayload struct {
	Quantity     *float64 `json:"quantity" validate:"omitempty,gte=0"`
	PricePerUnit *float64 `json:"pricePerUnit" validate:"omitempty,gte=0"`
}

// UpdateItem edits quantity and/or unit price on one cart line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := identity(r)
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	var payload updateItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	qty, price := -1.0, -1.0
	if payload.Quantity != nil {
		qty = *payload.Quantity
	}
	if payload.PricePerUnit != nil {
		price = *payload.PricePerUnit
	}
	item, err := h.Svc.UpdateItem(r.Context(), userID, role, chi.URLParam(r, "itemID"), qty, price)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, item)
}

// RemoveItem deletes one line from the cart.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := identity(r)
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	if err := h.Svc.RemoveItem(r.Context(), userID, role, chi.URLParam(r, "itemID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear empties the cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := identity(r)
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	if err := h.Svc.Clear(r.Context(), userID, role); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
	}
}

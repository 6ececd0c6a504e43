package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/agriai/backend-mandi/internal/common"
	"github.com/agriai/backend-mandi/internal/repo"
)

func repoCrop(farmerID string, p createCropPayload) repo.Crop {
	return repo.Crop{
		FarmerID:          farmerID,
		Name:              p.Name,
		Category:          p.Category,
		Variety:           p.Variety,
		PricePerUnit:      p.PricePerUnit,
		QuantityAvailable: p.QuantityAvailable,
	}
}

// Handler wires the catalog service to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// List returns a page of crop listings.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, DefaultPerPage)
	result, err := h.Svc.List(r.Context(), page, perPage)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": result.Crops,
		"meta": common.Pagination{Page: page, PerPage: perPage, TotalItems: result.Total},
	})
}

// Get returns one crop listing.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	crop, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, crop)
}

type createCropPayload struct {
	Name              string  `json:"name" validate:"required"`
	Category          string  `json:"category"`
	Variety           string  `json:"variety"`
	PricePerUnit      float64 `json:"pricePerUnit" validate:"gte=0"`
	QuantityAvailable float64 `json:"quantityAvailable" validate:"gte=0"`
}

// Create adds a listing owned by the authenticated farmer.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	farmerID, ok := common.UserID(r.Context())
	if !ok || farmerID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	var payload createCropPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	crop, err := h.Svc.Create(r.Context(), repoCrop(farmerID, payload))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, crop)
}

type updateCropPayload struct {
	PricePerUnit      float64 `json:"pricePerUnit" validate:"gte=0"`
	QuantityAvailable float64 `json:"quantityAvailable" validate:"gte=0"`
}

// Update adjusts price and available quantity on an owned listing.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	farmerID, ok := common.UserID(r.Context())
	if !ok || farmerID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	var payload updateCropPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	crop, err := h.Svc.Update(r.Context(), chi.URLParam(r, "id"), farmerID, payload.PricePerUnit, payload.QuantityAvailable)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, crop)
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

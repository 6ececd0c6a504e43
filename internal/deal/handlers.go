package deal

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/agriai/backend-mandi/internal/common"
)

// Handler wires the deal service to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// Create snapshots the caller's cart into a new pending deal.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := identity(r)
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	email, _ := common.Email(r.Context())
	created, err := h.Svc.Create(r.Context(), userID, role, email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, created)
}

// List returns the caller's deals, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identity(r)
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	deals, err := h.Svc.List(r.Context(), userID, perPage, (page-1)*perPage)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": deals,
		"meta": common.Pagination{Page: page, PerPage: perPage, TotalItems: len(deals)},
	})
}

// Get returns one of the caller's deals.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identity(r)
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	d, err := h.Svc.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, d)
}

type statusPayload struct {
	Status string `json:"status" validate:"required,oneof=accepted declined"`
}

// UpdateStatus settles a pending deal as accepted or declined.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identity(r)
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	var payload statusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
	}
	email, _ := common.Email(r.Context())
	d, err := h.Svc.UpdateStatus(r.Context(), userID, chi.URLParam(r, "id"), payload.Status, email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, d)
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

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrInvalidTransition):
		common.JSONError(w, http.StatusUnprocessableEntity, "UNPROCESSABLE", err.Error(), nil)
	case errors.Is(err, ErrForbidden):
		common.JSONError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
	}
}

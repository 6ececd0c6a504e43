package invoice

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agriai/backend-mandi/internal/common"
	"github.com/agriai/backend-mandi/internal/deal"
)

// Handler serves printable invoices for settled and pending deals.
type Handler struct {
	Deals    *deal.Service
	Renderer *Renderer
}

// Get renders the invoice for one of the caller's deals as HTML.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok || userID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	d, err := h.Deals.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, deal.ErrNotFound):
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		case errors.Is(err, deal.ErrForbidden):
			common.JSONError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
		default:
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
		}
		return
	}
	lines, err := deal.DecodeLines(d)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
		return
	}
	html, err := h.Renderer.Render(d, lines)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

package checkout

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/common"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/order"
)

// Handler exposes the checkout endpoint.
type Handler struct {
	Svc *Service
}

// Routes returns the checkout routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/{session}", h.complete)
	return r
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	session := strings.TrimSpace(chi.URLParam(r, "session"))
	if session == "" {
		common.JSONError(w, http.StatusBadRequest, "MISSING_SESSION", "session is required", nil)
		return
	}
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body", nil)
		return
	}
	o, err := h.Svc.Complete(r.Context(), session, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, o)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyCart), errors.Is(err, order.ErrEmptyOrder):
		common.JSONError(w, http.StatusBadRequest, "EMPTY_CART", "cart has no items", nil)
	default:
		common.WriteError(w, err)
	}
}

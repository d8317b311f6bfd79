package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/common"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/obs"
	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

// Handler wires the cart service to HTTP. Routes are session-scoped: the
// kiosk client generates a session id and carries it in the path.
type Handler struct {
	Svc *Service
}

// Routes mounts the cart endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{session}", h.Get)
	r.Delete("/{session}", h.Clear)
	r.Post("/{session}/items", h.AddItem)
	r.Patch("/{session}/items/{cartId}", h.UpdateQuantity)
	r.Delete("/{session}/items/{cartId}", h.RemoveItem)
	return r
}

// Get returns the current cart for a session.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionParam(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.Get(r.Context(), session)
	if err != nil {
		h.writeError(w, "get", err)
		return
	}
	common.JSONData(w, http.StatusOK, c)
}

// AddItem adds one configured item to the session cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionParam(w, r)
	if !ok {
		return
	}
	var payload AddInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	c, err := h.Svc.AddItem(r.Context(), session, payload)
	if err != nil {
		h.writeError(w, "add", err)
		return
	}
	countOp("add", "ok")
	common.JSONData(w, http.StatusCreated, c)
}

// UpdateQuantity sets the quantity of a cart line; zero removes it.
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionParam(w, r)
	if !ok {
		return
	}
	cartID := chi.URLParam(r, "cartId")
	var payload struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	c, err := h.Svc.UpdateQuantity(r.Context(), session, cartID, payload.Quantity)
	if err != nil {
		h.writeError(w, "update", err)
		return
	}
	countOp("update", "ok")
	common.JSONData(w, http.StatusOK, c)
}

// RemoveItem deletes a cart line. Removing an absent line succeeds.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionParam(w, r)
	if !ok {
		return
	}
	cartID := chi.URLParam(r, "cartId")
	c, err := h.Svc.Remove(r.Context(), session, cartID)
	if err != nil {
		h.writeError(w, "remove", err)
		return
	}
	countOp("remove", "ok")
	common.JSONData(w, http.StatusOK, c)
}

// Clear empties the session cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionParam(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Clear(r.Context(), session); err != nil {
		h.writeError(w, "clear", err)
		return
	}
	countOp("clear", "ok")
	w.WriteHeader(http.StatusNoContent)
}

func sessionParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	session := strings.TrimSpace(chi.URLParam(r, "session"))
	if session == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "session id is required", nil)
		return "", false
	}
	return session, true
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	countOp(op, "error")
	switch {
	case errors.Is(err, pricing.ErrInvalidSelection):
		common.JSONError(w, http.StatusBadRequest, "INVALID_SELECTION", "selected option does not exist on this item", nil)
	case errors.Is(err, pricing.ErrInvalidQuantity):
		common.JSONError(w, http.StatusBadRequest, "INVALID_QUANTITY", "quantity must be at least 1", nil)
	case errors.Is(err, ErrLineNotFound):
		common.JSONError(w, http.StatusNotFound, "LINE_NOT_FOUND", "cart line not found", nil)
	default:
		common.WriteError(w, err)
	}
}

func countOp(op, result string) {
	if obs.CartMutationsTotal != nil {
		obs.CartMutationsTotal.WithLabelValues(op, result).Inc()
	}
}

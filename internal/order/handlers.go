package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/common"
)

// Handler exposes order lookups and admin management over HTTP.
type Handler struct {
	Svc *Service
}

// Routes returns the public order routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{number}", h.byNumber)
	return r
}

// AdminRoutes returns the admin order routes.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Patch("/{id}/status", h.setStatus)
	return r
}

func (h *Handler) byNumber(w http.ResponseWriter, r *http.Request) {
	o, err := h.Svc.ByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, o)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 20)
	status := r.URL.Query().Get("status")
	orders, total, err := h.Svc.List(r.Context(), status, page, perPage)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": orders,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: total,
		},
	})
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "INVALID_ID", "order id must be a number", nil)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body", nil)
		return
	}
	if err := h.Svc.SetStatus(r.Context(), id, body.Status); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
	case errors.Is(err, ErrInvalidStatus):
		common.JSONError(w, http.StatusBadRequest, "INVALID_STATUS", err.Error(), nil)
	default:
		common.WriteError(w, err)
	}
}

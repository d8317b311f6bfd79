package settings

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/common"
)

// Handler exposes the settings endpoints.
type Handler struct {
	Svc *Service
}

// Routes returns the public settings routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.get)
	return r
}

// AdminRoutes returns the authenticated settings routes.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Put("/", h.update)
	return r
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Svc.Get(r.Context())
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			common.JSONError(w, http.StatusNotFound, "NOT_CONFIGURED", "settings have not been configured", nil)
			return
		}
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, s)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in Settings
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body", nil)
		return
	}
	s, err := h.Svc.Update(r.Context(), in)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
			return
		}
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, s)
}

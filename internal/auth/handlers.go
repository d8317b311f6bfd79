package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/common"
)

// Handler exposes the admin authentication endpoints.
type Handler struct {
	Svc *Service
}

// Routes returns the unauthenticated auth routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.login)
	return r
}

// AdminRoutes returns the authenticated account-management routes.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/admins", h.createAdmin)
	return r
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body", nil)
		return
	}
	result, err := h.Svc.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, result)
}

func (h *Handler) createAdmin(w http.ResponseWriter, r *http.Request) {
	actor, ok := common.AdminFrom(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	var body struct {
		Username   string `json:"username"`
		Password   string `json:"password"`
		Superadmin bool   `json:"superadmin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body", nil)
		return
	}
	info, err := h.Svc.CreateAdmin(r.Context(), actor, body.Username, body.Password, body.Superadmin)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, info)
}

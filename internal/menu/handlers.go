package menu

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/common"
)

// Handler exposes the menu over HTTP.
type Handler struct {
	Svc *Service
}

// Routes returns the public read-only menu routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/categories", h.listCategories)
	r.Get("/menu-items", h.listItems)
	r.Get("/menu-items/{id}", h.getItem)
	return r
}

// AdminRoutes returns the authenticated CRUD routes.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/menu-items", h.createItem)
	r.Put("/menu-items/{id}", h.updateItem)
	r.Delete("/menu-items/{id}", h.deleteItem)
	r.Post("/categories", h.createCategory)
	r.Put("/categories/{id}", h.updateCategory)
	r.Delete("/categories/{id}", h.deleteCategory)
	return r
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Svc.Categories(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, cats)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Svc.Items(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, items)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "INVALID_ID", "item id must be a number", nil)
		return
	}
	item, err := h.Svc.Item(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, item)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var in ItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body", nil)
		return
	}
	item, err := h.Svc.CreateItem(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, item)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "INVALID_ID", "item id must be a number", nil)
		return
	}
	var in ItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body", nil)
		return
	}
	item, err := h.Svc.UpdateItem(r.Context(), id, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, item)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "INVALID_ID", "item id must be a number", nil)
		return
	}
	if err := h.Svc.DeleteItem(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var in CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body", nil)
		return
	}
	cat, err := h.Svc.CreateCategory(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, cat)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "INVALID_ID", "category id must be a number", nil)
		return
	}
	var in CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body", nil)
		return
	}
	cat, err := h.Svc.UpdateCategory(r.Context(), id, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, cat)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "INVALID_ID", "category id must be a number", nil)
		return
	}
	if err := h.Svc.DeleteCategory(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "menu entity not found", nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	default:
		common.WriteError(w, err)
	}
}

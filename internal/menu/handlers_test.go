package menu_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/menu"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	svc, _ := newTestService(t)
	h := &menu.Handler{Svc: svc}
	r := chi.NewRouter()
	r.Mount("/api/v1", h.Routes())
	r.Mount("/api/v1/admin", h.AdminRoutes())
	return r
}

func TestMenuHandlers(t *testing.T) {
	router := newTestRouter(t)

	body, err := json.Marshal(menu.ItemInput{
		Name:     "Classic Burger",
		Price:    5000,
		Category: "Burgers",
		Sizes: []menu.SizeInput{
			{Name: "Regular", Price: 5000},
			{Name: "Large", Price: 6500},
		},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/menu-items", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data menu.Item `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "Classic Burger", created.Data.Name)
	require.Len(t, created.Data.Sizes, 2)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/menu-items?category=Burgers", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []menu.Item `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/menu-items?category=Drinks", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/admin/menu-items/999", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	var errResp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	require.Equal(t, "NOT_FOUND", errResp.Error.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/menu-items", bytes.NewReader([]byte(`{"price":-5}`))))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/menu-items/abc", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

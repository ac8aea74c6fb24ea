package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/emerssive/Chrome-Extension/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()

	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer tok-1"
	}
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "s3cret!" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": "tok-1"})
	})
	mux.HandleFunc("POST /registries/{id}/products", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		if r.PathValue("id") != "3" {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "Access denied"})
			return
		}
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Desk Lamp", req["name"])
		assert.Equal(t, "24.99", req["price"])
		assert.Equal(t, "https://shop.example.com/", req["storeUrl"])
		assert.Nil(t, req["imageUrl"])
		writeJSON(w, http.StatusCreated, map[string]any{"id": 55})
	})
	mux.HandleFunc("DELETE /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "55" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Product not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "lamp", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		writeJSON(w, http.StatusOK, map[string]any{
			"items": []map[string]any{{"id": 55, "registryId": 3, "name": "Desk Lamp", "price": "24.99"}},
			"total": 1,
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient(t *testing.T) {
	ctx := context.Background()
	server := newTestAPI(t)
	c := New(server.URL, 5*time.Second)

	_, err := c.CreateProduct(ctx, 3, models.Candidate{Name: "x"}, "")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	err = c.Login(ctx, "ada@example.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)

	require.NoError(t, c.Login(ctx, "ada@example.com", "s3cret!"))

	cand := models.Candidate{Name: "Desk Lamp", Price: decimal.RequireFromString("24.99")}
	id, err := c.CreateProduct(ctx, 3, cand, "https://shop.example.com/")
	require.NoError(t, err)
	assert.Equal(t, int64(55), id)

	_, err = c.CreateProduct(ctx, 4, cand, "")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	products, err := c.ListProducts(ctx, ListQuery{Query: "lamp", Page: 2})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Desk Lamp", products[0].Name)
	assert.Equal(t, "24.99", products[0].Price.String())

	require.NoError(t, c.DeleteProduct(ctx, 55))
	err = c.DeleteProduct(ctx, 56)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeflow/internal/funding/service"
	"lifeflow/internal/funding/store/fund"
	"lifeflow/internal/platform/middleware"
	id "lifeflow/pkg/domain"
)

func newRouter(t *testing.T) chi.Router {
	t.Helper()
	svc, err := service.New(fund.NewInMemory())
	require.NoError(t, err)

	auth := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			claim := id.Claim{Email: "donor@example.com", Name: "Karim"}
			next.ServeHTTP(w, r.WithContext(middleware.WithClaim(r.Context(), claim)))
		})
	}

	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)), auth)
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func TestFundingFlow(t *testing.T) {
	router := newRouter(t)

	record := func(amount int64, txn string) *httptest.ResponseRecorder {
		raw, _ := json.Marshal(map[string]any{"amount": amount, "transactionId": txn})
		req := httptest.NewRequest(http.MethodPost, "/funding", bytes.NewReader(raw))
		req.Header.Set("Authorization", "Bearer x")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := record(500, "txn-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "donor@example.com", created["userEmail"])

	rec = record(1500, "txn-2")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = record(-5, "txn-3")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/funding", nil)
	req.Header.Set("Authorization", "Bearer x")
	list := httptest.NewRecorder()
	router.ServeHTTP(list, req)
	require.Equal(t, http.StatusOK, list.Code)

	var funds []map[string]any
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &funds))
	assert.Len(t, funds, 2)

	// The total stays public.
	total := httptest.NewRecorder()
	router.ServeHTTP(total, httptest.NewRequest(http.MethodGet, "/funding/total", nil))
	require.Equal(t, http.StatusOK, total.Code)
	assert.JSONEq(t, `{"total": 2000}`, total.Body.String())
}

func TestFundingRequiresSession(t *testing.T) {
	router := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/funding", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

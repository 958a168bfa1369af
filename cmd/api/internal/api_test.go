package internal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fazecat/momentumwatch/Internal/persist"
)

func testRouter(t *testing.T) (*chi.Mux, *persist.Store) {
	t.Helper()

	store := persist.NewStore(t.TempDir(), zap.NewNop().Sugar())
	api := &API{Store: store, JWTManager: NewJWTManager()}

	r := chi.NewRouter()
	r.Get("/health", api.HandleHealth)
	r.Post("/api/token", api.HandleGenerateToken)
	r.Group(func(r chi.Router) {
		r.Use(JWTAuthMiddleware(api.JWTManager))
		r.Get("/api/history", api.HandleListHistory)
		r.Get("/api/history/{date}", api.HandleGetHistory)
		r.Get("/api/latest", api.HandleGetLatest)
	})
	return r, store
}

func bearerToken(t *testing.T, r *chi.Mux) string {
	t.Helper()

	req := httptest.NewRequest("POST", "/api/token", strings.NewReader(`{"user_id":"tester"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestHistoryRequiresToken(t *testing.T) {
	r, _ := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/history", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/history", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHistoryEndpoints(t *testing.T) {
	r, store := testRouter(t)

	for _, d := range []string{"2025-06-02", "2025-06-03"} {
		_, err := store.SaveRun(d, persist.RunRecord{Provider: "fake", Version: "1.0.0"}, false)
		require.NoError(t, err)
	}

	token := bearerToken(t, r)
	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := get("/api/history")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2025-06-03")
	assert.Contains(t, w.Body.String(), "2025-06-02")

	w = get("/api/history/2025-06-02")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"provider"`)

	w = get("/api/history/2025-01-01")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// latest resolves to the newest date
	w = get("/api/latest")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTokenRequiresUserID(t *testing.T) {
	r, _ := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/token", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

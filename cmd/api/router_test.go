package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-leads/internal/infra/database"
	"github.com/xavierca1/ligue-leads/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

func newTestRouter() http.Handler {
	return newTestRouterWith(handlers.NewRateLimiter(100), false)
}

func newTestRouterWith(limiter *handlers.RateLimiter, trustProxy bool) http.Handler {
	repo := database.NewMemoryLeadRepository()
	sessions := usecase.NewSessionStore(func() *usecase.FormController {
		return usecase.NewFormController(usecase.NewDraftPersister(repo, nil),
			usecase.ControllerOptions{AutosaveDelay: time.Hour})
	})

	return NewRouter(routes{
		Forms:          handlers.NewFormHandler(sessions, "https://cdn.example.com/guia.pdf"),
		Leads:          handlers.NewLeadHandler(usecase.NewCaptureLeadUseCase(repo, nil, ""), nil),
		Validation:     handlers.NewValidationHandler(),
		Health:         handlers.NewHealthHandler(nil, nil, "memory"),
		Limiter:        limiter,
		AllowedOrigins: []string{"https://lp.example.com"},
		TrustProxy:     trustProxy,
	})
}

func TestRouterRoutes(t *testing.T) {
	srv := httptest.NewServer(newTestRouter())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/forms", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))

	resp, err = http.Get(srv.URL + "/forms/unknown")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/leads", "application/json", strings.NewReader(`{"name":"Ana"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

// TestRouterMetrics - séries por rota, não por id de sessão
func TestRouterMetrics(t *testing.T) {
	srv := httptest.NewServer(newTestRouter())
	defer srv.Close()

	for _, id := range []string{"a", "b"} {
		resp, err := http.Get(srv.URL + "/forms/" + id)
		require.NoError(t, err)
		resp.Body.Close()
	}

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Contains(t, string(body), `http_requests_total{method="GET",path="/forms/{id}",status="404"}`)
	assert.NotContains(t, string(body), `path="/forms/a"`)
	assert.Contains(t, string(body), "form_sessions_active")
}

func TestRouterCORS(t *testing.T) {
	srv := httptest.NewServer(newTestRouter())
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/forms", nil)
	req.Header.Set("Origin", "https://lp.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "https://lp.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

func openForm(t *testing.T, url, forwardedFor string) int {
	t.Helper()
	req, _ := http.NewRequest(http.MethodPost, url+"/forms", nil)
	req.Header.Set("X-Forwarded-For", forwardedFor)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestRouterRateLimitByConnection(t *testing.T) {
	srv := httptest.NewServer(newTestRouterWith(handlers.NewRateLimiter(1), false))
	defer srv.Close()

	assert.Equal(t, http.StatusCreated, openForm(t, srv.URL, "1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, openForm(t, srv.URL, "2.2.2.2"))
}

func TestRouterRateLimitBehindProxy(t *testing.T) {
	srv := httptest.NewServer(newTestRouterWith(handlers.NewRateLimiter(1), true))
	defer srv.Close()

	assert.Equal(t, http.StatusCreated, openForm(t, srv.URL, "1.1.1.1"))
	assert.Equal(t, http.StatusCreated, openForm(t, srv.URL, "2.2.2.2"))
	assert.Equal(t, http.StatusTooManyRequests, openForm(t, srv.URL, "1.1.1.1"))
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type fakeConn struct{ closed bool }

func (c fakeConn) IsClosed() bool { return c.closed }

func health(t *testing.T, h *HealthHandler) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestHealthHandlerHealthy(t *testing.T) {
	code, resp := health(t, NewHealthHandler(fakePinger{}, fakeConn{}, "postgres"))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "postgres", resp.Backend)
	assert.Equal(t, "healthy", resp.Dependencies["database"])
	assert.Equal(t, "healthy", resp.Dependencies["rabbitmq"])
}

func TestHealthHandlerNotConfigured(t *testing.T) {
	code, resp := health(t, NewHealthHandler(nil, nil, "memory"))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "not configured", resp.Dependencies["database"])
	assert.Equal(t, "not configured", resp.Dependencies["rabbitmq"])
}

func TestHealthHandlerDegraded(t *testing.T) {
	code, resp := health(t, NewHealthHandler(fakePinger{err: errors.New("refused")}, fakeConn{closed: true}, "postgres"))

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", resp.Status)
	assert.Contains(t, resp.Dependencies["database"], "refused")
	assert.Equal(t, "unhealthy: connection closed", resp.Dependencies["rabbitmq"])
}

type fakeSessions int

func (s fakeSessions) Len() int { return int(s) }

func TestHealthHandlerActiveSessions(t *testing.T) {
	h := NewHealthHandler(nil, nil, "memory")
	h.Sessions = fakeSessions(3)

	_, resp := health(t, h)
	assert.Equal(t, 3, resp.ActiveSessions)
}

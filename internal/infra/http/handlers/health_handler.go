package handlers

import (
	"context"
	"net/http"
	"time"
)

const (
	depHealthy       = "healthy"
	depNotConfigured = "not configured"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ConnectionState is satisfied by *amqp091.Connection.
type ConnectionState interface {
	IsClosed() bool
}

// SessionCounter reports how many form sessions are open.
type SessionCounter interface {
	Len() int
}

type HealthHandler struct {
	DB        Pinger
	RabbitMQ  ConnectionState
	Sessions  SessionCounter
	Backend   string
	StartTime time.Time
}

type HealthResponse struct {
	Status         string            `json:"status"`
	Backend        string            `json:"backend"`
	Uptime         string            `json:"uptime"`
	ActiveSessions int               `json:"active_sessions"`
	Dependencies   map[string]string `json:"dependencies"`
}

func NewHealthHandler(db Pinger, rabbitMQ ConnectionState, backend string) *HealthHandler {
	return &HealthHandler{
		DB:        db,
		RabbitMQ:  rabbitMQ,
		Backend:   backend,
		StartTime: time.Now(),
	}
}

// Handle serves GET /health. Unconfigured dependencies do not degrade the
// status: the memory backend runs without a database or a broker.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := map[string]string{
		"database": h.checkDatabase(r.Context()),
		"rabbitmq": h.checkRabbitMQ(),
	}

	resp := HealthResponse{
		Status:       depHealthy,
		Backend:      h.Backend,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	}
	if h.Sessions != nil {
		resp.ActiveSessions = h.Sessions.Len()
	}

	for _, v := range deps {
		if v != depHealthy && v != depNotConfigured {
			resp.Status = "degraded"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) string {
	if h.DB == nil {
		return depNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.DB.PingContext(ctx); err != nil {
		return "unhealthy: " + err.Error()
	}
	return depHealthy
}

func (h *HealthHandler) checkRabbitMQ() string {
	switch {
	case h.RabbitMQ == nil:
		return depNotConfigured
	case h.RabbitMQ.IsClosed():
		return "unhealthy: connection closed"
	default:
		return depHealthy
	}
}

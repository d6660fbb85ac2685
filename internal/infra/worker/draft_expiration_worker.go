package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// SessionSweeper drops idle form sessions.
type SessionSweeper interface {
	Sweep(idle time.Duration) int
}

// DraftExpirationWorker periodically closes idle form sessions and marks
// stale drafts in the store as abandoned.
type DraftExpirationWorker struct {
	drafts       entity.DraftAbandoner
	sessions     SessionSweeper
	sessionIdle  time.Duration
	abandonAfter time.Duration
	tickInterval time.Duration
	now          func() time.Time
}

const DefaultTickInterval = time.Minute

func NewDraftExpirationWorker(drafts entity.DraftAbandoner, sessions SessionSweeper, sessionIdle, abandonAfter, tick time.Duration) *DraftExpirationWorker {
	// time.NewTicker entra em pânico com intervalo <= 0
	if tick <= 0 {
		tick = DefaultTickInterval
	}
	return &DraftExpirationWorker{
		drafts:       drafts,
		sessions:     sessions,
		sessionIdle:  sessionIdle,
		abandonAfter: abandonAfter,
		tickInterval: tick,
		now:          time.Now,
	}
}

func (w *DraftExpirationWorker) Start(ctx context.Context) {
	slog.Info("🕒 worker de rascunhos iniciado",
		"session_idle", w.sessionIdle, "abandon_after", w.abandonAfter, "tick", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("⚠️ worker de rascunhos encerrado")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

func (w *DraftExpirationWorker) RunOnce(ctx context.Context) {
	if w.sessions != nil && w.sessionIdle > 0 {
		if n := w.sessions.Sweep(w.sessionIdle); n > 0 {
			slog.Info("🧹 sessões ociosas encerradas", "count", n)
		}
	}

	if w.drafts == nil || w.abandonAfter <= 0 {
		return
	}

	n, err := w.drafts.MarkAbandoned(ctx, w.now().Add(-w.abandonAfter).UTC())
	if err != nil {
		slog.Error("❌ erro ao marcar rascunhos abandonados", "error", err)
		return
	}
	if n > 0 {
		slog.Info("⏱️ rascunhos marcados como ABANDONED", "count", n)
	}
}

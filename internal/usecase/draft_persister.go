package usecase

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/metrics"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

// DraftPersister mirrors one form session to the lead store.
//
// Persistence is best effort: errors are logged and counted, never returned,
// and never retried. The lead must reach the success screen even when the
// store is down. Calls are serialized so a slow create cannot race a later
// save into a second record.
type DraftPersister struct {
	Repo      entity.LeadRepository
	Publisher LeadEventPublisher

	mu        sync.Mutex
	id        atomic.Pointer[string]
	finalized bool
	now       func() time.Time
}

func NewDraftPersister(repo entity.LeadRepository, publisher LeadEventPublisher) *DraftPersister {
	return &DraftPersister{
		Repo:      repo,
		Publisher: publisher,
		now:       time.Now,
	}
}

// RecordID returns the remote id, empty until the first successful save.
func (p *DraftPersister) RecordID() string {
	if id := p.id.Load(); id != nil {
		return *id
	}
	return ""
}

func (p *DraftPersister) Autosave(ctx context.Context, snapshot entity.LeadDraft) {
	if !snapshot.HasContact() {
		metrics.RecordAutosave("skipped")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finalized {
		return
	}

	snapshot.Status = entity.StatusDraft
	snapshot.UpdatedAt = p.now().UTC()

	id := p.RecordID()
	if id == "" {
		newID, err := p.Repo.Create(ctx, &snapshot)
		if err != nil {
			slog.Error("❌ erro ao criar rascunho do lead", "error", err)
			metrics.RecordPersistenceError("create")
			return
		}
		p.id.Store(&newID)
		metrics.RecordAutosave("create")
		slog.Debug("💾 rascunho criado", "lead_id", newID, "step", snapshot.Step)
		return
	}

	snapshot.ID = id
	if err := p.Repo.Update(ctx, id, &snapshot); err != nil {
		slog.Error("❌ erro ao atualizar rascunho do lead", "lead_id", id, "error", err)
		metrics.RecordPersistenceError("update")
		return
	}
	metrics.RecordAutosave("update")
	slog.Debug("💾 rascunho atualizado", "lead_id", id, "step", snapshot.Step)
}

// Finalize writes the completed snapshot to the existing record. Without a
// record id there is nothing to update and the call is a no-op.
func (p *DraftPersister) Finalize(ctx context.Context, snapshot entity.LeadDraft) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finalized {
		return
	}
	p.finalized = true
	metrics.RecordLeadCompleted("form")

	id := p.RecordID()
	if id == "" {
		slog.Warn("⚠️ envio final sem rascunho salvo, nada a atualizar", "email", snapshot.Email)
		return
	}

	now := p.now().UTC()
	snapshot.ID = id
	snapshot.Completed = true
	snapshot.Status = entity.StatusCompleted
	snapshot.UpdatedAt = now
	if snapshot.CompletedAt == nil {
		snapshot.CompletedAt = &now
	}

	if err := p.Repo.Update(ctx, id, &snapshot); err != nil {
		slog.Error("❌ erro ao finalizar lead", "lead_id", id, "error", err)
		metrics.RecordPersistenceError("finalize")
		return
	}
	slog.Info("✅ lead finalizado", "lead_id", id)

	publishCompleted(ctx, p.Publisher, &snapshot)
}

func publishCompleted(ctx context.Context, publisher LeadEventPublisher, lead *entity.LeadDraft) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishLeadCompleted(ctx, queue.NewLeadCompletedPayload(lead)); err != nil {
		// gravado no banco, mas sem notificações
		slog.Warn("⚠️ lead salvo, mas falha ao publicar na fila", "lead_id", lead.ID, "error", err)
		metrics.RecordIntegrationError("rabbitmq")
	}
}

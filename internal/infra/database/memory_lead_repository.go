package database

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// MemoryLeadRepository keeps leads in process memory. It backs the demo mode
// (no database configured) and the tests.
type MemoryLeadRepository struct {
	mu    sync.RWMutex
	leads map[string]entity.LeadDraft
}

func NewMemoryLeadRepository() *MemoryLeadRepository {
	return &MemoryLeadRepository{leads: make(map[string]entity.LeadDraft)}
}

var (
	_ entity.LeadRepository = (*MemoryLeadRepository)(nil)
	_ entity.DraftAbandoner = (*MemoryLeadRepository)(nil)
)

func (r *MemoryLeadRepository) Create(ctx context.Context, lead *entity.LeadDraft) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := "demo-" + uuid.New().String()
	stored := lead.Clone()
	stored.ID = id
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	if stored.Status == "" {
		stored.Status = entity.StatusDraft
	}

	r.mu.Lock()
	r.leads[id] = stored
	r.mu.Unlock()

	lead.ID = id
	lead.CreatedAt = stored.CreatedAt
	return id, nil
}

func (r *MemoryLeadRepository) Update(ctx context.Context, id string, lead *entity.LeadDraft) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.leads[id]
	if !ok {
		return entity.ErrLeadNotFound
	}

	next := lead.Clone()
	next.ID = id
	next.CreatedAt = current.CreatedAt
	// mesma regra do Postgres: concluído não volta a rascunho
	if current.Completed {
		next.Completed = true
		next.Status = current.Status
		next.CompletedAt = current.CompletedAt
	}
	r.leads[id] = next
	return nil
}

func (r *MemoryLeadRepository) FindByID(_ context.Context, id string) (*entity.LeadDraft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	c := lead.Clone()
	return &c, nil
}

func (r *MemoryLeadRepository) MarkAbandoned(_ context.Context, idleSince time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, lead := range r.leads {
		if !lead.Completed && lead.Status == entity.StatusDraft && lead.UpdatedAt.Before(idleSince) {
			lead.Status = entity.StatusAbandoned
			r.leads[id] = lead
			n++
		}
	}
	return n, nil
}

func (r *MemoryLeadRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.leads)
}

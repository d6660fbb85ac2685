package usecase

import (
	"context"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

type LeadEventPublisher interface {
	PublishLeadCompleted(ctx context.Context, payload queue.LeadCompletedPayload) error
}

// Autosaver is what the form controller needs from the persistence side.
type Autosaver interface {
	Autosave(ctx context.Context, snapshot entity.LeadDraft)
	Finalize(ctx context.Context, snapshot entity.LeadDraft)
	RecordID() string
}

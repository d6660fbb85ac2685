package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/metrics"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

// CaptureLeadUseCase stores a whole form posted at once, without a session.
type CaptureLeadUseCase struct {
	Repo        entity.LeadRepository
	Publisher   LeadEventPublisher
	DownloadURL string
	now         func() time.Time
}

func NewCaptureLeadUseCase(repo entity.LeadRepository, publisher LeadEventPublisher, downloadURL string) *CaptureLeadUseCase {
	return &CaptureLeadUseCase{
		Repo:        repo,
		Publisher:   publisher,
		DownloadURL: downloadURL,
		now:         time.Now,
	}
}

func (uc *CaptureLeadUseCase) Execute(ctx context.Context, input CaptureLeadInput) (*CaptureLeadOutput, error) {
	lead, err := DraftFromInput(input)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	lead.Step = entity.StepProfile
	lead.Status = entity.StatusCompleted
	lead.Completed = true
	lead.CompletedAt = &now
	lead.CreatedAt = now
	lead.UpdatedAt = now

	result := ValidateLead(lead)
	if !result.Valid {
		msg := "validation failed: "
		for i, e := range result.Errors {
			if i > 0 {
				msg += ", "
			}
			msg += e.Field
		}
		return nil, &DomainError{Code: CodeValidation, Message: msg, Fields: result.Errors}
	}

	id, err := uc.Repo.Create(ctx, lead)
	if err != nil {
		metrics.RecordPersistenceError("capture")
		return nil, &TechnicalError{
			Code:    CodeDatabase,
			Message: "failed to persist lead: " + err.Error(),
			Err:     err,
		}
	}
	lead.ID = id
	metrics.RecordLeadCompleted("capture")
	slog.Info("✅ lead capturado", "lead_id", id, "role", lead.Role)

	if uc.Publisher != nil {
		payload := queue.NewLeadCompletedPayload(lead)
		payload.Origin = queue.OriginCapture
		if err := uc.Publisher.PublishLeadCompleted(ctx, payload); err != nil {
			slog.Warn("⚠️ lead salvo, mas falha ao publicar na fila", "lead_id", id, "error", err)
			metrics.RecordIntegrationError("rabbitmq")
		}
	}

	return &CaptureLeadOutput{
		ID:          id,
		Success:     true,
		DownloadURL: uc.DownloadURL,
		Msg:         "Cadastro realizado com sucesso!",
	}, nil
}

// DraftFromInput maps the flat payload onto a draft, applying the same
// normalization as the step form (phone mask, role slugs).
func DraftFromInput(input CaptureLeadInput) (*entity.LeadDraft, error) {
	score, err := parseScore(input.NPS)
	if err != nil {
		return nil, &DomainError{
			Code:    CodeValidation,
			Message: "validation failed: score",
			Fields:  []ValidationError{{Field: FieldScore, Code: "invalid", Message: "Por favor, selecione uma nota"}},
		}
	}

	role, _ := entity.ParseRole(input.Role)
	return &entity.LeadDraft{
		Name:           input.Name,
		Email:          strings.TrimSpace(input.Email),
		Phone:          entity.FormatPhone(input.WhatsApp),
		Score:          score,
		ScoreComment:   input.NPSReason,
		Role:           role,
		Challenges:     input.Challenges,
		Question:       input.Question,
		Consent:        input.LGPD,
		MarketingOptIn: input.MarketingOptIn,
		Step:           entity.StepContact,
		Status:         entity.StatusDraft,
	}, nil
}

// parseScore accepts the score as a JSON number or a numeric string.
// Missing or empty means unanswered.
func parseScore(v any) (*int, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case float64:
		if s != math.Trunc(s) {
			return nil, fmt.Errorf("score must be an integer: %v", s)
		}
		n := int(s)
		return &n, nil
	case string:
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		return &n, nil
	default:
		return nil, fmt.Errorf("unsupported score type %T", v)
	}
}

package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/metrics"
)

// WebhookRepository stores leads in a Google Sheet through an Apps Script
// web app. The sheet only takes appended rows, so drafts stay local and a
// row is posted once, when the lead is completed.
type WebhookRepository struct {
	url        string
	httpClient *http.Client
}

func NewWebhookRepository(url string, httpClient *http.Client) *WebhookRepository {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &WebhookRepository{url: url, httpClient: httpClient}
}

var _ entity.LeadRepository = (*WebhookRepository)(nil)

// Create assigns a local id; completed leads are posted right away.
func (r *WebhookRepository) Create(ctx context.Context, lead *entity.LeadDraft) (string, error) {
	if lead.Completed {
		if err := r.AppendRow(ctx, NewRowPayload(lead)); err != nil {
			return "", err
		}
	}
	id := uuid.New().String()
	lead.ID = id
	return id, nil
}

// Update posts the row when the lead is completed and ignores drafts.
func (r *WebhookRepository) Update(ctx context.Context, id string, lead *entity.LeadDraft) error {
	if !lead.Completed {
		return nil
	}
	return r.AppendRow(ctx, NewRowPayload(lead))
}

// AppendRow fires the webhook. The Apps Script answers through a redirect
// and its body is not needed; only transport errors and error statuses
// count as failures.
func (r *WebhookRepository) AppendRow(ctx context.Context, row RowPayload) error {
	if r.url == "" {
		return fmt.Errorf("sheets webhook não configurado")
	}

	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("erro ao serializar linha: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		metrics.RecordIntegrationError("sheets")
		return fmt.Errorf("erro ao chamar webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		metrics.RecordIntegrationError("sheets")
		return fmt.Errorf("webhook retornou status %d", resp.StatusCode)
	}

	slog.Info("📊 linha enviada para a planilha", "email", row.Email)
	return nil
}

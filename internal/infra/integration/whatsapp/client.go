package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/metrics"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

const DefaultBaseURL = "https://graph.facebook.com/v18.0"

type Client struct {
	accessToken  string
	phoneID      string
	baseURL      string
	templateName string
	downloadURL  string
	httpClient   *http.Client
}

func NewClient(accessToken, phoneID, baseURL, templateName, downloadURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		accessToken:  accessToken,
		phoneID:      phoneID,
		baseURL:      baseURL,
		templateName: templateName,
		downloadURL:  downloadURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Name() string { return "whatsapp" }

// Notify sends the download link over WhatsApp, only to leads that opted in
// to marketing messages.
func (c *Client) Notify(ctx context.Context, payload queue.LeadCompletedPayload) error {
	if !payload.MarketingOptIn {
		return nil
	}
	digits := entity.PhoneDigits(payload.Phone)
	if digits == "" {
		return nil
	}

	name := payload.Name
	if f := strings.Fields(name); len(f) > 0 {
		name = f[0]
	}

	err := c.SendMessage(ctx, SendMessageInput{
		PhoneNumber:  "55" + digits,
		TemplateName: c.templateName,
		Parameters:   []string{name, c.downloadURL},
	})
	if err != nil {
		metrics.RecordIntegrationError("whatsapp")
	}
	return err
}

func (c *Client) SendMessage(ctx context.Context, input SendMessageInput) error {
	if c.accessToken == "" || c.phoneID == "" {
		return fmt.Errorf("whatsapp não configurado")
	}

	body, err := json.Marshal(newTemplateMessage(input))
	if err != nil {
		return fmt.Errorf("erro ao serializar payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("erro ao enviar mensagem: %w", err)
	}
	defer resp.Body.Close()

	var result SendMessageResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&result)

	if resp.StatusCode >= 300 {
		if result.Error != nil {
			return fmt.Errorf("whatsapp: %s (code %d)", result.Error.Message, result.Error.Code)
		}
		return fmt.Errorf("whatsapp api error: %d", resp.StatusCode)
	}

	msgID := ""
	if len(result.Messages) > 0 {
		msgID = result.Messages[0].ID
	}
	slog.Info("✅ WhatsApp: mensagem enviada", "to", input.PhoneNumber, "message_id", msgID)
	return nil
}

func newTemplateMessage(input SendMessageInput) templateMessage {
	params := make([]parameter, 0, len(input.Parameters))
	for _, p := range input.Parameters {
		params = append(params, parameter{Type: "text", Text: p})
	}

	return templateMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               input.PhoneNumber,
		Type:             "template",
		Template: template{
			Name:       input.TemplateName,
			Language:   language{Code: "pt_BR"},
			Components: []component{{Type: "body", Parameters: params}},
		},
	}
}

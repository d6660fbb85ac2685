package kommo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/metrics"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

const leadTag = "reforma_tributaria"

type Client struct {
	apiToken   string
	baseURL    string
	statusID   int
	httpClient *http.Client

	// RoleLabels maps role slugs to the names shown in the lead note.
	RoleLabels map[string]string
}

func NewClient(apiToken, baseURL string, statusID int) *Client {
	return &Client{
		apiToken:   apiToken,
		baseURL:    baseURL,
		statusID:   statusID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Name() string { return "kommo" }

// Notify hands a completed lead to the CRM funnel.
func (c *Client) Notify(ctx context.Context, payload queue.LeadCompletedPayload) error {
	label, ok := c.RoleLabels[payload.Role]
	if !ok {
		label = payload.Role
	}

	_, err := c.CreateLead(ctx, CreateLeadInput{
		Name:       payload.Name,
		Phone:      "55" + entity.PhoneDigits(payload.Phone),
		Email:      payload.Email,
		Role:       payload.Role,
		RoleLabel:  label,
		Score:      payload.Score,
		Challenges: payload.Challenges,
		Question:   payload.Question,
		Origin:     payload.Origin,
	})
	if err != nil {
		metrics.RecordIntegrationError("kommo")
	}
	return err
}

func (c *Client) CreateLead(ctx context.Context, input CreateLeadInput) (int, error) {
	if c.apiToken == "" {
		return 0, fmt.Errorf("kommo não configurado")
	}

	contactID, err := c.findOrCreateContact(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("erro ao criar/buscar contato: %w", err)
	}

	lead := map[string]interface{}{
		"name": fmt.Sprintf("%s - Reforma Tributária", input.Name),
		"_embedded": map[string]interface{}{
			"tags": []map[string]interface{}{
				{"name": leadTag},
				{"name": "area_" + input.Role},
			},
			"contacts": []map[string]interface{}{
				{"id": contactID},
			},
		},
	}
	if c.statusID > 0 {
		lead["status_id"] = c.statusID
	}

	var result struct {
		Embedded struct {
			Leads []struct {
				ID int `json:"id"`
			} `json:"leads"`
		} `json:"_embedded"`
	}
	if err := c.do(ctx, http.MethodPost, "/leads", []map[string]interface{}{lead}, &result); err != nil {
		return 0, fmt.Errorf("erro ao criar lead: %w", err)
	}
	if len(result.Embedded.Leads) == 0 {
		return 0, fmt.Errorf("lead não criado")
	}

	leadID := result.Embedded.Leads[0].ID
	if note := noteText(input); note != "" {
		if err := c.addNote(ctx, leadID, note); err != nil {
			// o lead já existe no funil; a nota é só contexto
			slog.Warn("⚠️ Kommo: falha ao anexar nota", "lead_id", leadID, "error", err)
		}
	}

	slog.Info("✅ Kommo: lead criado", "kommo_lead_id", leadID, "name", input.Name)
	return leadID, nil
}

func (c *Client) findOrCreateContact(ctx context.Context, input CreateLeadInput) (int, error) {
	contactID, err := c.findContactByPhone(ctx, input.Phone)
	if err == nil && contactID > 0 {
		slog.Debug("📱 Kommo: contato existente encontrado", "contact_id", contactID)
		return contactID, nil
	}
	return c.createContact(ctx, input)
}

func (c *Client) findContactByPhone(ctx context.Context, phone string) (int, error) {
	var result struct {
		Embedded struct {
			Contacts []ContactResponse `json:"contacts"`
		} `json:"_embedded"`
	}
	if err := c.do(ctx, http.MethodGet, "/contacts?query="+url.QueryEscape(phone), nil, &result); err != nil {
		return 0, err
	}
	if len(result.Embedded.Contacts) > 0 {
		return result.Embedded.Contacts[0].ID, nil
	}
	return 0, fmt.Errorf("contato não encontrado")
}

func (c *Client) createContact(ctx context.Context, input CreateLeadInput) (int, error) {
	contact := []map[string]interface{}{
		{
			"name": input.Name,
			"custom_fields_values": []map[string]interface{}{
				{
					"field_code": "PHONE",
					"values": []map[string]interface{}{
						{"value": input.Phone, "enum_code": "WORK"},
					},
				},
				{
					"field_code": "EMAIL",
					"values": []map[string]interface{}{
						{"value": input.Email, "enum_code": "WORK"},
					},
				},
			},
		},
	}

	var result struct {
		Embedded struct {
			Contacts []ContactResponse `json:"contacts"`
		} `json:"_embedded"`
	}
	if err := c.do(ctx, http.MethodPost, "/contacts", contact, &result); err != nil {
		return 0, fmt.Errorf("erro ao criar contato: %w", err)
	}
	if len(result.Embedded.Contacts) == 0 {
		return 0, fmt.Errorf("erro ao obter ID do contato criado")
	}

	contactID := result.Embedded.Contacts[0].ID
	slog.Info("✅ Kommo: novo contato criado", "contact_id", contactID)
	return contactID, nil
}

func (c *Client) addNote(ctx context.Context, leadID int, text string) error {
	notes := []map[string]interface{}{
		{
			"note_type": "common",
			"params":    map[string]string{"text": text},
		},
	}
	return c.do(ctx, http.MethodPost, "/leads/"+strconv.Itoa(leadID)+"/notes", notes, nil)
}

func noteText(input CreateLeadInput) string {
	var b bytes.Buffer
	if input.RoleLabel != "" {
		fmt.Fprintf(&b, "Área: %s\n", input.RoleLabel)
	}
	if input.Score != nil {
		fmt.Fprintf(&b, "NPS: %d\n", *input.Score)
	}
	if input.Challenges != "" {
		fmt.Fprintf(&b, "Desafios: %s\n", input.Challenges)
	}
	if input.Question != "" {
		fmt.Fprintf(&b, "Pergunta: %s\n", input.Question)
	}
	if input.Origin != "" {
		fmt.Fprintf(&b, "Origem: %s\n", input.Origin)
	}
	return b.String()
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	c.addAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("status %d - %s", resp.StatusCode, string(respBody))
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

func (c *Client) addAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiToken))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

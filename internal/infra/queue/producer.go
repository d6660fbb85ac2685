package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// LeadCompletedPayload is published once per submitted form. The worker
// fans it out to the notifiers (download e-mail, CRM).
type LeadCompletedPayload struct {
	LeadID         string    `json:"lead_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Score          *int      `json:"score"`
	ScoreComment   string    `json:"score_comment,omitempty"`
	Role           string    `json:"role"`
	Challenges     string    `json:"challenges"`
	Question       string    `json:"question"`
	MarketingOptIn bool      `json:"marketing_opt_in"`
	Origin         string    `json:"origin"`
	CompletedAt    time.Time `json:"completed_at"`
}

const (
	OriginForm    = "FORM"
	OriginCapture = "CAPTURE"
)

func NewLeadCompletedPayload(lead *entity.LeadDraft) LeadCompletedPayload {
	p := LeadCompletedPayload{
		LeadID:         lead.ID,
		Name:           lead.Name,
		Email:          lead.Email,
		Phone:          lead.Phone,
		ScoreComment:   lead.ScoreComment,
		Role:           string(lead.Role),
		Challenges:     lead.Challenges,
		Question:       lead.Question,
		MarketingOptIn: lead.MarketingOptIn,
		Origin:         OriginForm,
	}
	if lead.Score != nil {
		s := *lead.Score
		p.Score = &s
	}
	if lead.CompletedAt != nil {
		p.CompletedAt = *lead.CompletedAt
	}
	return p
}

// Publisher is the slice of *amqp.Channel the producer uses.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishLeadCompleted(ctx context.Context, payload LeadCompletedPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    payload.LeadID,
			Timestamp:    time.Now(),
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}

	return nil
}

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// LeadNotifier reage a um lead concluído (e-mail, CRM...).
type LeadNotifier interface {
	Name() string
	Notify(ctx context.Context, payload LeadCompletedPayload) error
}

// Consumer is the slice of *amqp.Channel the worker uses.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel   Consumer
	Notifiers []LeadNotifier
}

func NewWorker(ch Consumer, notifiers ...LeadNotifier) *Worker {
	return &Worker{
		Channel:   ch,
		Notifiers: notifiers,
	}
}

// Start consumes queueName until ctx is done or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual é mais seguro)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	slog.Info("👷 worker aguardando na fila", "queue", queueName, "notifiers", len(w.Notifiers))

	for {
		select {
		case <-ctx.Done():
			slog.Info("⚠️ worker encerrado")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("canal de mensagens fechado")
			}
			w.handleDelivery(ctx, d)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var payload LeadCompletedPayload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		slog.Error("❌ [WORKER] JSON inválido", "error", err)
		// mensagem malformada: rejeita sem requeue para não travar a fila
		d.Nack(false, false)
		return
	}

	if err := w.ProcessMessage(ctx, payload); err != nil {
		slog.Error("❌ [WORKER] falha ao notificar", "lead_id", payload.LeadID, "error", err)
		// sem retentativa: vai para a DLQ
		d.Nack(false, false)
		return
	}

	slog.Info("✅ [WORKER] lead notificado", "lead_id", payload.LeadID)
	d.Ack(false)
}

// ProcessMessage runs every notifier, even after one fails, and joins the
// errors.
func (w *Worker) ProcessMessage(ctx context.Context, payload LeadCompletedPayload) error {
	var errs []error
	for _, n := range w.Notifiers {
		if err := n.Notify(ctx, payload); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}

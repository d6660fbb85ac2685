package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "ex.leads"
	QueueName    = "q.leads.completed"
	DLQName      = "q.leads.completed.dlq"
	DLXName      = "ex.leads.dlx"
	RoutingKey   = "k.lead.completed"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

// NewRabbitMQ conecta no broker e declara a topologia (exchange, fila e DLQ).
// Ch fica para o producer; o consumer abre o próprio canal.
func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("falha ao abrir canal: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("falha ao declarar topologia: %w", err)
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

// ConsumerChannel opens a separate channel limited to prefetch unacked
// deliveries, so a slow notifier does not pull the whole queue into memory.
func (r *RabbitMQ) ConsumerChannel(prefetch int) (*amqp.Channel, error) {
	ch, err := r.Conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir canal do consumer: %w", err)
	}
	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			ch.Close()
			return nil, fmt.Errorf("falha ao configurar prefetch: %w", err)
		}
	}
	return ch, nil
}

func (r *RabbitMQ) Close() {
	if r.Ch != nil {
		r.Ch.Close()
	}
	if r.Conn != nil {
		r.Conn.Close()
	}
}

// TopologyDeclarer is the slice of *amqp.Channel used to declare the topology.
type TopologyDeclarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

type binding struct {
	exchange string
	queue    string
	args     amqp.Table
}

// DLQ primeiro: a fila principal aponta para a DLX
var topology = []binding{
	{exchange: DLXName, queue: DLQName},
	{exchange: ExchangeName, queue: QueueName, args: amqp.Table{
		"x-dead-letter-exchange":    DLXName,
		"x-dead-letter-routing-key": RoutingKey,
	}},
}

func setupTopology(ch TopologyDeclarer) error {
	for _, b := range topology {
		if err := ch.ExchangeDeclare(b.exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
			return fmt.Errorf("exchange %s: %w", b.exchange, err)
		}
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, b.args); err != nil {
			return fmt.Errorf("queue %s: %w", b.queue, err)
		}
		if err := ch.QueueBind(b.queue, RoutingKey, b.exchange, false, nil); err != nil {
			return fmt.Errorf("bind %s: %w", b.queue, err)
		}
	}
	return nil
}

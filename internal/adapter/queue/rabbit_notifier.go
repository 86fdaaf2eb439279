package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LakLN/Book-Garden-Server-v2/internal/usecase"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeName = "bookgarden.events"
	routingKey   = "notification.created"
	// QueueName is the notification delivery queue consumed by the worker.
	QueueName = "notification.created.q"
)

// RabbitNotifier implements usecase.NotificationSink by publishing
// notification messages to the events exchange. Delivery itself happens in
// the consumer worker; callers never block on transport.
type RabbitNotifier struct {
	ch *amqp.Channel
}

// NewRabbitNotifier sets up the exchange, queue, and binding once at startup.
func NewRabbitNotifier(ch *amqp.Channel) (*RabbitNotifier, error) {
	if err := ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		QueueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(
		q.Name,
		routingKey,
		exchangeName,
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("queue bind: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}

	return &RabbitNotifier{ch: ch}, nil
}

func (p *RabbitNotifier) Notify(ctx context.Context, userID, title, body, link string) error {
	msg := usecase.NotificationMsg{
		UserID: userID,
		Title:  title,
		Body:   body,
		Link:   link,
		SentAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // survive broker restarts
		Body:         raw,
	}

	if err := p.ch.PublishWithContext(
		ctx,
		exchangeName, // exchange
		routingKey,   // routing key
		false,        // mandatory
		false,        // immediate
		pub,
	); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

var _ usecase.NotificationSink = (*RabbitNotifier)(nil)

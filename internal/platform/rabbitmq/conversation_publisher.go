package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"chathdi/internal/model"
)

// ConversationPublisher hands full conversation snapshots to the persist
// worker. Each snapshot is self-contained, so redelivery after a crash just
// rewrites the same row.
type ConversationPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewConversationPublisher(conn *amqp.Connection, queueName string) *ConversationPublisher {
	return &ConversationPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *ConversationPublisher) Publish(ctx context.Context, conv model.Conversation) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("marshal conversation payload failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish conversation failed: %w", err)
	}
	return nil
}

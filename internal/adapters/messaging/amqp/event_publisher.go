package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/SscSPs/charity_donation_ledger/internal/core/ports"
	"github.com/SscSPs/charity_donation_ledger/internal/middleware"
	"github.com/rabbitmq/amqp091-go"
)

// EventPublisher fans committed ledger events out on the topic exchange as ledger.<EventType>.
type EventPublisher struct {
	pub messagePublisher
}

var _ ports.EventPublisher = (*EventPublisher)(nil)

func NewEventPublisher(client *Client) *EventPublisher {
	return &EventPublisher{pub: client}
}

// EventRoutingKey returns the routing key an event is published under.
func EventRoutingKey(t domain.EventType) string {
	return "ledger." + string(t)
}

func (p *EventPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	key := EventRoutingKey(event.Type)
	err = p.pub.Publish(ctx, key, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    event.EventID,
		Type:         string(event.Type),
		Timestamp:    event.EmittedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s event %d: %w", event.Type, event.Sequence, err)
	}

	middleware.GetLoggerFromCtx(ctx).Debug("Published ledger event",
		slog.String("routing_key", key),
		slog.Int64("sequence", event.Sequence))
	return nil
}

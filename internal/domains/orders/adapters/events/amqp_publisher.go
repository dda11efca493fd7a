package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/ports"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// ErrClosed is returned when publishing after Close.
var ErrClosed = errors.New("event publisher closed")

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher emits order events to a RabbitMQ topic exchange.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
	closed   bool
}

// Dial connects to the broker and declares the durable topic exchange.
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func newPublisher(ch channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// PublishOrderPlaced sends the event as a persistent JSON message routed by its name.
func (p *Publisher) PublishOrderPlaced(ctx context.Context, event domain.OrderPlaced) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.EventName(), err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	err = p.ch.Publish(p.exchange, event.EventName(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    event.OccurredAt(),
		Headers: amqp.Table{
			"event_type":   event.EventName(),
			"order_id":     event.OrderID,
			"order_number": event.OrderNumber,
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.EventName(), err)
	}
	return nil
}

// Close releases the channel and connection. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

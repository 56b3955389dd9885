// Package rabbitmq publishes alert lifecycle events to a fanout exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AlertEventSink = (*Publisher)(nil)

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher implements AlertEventSink by publishing one message per event.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
}

// Dial connects to the broker at url and declares exchange as a durable fanout.
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}

	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// newPublisher wraps an already open channel. Used by tests.
func newPublisher(ch channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// eventMessage is the JSON body of a published event.
type eventMessage struct {
	ID           string    `json:"id"`
	Family       string    `json:"family"`
	Action       string    `json:"action"`
	Subject      string    `json:"subject"`
	Title        string    `json:"title"`
	DelayMinutes float64   `json:"delay_minutes,omitempty"`
	At           time.Time `json:"at"`
}

func buildPublishing(e model.AlertEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(eventMessage{
		ID:           e.ID,
		Family:       string(e.Family),
		Action:       string(e.Action),
		Subject:      e.Subject,
		Title:        e.Title,
		DelayMinutes: e.DelayMinutes,
		At:           e.At.UTC(),
	})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode event %s: %w", e.ID, err)
	}

	return amqp.Publishing{
		MessageId:    e.ID,
		Type:         fmt.Sprintf("alert.%s.%s", e.Family, e.Action),
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    e.At.UTC(),
		Body:         body,
	}, nil
}

// Record publishes every event. It attempts all events and returns the joined
// failures.
func (p *Publisher) Record(ctx context.Context, events []model.AlertEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for _, e := range events {
		msg, err := buildPublishing(e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		// fanout ignores the routing key
		key := fmt.Sprintf("%s.%s", e.Family, e.Action)
		if err := p.ch.PublishWithContext(ctx, p.exchange, key, false, false, msg); err != nil {
			errs = append(errs, fmt.Errorf("publish event %s: %w", e.ID, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

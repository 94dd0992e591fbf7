// Package messaging publishes domain events to RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher implements domain.EventPublisher on a topic exchange.
// A Publisher created with an empty URI is disabled and drops every event.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	enabled  bool
	logger   *zap.Logger
}

// NewPublisher connects to the broker and declares the exchange
func NewPublisher(uri, exchange string, logger *zap.Logger) (*Publisher, error) {
	if uri == "" {
		logger.Warn("RabbitMQ URI is empty, event publishing is disabled")
		return &Publisher{exchange: exchange, logger: logger}, nil
	}

	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Info("Event publisher initialized", zap.String("exchange", exchange))

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		enabled:  true,
		logger:   logger,
	}, nil
}

// Enabled reports whether events are actually sent to the broker
func (p *Publisher) Enabled() bool {
	return p.enabled
}

// Publish sends the event with its type as routing key
func (p *Publisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	if !p.enabled {
		p.logger.Debug("Event publishing disabled, skipping event", zap.String("event_type", string(event.Type)))
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx,
		p.exchange,         // exchange
		string(event.Type), // routing key
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
			Headers: amqp.Table{
				"event_type": string(event.Type),
				"user_id":    event.UserID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	p.logger.Debug("Published event", zap.String("event_type", string(event.Type)), zap.String("user_id", event.UserID))
	return nil
}

// Close closes the channel and the connection
func (p *Publisher) Close() error {
	if !p.enabled {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			return fmt.Errorf("failed to close channel: %w", err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}
	return nil
}

// Package events publishes video library change events to RabbitMQ for
// downstream consumers (notifications, analytics). The publisher is
// optional: a service without a broker simply runs without one.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/google/uuid"
	"github.com/skillsprint/video-library-go/internal/config"
	"github.com/skillsprint/video-library-go/internal/models"
	"github.com/skillsprint/video-library-go/pkg/logger"
)

// EventType identifies one kind of library change.
type EventType string

// Event types emitted by the service.
const (
	EventVideoAdded   EventType = "video.added"
	EventVideoRemoved EventType = "video.removed"
	EventAIAccepted   EventType = "video.ai_accepted"
)

// LibraryEvent is the message body published for one library change.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type LibraryEvent struct {
	ID         uuid.UUID     `json:"id"`
	Type       EventType     `json:"type"`
	UserKey    string        `json:"userKey"`
	ModuleKey  string        `json:"moduleKey"`
	VideoID    string        `json:"videoId,omitempty"`
	EmbedURL   string        `json:"embedUrl,omitempty"`
	Origin     models.Origin `json:"origin,omitempty"`
	VideoCount int           `json:"videoCount,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// NewLibraryEvent builds an event with a fresh id and timestamp.
func NewLibraryEvent(eventType EventType, userKey, moduleKey string) *LibraryEvent {
	return &LibraryEvent{
		ID:         uuid.New(),
		Type:       eventType,
		UserKey:    userKey,
		ModuleKey:  moduleKey,
		OccurredAt: time.Now(),
	}
}

// Publisher publishes library events to a topic exchange with publisher
// confirms.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	config  *config.RabbitMQConfig
	mu      sync.RWMutex
}

// NewPublisher connects to RabbitMQ and declares the exchange, queue and
// binding for library events.
func NewPublisher(cfg *config.RabbitMQConfig) (*Publisher, error) {
	p := &Publisher{
		config: cfg,
	}

	if err := p.connect(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Publisher) connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	connURL := fmt.Sprintf("amqp://%s:%s@%s:%d/",
		p.config.User, p.config.Password, p.config.Host, p.config.Port)

	conn, err := amqp.Dial(connURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	// Enable publisher confirms
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	if err := ch.ExchangeDeclare(
		p.config.Exchange, // name
		"topic",           // type
		true,              // durable
		false,             // auto-deleted
		false,             // internal
		false,             // no-wait
		nil,               // arguments
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		p.config.Queue, // name
		true,           // durable
		false,          // delete when unused
		false,          // exclusive
		false,          // no-wait
		amqp.Table{
			"x-message-ttl": 86400000, // 24 hours
		},
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(
		p.config.Queue,      // queue name
		p.config.RoutingKey, // routing key
		p.config.Exchange,   // exchange
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	p.conn = conn
	p.channel = ch

	logger.Log.Info("Connected to RabbitMQ",
		zap.String("exchange", p.config.Exchange),
		zap.String("queue", p.config.Queue),
	)

	return nil
}

// Publish sends one library event and waits for the broker's confirmation.
// A nil Publisher is a no-op, so callers don't have to guard every site.
func (p *Publisher) Publish(ctx context.Context, event *LibraryEvent) error {
	if p == nil {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.channel == nil {
		return fmt.Errorf("channel is not initialized")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	confirms := p.channel.NotifyPublish(make(chan amqp.Confirmation, 1))

	err = p.channel.PublishWithContext(
		ctx,
		p.config.Exchange,   // exchange
		p.config.RoutingKey, // routing key
		true,                // mandatory
		false,               // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			MessageId:    event.ID.String(),
			Type:         string(event.Type),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	select {
	case confirm := <-confirms:
		if !confirm.Ack {
			return fmt.Errorf("message was not acknowledged by broker")
		}
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout waiting for publish confirmation")
	case <-ctx.Done():
		return ctx.Err()
	}

	logger.Log.Debug("Published library event",
		zap.String("eventId", event.ID.String()),
		zap.String("type", string(event.Type)),
		zap.String("moduleKey", event.ModuleKey),
	)

	return nil
}

// Close shuts down the channel and connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing publisher: %v", errs)
	}

	logger.Log.Info("RabbitMQ publisher closed")
	return nil
}

// IsHealthy reports whether the broker connection is usable.
func (p *Publisher) IsHealthy() bool {
	if p == nil {
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.conn != nil && !p.conn.IsClosed() && p.channel != nil
}

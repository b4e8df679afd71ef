package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/pageza/recipe-management/backend/config"
	"github.com/pageza/recipe-management/backend/internal/logger"
)

// RabbitPublisher publishes events to a durable topic exchange.
type RabbitPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	log      *zap.Logger
}

// BrokerURL builds the amqp URL for cfg.
func BrokerURL(cfg config.RabbitMQConfig) (string, error) {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		return "", fmt.Errorf("invalid broker port %q: %w", cfg.Port, err)
	}
	uri := amqp.URI{
		Scheme:   "amqp",
		Host:     cfg.Host,
		Port:     port,
		Username: cfg.Username,
		Password: cfg.Password,
		Vhost:    cfg.VirtualHost,
	}
	if uri.Vhost == "" {
		uri.Vhost = "/"
	}
	return uri.String(), nil
}

// NewRabbitPublisher connects to the broker and declares the exchange.
func NewRabbitPublisher(cfg config.RabbitMQConfig) (*RabbitPublisher, error) {
	url, err := BrokerURL(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	log := logger.WithModule("messaging")
	log.Info("connected to broker", zap.String("host", cfg.Host), zap.String("exchange", cfg.Exchange))

	return &RabbitPublisher{conn: conn, ch: ch, exchange: cfg.Exchange, log: log}, nil
}

// Publish sends event as persistent JSON routed by its type.
func (p *RabbitPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, p.exchange, event.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	p.log.Debug("event published", zap.String("type", event.Type), zap.String("recipe_id", event.RecipeID.String()))
	return nil
}

// Close closes the channel and the connection.
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil && !p.conn.IsClosed() {
		_ = p.conn.Close()
		return err
	}
	if p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}

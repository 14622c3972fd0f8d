package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"dataroom/internal/config"
)

const publishTimeout = 5 * time.Second

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher publishes notifications to a durable topic exchange; the template is the routing key.
type Publisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	logger   *slog.Logger
	now      func() time.Time
}

// NewPublisher dials the broker and declares the exchange.
func NewPublisher(cfg config.RabbitMQConfig, logger *slog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Info("notify_publisher_ready", slog.String("component", "notify"), slog.String("exchange", cfg.Exchange))
	return newPublisher(conn, ch, cfg.Exchange, logger), nil
}

func newPublisher(conn *amqp.Connection, ch channel, exchange string, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		logger:   logger.With(slog.String("component", "notify")),
		now:      time.Now,
	}
}

func (p *Publisher) Notify(ctx context.Context, n Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = p.now().UTC()
	}
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx,
		p.exchange, // exchange
		n.Template, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    n.CreatedAt,
			Body:         body,
			Headers: amqp.Table{
				"template": n.Template,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	p.logger.DebugContext(ctx, "notification_published", slog.String("template", n.Template))
	return nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			return err
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// New returns a broker-backed Notifier, or a LogNotifier when no broker URI is configured.
// The returned close function is always safe to call.
func New(cfg config.RabbitMQConfig, logger *slog.Logger) (Notifier, func() error, error) {
	if cfg.URI == "" {
		logger.Warn("notify_disabled", slog.String("component", "notify"), slog.String("reason", "RABBITMQ_URI is empty"))
		return NewLogNotifier(logger), func() error { return nil }, nil
	}
	p, err := NewPublisher(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}

package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// channelOpener is the part of *amqp.Connection the publisher needs.
type channelOpener interface {
	Channel() (*amqp.Channel, error)
}

type RabbitMQPublisher struct {
	conn     channelOpener
	exchange string
	logger   *logrus.Entry
}

// NewRabbitMQPublisher declares a durable topic exchange and returns a
// publisher bound to it.
func NewRabbitMQPublisher(conn *amqp.Connection, exchange string, logger *logrus.Logger) (*RabbitMQPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection cannot be nil")
	}
	if exchange == "" {
		return nil, fmt.Errorf("rabbitmq exchange name cannot be empty")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel for exchange declaration: %w", err)
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange %q: %w", exchange, err)
	}
	logger.WithField("exchange", exchange).Info("RabbitMQ exchange ready")

	return &RabbitMQPublisher{
		conn:     conn,
		exchange: exchange,
		logger:   logger.WithFields(logrus.Fields{"component": "event_publisher", "exchange": exchange}),
	}, nil
}

func (p *RabbitMQPublisher) PublishPlanEvent(ctx context.Context, routingKey string, event PlanEvent) error {
	return p.publish(ctx, routingKey, event)
}

func (p *RabbitMQPublisher) PublishPaymentEvent(ctx context.Context, routingKey string, event PaymentEvent) error {
	return p.publish(ctx, routingKey, event)
}

func (p *RabbitMQPublisher) publish(ctx context.Context, routingKey string, payload interface{}) error {
	log := p.logger.WithField("routing_key", routingKey)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		log.WithError(err).Error("Failed to open RabbitMQ channel")
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	err = ch.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			AppId:        publisherAppID,
			Body:         body,
		},
	)
	if err != nil {
		log.WithError(err).Error("Failed to publish message")
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.WithField("bytes", len(body)).Debug("Published message")
	return nil
}

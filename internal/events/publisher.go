// Package events publishes transaction notifications to RabbitMQ.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"rewards-optimizer-go/internal/metrics"
	"rewards-optimizer-go/internal/models"
)

type Publisher interface {
	PublishTransactionRecorded(ctx context.Context, t models.Transaction) error
	Close() error
}

// Nop drops every event. Used when AMQP_URL is unset.
type Nop struct{}

func (Nop) PublishTransactionRecorded(context.Context, models.Transaction) error { return nil }

func (Nop) Close() error { return nil }

type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// AMQPPublisher declares a durable direct exchange with a queue bound under
// the routing key, so events survive until a consumer drains them.
type AMQPPublisher struct {
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	exchange   string
	routingKey string
	logger     *zap.Logger
}

func NewAMQPPublisher(cfg AMQPConfig, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p := &AMQPPublisher{
		conn:       conn,
		channel:    channel,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
	}

	if err := p.setup(); err != nil {
		p.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return p, nil
}

func (p *AMQPPublisher) setup() error {
	err := p.channel.ExchangeDeclare(
		p.exchange, // name
		"direct",   // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = p.channel.QueueDeclare(
		p.routingKey, // name
		true,         // durable
		false,        // delete when unused
		false,        // exclusive
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := p.channel.QueueBind(p.routingKey, p.routingKey, p.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) PublishTransactionRecorded(ctx context.Context, t models.Transaction) error {
	body, err := NewTransactionRecordedMessage(t).ToJSON()
	if err != nil {
		metrics.EventsPublishedTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,   // exchange
		p.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		metrics.EventsPublishedTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("publish message: %w", err)
	}

	metrics.EventsPublishedTotal.WithLabelValues("ok").Inc()
	p.logger.Debug("published transaction event",
		zap.Uint("transaction_id", t.ID),
		zap.String("exchange", p.exchange),
		zap.String("routing_key", p.routingKey))
	return nil
}

// ConsumeTransactionRecorded hands every queued event to handler until ctx
// is cancelled. Undecodable messages are dropped; handler failures requeue.
func (p *AMQPPublisher) ConsumeTransactionRecorded(ctx context.Context, handler func(*TransactionRecordedMessage) error) error {
	msgs, err := p.channel.Consume(
		p.routingKey, // queue
		"",           // consumer
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			msg, err := TransactionRecordedMessageFromJSON(delivery.Body)
			if err != nil {
				p.logger.Error("failed to unmarshal message", zap.Error(err))
				delivery.Nack(false, false)
				continue
			}
			if err := handler(msg); err != nil {
				p.logger.Error("failed to handle message", zap.Error(err), zap.Uint("transaction_id", msg.TransactionID))
				delivery.Nack(false, true)
				continue
			}
			delivery.Ack(false)
		}
	}
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

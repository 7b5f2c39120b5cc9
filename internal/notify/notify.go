// Package notify announces recorded log rows to other systems.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sheetlog/internal/config"
	"sheetlog/internal/logger"

	"github.com/rabbitmq/amqp091-go"
)

// RecordEvent is published once a record has reached every file of its form.
type RecordEvent struct {
	Form      string            `json:"form"`
	Files     []string          `json:"files"`
	Rows      int               `json:"rows"`
	Values    map[string]string `json:"values,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func (e RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON decodes a published event.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

type Publisher interface {
	Publish(ctx context.Context, event RecordEvent) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, RecordEvent) error { return nil }
func (Nop) Close() error                               { return nil }

// New returns an AMQP publisher, or Nop when no broker URL is configured.
func New(cfg config.NotifyConfig) (Publisher, error) {
	if cfg.AMQPURL == "" {
		return Nop{}, nil
	}
	return NewAMQPPublisher(cfg.AMQPURL, cfg.Exchange, cfg.RoutingKey)
}

type AMQPPublisher struct {
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	exchange   string
	routingKey string
}

func NewAMQPPublisher(url, exchange, routingKey string) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
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
		exchange:   exchange,
		routingKey: routingKey,
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
		p.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return p, nil
}

// Publish sends the event as a persistent JSON message. The routing key is
// "<routingKey>.<form>".
func (p *AMQPPublisher) Publish(ctx context.Context, event RecordEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	key := RoutingKey(p.routingKey, event.Form)
	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		key,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	logger.Info("Published record event",
		"form", event.Form,
		"exchange", p.exchange,
		"routing_key", key)
	return nil
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

// RoutingKey joins the configured prefix and the form name.
func RoutingKey(prefix, form string) string {
	switch {
	case prefix == "":
		return form
	case form == "":
		return prefix
	}
	return prefix + "." + form
}

// File: internal/services/sms/amqp_provider.go
package sms

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const exchangeTypeTopic = "topic"

// codeMessage is the body published for the downstream SMS gateway.
type codeMessage struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
}

// AMQPProvider hands codes to a RabbitMQ topic exchange; a separate gateway
// consumes them and talks to the carrier.
type AMQPProvider struct {
	config *AMQPConfig
	conn   *amqp.Connection

	mu sync.Mutex
	ch *amqp.Channel
}

// NewAMQPProvider dials the broker and declares the exchange.
func NewAMQPProvider(config *AMQPConfig) (*AMQPProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, &SMSError{Type: ErrTypeConfig, Message: "amqp provider is not configured", Cause: err}
	}

	conn, err := amqp.Dial(config.URL)
	if err != nil {
		return nil, &SMSError{Type: ErrTypeNetwork, Message: "failed to connect to RabbitMQ", Cause: err}
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, &SMSError{Type: ErrTypeNetwork, Message: "failed to create message channel", Cause: err}
	}

	if err := ch.ExchangeDeclare(config.Exchange, exchangeTypeTopic, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, &SMSError{Type: ErrTypeProvider, Message: "failed to declare exchange " + config.Exchange, Cause: err}
	}

	return &AMQPProvider{config: config, conn: conn, ch: ch}, nil
}

func (p *AMQPProvider) Name() string { return ProviderAMQP }

func (p *AMQPProvider) SendVerificationCode(ctx context.Context, phone, code string) error {
	publishing, err := newCodePublishing(phone, code, time.Now().UTC())
	if err != nil {
		return &SMSError{Type: ErrTypeValidation, Message: "invalid payload", Cause: err}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, p.config.Exchange, p.config.RoutingKey, false, false, publishing); err != nil {
		return &SMSError{Type: ErrTypeNetwork, Message: "failed to publish code message", Cause: err}
	}
	return nil
}

func (p *AMQPProvider) HealthCheck(ctx context.Context) error {
	if p.conn.IsClosed() {
		return &SMSError{Type: ErrTypeNetwork, Message: "RabbitMQ connection is closed"}
	}
	return nil
}

// Close releases the channel and the connection.
func (p *AMQPProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil && !p.conn.IsClosed() {
		return err
	}
	return p.conn.Close()
}

func newCodePublishing(phone, code string, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(codeMessage{PhoneNumber: phone, Code: code})
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    now,
		Body:         body,
	}, nil
}

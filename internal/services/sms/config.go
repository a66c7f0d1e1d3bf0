// File: internal/services/sms/config.go
package sms

import (
	"fmt"
	"time"
)

// Provider names accepted by SMS_PROVIDER.
const (
	ProviderLog   = "log"
	ProviderSMSIR = "smsir"
	ProviderAMQP  = "amqp"
)

// Config configures the Sms.ir HTTP provider.
type Config struct {
	AccessKey  string
	TemplateID int
	APIURL     string
	Timeout    time.Duration
}

func (c *Config) Validate() error {
	if c.AccessKey == "" {
		return fmt.Errorf("SMS_ACCESS_KEY is required")
	}
	if c.APIURL == "" {
		return fmt.Errorf("SMS_API_URL is required")
	}
	if c.TemplateID == 0 {
		return fmt.Errorf("SMS_TEMPLATE_ID is required")
	}
	return nil
}

// AMQPConfig configures publishing codes to a RabbitMQ topic exchange.
type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

func (c *AMQPConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("AMQP_URL is required")
	}
	if c.Exchange == "" || c.RoutingKey == "" {
		return fmt.Errorf("AMQP_EXCHANGE and AMQP_ROUTING_KEY are required")
	}
	return nil
}

// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/iyunix/hammer/internal/services/sms"
)

const developmentJWTSecret = "insecure-development-secret"

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"hammer.db"`

	JWTSecretKey string        `env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`

	// ExposeVerificationCode returns issued codes in the API response.
	// Only for local development and tests.
	ExposeVerificationCode bool     `env:"EXPOSE_VERIFICATION_CODE" envDefault:"false"`
	CORSAllowedOrigins     []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	SMSProvider   string        `env:"SMS_PROVIDER" envDefault:"log"`
	SMSAccessKey  string        `env:"SMS_ACCESS_KEY"`
	SMSTemplateID int           `env:"SMS_TEMPLATE_ID"`
	SMSAPIURL     string        `env:"SMS_API_URL" envDefault:"https://api.sms.ir/v1/send/verify"`
	SMSTimeout    time.Duration `env:"SMS_TIMEOUT" envDefault:"10s"`
	LogMinDelay   time.Duration `env:"SMS_LOG_MIN_DELAY" envDefault:"1s"`
	LogMaxDelay   time.Duration `env:"SMS_LOG_MAX_DELAY" envDefault:"2s"`

	AMQPURL        string `env:"AMQP_URL"`
	AMQPExchange   string `env:"AMQP_EXCHANGE" envDefault:"hammer.notifications"`
	AMQPRoutingKey string `env:"AMQP_ROUTING_KEY" envDefault:"verification.code"`

	DispatchWorkers   int `env:"SMS_WORKERS" envDefault:"4"`
	DispatchQueueSize int `env:"SMS_QUEUE_SIZE" envDefault:"256"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// Load reads configuration from environment variables or .env file.
func Load() (*Config, error) {
	if !isProduction(os.Getenv("ENV")) {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromMap parses configuration from an explicit variable set.
func FromMap(vars map[string]string) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: vars})
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return isProduction(c.Environment)
}

func (c *Config) SMSConfig() *sms.Config {
	return &sms.Config{
		AccessKey:  c.SMSAccessKey,
		TemplateID: c.SMSTemplateID,
		APIURL:     c.SMSAPIURL,
		Timeout:    c.SMSTimeout,
	}
}

func (c *Config) AMQPConfig() *sms.AMQPConfig {
	return &sms.AMQPConfig{
		URL:        c.AMQPURL,
		Exchange:   c.AMQPExchange,
		RoutingKey: c.AMQPRoutingKey,
	}
}

func (c *Config) finalize() error {
	c.SMSProvider = strings.ToLower(c.SMSProvider)

	missing := []string{}
	if c.JWTSecretKey == "" {
		if c.IsProduction() {
			missing = append(missing, "JWT_SECRET_KEY")
		} else {
			c.JWTSecretKey = developmentJWTSecret
		}
	}

	switch c.SMSProvider {
	case sms.ProviderLog:
		if c.IsProduction() {
			log.Println("Warning: SMS_PROVIDER=log in production; codes are only written to the log")
		}
	case sms.ProviderSMSIR:
		if err := c.SMSConfig().Validate(); err != nil {
			missing = append(missing, err.Error())
		}
	case sms.ProviderAMQP:
		if err := c.AMQPConfig().Validate(); err != nil {
			missing = append(missing, err.Error())
		}
	default:
		return fmt.Errorf("unknown SMS_PROVIDER %q", c.SMSProvider)
	}

	if c.IsProduction() && c.ExposeVerificationCode {
		missing = append(missing, "EXPOSE_VERIFICATION_CODE must be false in production")
	}
	if c.LogMaxDelay < c.LogMinDelay {
		return fmt.Errorf("SMS_LOG_MAX_DELAY must not be below SMS_LOG_MIN_DELAY")
	}

	if len(missing) > 0 {
		return fmt.Errorf("invalid configuration: %v", missing)
	}
	return nil
}

func isProduction(environment string) bool {
	return strings.ToLower(environment) == "production"
}

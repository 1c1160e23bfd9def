// Package config loads the scg-mediator command configuration.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MEDIATOR_LOGGING_LEVEL.
const EnvPrefix = "MEDIATOR"

// Config is the main configuration struct combining all sub-configs
type Config struct {
	// Handler lifetime used by the registrar: transient or scoped
	Lifetime string `mapstructure:"lifetime" validate:"required,oneof=transient scoped"`

	// Source name prefixes to register; empty registers every loaded source
	Sources []string `mapstructure:"sources" validate:"dive,required"`

	Publish PublishConfig `mapstructure:"publish"`
	Logging LoggingConfig `mapstructure:"logging"`
	Forward ForwardConfig `mapstructure:"forward"`
}

// PublishConfig holds notification dispatch settings
type PublishConfig struct {
	// Succeed instead of failing when a notification has no handlers
	AllowEmpty bool `mapstructure:"allow_empty"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// Log level: debug, info, warn, error
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`

	// Log format: json, text
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// ForwardConfig selects at most one broker notifications are forwarded to
type ForwardConfig struct {
	// Subject/topic override for every forwarded notification
	Topic string `mapstructure:"topic"`

	NATS     NATSConfig     `mapstructure:"nats"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
}

type NATSConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

type KafkaConfig struct {
	Brokers  []string `mapstructure:"brokers" validate:"dive,hostname_port"`
	ClientID string   `mapstructure:"client_id"`
}

type RabbitMQConfig struct {
	URL      string `mapstructure:"url" validate:"omitempty,url"`
	Exchange string `mapstructure:"exchange"`
}

// Broker names the configured forwarding broker, or "" when forwarding is off.
func (f ForwardConfig) Broker() string {
	switch {
	case f.NATS.URL != "":
		return "nats"
	case len(f.Kafka.Brokers) > 0:
		return "kafka"
	case f.RabbitMQ.URL != "":
		return "rabbitmq"
	default:
		return ""
	}
}

func (f ForwardConfig) brokers() int {
	n := 0
	if f.NATS.URL != "" {
		n++
	}

	if len(f.Kafka.Brokers) > 0 {
		n++
	}

	if f.RabbitMQ.URL != "" {
		n++
	}

	return n
}

// Load reads configuration with priority:
// 1. Environment variables (highest priority)
// 2. Config file (mediator.yaml)
// 3. Defaults (lowest priority)
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("mediator")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// bindEnv registers every key so AutomaticEnv overrides reach Unmarshal even when
// no config file mentions them.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"lifetime",
		"sources",
		"publish.allow_empty",
		"logging.level",
		"logging.format",
		"forward.topic",
		"forward.nats.url",
		"forward.kafka.brokers",
		"forward.kafka.client_id",
		"forward.rabbitmq.url",
		"forward.rabbitmq.exchange",
	} {
		_ = v.BindEnv(key)
	}
}

// SetDefaults fills unset values.
func SetDefaults(cfg *Config) {
	if cfg.Lifetime == "" {
		cfg.Lifetime = "scoped"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	SetDefaults(cfg)

	return cfg
}

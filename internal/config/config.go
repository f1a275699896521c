// Package config loads the service configuration from the environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the resolved service configuration.
type Config struct {
	AppPort             string
	DatabaseDriver      string
	DatabaseDSN         string
	RabbitMQURL         string
	RabbitMQQueue       string
	TaxRate             float64
	ShippingCost        float64
	GatewayCreateDelay  time.Duration
	GatewayConfirmDelay time.Duration
	GatewayTimeout      time.Duration
	IssueResults        bool
	TabIdleTTL          time.Duration
	LogLevel            string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "ayuta.db")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "ayuta_signals")
	v.SetDefault("TAX_RATE", 0.05)
	v.SetDefault("SHIPPING_COST", 0.0)
	v.SetDefault("GATEWAY_CREATE_DELAY", "500ms")
	v.SetDefault("GATEWAY_CONFIRM_DELAY", "650ms")
	v.SetDefault("GATEWAY_TIMEOUT", "10s")
	v.SetDefault("ISSUE_RESULTS", true)
	v.SetDefault("TAB_IDLE_TTL", "30m")
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads the configuration from the environment and ./config.yaml, if present.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper resolves a Config from v, applying defaults and environment overrides.
func FromViper(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:             v.GetString("APP_PORT"),
		DatabaseDriver:      strings.ToLower(strings.TrimSpace(v.GetString("DATABASE_DRIVER"))),
		DatabaseDSN:         v.GetString("DATABASE_DSN"),
		RabbitMQURL:         strings.TrimSpace(v.GetString("RABBITMQ_URL")),
		RabbitMQQueue:       v.GetString("RABBITMQ_QUEUE"),
		TaxRate:             v.GetFloat64("TAX_RATE"),
		ShippingCost:        v.GetFloat64("SHIPPING_COST"),
		GatewayCreateDelay:  v.GetDuration("GATEWAY_CREATE_DELAY"),
		GatewayConfirmDelay: v.GetDuration("GATEWAY_CONFIRM_DELAY"),
		GatewayTimeout:      v.GetDuration("GATEWAY_TIMEOUT"),
		IssueResults:        v.GetBool("ISSUE_RESULTS"),
		TabIdleTTL:          v.GetDuration("TAB_IDLE_TTL"),
		LogLevel:            v.GetString("LOG_LEVEL"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for driver %s", c.DatabaseDriver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.TaxRate < 0 {
		return fmt.Errorf("TAX_RATE must not be negative, got %v", c.TaxRate)
	}
	if c.ShippingCost < 0 {
		return fmt.Errorf("SHIPPING_COST must not be negative, got %v", c.ShippingCost)
	}
	if c.GatewayCreateDelay < 0 || c.GatewayConfirmDelay < 0 || c.GatewayTimeout < 0 {
		return fmt.Errorf("gateway delays and timeout must not be negative")
	}
	if c.TabIdleTTL < 0 {
		return fmt.Errorf("TAB_IDLE_TTL must not be negative, got %v", c.TabIdleTTL)
	}
	return nil
}

// RelayEnabled reports whether signals are forwarded to RabbitMQ.
func (c *Config) RelayEnabled() bool {
	return c.RabbitMQURL != ""
}

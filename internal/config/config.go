// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Order and inventory source kinds.
const (
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

// Threshold store kinds.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string

	OrderSource    string
	BackendURL     string
	BackendTimeout time.Duration
	DatabaseURL    string

	ThresholdStore string
	ConfigPath     string
	DBPath         string

	AMQPURL      string
	AMQPExchange string

	UIInterval    time.Duration
	StockInterval time.Duration
	DelayInterval time.Duration

	LogLevel  string
	LogFormat string
}

// PublishesEvents returns true when an AMQP broker is configured.
func (c *Config) PublishesEvents() bool {
	return c.AMQPURL != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// Variables already set in the environment take precedence over an optional
// .env file in the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		ListenAddr:   envOr("KITCHENWATCH_LISTEN_ADDR", "127.0.0.1:8090"),
		BackendURL:   envOr("KITCHENWATCH_BACKEND_URL", "http://127.0.0.1:8000"),
		DatabaseURL:  os.Getenv("KITCHENWATCH_DATABASE_URL"),
		DBPath:       envOr("KITCHENWATCH_DB_PATH", "kitchenwatch.db"),
		AMQPURL:      os.Getenv("KITCHENWATCH_AMQP_URL"),
		AMQPExchange: envOr("KITCHENWATCH_AMQP_EXCHANGE", "kitchen_alerts"),
		ConfigPath:   envOr("KITCHENWATCH_CONFIG_PATH", defaultConfigPath()),
	}

	var err error
	if cfg.OrderSource, err = oneOf("KITCHENWATCH_ORDER_SOURCE", SourceHTTP, SourceHTTP, SourcePostgres); err != nil {
		return nil, err
	}
	if cfg.ThresholdStore, err = oneOf("KITCHENWATCH_THRESHOLD_STORE", StoreFile, StoreFile, StoreSQLite); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = oneOf("KITCHENWATCH_LOG_LEVEL", "info", "debug", "info", "warn", "error"); err != nil {
		return nil, err
	}
	if cfg.LogFormat, err = oneOf("KITCHENWATCH_LOG_FORMAT", "text", "text", "json"); err != nil {
		return nil, err
	}

	durations := []struct {
		key  string
		def  time.Duration
		dest *time.Duration
	}{
		{"KITCHENWATCH_BACKEND_TIMEOUT", 10 * time.Second, &cfg.BackendTimeout},
		{"KITCHENWATCH_UI_INTERVAL", 3 * time.Second, &cfg.UIInterval},
		{"KITCHENWATCH_STOCK_INTERVAL", 30 * time.Second, &cfg.StockInterval},
		{"KITCHENWATCH_DELAY_INTERVAL", 60 * time.Second, &cfg.DelayInterval},
	}
	for _, d := range durations {
		if *d.dest, err = positiveDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	if cfg.OrderSource == SourcePostgres && cfg.DatabaseURL == "" {
		return nil, errors.New("KITCHENWATCH_DATABASE_URL is required when KITCHENWATCH_ORDER_SOURCE is postgres")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func oneOf(key, def string, allowed ...string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(envOr(key, def)))
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(allowed, "|"), v)
}

func positiveDuration(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, parsed)
	}
	return parsed, nil
}

// defaultConfigPath is the POS application's shared settings file.
func defaultConfigPath() string {
	rel := filepath.Join(".restaurantia", "datos", "config.json")
	home, err := os.UserHomeDir()
	if err != nil {
		return rel
	}
	return filepath.Join(home, rel)
}

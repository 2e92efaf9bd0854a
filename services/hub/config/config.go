package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultBrokerURL    = "tcp://localhost:1883"
	defaultTopic        = "weather/readings"
	defaultClientID     = "central-hub"
	defaultFlushBatch   = 1
	defaultPollInterval = 50 * time.Millisecond
	defaultMetricsAddr  = ":9090"
	defaultPruneEvery   = time.Hour
)

// Config holds runtime configuration for the hub service.
type Config struct {
	DatabaseURL string

	BrokerURL    string
	Topic        string
	ClientID     string
	MQTTUsername string
	MQTTPassword string
	MQTTCAFile   string

	// FlushInterval <= 0 writes on every poll tick.
	FlushInterval time.Duration
	FlushBatch    int
	PollInterval  time.Duration

	MetricsAddr string

	// RetentionMaxAge <= 0 disables pruning.
	RetentionMaxAge     time.Duration
	RetentionPruneEvery time.Duration
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	cfg.BrokerURL = strings.TrimSpace(os.Getenv("MQTT_BROKER_URL"))
	if cfg.BrokerURL == "" {
		cfg.BrokerURL = defaultBrokerURL
	}

	cfg.Topic = strings.TrimSpace(os.Getenv("MQTT_TOPIC"))
	if cfg.Topic == "" {
		cfg.Topic = defaultTopic
	}

	cfg.ClientID = strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if cfg.ClientID == "" {
		cfg.ClientID = defaultClientID
	}

	cfg.MQTTUsername = strings.TrimSpace(os.Getenv("MQTT_USERNAME"))
	cfg.MQTTPassword = strings.TrimSpace(os.Getenv("MQTT_PASSWORD"))
	cfg.MQTTCAFile = strings.TrimSpace(os.Getenv("MQTT_CA_FILE"))

	if v := strings.TrimSpace(os.Getenv("INGEST_FLUSH_INTERVAL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid INGEST_FLUSH_INTERVAL: %w", err)
		}
		cfg.FlushInterval = d
	}

	cfg.FlushBatch = defaultFlushBatch
	if v := strings.TrimSpace(os.Getenv("INGEST_FLUSH_BATCH")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid INGEST_FLUSH_BATCH: %w", err)
		}
		if n < 1 {
			return cfg, fmt.Errorf("INGEST_FLUSH_BATCH must be at least 1, got %d", n)
		}
		cfg.FlushBatch = n
	}

	cfg.PollInterval = defaultPollInterval
	if v := strings.TrimSpace(os.Getenv("INGEST_POLL_INTERVAL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid INGEST_POLL_INTERVAL: %w", err)
		}
		cfg.PollInterval = d
	}

	cfg.MetricsAddr = strings.TrimSpace(os.Getenv("METRICS_ADDR"))
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = defaultMetricsAddr
	}

	if v := strings.TrimSpace(os.Getenv("RETENTION_MAX_AGE")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid RETENTION_MAX_AGE: %w", err)
		}
		cfg.RetentionMaxAge = d
	}

	cfg.RetentionPruneEvery = defaultPruneEvery
	if v := strings.TrimSpace(os.Getenv("RETENTION_PRUNE_INTERVAL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid RETENTION_PRUNE_INTERVAL: %w", err)
		}
		cfg.RetentionPruneEvery = d
	}

	return cfg, nil
}

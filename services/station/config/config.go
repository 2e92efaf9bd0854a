package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultBrokerURL       = "tcp://localhost:1883"
	defaultTopic           = "weather/readings"
	defaultStationID       = "station_1"
	defaultMeasureInterval = 5 * time.Second
	defaultBatchInterval   = 60 * time.Second
	defaultBaseTemperature = 21.0
	defaultBaseHumidity    = 50.0
)

// Config holds runtime configuration for a measuring station.
type Config struct {
	BrokerURL    string
	Topic        string
	StationID    string
	MQTTUsername string
	MQTTPassword string
	MQTTCAFile   string

	MeasureInterval time.Duration
	BatchInterval   time.Duration

	// Simulated sensors drift around these bases.
	BaseTemperature float64
	BaseHumidity    float64
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.BrokerURL = strings.TrimSpace(os.Getenv("MQTT_BROKER_URL"))
	if cfg.BrokerURL == "" {
		cfg.BrokerURL = defaultBrokerURL
	}

	cfg.Topic = strings.TrimSpace(os.Getenv("MQTT_TOPIC"))
	if cfg.Topic == "" {
		cfg.Topic = defaultTopic
	}

	cfg.StationID = strings.TrimSpace(os.Getenv("STATION_ID"))
	if cfg.StationID == "" {
		cfg.StationID = defaultStationID
	}

	cfg.MQTTUsername = strings.TrimSpace(os.Getenv("MQTT_USERNAME"))
	cfg.MQTTPassword = strings.TrimSpace(os.Getenv("MQTT_PASSWORD"))
	cfg.MQTTCAFile = strings.TrimSpace(os.Getenv("MQTT_CA_FILE"))

	cfg.MeasureInterval = defaultMeasureInterval
	if v := strings.TrimSpace(os.Getenv("MEASURE_INTERVAL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid MEASURE_INTERVAL: %w", err)
		}
		cfg.MeasureInterval = d
	}

	cfg.BatchInterval = defaultBatchInterval
	if v := strings.TrimSpace(os.Getenv("BATCH_INTERVAL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid BATCH_INTERVAL: %w", err)
		}
		cfg.BatchInterval = d
	}

	cfg.BaseTemperature = defaultBaseTemperature
	if v := strings.TrimSpace(os.Getenv("BASE_TEMPERATURE")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid BASE_TEMPERATURE: %w", err)
		}
		cfg.BaseTemperature = f
	}

	cfg.BaseHumidity = defaultBaseHumidity
	if v := strings.TrimSpace(os.Getenv("BASE_HUMIDITY")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid BASE_HUMIDITY: %w", err)
		}
		cfg.BaseHumidity = f
	}

	return cfg, nil
}

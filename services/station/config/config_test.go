package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "tcp://localhost:1883", cfg.BrokerURL)
	assert.Equal(t, "weather/readings", cfg.Topic)
	assert.Equal(t, "station_1", cfg.StationID)
	assert.Equal(t, 5*time.Second, cfg.MeasureInterval)
	assert.Equal(t, 60*time.Second, cfg.BatchInterval)
	assert.Equal(t, 21.0, cfg.BaseTemperature)
	assert.Equal(t, 50.0, cfg.BaseHumidity)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STATION_ID", "station_7")
	t.Setenv("MEASURE_INTERVAL", "1s")
	t.Setenv("BATCH_INTERVAL", "10s")
	t.Setenv("BASE_TEMPERATURE", "18.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "station_7", cfg.StationID)
	assert.Equal(t, time.Second, cfg.MeasureInterval)
	assert.Equal(t, 10*time.Second, cfg.BatchInterval)
	assert.Equal(t, 18.5, cfg.BaseTemperature)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("MEASURE_INTERVAL", "every few seconds")

	_, err := Load()
	assert.Error(t, err)
}

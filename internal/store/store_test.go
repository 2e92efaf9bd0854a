package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrlab/weatherhub/internal/models"
)

func TestTableFor(t *testing.T) {
	table, err := tableFor(models.KindTemperature)
	require.NoError(t, err)
	assert.Equal(t, "temperature_readings", table)

	table, err = tableFor(models.KindHumidity)
	require.NoError(t, err)
	assert.Equal(t, "humidity_readings", table)

	_, err = tableFor(models.MetricKind("pressure"))
	assert.Error(t, err)
}

func TestBuildSeriesQueryUnfiltered(t *testing.T) {
	sql, args := buildSeriesQuery("temperature_readings", Filter{})
	assert.Equal(t, "SELECT station_id, sensor_id, value, ts FROM temperature_readings ORDER BY ts, id", sql)
	assert.Empty(t, args)
}

func TestBuildSeriesQueryStationOnly(t *testing.T) {
	sql, args := buildSeriesQuery("humidity_readings", Filter{Station: "RPI-1"})
	assert.Equal(t, "SELECT station_id, sensor_id, value, ts FROM humidity_readings WHERE station_id = $1 ORDER BY ts, id", sql)
	assert.Equal(t, []any{"RPI-1"}, args)
}

func TestBuildSeriesQueryBounds(t *testing.T) {
	from := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)
	to := time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)

	sql, args := buildSeriesQuery("temperature_readings", Filter{From: &from, To: &to})
	assert.Equal(t, "SELECT station_id, sensor_id, value, ts FROM temperature_readings WHERE ts >= $1 AND ts <= $2 ORDER BY ts, id", sql)
	assert.Equal(t, []any{from, to}, args)
}

func TestBuildSeriesQueryAllFilters(t *testing.T) {
	from := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)
	to := time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)

	sql, args := buildSeriesQuery("humidity_readings", Filter{Station: "RPI-2", From: &from, To: &to})
	assert.Equal(t,
		"SELECT station_id, sensor_id, value, ts FROM humidity_readings WHERE station_id = $1 AND ts >= $2 AND ts <= $3 ORDER BY ts, id",
		sql)
	assert.Equal(t, []any{"RPI-2", from, to}, args)
}

func TestBuildSeriesQueryOneSidedBound(t *testing.T) {
	from := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)

	sql, args := buildSeriesQuery("temperature_readings", Filter{Station: "RPI-1", From: &from})
	assert.Equal(t,
		"SELECT station_id, sensor_id, value, ts FROM temperature_readings WHERE station_id = $1 AND ts >= $2 ORDER BY ts, id",
		sql)
	assert.Equal(t, []any{"RPI-1", from}, args)
}

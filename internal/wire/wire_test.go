package wire

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrlab/weatherhub/internal/models"
)

func fptr(v float64) *float64 { return &v }

// Every shape carrying one temperature and one humidity value must
// normalize to exactly two readings with a shared timestamp and the
// station id as the default sensor id.
func TestDecodeTwoMetricsAcrossShapes(t *testing.T) {
	cases := map[string]string{
		"flat": `{"station_id":"RPI-1","temperature":21.5,"humidity":40.2,"timestamp":"2026-03-14 09:26:53"}`,
		"measurement list": `{"station_id":"RPI-1","timestamp":"2026-03-14 09:26:53","measurements":[
			{"type":"temperature","value":21.5},
			{"type":"humidity","value":40.2}]}`,
		"batch": `{"station_id":"RPI-1","readings":[
			{"temperature":21.5,"humidity":40.2,"timestamp":"2026-03-14 09:26:53"}]}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			readings, err := Decode([]byte(payload))
			require.NoError(t, err)
			require.Len(t, readings, 2)

			assert.Equal(t, models.KindTemperature, readings[0].Kind)
			assert.Equal(t, 21.5, readings[0].Value)
			assert.Equal(t, models.KindHumidity, readings[1].Kind)
			assert.Equal(t, 40.2, readings[1].Value)

			for _, r := range readings {
				assert.Equal(t, "RPI-1", r.StationID)
				assert.Equal(t, "RPI-1", r.SensorID, "sensor id must fall back to the station id")
				assert.Equal(t, "2026-03-14 09:26:53", r.Timestamp)
			}
		})
	}
}

func TestDecodeFlatPerMetricSensorIDs(t *testing.T) {
	readings, err := Decode([]byte(`{
		"station_id":"RPI-2",
		"temperature":19.1,"temperature_sensor_id":"RPI-2_ds18b20",
		"humidity":33.0,"humidity_sensor_id":"RPI-2_bme280",
		"timestamp":"2026-03-14 10:00:00"}`))
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, "RPI-2_ds18b20", readings[0].SensorID)
	assert.Equal(t, "RPI-2_bme280", readings[1].SensorID)
}

func TestDecodeFlatSharedSensorID(t *testing.T) {
	readings, err := Decode([]byte(`{
		"station_id":"RPI-2","sensor_id":"RPI-2_bme280",
		"temperature":19.1,"humidity":33.0,
		"timestamp":"2026-03-14 10:00:00"}`))
	require.NoError(t, err)
	require.Len(t, readings, 2)
	for _, r := range readings {
		assert.Equal(t, "RPI-2_bme280", r.SensorID)
	}
}

func TestDecodeMeasurementListSkipsUnusable(t *testing.T) {
	readings, err := Decode([]byte(`{
		"station_id":"RPI-1","timestamp":"2026-03-14 10:00:00",
		"measurements":[
			{"type":"pressure","value":1013.2},
			{"type":"temperature","value":null},
			{"type":"humidity","value":41.0,"sensor_id":"RPI-1_bme280"}]}`))
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, models.KindHumidity, readings[0].Kind)
	assert.Equal(t, "RPI-1_bme280", readings[0].SensorID)
}

func TestDecodeBatchEntryFallbacks(t *testing.T) {
	readings, err := Decode([]byte(`{
		"station_id":"RPI-3","timestamp":"2026-03-14 11:00:00",
		"readings":[
			{"sensor_id":"RPI-3_ds18b20","sensor_type":"ds18b20","temperature":22.6,"timestamp":"2026-03-14 11:00:02"},
			{"humidity":48.9}]}`))
	require.NoError(t, err)
	require.Len(t, readings, 2)

	assert.Equal(t, "RPI-3_ds18b20", readings[0].SensorID)
	assert.Equal(t, "2026-03-14 11:00:02", readings[0].Timestamp)

	assert.Equal(t, "RPI-3", readings[1].SensorID, "entry without sensor id inherits the station id")
	assert.Equal(t, "2026-03-14 11:00:00", readings[1].Timestamp, "entry without timestamp inherits the wrapper timestamp")
}

func TestDecodeValueLessMessage(t *testing.T) {
	readings, err := Decode([]byte(`{"station_id":"RPI-1","timestamp":"2026-03-14 10:00:00"}`))
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestDecodeStampsMissingTimestamp(t *testing.T) {
	readings, err := Decode([]byte(`{"station_id":"RPI-1","temperature":20.0}`))
	require.NoError(t, err)
	require.Len(t, readings, 1)
	_, perr := models.ParseTime(readings[0].Timestamp)
	assert.NoError(t, perr, "missing timestamps must be stamped with a canonical time")
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{"station_id": `))
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "malformed json", derr.Reason)
}

func TestDecodeMissingStationID(t *testing.T) {
	for _, payload := range []string{
		`{"temperature":20.0}`,
		`{"station_id":"   ","temperature":20.0}`,
	} {
		_, err := Decode([]byte(payload))
		var derr *DecodeError
		require.ErrorAs(t, err, &derr, "payload %s", payload)
		assert.Equal(t, "missing station_id", derr.Reason)
	}
}

func TestDecodeErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &DecodeError{Reason: "malformed json", Err: inner}
	assert.ErrorIs(t, err, inner)
}

// The payload a station encodes must decode on the hub into the same
// readings the station sampled.
func TestEncodeBatchRoundTrip(t *testing.T) {
	payload, err := EncodeBatch("RPI-1", []BatchReading{
		{SensorID: "RPI-1_ds18b20", SensorType: "ds18b20", Temperature: fptr(23.1), Timestamp: "2026-03-14 12:00:00"},
		{SensorID: "RPI-1_bme280", SensorType: "bme280", Temperature: fptr(21.6), Humidity: fptr(39.8), Timestamp: "2026-03-14 12:00:00"},
	})
	require.NoError(t, err)

	readings, err := Decode(payload)
	require.NoError(t, err)
	require.Len(t, readings, 3)

	assert.Equal(t, models.Reading{
		StationID: "RPI-1", SensorID: "RPI-1_ds18b20",
		Kind: models.KindTemperature, Value: 23.1, Timestamp: "2026-03-14 12:00:00",
	}, readings[0])
	assert.Equal(t, models.KindTemperature, readings[1].Kind)
	assert.Equal(t, models.KindHumidity, readings[2].Kind)
	assert.Equal(t, "RPI-1_bme280", readings[2].SensorID)
}

package wire

import (
	"encoding/json"
	"strings"

	"github.com/zephyrlab/weatherhub/internal/models"
)

// Decode converts one raw payload into canonical readings. Malformed
// JSON and missing station ids return a *DecodeError; messages with
// nothing usable decode to an empty slice.
func Decode(payload []byte) ([]models.Reading, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, &DecodeError{Reason: "malformed json", Err: err}
	}
	return Normalize(msg)
}

// Normalize flattens a decoded message into zero or more readings,
// dispatching on which shape variant is populated.
func Normalize(msg Message) ([]models.Reading, error) {
	station := strings.TrimSpace(msg.StationID)
	if station == "" {
		return nil, &DecodeError{Reason: "missing station_id"}
	}

	switch {
	case msg.Measurements != nil:
		return normalizeMeasurements(station, msg), nil
	case msg.Readings != nil:
		return normalizeBatch(station, msg), nil
	default:
		return normalizeFlat(station, msg), nil
	}
}

// sensorOrStation is the single fallback rule for per-metric sensor
// ids: an absent sensor id inherits the station id. Writer and reader
// paths both rely on this default, so it lives in exactly one place.
func sensorOrStation(sensorID, stationID string) string {
	if s := strings.TrimSpace(sensorID); s != "" {
		return s
	}
	return stationID
}

func normalizeFlat(station string, msg Message) []models.Reading {
	ts := models.NormalizeTimestamp(msg.Timestamp)
	out := make([]models.Reading, 0, 2)
	if msg.Temperature != nil {
		sensor := msg.TemperatureSensorID
		if sensor == "" {
			sensor = msg.SensorID
		}
		out = append(out, models.Reading{
			StationID: station,
			SensorID:  sensorOrStation(sensor, station),
			Kind:      models.KindTemperature,
			Value:     *msg.Temperature,
			Timestamp: ts,
		})
	}
	if msg.Humidity != nil {
		sensor := msg.HumiditySensorID
		if sensor == "" {
			sensor = msg.SensorID
		}
		out = append(out, models.Reading{
			StationID: station,
			SensorID:  sensorOrStation(sensor, station),
			Kind:      models.KindHumidity,
			Value:     *msg.Humidity,
			Timestamp: ts,
		})
	}
	return out
}

func normalizeMeasurements(station string, msg Message) []models.Reading {
	ts := models.NormalizeTimestamp(msg.Timestamp)
	out := make([]models.Reading, 0, len(msg.Measurements))
	for _, m := range msg.Measurements {
		kind := models.MetricKind(m.Type)
		if !kind.Valid() || m.Value == nil {
			continue
		}
		out = append(out, models.Reading{
			StationID: station,
			SensorID:  sensorOrStation(m.SensorID, station),
			Kind:      kind,
			Value:     *m.Value,
			Timestamp: ts,
		})
	}
	return out
}

func normalizeBatch(station string, msg Message) []models.Reading {
	out := make([]models.Reading, 0, 2*len(msg.Readings))
	for _, r := range msg.Readings {
		ts := r.Timestamp
		if ts == "" {
			ts = msg.Timestamp
		}
		ts = models.NormalizeTimestamp(ts)
		sensor := sensorOrStation(r.SensorID, station)
		if r.Temperature != nil {
			out = append(out, models.Reading{
				StationID: station,
				SensorID:  sensor,
				Kind:      models.KindTemperature,
				Value:     *r.Temperature,
				Timestamp: ts,
			})
		}
		if r.Humidity != nil {
			out = append(out, models.Reading{
				StationID: station,
				SensorID:  sensor,
				Kind:      models.KindHumidity,
				Value:     *r.Humidity,
				Timestamp: ts,
			})
		}
	}
	return out
}

package wire

import "encoding/json"

// Message is the decoded superset of every payload shape stations
// publish. Exactly one variant is populated per message: a measurement
// list, a batch of readings, or the flat legacy fields.
type Message struct {
	StationID string `json:"station_id"`
	SensorID  string `json:"sensor_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`

	Temperature         *float64 `json:"temperature,omitempty"`
	Humidity            *float64 `json:"humidity,omitempty"`
	TemperatureSensorID string   `json:"temperature_sensor_id,omitempty"`
	HumiditySensorID    string   `json:"humidity_sensor_id,omitempty"`

	Measurements []Measurement  `json:"measurements,omitempty"`
	Readings     []BatchReading `json:"readings,omitempty"`
}

// Measurement is one entry of the typed measurement-list shape.
type Measurement struct {
	Type     string   `json:"type"`
	SensorID string   `json:"sensor_id,omitempty"`
	Value    *float64 `json:"value"`
}

// BatchReading is one entry of the station batch shape. A single entry
// may carry both metrics when the instrument reports both.
type BatchReading struct {
	SensorID    string   `json:"sensor_id,omitempty"`
	SensorType  string   `json:"sensor_type,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	Timestamp   string   `json:"timestamp,omitempty"`
}

// DecodeError marks an inbound payload that cannot yield readings. The
// ingestion loop logs it and drops the message.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return "decode: " + e.Reason + ": " + e.Err.Error()
	}
	return "decode: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeBatch renders the batch payload a station publishes.
func EncodeBatch(stationID string, readings []BatchReading) ([]byte, error) {
	return json.Marshal(Message{StationID: stationID, Readings: readings})
}

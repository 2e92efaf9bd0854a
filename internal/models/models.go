package models

// MetricKind identifies one of the two measurement series.
type MetricKind string

const (
	KindTemperature MetricKind = "temperature"
	KindHumidity    MetricKind = "humidity"
)

// Valid reports whether k names a known metric kind.
func (k MetricKind) Valid() bool {
	return k == KindTemperature || k == KindHumidity
}

// Kinds lists the metric kinds in their fixed processing order.
func Kinds() []MetricKind {
	return []MetricKind{KindTemperature, KindHumidity}
}

// Reading is one canonical measurement tuple. A reading always carries
// a value; value-less inputs are discarded during normalization.
type Reading struct {
	StationID string
	SensorID  string
	Kind      MetricKind
	Value     float64
	Timestamp string
}

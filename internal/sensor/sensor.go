package sensor

import (
	"math"
	"math/rand"
	"time"
)

const (
	// DS18B20 probes sit inside the enclosure and read warm.
	ds18b20Offset = 1.5

	driftStep   = 0.05
	driftPeriod = 20
	tempJitter  = 0.05
	humJitter   = 1.0
)

// Values holds one poll of a sensor. A value the device cannot provide
// stays nil.
type Values struct {
	Temperature *float64
	Humidity    *float64
}

// Driver reads one physical (or simulated) sensor.
type Driver interface {
	// Type is the wire sensor_type label, e.g. "ds18b20".
	Type() string
	// Read polls the device once.
	Read() Values
}

// ambient produces a plausible temperature series: a slow sawtooth
// drift around a base value plus per-read jitter.
type ambient struct {
	base    float64
	counter int
	rng     *rand.Rand
}

func newAmbient(base float64) ambient {
	return ambient{base: base, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (a *ambient) temperature() float64 {
	drift := float64(a.counter%driftPeriod) * driftStep
	a.counter++
	return a.base + drift + (a.rng.Float64()*2-1)*tempJitter
}

// SimulatedDS18B20 is a temperature-only probe.
type SimulatedDS18B20 struct {
	ambient
}

// NewSimulatedDS18B20 builds a probe drifting around baseTemperature.
func NewSimulatedDS18B20(baseTemperature float64) *SimulatedDS18B20 {
	return &SimulatedDS18B20{ambient: newAmbient(baseTemperature)}
}

// Type returns the DS18B20 sensor label.
func (s *SimulatedDS18B20) Type() string { return "ds18b20" }

// Read returns the probe temperature including its warm offset.
func (s *SimulatedDS18B20) Read() Values {
	t := round(s.temperature()+ds18b20Offset, 2)
	return Values{Temperature: &t}
}

// SimulatedBME280 reads temperature and humidity.
type SimulatedBME280 struct {
	ambient
	baseHumidity float64
}

// NewSimulatedBME280 builds a combined sensor around the given bases.
func NewSimulatedBME280(baseTemperature, baseHumidity float64) *SimulatedBME280 {
	return &SimulatedBME280{ambient: newAmbient(baseTemperature), baseHumidity: baseHumidity}
}

// Type returns the BME280 sensor label.
func (s *SimulatedBME280) Type() string { return "bme280" }

// Read returns one temperature and humidity pair.
func (s *SimulatedBME280) Read() Values {
	t := round(s.temperature(), 2)
	h := round(s.baseHumidity+(s.rng.Float64()*2-1)*humJitter, 1)
	return Values{Temperature: &t, Humidity: &h}
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

var (
	_ Driver = (*SimulatedDS18B20)(nil)
	_ Driver = (*SimulatedBME280)(nil)
)

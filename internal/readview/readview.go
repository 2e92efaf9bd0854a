package readview

import (
	"context"
	"sort"

	"github.com/zephyrlab/weatherhub/internal/models"
	"github.com/zephyrlab/weatherhub/internal/store"
)

// Sample is one merged observation: both metric series aligned on
// (station_id, timestamp). A metric absent from its series leaves its
// value and sensor id null.
type Sample struct {
	StationID           string   `json:"station_id"`
	Timestamp           string   `json:"timestamp"`
	Temperature         *float64 `json:"temperature"`
	TemperatureSensorID *string  `json:"temperature_sensor_id,omitempty"`
	Humidity            *float64 `json:"humidity"`
	HumiditySensorID    *string  `json:"humidity_sensor_id,omitempty"`
}

// Querier is the storage read surface the view consumes.
type Querier interface {
	QueryReadings(ctx context.Context, kind models.MetricKind, f store.Filter) ([]store.Row, error)
	Stations(ctx context.Context) ([]string, error)
}

// View reconstructs station-level samples from the two independently
// appended metric series.
type View struct {
	q Querier
}

// New returns a view reading through q.
func New(q Querier) *View {
	return &View{q: q}
}

// Readings returns the merged samples matching the filter, ordered
// ascending by timestamp.
func (v *View) Readings(ctx context.Context, f store.Filter) ([]Sample, error) {
	temps, err := v.q.QueryReadings(ctx, models.KindTemperature, f)
	if err != nil {
		return nil, err
	}
	hums, err := v.q.QueryReadings(ctx, models.KindHumidity, f)
	if err != nil {
		return nil, err
	}
	return Merge(temps, hums), nil
}

// Stations lists the station ids present in either series.
func (v *View) Stations(ctx context.Context) ([]string, error) {
	return v.q.Stations(ctx)
}

// Averages summarizes merged samples. A nil average means the metric
// had no values in range; Count is the merged sample count.
type Averages struct {
	AvgTemperature *float64 `json:"avg_temperature"`
	AvgHumidity    *float64 `json:"avg_humidity"`
	Count          int      `json:"count"`
}

// Average computes per-metric means over the merged samples matching
// the filter. A sample missing one metric still counts toward the
// other metric's mean.
func (v *View) Average(ctx context.Context, f store.Filter) (Averages, error) {
	samples, err := v.Readings(ctx, f)
	if err != nil {
		return Averages{}, err
	}
	return averageOf(samples), nil
}

func averageOf(samples []Sample) Averages {
	var tSum, hSum float64
	var tN, hN int
	for _, s := range samples {
		if s.Temperature != nil {
			tSum += *s.Temperature
			tN++
		}
		if s.Humidity != nil {
			hSum += *s.Humidity
			hN++
		}
	}
	out := Averages{Count: len(samples)}
	if tN > 0 {
		avg := tSum / float64(tN)
		out.AvgTemperature = &avg
	}
	if hN > 0 {
		avg := hSum / float64(hN)
		out.AvgHumidity = &avg
	}
	return out
}

type sampleKey struct {
	station string
	ts      string
}

// Merge full-outer-joins the two series on (station_id, timestamp). The
// join key is the canonical timestamp string compared exactly; rows
// whose source clocks disagree by even a second stay separate samples.
// A duplicate key within one series keeps the later row. Output is
// ordered by timestamp, then station id.
func Merge(temps, hums []store.Row) []Sample {
	merged := make(map[sampleKey]*Sample, len(temps)+len(hums))
	order := make([]sampleKey, 0, len(temps)+len(hums))

	sampleFor := func(k sampleKey) *Sample {
		if s, ok := merged[k]; ok {
			return s
		}
		s := &Sample{StationID: k.station, Timestamp: k.ts}
		merged[k] = s
		order = append(order, k)
		return s
	}

	for i := range temps {
		r := &temps[i]
		s := sampleFor(sampleKey{r.StationID, models.FormatTime(r.Timestamp)})
		value, sensor := r.Value, r.SensorID
		s.Temperature = &value
		s.TemperatureSensorID = &sensor
	}
	for i := range hums {
		r := &hums[i]
		s := sampleFor(sampleKey{r.StationID, models.FormatTime(r.Timestamp)})
		value, sensor := r.Value, r.SensorID
		s.Humidity = &value
		s.HumiditySensorID = &sensor
	}

	out := make([]Sample, 0, len(order))
	for _, k := range order {
		out = append(out, *merged[k])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].StationID < out[j].StationID
	})
	return out
}

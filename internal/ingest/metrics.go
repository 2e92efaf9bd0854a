package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zephyrlab/weatherhub/internal/models"
)

// Metrics tracks the ingestion pipeline counters.
type Metrics struct {
	reg    prometheus.Registerer
	prefix string

	messagesReceived prometheus.Counter
	decodeErrors     prometheus.Counter
	readingsBuffered prometheus.Counter
	flushes          prometheus.Counter
	rowsInserted     *prometheus.CounterVec
	rowsDropped      *prometheus.CounterVec
}

// NewMetrics registers the ingestion counters on reg under the given
// name prefix.
func NewMetrics(reg prometheus.Registerer, prefix string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		reg:    reg,
		prefix: prefix,
		messagesReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_messages_received_total",
			Help: "Inbound transport messages delivered to the normalizer",
		}),
		decodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_decode_errors_total",
			Help: "Inbound messages dropped because they could not be decoded",
		}),
		readingsBuffered: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_readings_buffered_total",
			Help: "Canonical readings appended to the staging buffer",
		}),
		flushes: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_flushes_total",
			Help: "Buffer drains handed to the batch writer",
		}),
		rowsInserted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_rows_inserted_total",
			Help: "Rows written to storage by metric kind",
		}, []string{"kind"}),
		rowsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_rows_dropped_total",
			Help: "Rows lost to failed storage writes by metric kind",
		}, []string{"kind"}),
	}
}

// ObserveBufferDepth registers a gauge sampling the staging buffer size.
func (m *Metrics) ObserveBufferDepth(depth func() int) {
	promauto.With(m.reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: m.prefix + "_buffer_pending",
		Help: "Readings currently staged for the next flush",
	}, func() float64 { return float64(depth()) })
}

func (m *Metrics) RecordMessage() {
	m.messagesReceived.Inc()
}

func (m *Metrics) RecordDecodeError() {
	m.decodeErrors.Inc()
}

func (m *Metrics) RecordBuffered(n int) {
	m.readingsBuffered.Add(float64(n))
}

func (m *Metrics) RecordFlush() {
	m.flushes.Inc()
}

func (m *Metrics) RecordInserted(kind models.MetricKind, n int) {
	m.rowsInserted.WithLabelValues(string(kind)).Add(float64(n))
}

func (m *Metrics) RecordDropped(kind models.MetricKind, n int) {
	m.rowsDropped.WithLabelValues(string(kind)).Add(float64(n))
}

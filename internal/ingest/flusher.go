package ingest

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zephyrlab/weatherhub/internal/buffer"
	"github.com/zephyrlab/weatherhub/internal/models"
)

const (
	defaultPollInterval = 50 * time.Millisecond
	finalFlushTimeout   = 10 * time.Second
)

// BatchWriter consumes drained batches and reports per-kind inserted
// counts.
type BatchWriter interface {
	WriteBatch(ctx context.Context, batch []models.Reading) map[models.MetricKind]int
}

// FlushPolicy configures when the staging buffer drains.
type FlushPolicy struct {
	// BatchSize drains the buffer once at least this many readings are
	// pending. Values below one behave as one.
	BatchSize int
	// Interval drains a non-empty buffer this long after the previous
	// flush. Zero or negative flushes any non-empty buffer on the next
	// tick.
	Interval time.Duration
	// PollInterval is the trigger evaluation cadence.
	PollInterval time.Duration
}

// Flusher owns the flush policy. It polls the staging buffer on a
// fixed cadence, drains it when either trigger fires, and hands the
// batch to the writer synchronously, so flushes never overlap.
type Flusher struct {
	buf     *buffer.Buffer[models.Reading]
	writer  BatchWriter
	metrics *Metrics
	policy  FlushPolicy
	log     *logrus.Entry

	lastFlush    time.Time
	totalRows    int
	totalFlushes int
}

// NewFlusher returns a flusher draining buf into writer under policy.
func NewFlusher(buf *buffer.Buffer[models.Reading], writer BatchWriter, metrics *Metrics, policy FlushPolicy, log *logrus.Entry) *Flusher {
	if policy.BatchSize < 1 {
		policy.BatchSize = 1
	}
	if policy.PollInterval <= 0 {
		policy.PollInterval = defaultPollInterval
	}
	return &Flusher{buf: buf, writer: writer, metrics: metrics, policy: policy, log: log}
}

// Run polls until ctx is cancelled, then performs one final forced
// flush of whatever remains so nothing is lost to shutdown timing. The
// in-flight write of the final flush is allowed to complete before Run
// returns.
func (f *Flusher) Run(ctx context.Context) {
	ticker := time.NewTicker(f.policy.PollInterval)
	defer ticker.Stop()

	f.lastFlush = time.Now()
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), finalFlushTimeout)
			f.flush(flushCtx, true)
			cancel()
			f.log.Infof("wrote %d readings in %d flushes", f.totalRows, f.totalFlushes)
			return
		case <-ticker.C:
			f.flush(ctx, false)
		}
	}
}

// due evaluates both triggers. An empty buffer never flushes.
func (f *Flusher) due() bool {
	n := f.buf.Len()
	if n == 0 {
		return false
	}
	if n >= f.policy.BatchSize {
		return true
	}
	if f.policy.Interval <= 0 {
		return true
	}
	return time.Since(f.lastFlush) >= f.policy.Interval
}

func (f *Flusher) flush(ctx context.Context, force bool) {
	if !force && !f.due() {
		return
	}
	batch := f.buf.DrainAll()
	if len(batch) == 0 {
		return
	}

	f.metrics.RecordFlush()
	counts := f.writer.WriteBatch(ctx, batch)
	f.lastFlush = time.Now()
	f.totalFlushes++

	total := 0
	for _, n := range counts {
		total += n
	}
	f.totalRows += total
	if total > 0 {
		f.log.Infof("flushed %d readings (T=%d, H=%d)",
			total, counts[models.KindTemperature], counts[models.KindHumidity])
	}
}

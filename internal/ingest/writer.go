package ingest

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/sirupsen/logrus"

	"github.com/zephyrlab/weatherhub/internal/models"
)

const (
	writeAttempts = 3
	writeBackoff  = 250 * time.Millisecond
)

// KindWriter is the storage surface the writer needs: one bulk insert
// per metric kind, each call an independent failure unit.
type KindWriter interface {
	InsertReadings(ctx context.Context, kind models.MetricKind, rows []models.Reading) (int, error)
}

// Writer partitions drained batches by metric kind and bulk-inserts
// each partition independently.
type Writer struct {
	store   KindWriter
	metrics *Metrics
	log     *logrus.Entry
}

// NewWriter returns a writer storing batches through store.
func NewWriter(store KindWriter, metrics *Metrics, log *logrus.Entry) *Writer {
	return &Writer{store: store, metrics: metrics, log: log}
}

// Partition splits a batch into per-kind sub-batches, preserving
// arrival order within each kind.
func Partition(batch []models.Reading) map[models.MetricKind][]models.Reading {
	parts := make(map[models.MetricKind][]models.Reading, 2)
	for _, r := range batch {
		parts[r.Kind] = append(parts[r.Kind], r)
	}
	return parts
}

// WriteBatch stores one drained batch and returns per-kind inserted
// counts. A kind whose insert keeps failing is logged and dropped
// without affecting the other kind; rows already delivered before a
// late failure may reappear on retry, so storage is at-least-once.
func (w *Writer) WriteBatch(ctx context.Context, batch []models.Reading) map[models.MetricKind]int {
	counts := make(map[models.MetricKind]int, 2)
	if len(batch) == 0 {
		return counts
	}

	parts := Partition(batch)
	for _, kind := range models.Kinds() {
		rows := parts[kind]
		if len(rows) == 0 {
			continue
		}
		inserted, err := w.insertWithRetry(ctx, kind, rows)
		if err != nil {
			w.metrics.RecordDropped(kind, len(rows))
			w.log.WithError(err).Errorf("dropping %d %s rows after %d failed attempts", len(rows), kind, writeAttempts)
			continue
		}
		counts[kind] = inserted
		w.metrics.RecordInserted(kind, inserted)
	}
	return counts
}

func (w *Writer) insertWithRetry(ctx context.Context, kind models.MetricKind, rows []models.Reading) (int, error) {
	var inserted int
	err := retry.Do(
		func() error {
			n, err := w.store.InsertReadings(ctx, kind, rows)
			if err != nil {
				return err
			}
			inserted = n
			return nil
		},
		retry.Attempts(writeAttempts),
		retry.Delay(writeBackoff),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			w.log.WithError(err).Warnf("%s insert attempt %d failed, retrying", kind, n+1)
		}),
	)
	return inserted, err
}

package retention

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrlab/weatherhub/internal/models"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

type fakeDeleter struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (f *fakeDeleter) DeleteOlderThan(_ context.Context, cutoff time.Time) (map[models.MetricKind]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	if f.err != nil {
		return nil, f.err
	}
	return map[models.MetricKind]int64{models.KindTemperature: 2, models.KindHumidity: 1}, nil
}

func (f *fakeDeleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestDisabledPrunerSchedulesNothing(t *testing.T) {
	p := New(&fakeDeleter{}, 0, time.Hour, testLogger())

	require.NoError(t, p.Start())
	assert.Equal(t, 0, p.scheduler.Len())
	p.Stop()
}

func TestPruneUsesRetentionCutoff(t *testing.T) {
	del := &fakeDeleter{}
	p := New(del, 24*time.Hour, time.Hour, testLogger())

	p.prune()

	require.Equal(t, 1, del.calls())
	assert.WithinDuration(t, time.Now().Add(-24*time.Hour), del.cutoffs[0], 2*time.Second)
}

func TestPruneSurvivesStoreError(t *testing.T) {
	del := &fakeDeleter{err: errors.New("db down")}
	p := New(del, 24*time.Hour, time.Hour, testLogger())

	p.prune()
	p.prune()

	assert.Equal(t, 2, del.calls(), "a failed prune does not stop later runs")
}

func TestStartRunsPeriodically(t *testing.T) {
	del := &fakeDeleter{}
	p := New(del, 24*time.Hour, 20*time.Millisecond, testLogger())

	require.NoError(t, p.Start())
	defer p.Stop()

	require.Eventually(t, func() bool { return del.calls() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

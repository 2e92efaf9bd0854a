package sender

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/zephyrlab/weatherhub/internal/buffer"
	"github.com/zephyrlab/weatherhub/internal/models"
	"github.com/zephyrlab/weatherhub/internal/sensor"
	"github.com/zephyrlab/weatherhub/internal/wire"
)

const (
	defaultMeasureEvery = 5 * time.Second
	defaultBatchEvery   = 60 * time.Second

	breakerFailures = 3
	breakerCooldown = 30 * time.Second
)

var errPublishRejected = errors.New("broker rejected publish")

// Publisher delivers one encoded batch. False means the batch was not
// confirmed and must be kept for a later attempt.
type Publisher interface {
	Publish(payload []byte) bool
}

// Config holds the sender identity and cadences.
type Config struct {
	StationID    string
	MeasureEvery time.Duration
	BatchEvery   time.Duration
}

// Sender polls sensor drivers on one cadence and ships batches on
// another. Unconfirmed batches are re-queued, so readings survive
// broker outages at the cost of duplicate delivery.
type Sender struct {
	cfg     Config
	drivers []sensor.Driver
	pub     Publisher
	pending *buffer.Buffer[wire.BatchReading]
	breaker *gobreaker.CircuitBreaker
	log     *logrus.Entry

	readings int
	batches  int
}

// New builds a sender for one station.
func New(cfg Config, drivers []sensor.Driver, pub Publisher, log *logrus.Entry) *Sender {
	if cfg.MeasureEvery <= 0 {
		cfg.MeasureEvery = defaultMeasureEvery
	}
	if cfg.BatchEvery <= 0 {
		cfg.BatchEvery = defaultBatchEvery
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mqtt-publish",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= breakerFailures
		},
	})

	return &Sender{
		cfg:     cfg,
		drivers: drivers,
		pub:     pub,
		pending: buffer.New[wire.BatchReading](),
		breaker: cb,
		log:     log,
	}
}

// Run measures and ships until the context is cancelled, then sends one
// final batch so queued readings are not lost on shutdown.
func (s *Sender) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.cfg.MeasureEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.measure()
			}
		}
	}()

	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.cfg.BatchEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sendBatch()
			}
		}
	}()

	wg.Wait()
	s.sendBatch()
	s.log.Infof("sent %d batches covering %d readings", s.batches, s.readings)
}

// measure polls every driver once. All readings of a poll share one
// timestamp so the hub can join them.
func (s *Sender) measure() {
	ts := models.Now()
	queued := 0
	for _, d := range s.drivers {
		v := d.Read()
		if v.Temperature == nil && v.Humidity == nil {
			continue
		}
		s.pending.Append(wire.BatchReading{
			SensorID:    s.cfg.StationID + "_" + d.Type(),
			SensorType:  d.Type(),
			Temperature: v.Temperature,
			Humidity:    v.Humidity,
			Timestamp:   ts,
		})
		queued++
	}
	s.readings += queued
	if queued > 0 {
		s.log.Debugf("queued %d readings (pending=%d)", queued, s.pending.Len())
	}
}

// sendBatch drains the queue and publishes it as one message. The
// circuit breaker stops hammering a dead broker; rejected readings go
// back into the queue either way.
func (s *Sender) sendBatch() {
	entries := s.pending.DrainAll()
	if len(entries) == 0 {
		return
	}

	payload, err := wire.EncodeBatch(s.cfg.StationID, entries)
	if err != nil {
		s.log.WithError(err).Errorf("dropping %d unencodable readings", len(entries))
		return
	}

	_, err = s.breaker.Execute(func() (interface{}, error) {
		if !s.pub.Publish(payload) {
			return nil, errPublishRejected
		}
		return nil, nil
	})
	if err != nil {
		s.pending.Append(entries...)
		s.log.WithError(err).Warnf("batch not confirmed, re-queued %d readings", len(entries))
		return
	}

	s.batches++
	s.log.Infof("sent batch of %d readings", len(entries))
}

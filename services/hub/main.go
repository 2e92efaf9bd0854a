package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/zephyrlab/weatherhub/internal/buffer"
	"github.com/zephyrlab/weatherhub/internal/ingest"
	"github.com/zephyrlab/weatherhub/internal/logging"
	"github.com/zephyrlab/weatherhub/internal/models"
	"github.com/zephyrlab/weatherhub/internal/mqtt"
	"github.com/zephyrlab/weatherhub/internal/retention"
	"github.com/zephyrlab/weatherhub/internal/store"
	"github.com/zephyrlab/weatherhub/internal/wire"
	"github.com/zephyrlab/weatherhub/services/hub/config"
)

func main() {
	log := logging.Setup("hub")
	if err := run(log); err != nil {
		log.Fatalf("hub failed: %v", err)
	}
}

func run(log *logrus.Entry) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.EnsureSchema(ctx); err != nil {
		return err
	}

	metrics := ingest.NewMetrics(prometheus.DefaultRegisterer, "weatherhub")
	buf := buffer.New[models.Reading]()
	metrics.ObserveBufferDepth(buf.Len)

	ingestLog := log.WithField("component", "ingest")
	writer := ingest.NewWriter(st, metrics, ingestLog)
	flusher := ingest.NewFlusher(buf, writer, metrics, ingest.FlushPolicy{
		BatchSize:    cfg.FlushBatch,
		Interval:     cfg.FlushInterval,
		PollInterval: cfg.PollInterval,
	}, ingestLog)

	handle := func(payload []byte) {
		metrics.RecordMessage()
		readings, err := wire.Decode(payload)
		if err != nil {
			metrics.RecordDecodeError()
			log.WithError(err).Warn("dropping message")
			return
		}
		if len(readings) == 0 {
			log.Debug("message carried no usable readings")
			return
		}
		buf.Append(readings...)
		metrics.RecordBuffered(len(readings))
	}

	sub, err := mqtt.NewSubscriber(mqtt.Options{
		BrokerURL: cfg.BrokerURL,
		ClientID:  cfg.ClientID,
		Username:  cfg.MQTTUsername,
		Password:  cfg.MQTTPassword,
		CAFile:    cfg.MQTTCAFile,
	}, cfg.Topic, handle, log.WithField("component", "mqtt"))
	if err != nil {
		return err
	}

	pruner := retention.New(st, cfg.RetentionMaxAge, cfg.RetentionPruneEvery, log.WithField("component", "retention"))
	if err := pruner.Start(); err != nil {
		return err
	}

	// The flusher gets its own context: intake has to stop before the
	// final flush, so teardown closes the subscriber first and only then
	// cancels the flusher.
	flushCtx, stopFlush := context.WithCancel(context.Background())
	defer stopFlush()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		flusher.Run(flushCtx)
		return nil
	})

	g.Go(func() error {
		return serveMetrics(gctx, cfg.MetricsAddr, log)
	})

	g.Go(func() error {
		<-gctx.Done()
		sub.Close()
		stopFlush()
		pruner.Stop()
		return nil
	})

	log.Infof("hub consuming %s at %s", cfg.Topic, cfg.BrokerURL)
	return g.Wait()
}

func serveMetrics(ctx context.Context, addr string, log *logrus.Entry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	log.Infof("metrics listening on %s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

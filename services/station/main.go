package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/zephyrlab/weatherhub/internal/logging"
	"github.com/zephyrlab/weatherhub/internal/mqtt"
	"github.com/zephyrlab/weatherhub/internal/sender"
	"github.com/zephyrlab/weatherhub/internal/sensor"
	"github.com/zephyrlab/weatherhub/services/station/config"
)

func main() {
	log := logging.Setup("station")
	if err := run(log); err != nil {
		log.Fatalf("station failed: %v", err)
	}
}

func run(log *logrus.Entry) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pub, err := mqtt.NewPublisher(mqtt.Options{
		BrokerURL: cfg.BrokerURL,
		ClientID:  cfg.StationID,
		Username:  cfg.MQTTUsername,
		Password:  cfg.MQTTPassword,
		CAFile:    cfg.MQTTCAFile,
	}, cfg.Topic, log.WithField("component", "mqtt"))
	if err != nil {
		return err
	}
	defer pub.Close()

	drivers := []sensor.Driver{
		sensor.NewSimulatedDS18B20(cfg.BaseTemperature),
		sensor.NewSimulatedBME280(cfg.BaseTemperature, cfg.BaseHumidity),
	}

	snd := sender.New(sender.Config{
		StationID:    cfg.StationID,
		MeasureEvery: cfg.MeasureInterval,
		BatchEvery:   cfg.BatchInterval,
	}, drivers, pub, log)

	log.Infof("station %s measuring every %s, batching every %s",
		cfg.StationID, cfg.MeasureInterval, cfg.BatchInterval)

	snd.Run(ctx)
	return nil
}

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/zephyrlab/weatherhub/internal/logging"
	"github.com/zephyrlab/weatherhub/internal/readview"
	"github.com/zephyrlab/weatherhub/internal/store"
	"github.com/zephyrlab/weatherhub/services/api/config"
	httpserver "github.com/zephyrlab/weatherhub/services/api/http"
)

func main() {
	log := logging.Setup("api")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connection error: %v", err)
	}
	defer st.Close()

	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema error: %v", err)
	}

	srv := httpserver.New(cfg, readview.New(st))
	log.Infof("REST API listening on %s", cfg.ListenAddr())

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

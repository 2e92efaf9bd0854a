package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zephyrlab/weatherhub/internal/models"
	"github.com/zephyrlab/weatherhub/internal/readview"
	"github.com/zephyrlab/weatherhub/internal/store"
	"github.com/zephyrlab/weatherhub/services/api/config"
)

// SampleSource is the merged-view surface the handlers consume.
type SampleSource interface {
	Readings(ctx context.Context, f store.Filter) ([]readview.Sample, error)
	Average(ctx context.Context, f store.Filter) (readview.Averages, error)
	Stations(ctx context.Context) ([]string, error)
}

// Server bundles router and dependencies for the REST API.
type Server struct {
	cfg    config.Config
	view   SampleSource
	engine *gin.Engine
}

// New constructs a server with routes and middleware.
func New(cfg config.Config, view SampleSource) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())
	engine.Use(corsMiddleware())

	server := &Server{cfg: cfg, view: view, engine: engine}
	server.registerRoutes()
	return server
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api")
	{
		api.GET("/stations", s.handleStations)
		api.GET("/readings", s.handleReadings)
		api.GET("/average", s.handleAverage)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (s *Server) handleStations(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	stations, err := s.view.Stations(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stations": stations})
}

func (s *Server) handleReadings(c *gin.Context) {
	filter, ok := s.requestFilter(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	samples, err := s.view.Readings(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"readings": samples})
}

func (s *Server) handleAverage(c *gin.Context) {
	filter, ok := s.requestFilter(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	avg, err := s.view.Average(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, avg)
}

// requestFilter assembles the series filter from query parameters.
// Explicit start/end bounds override the range window. On a bad bound
// it writes the 400 response and reports false.
func (s *Server) requestFilter(c *gin.Context) (store.Filter, bool) {
	filter := parseRangeFilter(c.DefaultQuery("range", s.cfg.DefaultRange), time.Now())

	if station := c.Query("station"); station != "" && station != "all" {
		filter.Station = station
	}

	if startStr := c.Query("start"); startStr != "" {
		t, err := models.ParseTime(startStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start timestamp"})
			return filter, false
		}
		filter.From = &t
	}

	if endStr := c.Query("end"); endStr != "" {
		t, err := models.ParseTime(endStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end timestamp"})
			return filter, false
		}
		filter.To = &t
	}

	return filter, true
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/hospital-ops/internal/app"
	"github.com/jwalitptl/hospital-ops/internal/config"
	"github.com/jwalitptl/hospital-ops/internal/handler/health"
	prometheushandler "github.com/jwalitptl/hospital-ops/internal/handler/prometheus"
	"github.com/jwalitptl/hospital-ops/internal/router"
	"github.com/jwalitptl/hospital-ops/internal/worker"
	"github.com/jwalitptl/hospital-ops/pkg/logger"
	"github.com/jwalitptl/hospital-ops/pkg/messaging"
	"github.com/jwalitptl/hospital-ops/pkg/messaging/redis"
	"github.com/jwalitptl/hospital-ops/pkg/metrics"
)

func main() {
	var configPath, healthAddr string

	cmd := &cobra.Command{
		Use:          "hospital-ops-worker",
		Short:        "Deliver notifications published by the API over Redis",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, healthAddr)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config.yml")
	cmd.Flags().StringVar(&healthAddr, "health-addr", ":8081", "address for health and metrics endpoints")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath, healthAddr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Redis.URL == "" {
		return errors.New("redis.url is required: without it the API dispatches in process")
	}

	log := logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
	}).With("worker")

	zlog.Logger = log.Zerolog()
	broker, err := redis.NewRedisBroker(app.RedisBrokerConfig(cfg.Redis), log.Zerolog())
	if err != nil {
		return fmt.Errorf("failed to create Redis broker: %w", err)
	}
	defer broker.Close()

	promH := prometheushandler.New()
	m := metrics.NewMetrics(app.MetricsNamespace, promH.Registry())

	dispatcher := worker.NewDispatcher(broker, app.NewSenders(cfg.Notifications, log),
		worker.DispatcherConfig{SendTimeout: cfg.Notifications.SendTimeout}, log, m)

	checks := map[string]health.Check{}
	if p, ok := broker.(messaging.Pinger); ok {
		checks["broker"] = p.Ping
	}
	srv := healthServer(healthAddr, health.NewHandler(checks), promH)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, "Health check server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Worker started", "health_addr", healthAddr)
	err = dispatcher.Start(ctx)
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error(shutdownErr, "Health check server forced to shutdown")
	}
	return err
}

func healthServer(addr string, handlers ...router.Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	group := engine.Group("")
	for _, h := range handlers {
		h.RegisterRoutes(group)
	}
	return &http.Server{Addr: addr, Handler: engine}
}

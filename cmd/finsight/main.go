package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"finsight/internal/amqp"
	"finsight/internal/api"
	"finsight/internal/cache"
	"finsight/internal/cli"
	"finsight/internal/editor"
	apphttp "finsight/internal/http"
	"finsight/internal/log"
	"finsight/internal/notify"
	"finsight/internal/session"
)

// maxNotificationClients bounds the in-memory notification store.
const maxNotificationClients = 10000

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.Setup(log.ComponentApp)

	if cfg.UsesDevSecret() {
		logger.Warn("SESSION_SECRET not set, using the development secret")
	}

	checks := map[string]apphttp.ReadinessCheck{}

	var store notify.Store
	switch cfg.NotifyBackend {
	case "redis":
		client, err := notify.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			cli.Fatal(logger, "Failed to connect to Redis", err, "redis_url", cfg.RedisURL)
		}
		defer client.Close()
		store = notify.NewRedisStore(client, cfg.NotifyTTL)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		logger.Info("Initialized Redis notification store", "redis_url", cfg.RedisURL)
	default:
		mem := notify.NewMemoryStore(maxNotificationClients, cfg.NotifyTTL)
		sweeper := cache.NewManager()
		sweeper.Register(mem.Cache())
		sweeper.OnClean(func(removed int) {
			logger.Debug("Expired notifications purged", "removed", removed)
		})
		sweeper.StartCleanup(time.Minute)
		defer sweeper.Stop()
		store = mem
		logger.Info("Initialized memory notification store")
	}

	// Activity events are optional
	var publisher editor.Publisher = editor.NopPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize AMQP client", err)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		checks["amqp"] = amqpClient.Check
		logger.Info("Activity events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	apiOpts := []api.Option{api.WithLogger(logger)}
	if cfg.APITimeout > 0 {
		apiOpts = append(apiOpts, api.WithTimeout(cfg.APITimeout))
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		API:           api.New(cfg.APIBaseURL, apiOpts...),
		Sessions:      session.NewManager([]byte(cfg.SessionSecret), cfg.SessionSecure, logger),
		Notifier:      notify.New(store, cfg.NotifyTTL, logger),
		Publisher:     publisher,
		Logger:        logger,
		TopRiskyCount: cfg.TopRiskyCount,
		RateLimitRPM:  cfg.RateLimitRPM,
		Checks:        checks,
	})
	if err != nil {
		cli.Fatal(logger, "Failed to initialize server", err)
	}

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldOperation, log.OpShutdown, log.FieldError, err)
		}
	})

	logger.Info("Starting finsight server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
		"notify_backend", cfg.NotifyBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err, "port", cfg.Port)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

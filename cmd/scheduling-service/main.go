package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shiftwork/scheduling-service/config"
	"github.com/shiftwork/scheduling-service/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger("json", "info")
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.LogFormat != "json" || cfg.LogLevel != "info" {
		logger = bootstrap.InitLogger(cfg.LogFormat, cfg.LogLevel)
	}

	schedCfg, err := config.LoadSchedulingConfig(cfg.SchedulingConfigPath, logger)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting scheduling service",
		"port", cfg.ServerPort,
		"data_service_url", cfg.DataServiceURL,
		"timezone", schedCfg.Timezone)

	shutdownTracing, err := bootstrap.InitTracing(ctx, cfg.OTLPEndpoint, logger)
	if err != nil {
		return err
	}
	defer func() {
		if terr := shutdownTracing(context.Background()); terr != nil {
			logger.Error("trace shutdown failed", "error", terr)
		}
	}()

	db, err := bootstrap.ConnectDB(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close database failed", "error", cerr)
		}
	}()

	redisClient, err := bootstrap.ConnectRedis(cfg, logger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
	}

	if err = bootstrap.RunMigrations(ctx, db, logger); err != nil {
		return err
	}

	services := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:      cfg,
		Scheduling:  schedCfg,
		DB:          db,
		RedisClient: redisClient,
		Logger:      logger,
	})

	// Jobs left Processing or WaitingForRetry by a previous run are resumed
	// before the API starts taking new ones.
	if err = services.Scheduling.RecoverStaleJobs(ctx); err != nil {
		return err
	}

	healthCtx, stopHealth := context.WithCancel(ctx)
	defer stopHealth()
	go services.Health.Run(healthCtx)

	server := bootstrap.StartHTTPServer(logger, services.Handler, cfg.ServerPort)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	stopHealth()
	return bootstrap.ShutdownHTTPServer(context.Background(), server, services.Scheduling, logger)
}

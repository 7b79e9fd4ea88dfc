package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/pranavdl/campus-transport/internal/api"
	"github.com/pranavdl/campus-transport/internal/app"
	"github.com/pranavdl/campus-transport/internal/config"
	"github.com/pranavdl/campus-transport/internal/notify"
	"github.com/pranavdl/campus-transport/internal/policy"
	"github.com/pranavdl/campus-transport/internal/repository"
	"github.com/pranavdl/campus-transport/internal/repository/base"
	"github.com/pranavdl/campus-transport/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	if version, err := migrator.Version(ctx); err == nil {
		logger.Info("Database migrated", zap.Int64("version", version))
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("Failed to close migrator", zap.Error(err))
	}

	requisitionRepo := repository.NewRequisitionRepository(pool)
	vehicleRepo := repository.NewVehicleRepository(pool)
	driverRepo := repository.NewDriverRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	txManager := base.NewTxManager(pool)

	var notifier notify.Notifier = notify.Nop{}
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.NotifyChatID, logger)
		if err != nil {
			logger.Fatal("Failed to create telegram notifier", zap.Error(err))
		}
		notifier = tg
	}

	pol := policy.New(time.Duration(cfg.MinTripMinutes) * time.Minute)

	requisitionService := service.NewRequisitionService(
		requisitionRepo, vehicleRepo, driverRepo, profileRepo,
		txManager, pol, notifier, logger,
	)
	allocationService := service.NewAllocationService(requisitionRepo, vehicleRepo, driverRepo, logger)
	fleetService := service.NewFleetService(vehicleRepo, driverRepo, requisitionRepo, logger)

	handlers := api.NewHandlers(requisitionService, allocationService, fleetService, logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(handlers),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("environment", cfg.Environment),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ajuda-api/internal/config"
	"ajuda-api/internal/repository"
	"ajuda-api/internal/server"
	"ajuda-api/internal/triage"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	cfgPath := "configs/config.yml"
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repository.MigrateDB(db, logger)

	pedidoRepo := repository.NewPedidoRepository(db, logger)

	pipeline := triage.NewPipeline(triage.Options{
		ModelPath:     cfg.Triage.ModelPath,
		QueueCapacity: cfg.Triage.QueueCapacity,
		MaxRetries:    cfg.Triage.MaxRetries,
		RetryBackoff:  time.Duration(cfg.Triage.RetryBackoffMs) * time.Millisecond,
	}, pedidoRepo, logger)

	// A missing or incompatible model artifact disables triage but must not
	// take down ingestion: pedidos are still accepted and stay pending.
	var sweeper *triage.Sweeper
	triageUp := true
	if err := pipeline.Start(); err != nil {
		triageUp = false
		logger.Error("Triage pipeline unavailable, pedidos will stay pending until remediation", zap.Error(err))
	} else {
		sweeper = triage.NewSweeper(pipeline, pedidoRepo,
			time.Duration(cfg.Triage.SweepMinAgeSeconds)*time.Second, cfg.Triage.SweepBatch, logger)
		if err := sweeper.Start(cfg.Triage.SweepSchedule); err != nil {
			logger.Fatal("Failed to schedule pending-triage sweep", zap.Error(err))
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.NewServer(db, cfg, pipeline, logger)
	if err := srv.Run(ctx, cfg.Server.Port); err != nil {
		logger.Error("Server failed", zap.Error(err))
	}

	if sweeper != nil {
		sweeper.Stop()
	}
	if triageUp {
		pipeline.Shutdown(time.Duration(cfg.Triage.ShutdownGraceSeconds) * time.Second)
	}
	logger.Info("Application stopped.")
}

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"ledgerly/internal/amqp"
	"ledgerly/internal/cli"
	"ledgerly/internal/core"
	"ledgerly/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting billing-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Charges created here flow through the same export pipeline as user
	// writes; without AMQP they wait in the outbox for the periodic sweep.
	var publisher services.SyncPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in SQLite-only mode", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized - charges will sync via ledgerly-worker")
		}
	} else {
		logger.Info("AMQP disabled - charges will not sync until the worker sweeps the outbox")
	}

	ledgerService := services.NewLedgerService(repo, publisher)
	defer ledgerService.Close()

	processor := services.NewBillingProcessor(repo, ledgerService)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Subscription billing processor configured",
		"interval", cfg.BillingInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(cfg.BillingInterval)
	defer ticker.Stop()

	// Run initial processing on startup.
	logger.Info("Running initial subscription billing...")
	if count, err := processor.ProcessDue(ctx, core.Today()); err != nil {
		logger.Error("Initial billing run failed", "error", err)
	} else {
		logger.Info("Initial billing run complete", "charges_created", count)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("Billing-worker shutdown complete")
			return
		case <-ticker.C:
			logger.Info("Processing due subscriptions...")
			count, err := processor.ProcessDue(ctx, core.Today())
			if err != nil {
				logger.Error("Periodic billing run failed", "error", err)
			} else {
				logger.Info("Periodic billing run complete", "charges_created", count)
			}
		}
	}
}

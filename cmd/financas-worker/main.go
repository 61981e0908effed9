package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"financas/internal/cli"
	"financas/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("financas-worker")
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the audit worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient := cli.InitAMQP(logger, cfg)
	if amqpClient == nil {
		logger.Error("Failed to connect to AMQP broker")
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	auditWorker := worker.NewAuditWorker(repo, amqpClient)

	logger.Info("Starting audit worker", "queue", cfg.AMQPQueue)
	if err := auditWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Audit worker failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Audit worker stopped")
}

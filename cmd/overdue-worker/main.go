package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"financas/internal/cli"
	"financas/internal/services"
	"financas/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("overdue-worker")
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient := cli.InitAMQP(logger, cfg)
	if amqpClient != nil {
		defer amqpClient.Close()
	}

	loans := services.NewLoanService(repo, amqpClient)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting overdue sweep worker", "interval", cfg.OverdueInterval)
	overdueWorker := worker.NewOverdueWorker(loans, cfg.OverdueInterval)
	if err := overdueWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Overdue worker failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Overdue worker stopped")
}

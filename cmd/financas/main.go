package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"financas/internal/cache"
	"financas/internal/cli"
	"financas/internal/export"
	gsheet "financas/internal/export/google"
	mem "financas/internal/export/memory"
	apphttp "financas/internal/http"
	"financas/internal/ledger"
	"financas/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("financas")
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient := cli.InitAMQP(logger, cfg)
	if amqpClient != nil {
		defer amqpClient.Close()
	}

	// Statement export target: Google Sheets when configured, otherwise
	// an in-memory store so the export endpoint still works locally.
	var writer export.StatementWriter
	if cfg.SheetsExportEnabled {
		gclient, err := gsheet.New(context.Background(), cfg.SpreadsheetID, cfg.StatementSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer = gclient
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.SpreadsheetID)
	} else {
		writer = mem.New()
		logger.Info("Google Sheets export disabled, using in-memory store")
	}

	statementCache := cache.NewLRU[ledger.Statement](256, 5*time.Minute)
	cacheManager := cache.NewManager()
	cacheManager.Register(statementCache)
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	statements := services.NewStatementService(repo, statementCache, writer)
	movements := services.NewMovementService(repo, statements, amqpClient)
	purchases := services.NewPurchaseService(repo, amqpClient, cfg.RemainderPolicy)
	loans := services.NewLoanService(repo, amqpClient)

	srv := apphttp.NewServer(":"+cfg.Port, repo, statements, movements, purchases, loans)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting financas server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

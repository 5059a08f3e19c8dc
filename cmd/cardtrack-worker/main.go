package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"cardtrack/internal/amqp"
	"cardtrack/internal/config"
	applog "cardtrack/internal/log"
	"cardtrack/internal/sheets"
	gsheet "cardtrack/internal/sheets/google"
	mem "cardtrack/internal/sheets/memory"
	"cardtrack/internal/storage"
	"cardtrack/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: "worker"})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var writer sheets.StatementWriter
	if cfg.GoogleSpreadsheetID != "" {
		clientJSON, tokenJSON, err := oauthCredentials(cfg)
		if err != nil {
			logger.Error("Failed to load OAuth credentials", "error", err)
			os.Exit(1)
		}
		writer, err = gsheet.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, clientJSON, tokenJSON)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		writer = mem.New()
		logger.Info("Google Sheets disabled - exports go to the in-memory writer")
	}

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	w := worker.New(amqpClient, repo, repo, writer, cfg.ExportTimeout, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting cardtrack-worker", "queue", cfg.AMQPQueue)
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

// oauthCredentials resolves the OAuth client and token JSON from inline
// env values or files, inline winning.
func oauthCredentials(cfg *config.Config) (clientJSON, tokenJSON []byte, err error) {
	switch {
	case cfg.GoogleOAuthClientJSON != "":
		clientJSON = []byte(cfg.GoogleOAuthClientJSON)
	case cfg.GoogleOAuthClientFile != "":
		clientJSON, err = os.ReadFile(cfg.GoogleOAuthClientFile)
		if err != nil {
			return nil, nil, fmt.Errorf("read oauth client file: %w", err)
		}
	default:
		return nil, nil, errors.New("missing OAuth client credentials")
	}

	switch {
	case cfg.GoogleOAuthTokenJSON != "":
		tokenJSON = []byte(cfg.GoogleOAuthTokenJSON)
	case cfg.GoogleOAuthTokenFile != "":
		tokenJSON, err = os.ReadFile(cfg.GoogleOAuthTokenFile)
		if err != nil {
			return nil, nil, fmt.Errorf("read oauth token file: %w", err)
		}
	default:
		return nil, nil, errors.New("missing OAuth token")
	}

	return clientJSON, tokenJSON, nil
}

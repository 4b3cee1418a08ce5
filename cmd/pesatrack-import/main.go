package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"pesatrack/internal/config"
	"pesatrack/internal/services"
	"pesatrack/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	file := flag.String("file", "", "path to the statement CSV to import")
	flag.Parse()
	if *file == "" {
		logger.Error("Missing -file argument")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	// Imports publish no export messages; the worker's periodic pass picks
	// the rows up from the pending state.
	service := services.NewTransactionService(sqliteRepo, nil)
	defer service.Close()

	f, err := os.Open(*file)
	if err != nil {
		logger.Error("Failed to open statement", "error", err, "file", *file)
		os.Exit(1)
	}
	defer f.Close()

	importer := services.NewStatementImporter(service)
	result, err := importer.Import(context.Background(), f)
	if err != nil {
		logger.Error("Import failed", "error", err, "file", *file)
		os.Exit(1)
	}

	for _, e := range result.Errors {
		logger.Warn("Row rejected", "error", e)
	}
	logger.Info("Import finished",
		"file", *file,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"failed", len(result.Errors))
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}

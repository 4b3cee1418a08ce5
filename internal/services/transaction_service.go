package services

import (
	"context"
	"fmt"
	"log/slog"

	"pesatrack/internal/amqp"
	"pesatrack/internal/core"
	"pesatrack/internal/storage"
)

// TransactionService orchestrates transaction writes across SQLite and AMQP
type TransactionService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewTransactionService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateTransaction saves a transaction locally and publishes an export message
func (s *TransactionService) CreateTransaction(ctx context.Context, t core.Transaction) error {
	// Save to SQLite first (fast, reliable)
	if err := s.storage.Insert(ctx, t); err != nil {
		return fmt.Errorf("save transaction: %w", err)
	}

	// Publish async export message (non-blocking, version 1 for new records)
	if err := s.publishExportMessage(ctx, t.ID, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"id", t.ID, "error", err)
		// Don't fail the request - transaction is saved locally
	}

	return nil
}

// GetTransaction loads a single transaction by id.
func (s *TransactionService) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return s.storage.Get(ctx, id)
}

// ListTransactions returns every stored transaction ordered by date.
func (s *TransactionService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.storage.ListAll(ctx)
}

// DeleteTransaction removes a transaction locally.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (s *TransactionService) publishExportMessage(ctx context.Context, id string, version int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping export message")
		return nil
	}

	return s.amqpClient.PublishTransactionExport(ctx, id, version)
}

// Close closes both storage and AMQP connections
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}

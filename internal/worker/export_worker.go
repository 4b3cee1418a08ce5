package worker

import (
	"context"
	"fmt"
	"log/slog"

	"pesatrack/internal/amqp"
	"pesatrack/internal/sheets"
	"pesatrack/internal/storage"
)

// ExportWorker moves transactions from SQLite to the spreadsheet export
// target.
type ExportWorker struct {
	storage   *storage.SQLiteRepository
	appender  sheets.RowAppender
	lister    sheets.RowLister
	batchSize int
}

func NewExportWorker(storage *storage.SQLiteRepository, appender sheets.RowAppender, lister sheets.RowLister, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		appender:  appender,
		lister:    lister,
		batchSize: batchSize,
	}
}

// HandleExportMessage processes a single export message from AMQP
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.TransactionExportMessage) error {
	slog.InfoContext(ctx, "Processing export message",
		"id", msg.ID,
		"version", msg.Version)

	transaction, err := w.storage.Get(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	ref, err := w.appender.Append(ctx, transaction)
	if err != nil {
		if markErr := w.storage.MarkExportError(ctx, msg.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", msg.ID, "error", markErr)
		}
		return fmt.Errorf("append transaction to sheet: %w", err)
	}

	if err := w.storage.MarkExported(ctx, msg.ID); err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		"id", msg.ID,
		"sheets_ref", ref)
	return nil
}

// ProcessPendingExports pushes out any transactions still marked pending.
// This is a backup mechanism in case AMQP messages are lost.
func (w *ExportWorker) ProcessPendingExports(ctx context.Context) error {
	pending, err := w.storage.ListPendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending exports: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	exported := w.exportedIDSet(ctx)

	for _, p := range pending {
		transaction, err := w.storage.Get(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get transaction", "id", p.ID, "error", err)
			if err := w.storage.MarkExportError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark export error", "id", p.ID, "error", err)
			}
			continue
		}

		// The row may already exist if a previous run died between the
		// append and the state update.
		if _, ok := exported[p.ID]; ok {
			if err := w.storage.MarkExported(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark exported", "id", p.ID, "error", err)
			}
			continue
		}

		if _, err := w.appender.Append(ctx, transaction); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction", "id", p.ID, "error", err)
			if err := w.storage.MarkExportError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark export error", "id", p.ID, "error", err)
			}
			continue
		}

		if err := w.storage.MarkExported(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to mark exported", "id", p.ID, "error", err)
		}
	}

	return nil
}

func (w *ExportWorker) exportedIDSet(ctx context.Context) map[string]struct{} {
	set := map[string]struct{}{}
	if w.lister == nil {
		return set
	}
	ids, err := w.lister.ListExportedIDs(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to list exported ids, appends may duplicate", "error", err)
		return set
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

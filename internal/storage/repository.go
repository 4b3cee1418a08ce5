package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"pesatrack/internal/core"

	_ "modernc.org/sqlite"
)

// Export states for the sheets sync machinery.
const (
	ExportPending = "pending"
	ExportDone    = "exported"
	ExportError   = "error"
)

var ErrNotFound = errors.New("transaction not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const insertTransaction = `
INSERT INTO transactions (id, date_ms, amount_cents, account, category, type, description, balance_cents)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// Insert stores one validated transaction.
func (r *SQLiteRepository) Insert(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validate transaction: %w", err)
	}

	_, err := r.db.ExecContext(ctx, insertTransaction,
		t.ID, t.Date.UnixMilli(), t.Amount.Cents, t.Account,
		t.Category, string(t.Type), t.Description, t.Balance.Cents)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"account", t.Account,
		"amount_cents", t.Amount.Cents)
	return nil
}

const selectColumns = `id, date_ms, amount_cents, account, category, type, description, balance_cents`

// Get retrieves one transaction by id.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return t, nil
}

// ListAll returns every transaction ordered by date ascending.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM transactions ORDER BY date_ms ASC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return collectTransactions(rows)
}

// ListByDateRange returns transactions within [from, to], ordered by date.
func (r *SQLiteRepository) ListByDateRange(ctx context.Context, from, to core.Date) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE date_ms BETWEEN ? AND ? ORDER BY date_ms ASC`,
		from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list transactions by range: %w", err)
	}
	return collectTransactions(rows)
}

// ListByAccount returns transactions for one counterparty, ordered by date.
func (r *SQLiteRepository) ListByAccount(ctx context.Context, account string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE account = ? ORDER BY date_ms ASC`, account)
	if err != nil {
		return nil, fmt.Errorf("list transactions by account: %w", err)
	}
	return collectTransactions(rows)
}

// Delete removes a transaction permanently.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// PendingExport is the minimal record the export queue needs.
type PendingExport struct {
	ID      string
	Version int64
}

// ListPendingExport returns transactions not yet pushed to the sheet.
func (r *SQLiteRepository) ListPendingExport(ctx context.Context, limit int) ([]PendingExport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version FROM transactions WHERE export_state = ? ORDER BY created_at ASC LIMIT ?`,
		ExportPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending export: %w", err)
	}
	defer rows.Close()

	var pending []PendingExport
	for rows.Next() {
		var p PendingExport
		if err := rows.Scan(&p.ID, &p.Version); err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkExported flags a transaction as successfully pushed.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id string) error {
	return r.setExportState(ctx, id, ExportDone)
}

// MarkExportError flags a transaction whose push failed.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, id string) error {
	return r.setExportState(ctx, id, ExportError)
}

func (r *SQLiteRepository) setExportState(ctx context.Context, id, state string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET export_state = ?, version = version + 1 WHERE id = ?`, state, id)
	if err != nil {
		return fmt.Errorf("mark transaction %s %s: %w", id, state, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t      core.Transaction
		dateMS int64
		txType string
	)
	err := row.Scan(&t.ID, &dateMS, &t.Amount.Cents, &t.Account,
		&t.Category, &txType, &t.Description, &t.Balance.Cents)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Date = core.Date{Time: time.UnixMilli(dateMS).UTC()}
	t.Type = core.TransactionTypes(txType)
	return t, nil
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	defer rows.Close()
	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"pesatrack/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testTransaction(id string, day int, cents int64, account string) core.Transaction {
	return core.Transaction{
		ID:       id,
		Date:     core.NewDate(2025, 3, day),
		Amount:   core.Money{Cents: cents},
		Account:  account,
		Category: "Food: Groceries",
		Type:     core.TypePayment,
		Balance:  core.Money{Cents: 100000 + cents},
	}
}

func TestInsertAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	want := testTransaction("tx-1", 10, -2500, "Shop")
	if err := repo.Insert(ctx, want); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.Get(ctx, "tx-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != want.ID || got.Amount != want.Amount || got.Account != want.Account {
		t.Fatalf("roundtrip mismatch: got %+v", got)
	}
	if !got.Date.SameDay(want.Date) {
		t.Fatalf("date mismatch: got %v, want %v", got.Date, want.Date)
	}
	if got.Type != core.TypePayment {
		t.Fatalf("type mismatch: got %s", got.Type)
	}
}

func TestGetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInsertRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)

	bad := testTransaction("tx-1", 10, 0, "Shop") // zero amount
	if err := repo.Insert(context.Background(), bad); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestListByDateRange(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i, day := range []int{5, 10, 20} {
		if err := repo.Insert(ctx, testTransaction(
			string(rune('a'+i)), day, -100, "Shop")); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	got, err := repo.ListByDateRange(ctx,
		core.NewDate(2025, 3, 8).StartOfDay(),
		core.NewDate(2025, 3, 15).EndOfDay())
	if err != nil {
		t.Fatalf("list by range: %v", err)
	}
	if len(got) != 1 || !got[0].Date.SameDay(core.NewDate(2025, 3, 10)) {
		t.Fatalf("expected only the mid-range transaction, got %v", got)
	}
}

func TestListByAccount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	repo.Insert(ctx, testTransaction("a", 1, -100, "Shop"))
	repo.Insert(ctx, testTransaction("b", 2, -100, "Fuel Co"))
	repo.Insert(ctx, testTransaction("c", 3, -100, "Shop"))

	got, err := repo.ListByAccount(ctx, "Shop")
	if err != nil {
		t.Fatalf("list by account: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 Shop transactions, got %d", len(got))
	}
	// Ordered by date ascending.
	if got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestExportStateMachine(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	repo.Insert(ctx, testTransaction("a", 1, -100, "Shop"))
	repo.Insert(ctx, testTransaction("b", 2, -100, "Shop"))

	pending, err := repo.ListPendingExport(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}

	if err := repo.MarkExported(ctx, "a"); err != nil {
		t.Fatalf("mark exported: %v", err)
	}
	if err := repo.MarkExportError(ctx, "b"); err != nil {
		t.Fatalf("mark error: %v", err)
	}

	pending, err = repo.ListPendingExport(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending after marking, got %d", len(pending))
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	repo.Insert(ctx, testTransaction("a", 1, -100, "Shop"))
	if err := repo.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

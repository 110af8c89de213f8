package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"ledgerly/internal/amqp"
	"ledgerly/internal/core"
	sheetsmem "ledgerly/internal/sheets/memory"
	"ledgerly/internal/storage"
)

func newTestWorker(t *testing.T) (*SyncWorker, *storage.SQLiteRepository, *sheetsmem.Store) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	sheet := sheetsmem.New()
	return NewSyncWorker(repo, sheet, 10), repo, sheet
}

func insertTransaction(t *testing.T, repo *storage.SQLiteRepository, cents int64) core.Transaction {
	t.Helper()
	created, err := repo.Insert(context.Background(), core.TransactionInput{
		UserID:      "user-1",
		Type:        core.Expense,
		Amount:      core.Money{Cents: cents},
		Description: "test entry",
		Date:        core.NewDate(2024, 3, 15),
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	return created
}

func TestHandleSyncMessageExportsAndMarks(t *testing.T) {
	w, repo, sheet := newTestWorker(t)
	created := insertTransaction(t, repo, 1500)

	msg := amqp.NewTransactionSyncMessage(created.ID, 1)
	if err := w.HandleSyncMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}

	rows := sheet.Rows()
	if len(rows) != 1 || rows[0].ID != created.ID {
		t.Fatalf("sheet rows = %+v, want the exported record", rows)
	}

	pending, err := repo.GetPendingSync(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetPendingSync() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("len(pending) = %d after export, want 0", len(pending))
	}
}

func TestHandleSyncMessageUnknownTransaction(t *testing.T) {
	w, _, _ := newTestWorker(t)
	msg := amqp.NewTransactionSyncMessage("missing", 1)
	if err := w.HandleSyncMessage(context.Background(), msg); err == nil {
		t.Error("expected error for unknown transaction")
	}
}

func TestExportFailureMarksSyncError(t *testing.T) {
	w, repo, sheet := newTestWorker(t)
	created := insertTransaction(t, repo, 1500)

	sheet.FailWith(errors.New("sheet unavailable"))
	msg := amqp.NewTransactionSyncMessage(created.ID, 1)
	if err := w.HandleSyncMessage(context.Background(), msg); err == nil {
		t.Fatal("expected export error")
	}

	// Errored records leave the pending queue until manually retried.
	pending, err := repo.GetPendingSync(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetPendingSync() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("len(pending) = %d, want errored record excluded", len(pending))
	}
}

func TestProcessPendingSweepsOutbox(t *testing.T) {
	w, repo, sheet := newTestWorker(t)
	insertTransaction(t, repo, 100)
	insertTransaction(t, repo, 200)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if rows := sheet.Rows(); len(rows) != 2 {
		t.Fatalf("sheet rows = %d, want 2", len(rows))
	}

	// A second sweep finds nothing left.
	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending() second call error = %v", err)
	}
	if rows := sheet.Rows(); len(rows) != 2 {
		t.Errorf("sheet rows = %d after second sweep, want 2", len(rows))
	}
}

func TestStartupSyncCheckDrainsBacklog(t *testing.T) {
	w, repo, sheet := newTestWorker(t)
	for i := 0; i < 5; i++ {
		insertTransaction(t, repo, int64(100+i))
	}

	if err := w.StartupSyncCheck(context.Background()); err != nil {
		t.Fatalf("StartupSyncCheck() error = %v", err)
	}
	if rows := sheet.Rows(); len(rows) != 5 {
		t.Errorf("sheet rows = %d, want 5", len(rows))
	}
}

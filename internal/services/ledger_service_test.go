package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"ledgerly/internal/core"
	"ledgerly/internal/storage"
)

type recordingPublisher struct {
	calls []publishedSync
	err   error
}

type publishedSync struct {
	id      string
	version int64
}

func (r *recordingPublisher) PublishTransactionSync(_ context.Context, id string, version int64) error {
	if r.err != nil {
		return r.err
	}
	r.calls = append(r.calls, publishedSync{id: id, version: version})
	return nil
}

func newTestLedgerService(t *testing.T, pub SyncPublisher) *LedgerService {
	t.Helper()
	store, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	svc := NewLedgerService(store, pub)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func serviceInput(cents int64) core.TransactionInput {
	return core.TransactionInput{
		UserID:      "user-1",
		Type:        core.Expense,
		Amount:      core.Money{Cents: cents},
		Description: "test entry",
		Date:        core.NewDate(2024, 3, 15),
	}
}

func TestInsertPublishesSyncMessage(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestLedgerService(t, pub)

	created, err := svc.Insert(context.Background(), serviceInput(100))
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if len(pub.calls) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.calls))
	}
	if pub.calls[0].id != created.ID || pub.calls[0].version != 1 {
		t.Errorf("published %+v, want id=%s version=1", pub.calls[0], created.ID)
	}
}

func TestUpdatePublishesBumpedVersion(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestLedgerService(t, pub)

	created, err := svc.Insert(context.Background(), serviceInput(100))
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if _, err := svc.Update(context.Background(), created.ID, serviceInput(150)); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if len(pub.calls) != 2 {
		t.Fatalf("published %d messages, want 2", len(pub.calls))
	}
	if pub.calls[1].version != 2 {
		t.Errorf("update published version %d, want 2", pub.calls[1].version)
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newTestLedgerService(t, pub)

	created, err := svc.Insert(context.Background(), serviceInput(100))
	if err != nil {
		t.Fatalf("Insert() error = %v, want write to survive publish failure", err)
	}

	txns, err := svc.QueryByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("QueryByUser() error = %v", err)
	}
	if len(txns) != 1 || txns[0].ID != created.ID {
		t.Errorf("txns = %+v, want the committed record", txns)
	}
}

func TestNilPublisherSkipsSync(t *testing.T) {
	svc := newTestLedgerService(t, nil)
	if _, err := svc.Insert(context.Background(), serviceInput(100)); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
}

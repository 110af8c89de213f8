// Package worker drains the export queue, mirroring committed ledger
// entries to the configured sheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"ledgerly/internal/amqp"
	"ledgerly/internal/core"
	"ledgerly/internal/sheets"
	"ledgerly/internal/storage"
)

// SyncWorker exports transactions from SQLite to the external sheet. It is
// fed by AMQP messages, with a periodic sweep over the pending outbox as a
// backup for lost messages.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	sheets    sheets.TransactionWriter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, sheets sheets.TransactionWriter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		sheets:    sheets,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes one sync message from AMQP. The message only
// carries an id; the current record is always read back from storage.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"transaction_id", msg.ID,
		"version", msg.Version)

	txn, err := w.storage.GetTransaction(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.exportTransaction(ctx, txn); err != nil {
		return fmt.Errorf("export transaction: %w", err)
	}
	return nil
}

// ProcessPending exports transactions still waiting in the outbox. This is
// the backup path for lost AMQP messages.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	return w.drainPending(ctx, w.batchSize)
}

// StartupSyncCheck drains a larger pending batch once at worker startup, to
// recover from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	return w.drainPending(ctx, w.batchSize*5)
}

func (w *SyncWorker) drainPending(ctx context.Context, limit int) error {
	pending, err := w.storage.GetPendingSync(ctx, limit)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	synced := 0
	for _, p := range pending {
		txn, err := w.storage.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get transaction", "transaction_id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "transaction_id", p.ID, "error", err)
			}
			continue
		}

		if err := w.exportTransaction(ctx, txn); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction", "transaction_id", p.ID, "error", err)
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Pending sweep completed",
		"total", len(pending),
		"synced", synced,
		"errors", len(pending)-synced)
	return nil
}

func (w *SyncWorker) exportTransaction(ctx context.Context, txn core.Transaction) error {
	ref, err := w.sheets.Append(ctx, txn)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, txn.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "transaction_id", txn.ID, "error", markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, txn.ID); err != nil {
		// The export itself succeeded; the sweep may re-export this record
		slog.ErrorContext(ctx, "Failed to mark as synced", "transaction_id", txn.ID, "error", err)
	}

	slog.InfoContext(ctx, "Transaction exported",
		"transaction_id", txn.ID,
		"sheet_ref", ref,
		"amount_cents", txn.Amount.Cents)
	return nil
}

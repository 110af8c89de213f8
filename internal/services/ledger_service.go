// Package services orchestrates the persistence, messaging, and billing
// concerns around the ledger collection.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"ledgerly/internal/collection"
	"ledgerly/internal/core"
	"ledgerly/internal/storage"
)

// SyncPublisher queues a transaction for export after a committed write.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id string, version int64) error
}

// LedgerService wraps the SQLite collection with export queueing: every
// committed write enqueues a sync message. Publish failures never fail the
// write; the pending sweep picks those records up later.
type LedgerService struct {
	store     *storage.SQLiteRepository
	publisher SyncPublisher
}

var _ collection.Collection = (*LedgerService)(nil)

func NewLedgerService(store *storage.SQLiteRepository, publisher SyncPublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

func (s *LedgerService) QueryByUser(ctx context.Context, userID string) ([]core.Transaction, error) {
	return s.store.QueryByUser(ctx, userID)
}

func (s *LedgerService) Insert(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	created, err := s.store.Insert(ctx, in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	// New records start at version 1
	s.publishSync(ctx, created.ID, 1)
	return created, nil
}

func (s *LedgerService) Update(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	updated, err := s.store.Update(ctx, id, in)
	if err != nil {
		return core.Transaction{}, err
	}

	version, err := s.store.TransactionVersion(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read version after update", "transaction_id", id, "error", err)
		return updated, nil
	}
	s.publishSync(ctx, id, version)
	return updated, nil
}

func (s *LedgerService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *LedgerService) publishSync(ctx context.Context, id string, version int64) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Sync publisher not available, skipping sync message", "transaction_id", id)
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, id, version); err != nil {
		// The write already committed; the pending sweep will retry the export
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"transaction_id", id,
			"version", version,
			"error", err)
	}
}

func (s *LedgerService) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

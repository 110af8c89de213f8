// Package storage is the SQLite persistence layer. It implements the
// collection ports plus the sync outbox the export worker drains.
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

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"ledgerly/internal/core"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
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

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// QueryByUser implements collection.Collection.
func (r *SQLiteRepository) QueryByUser(ctx context.Context, userID string) ([]core.Transaction, error) {
	if userID == "" {
		return nil, nil
	}
	rows, err := r.queries.GetTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get transactions by user: %w", err)
	}

	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := rowToTransaction(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Insert implements collection.Collection.
func (r *SQLiteRepository) Insert(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	in = in.Normalized(time.Now())
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}

	id := uuid.NewString()
	err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		ID:          id,
		UserID:      in.UserID,
		Type:        string(in.Type),
		AmountCents: in.Amount.Cents,
		Description: in.Description,
		Category:    in.Category,
		TxDate:      in.Date.ISO(),
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"transaction_id", id,
		"user_id", in.UserID,
		"type", string(in.Type),
		"amount_cents", in.Amount.Cents)

	return in.WithID(id), nil
}

// Update implements collection.Collection.
func (r *SQLiteRepository) Update(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	in = in.Normalized(time.Now())
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}

	affected, err := r.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		ID:          id,
		Type:        string(in.Type),
		AmountCents: in.Amount.Cents,
		Description: in.Description,
		Category:    in.Category,
		TxDate:      in.Date.ISO(),
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if affected == 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	return in.WithID(id), nil
}

// Delete implements collection.Collection. Deleting an absent id succeeds.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if err := r.queries.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a single transaction by id, for the export worker.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}
	return rowToTransaction(row)
}

// TransactionVersion returns the current version counter for a transaction.
func (r *SQLiteRepository) TransactionVersion(ctx context.Context, id string) (int64, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, core.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get transaction version: %w", err)
	}
	return row.Version, nil
}

// PendingSyncTransaction is the minimal record queued for export.
type PendingSyncTransaction struct {
	ID      string
	Version int64
}

// GetPendingSync returns transactions not yet exported, oldest first.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.queries.GetPendingSyncTransactions(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}

	out := make([]PendingSyncTransaction, len(rows))
	for i, row := range rows {
		out[i] = PendingSyncTransaction{ID: row.ID, Version: row.Version}
	}
	return out, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	if err := r.queries.MarkTransactionSynced(ctx, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "transaction_id", id)
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	if err := r.queries.MarkTransactionSyncError(ctx, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "transaction_id", id)
	return nil
}

// PlansByUser implements collection.PlannerStore.
func (r *SQLiteRepository) PlansByUser(ctx context.Context, userID string) ([]core.PlannedExpense, error) {
	if userID == "" {
		return nil, nil
	}
	rows, err := r.queries.GetPlansByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get plans by user: %w", err)
	}

	out := make([]core.PlannedExpense, 0, len(rows))
	for _, row := range rows {
		date, err := core.ParseDate(row.PlanDate)
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", row.ID, err)
		}
		out = append(out, core.PlannedExpense{
			ID:              row.ID,
			UserID:          row.UserID,
			Title:           row.Title,
			Description:     row.Description,
			Amount:          core.Money{Cents: row.AmountCents},
			Date:            date,
			RecurringMonths: int(row.RecurringMonths),
		})
	}
	return out, nil
}

// InsertPlan implements collection.PlannerStore.
func (r *SQLiteRepository) InsertPlan(ctx context.Context, p core.PlannedExpense) (core.PlannedExpense, error) {
	if err := p.Validate(); err != nil {
		return core.PlannedExpense{}, err
	}
	p.ID = uuid.NewString()
	err := r.queries.CreatePlan(ctx, PlannedExpenseRow{
		ID:              p.ID,
		UserID:          p.UserID,
		Title:           p.Title,
		Description:     p.Description,
		AmountCents:     p.Amount.Cents,
		PlanDate:        p.Date.ISO(),
		RecurringMonths: int64(p.RecurringMonths),
	})
	if err != nil {
		return core.PlannedExpense{}, fmt.Errorf("create plan: %w", err)
	}
	return p, nil
}

// DeletePlan implements collection.PlannerStore.
func (r *SQLiteRepository) DeletePlan(ctx context.Context, userID, id string) error {
	if err := r.queries.DeletePlan(ctx, id, userID); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}

// SubscriptionsByUser implements collection.SubscriptionStore.
func (r *SQLiteRepository) SubscriptionsByUser(ctx context.Context, userID string) ([]core.Subscription, error) {
	if userID == "" {
		return nil, nil
	}
	rows, err := r.queries.GetSubscriptionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get subscriptions by user: %w", err)
	}
	return rowsToSubscriptions(rows)
}

// InsertSubscription implements collection.SubscriptionStore.
func (r *SQLiteRepository) InsertSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error) {
	if err := s.Validate(); err != nil {
		return core.Subscription{}, err
	}
	s.ID = uuid.NewString()
	err := r.queries.CreateSubscription(ctx, SubscriptionRow{
		ID:              s.ID,
		UserID:          s.UserID,
		Name:            s.Name,
		AmountCents:     s.Amount.Cents,
		BillingCycle:    string(s.BillingCycle),
		NextBillingDate: s.NextBillingDate.ISO(),
		Description:     s.Description,
	})
	if err != nil {
		return core.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}
	return s, nil
}

// DeleteSubscription implements collection.SubscriptionStore.
func (r *SQLiteRepository) DeleteSubscription(ctx context.Context, userID, id string) error {
	if err := r.queries.DeleteSubscription(ctx, id, userID); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

// DueSubscriptions returns subscriptions whose billing date is on or before
// the cutoff, across all users. Used by the billing worker.
func (r *SQLiteRepository) DueSubscriptions(ctx context.Context, cutoff core.Date) ([]core.Subscription, error) {
	rows, err := r.queries.GetDueSubscriptions(ctx, cutoff.ISO())
	if err != nil {
		return nil, fmt.Errorf("get due subscriptions: %w", err)
	}
	return rowsToSubscriptions(rows)
}

// AdvanceBilling moves a subscription's next billing date forward after the
// due charge has been materialized.
func (r *SQLiteRepository) AdvanceBilling(ctx context.Context, id string, next core.Date) error {
	if err := r.queries.AdvanceSubscriptionBilling(ctx, id, next.ISO()); err != nil {
		return fmt.Errorf("advance subscription billing: %w", err)
	}
	return nil
}

func rowToTransaction(row TransactionRow) (core.Transaction, error) {
	date, err := core.ParseDate(row.TxDate)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", row.ID, err)
	}
	return core.Transaction{
		ID:          row.ID,
		UserID:      row.UserID,
		Type:        core.NormalizeType(row.Type),
		Amount:      core.Money{Cents: row.AmountCents},
		Description: row.Description,
		Category:    row.Category,
		Date:        date,
	}, nil
}

func rowsToSubscriptions(rows []SubscriptionRow) ([]core.Subscription, error) {
	out := make([]core.Subscription, 0, len(rows))
	for _, row := range rows {
		date, err := core.ParseDate(row.NextBillingDate)
		if err != nil {
			return nil, fmt.Errorf("subscription %s: %w", row.ID, err)
		}
		out = append(out, core.Subscription{
			ID:              row.ID,
			UserID:          row.UserID,
			Name:            row.Name,
			Amount:          core.Money{Cents: row.AmountCents},
			BillingCycle:    core.BillingCycle(row.BillingCycle),
			NextBillingDate: date,
			Description:     row.Description,
		})
	}
	return out, nil
}

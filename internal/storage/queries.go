package storage

import (
	"context"
	"database/sql"
)

// Queries is the low-level query layer over the SQLite schema. It speaks in
// row types; the repository translates to and from core types.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

type TransactionRow struct {
	ID          string
	UserID      string
	Type        string
	AmountCents int64
	Description string
	Category    string
	TxDate      string
	Version     int64
	SyncedAt    sql.NullTime
	SyncError   int64
}

type CreateTransactionParams struct {
	ID          string
	UserID      string
	Type        string
	AmountCents int64
	Description string
	Category    string
	TxDate      string
}

type UpdateTransactionParams struct {
	ID          string
	Type        string
	AmountCents int64
	Description string
	Category    string
	TxDate      string
}

const getTransactionsByUser = `
SELECT id, user_id, type, amount_cents, description, category, tx_date, version, synced_at, sync_error
FROM transactions
WHERE user_id = ?
ORDER BY created_at, id`

func (q *Queries) GetTransactionsByUser(ctx context.Context, userID string) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, getTransactionsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransactionRow
	for rows.Next() {
		var r TransactionRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.Type, &r.AmountCents, &r.Description,
			&r.Category, &r.TxDate, &r.Version, &r.SyncedAt, &r.SyncError); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const getTransaction = `
SELECT id, user_id, type, amount_cents, description, category, tx_date, version, synced_at, sync_error
FROM transactions
WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id string) (TransactionRow, error) {
	var r TransactionRow
	err := q.db.QueryRowContext(ctx, getTransaction, id).Scan(&r.ID, &r.UserID, &r.Type,
		&r.AmountCents, &r.Description, &r.Category, &r.TxDate, &r.Version, &r.SyncedAt, &r.SyncError)
	return r, err
}

const createTransaction = `
INSERT INTO transactions (id, user_id, type, amount_cents, description, category, tx_date)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateTransaction(ctx context.Context, p CreateTransactionParams) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		p.ID, p.UserID, p.Type, p.AmountCents, p.Description, p.Category, p.TxDate)
	return err
}

const updateTransaction = `
UPDATE transactions
SET type = ?, amount_cents = ?, description = ?, category = ?, tx_date = ?,
    version = version + 1, synced_at = NULL, sync_error = 0
WHERE id = ?`

func (q *Queries) UpdateTransaction(ctx context.Context, p UpdateTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		p.Type, p.AmountCents, p.Description, p.Category, p.TxDate, p.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteTransaction, id)
	return err
}

const getPendingSyncTransactions = `
SELECT id, user_id, type, amount_cents, description, category, tx_date, version, synced_at, sync_error
FROM transactions
WHERE synced_at IS NULL AND sync_error = 0
ORDER BY created_at
LIMIT ?`

func (q *Queries) GetPendingSyncTransactions(ctx context.Context, limit int64) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, getPendingSyncTransactions, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransactionRow
	for rows.Next() {
		var r TransactionRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.Type, &r.AmountCents, &r.Description,
			&r.Category, &r.TxDate, &r.Version, &r.SyncedAt, &r.SyncError); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const markTransactionSynced = `
UPDATE transactions SET synced_at = CURRENT_TIMESTAMP, sync_error = 0 WHERE id = ?`

func (q *Queries) MarkTransactionSynced(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, markTransactionSynced, id)
	return err
}

const markTransactionSyncError = `
UPDATE transactions SET sync_error = 1 WHERE id = ?`

func (q *Queries) MarkTransactionSyncError(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, markTransactionSyncError, id)
	return err
}

type PlannedExpenseRow struct {
	ID              string
	UserID          string
	Title           string
	Description     string
	AmountCents     int64
	PlanDate        string
	RecurringMonths int64
}

const getPlansByUser = `
SELECT id, user_id, title, description, amount_cents, plan_date, recurring_months
FROM planned_expenses
WHERE user_id = ?
ORDER BY plan_date, id`

func (q *Queries) GetPlansByUser(ctx context.Context, userID string) ([]PlannedExpenseRow, error) {
	rows, err := q.db.QueryContext(ctx, getPlansByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlannedExpenseRow
	for rows.Next() {
		var r PlannedExpenseRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.Title, &r.Description,
			&r.AmountCents, &r.PlanDate, &r.RecurringMonths); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const createPlan = `
INSERT INTO planned_expenses (id, user_id, title, description, amount_cents, plan_date, recurring_months)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreatePlan(ctx context.Context, p PlannedExpenseRow) error {
	_, err := q.db.ExecContext(ctx, createPlan,
		p.ID, p.UserID, p.Title, p.Description, p.AmountCents, p.PlanDate, p.RecurringMonths)
	return err
}

const deletePlan = `DELETE FROM planned_expenses WHERE id = ? AND user_id = ?`

func (q *Queries) DeletePlan(ctx context.Context, id, userID string) error {
	_, err := q.db.ExecContext(ctx, deletePlan, id, userID)
	return err
}

type SubscriptionRow struct {
	ID              string
	UserID          string
	Name            string
	AmountCents     int64
	BillingCycle    string
	NextBillingDate string
	Description     string
}

const getSubscriptionsByUser = `
SELECT id, user_id, name, amount_cents, billing_cycle, next_billing_date, description
FROM subscriptions
WHERE user_id = ?
ORDER BY next_billing_date, id`

func (q *Queries) GetSubscriptionsByUser(ctx context.Context, userID string) ([]SubscriptionRow, error) {
	rows, err := q.db.QueryContext(ctx, getSubscriptionsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

const getDueSubscriptions = `
SELECT id, user_id, name, amount_cents, billing_cycle, next_billing_date, description
FROM subscriptions
WHERE next_billing_date <= ?
ORDER BY next_billing_date, id`

func (q *Queries) GetDueSubscriptions(ctx context.Context, cutoff string) ([]SubscriptionRow, error) {
	rows, err := q.db.QueryContext(ctx, getDueSubscriptions, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

func scanSubscriptions(rows *sql.Rows) ([]SubscriptionRow, error) {
	var out []SubscriptionRow
	for rows.Next() {
		var r SubscriptionRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.AmountCents,
			&r.BillingCycle, &r.NextBillingDate, &r.Description); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const createSubscription = `
INSERT INTO subscriptions (id, user_id, name, amount_cents, billing_cycle, next_billing_date, description)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateSubscription(ctx context.Context, s SubscriptionRow) error {
	_, err := q.db.ExecContext(ctx, createSubscription,
		s.ID, s.UserID, s.Name, s.AmountCents, s.BillingCycle, s.NextBillingDate, s.Description)
	return err
}

const deleteSubscription = `DELETE FROM subscriptions WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteSubscription(ctx context.Context, id, userID string) error {
	_, err := q.db.ExecContext(ctx, deleteSubscription, id, userID)
	return err
}

const advanceSubscriptionBilling = `
UPDATE subscriptions SET next_billing_date = ? WHERE id = ?`

func (q *Queries) AdvanceSubscriptionBilling(ctx context.Context, id, nextDate string) error {
	_, err := q.db.ExecContext(ctx, advanceSubscriptionBilling, nextDate, id)
	return err
}

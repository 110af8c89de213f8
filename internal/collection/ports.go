// Package collection defines the remote transaction collection contract
// consumed by the ledger session. Implementations assign document ids on
// insert and never mix users within a query.
package collection

import (
	"context"

	"ledgerly/internal/core"
)

type (
	// Collection is the outbound port for the remote document store.
	Collection interface {
		// QueryByUser returns every transaction owned by userID. An empty
		// userID yields the empty set, not an error.
		QueryByUser(ctx context.Context, userID string) ([]core.Transaction, error)

		// Insert persists a new document and returns it under the
		// store-assigned identifier.
		Insert(ctx context.Context, in core.TransactionInput) (core.Transaction, error)

		// Update overwrites the document wholesale, preserving its id.
		// Fails with core.ErrNotFound when the id is absent.
		Update(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error)

		// Delete removes the document. Deleting an absent id is a no-op.
		Delete(ctx context.Context, id string) error
	}

	// PlannerStore persists planned expenses for the calendar planner.
	PlannerStore interface {
		PlansByUser(ctx context.Context, userID string) ([]core.PlannedExpense, error)
		InsertPlan(ctx context.Context, p core.PlannedExpense) (core.PlannedExpense, error)
		DeletePlan(ctx context.Context, userID, id string) error
	}

	// SubscriptionStore persists tracked subscriptions.
	SubscriptionStore interface {
		SubscriptionsByUser(ctx context.Context, userID string) ([]core.Subscription, error)
		InsertSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error)
		DeleteSubscription(ctx context.Context, userID, id string) error
	}
)

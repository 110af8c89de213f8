package services

import (
	"context"
	"fmt"
	"log/slog"

	"ledgerly/internal/collection"
	"ledgerly/internal/core"
)

// SubscriptionSource lists due subscriptions and advances their billing
// dates once the charge has been materialized.
type SubscriptionSource interface {
	DueSubscriptions(ctx context.Context, cutoff core.Date) ([]core.Subscription, error)
	AdvanceBilling(ctx context.Context, id string, next core.Date) error
}

// maxCyclesPerRun caps catch-up when a subscription has been overdue for a
// long stretch, so one run can never flood the ledger.
const maxCyclesPerRun = 24

// BillingProcessor turns due subscriptions into expense transactions. Each
// due billing cycle becomes one expense dated on its billing date, and the
// subscription's next billing date advances past today.
type BillingProcessor struct {
	subs SubscriptionSource
	coll collection.Collection
}

func NewBillingProcessor(subs SubscriptionSource, coll collection.Collection) *BillingProcessor {
	return &BillingProcessor{subs: subs, coll: coll}
}

// ProcessDue materializes every due cycle up to and including today.
// Returns the number of transactions created.
func (p *BillingProcessor) ProcessDue(ctx context.Context, today core.Date) (int, error) {
	due, err := p.subs.DueSubscriptions(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("list due subscriptions: %w", err)
	}

	created := 0
	for _, sub := range due {
		n, err := p.processSubscription(ctx, sub, today)
		created += n
		if err != nil {
			// Billing date was not advanced past the failed cycle, so the
			// next run retries from there.
			slog.ErrorContext(ctx, "Failed to bill subscription",
				"subscription_id", sub.ID,
				"user_id", sub.UserID,
				"error", err)
			continue
		}
	}
	return created, nil
}

func (p *BillingProcessor) processSubscription(ctx context.Context, sub core.Subscription, today core.Date) (int, error) {
	created := 0
	billingDate := sub.NextBillingDate

	for cycle := 0; !billingDate.After(today.Time) && cycle < maxCyclesPerRun; cycle++ {
		_, err := p.coll.Insert(ctx, core.TransactionInput{
			UserID:      sub.UserID,
			Type:        core.Expense,
			Amount:      sub.Amount,
			Description: sub.Name + " subscription",
			Category:    "Subscriptions",
			Date:        billingDate,
		})
		if err != nil {
			return created, fmt.Errorf("insert subscription charge: %w", err)
		}

		next := sub.NextAfter(billingDate)
		if err := p.subs.AdvanceBilling(ctx, sub.ID, next); err != nil {
			return created, fmt.Errorf("advance billing date: %w", err)
		}

		slog.InfoContext(ctx, "Subscription billed",
			"subscription_id", sub.ID,
			"user_id", sub.UserID,
			"amount_cents", sub.Amount.Cents,
			"billing_date", billingDate.ISO(),
			"next_billing_date", next.ISO())

		billingDate = next
		created++
	}
	return created, nil
}

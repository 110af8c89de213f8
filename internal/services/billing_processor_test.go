package services

import (
	"context"
	"errors"
	"testing"

	"ledgerly/internal/collection/memory"
	"ledgerly/internal/core"
)

type fakeSubscriptionSource struct {
	subs       []core.Subscription
	advanceErr error
}

func (f *fakeSubscriptionSource) DueSubscriptions(_ context.Context, cutoff core.Date) ([]core.Subscription, error) {
	var due []core.Subscription
	for _, s := range f.subs {
		if !s.NextBillingDate.After(cutoff.Time) {
			due = append(due, s)
		}
	}
	return due, nil
}

func (f *fakeSubscriptionSource) AdvanceBilling(_ context.Context, id string, next core.Date) error {
	if f.advanceErr != nil {
		return f.advanceErr
	}
	for i := range f.subs {
		if f.subs[i].ID == id {
			f.subs[i].NextBillingDate = next
		}
	}
	return nil
}

func monthlySub(id, userID string, cents int64, next core.Date) core.Subscription {
	return core.Subscription{
		ID:              id,
		UserID:          userID,
		Name:            "Streaming",
		Amount:          core.Money{Cents: cents},
		BillingCycle:    core.MonthlyBilling,
		NextBillingDate: next,
	}
}

func TestProcessDueCreatesExpense(t *testing.T) {
	subs := &fakeSubscriptionSource{subs: []core.Subscription{
		monthlySub("sub-1", "user-1", 999, core.NewDate(2024, 3, 1)),
	}}
	coll := memory.New()
	p := NewBillingProcessor(subs, coll)

	created, err := p.ProcessDue(context.Background(), core.NewDate(2024, 3, 1))
	if err != nil {
		t.Fatalf("ProcessDue() error = %v", err)
	}
	if created != 1 {
		t.Fatalf("created = %d, want 1", created)
	}

	txns, err := coll.QueryByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("QueryByUser() error = %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("len(txns) = %d, want 1", len(txns))
	}
	got := txns[0]
	if got.Type != core.Expense || got.Amount.Cents != 999 {
		t.Errorf("charge = %s %d, want expense 999", got.Type, got.Amount.Cents)
	}
	if got.Category != "Subscriptions" || got.Description != "Streaming subscription" {
		t.Errorf("charge labels = %q / %q", got.Description, got.Category)
	}
	if got.Date.ISO() != "2024-03-01" {
		t.Errorf("charge date = %s, want billing date", got.Date.ISO())
	}

	if next := subs.subs[0].NextBillingDate.ISO(); next != "2024-04-01" {
		t.Errorf("next billing date = %s, want 2024-04-01", next)
	}
}

func TestProcessDueCatchesUpMissedCycles(t *testing.T) {
	subs := &fakeSubscriptionSource{subs: []core.Subscription{
		monthlySub("sub-1", "user-1", 999, core.NewDate(2024, 1, 15)),
	}}
	coll := memory.New()
	p := NewBillingProcessor(subs, coll)

	created, err := p.ProcessDue(context.Background(), core.NewDate(2024, 3, 20))
	if err != nil {
		t.Fatalf("ProcessDue() error = %v", err)
	}
	// January, February and March cycles were all due.
	if created != 3 {
		t.Fatalf("created = %d, want 3", created)
	}
	if next := subs.subs[0].NextBillingDate.ISO(); next != "2024-04-15" {
		t.Errorf("next billing date = %s, want 2024-04-15", next)
	}
}

func TestProcessDueMonthEndBillsFebruary(t *testing.T) {
	subs := &fakeSubscriptionSource{subs: []core.Subscription{
		monthlySub("sub-1", "user-1", 999, core.NewDate(2025, 1, 31)),
	}}
	coll := memory.New()
	p := NewBillingProcessor(subs, coll)

	created, err := p.ProcessDue(context.Background(), core.NewDate(2025, 3, 5))
	if err != nil {
		t.Fatalf("ProcessDue() error = %v", err)
	}
	// Jan 31 then the clamped Feb 28; the short month is billed, not skipped.
	if created != 2 {
		t.Fatalf("created = %d, want 2", created)
	}

	txns, err := coll.QueryByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("QueryByUser() error = %v", err)
	}
	wantDates := []string{"2025-01-31", "2025-02-28"}
	for i, want := range wantDates {
		if got := txns[i].Date.ISO(); got != want {
			t.Errorf("charge %d date = %s, want %s", i, got, want)
		}
	}
	if next := subs.subs[0].NextBillingDate.ISO(); next != "2025-03-28" {
		t.Errorf("next billing date = %s, want 2025-03-28", next)
	}
}

func TestProcessDueSkipsFutureSubscriptions(t *testing.T) {
	subs := &fakeSubscriptionSource{subs: []core.Subscription{
		monthlySub("sub-1", "user-1", 999, core.NewDate(2024, 5, 1)),
	}}
	coll := memory.New()
	p := NewBillingProcessor(subs, coll)

	created, err := p.ProcessDue(context.Background(), core.NewDate(2024, 3, 1))
	if err != nil {
		t.Fatalf("ProcessDue() error = %v", err)
	}
	if created != 0 {
		t.Errorf("created = %d, want 0", created)
	}
}

func TestProcessDueYearlyCycle(t *testing.T) {
	subs := &fakeSubscriptionSource{subs: []core.Subscription{{
		ID:              "sub-1",
		UserID:          "user-1",
		Name:            "Hosting",
		Amount:          core.Money{Cents: 12000},
		BillingCycle:    core.YearlyBilling,
		NextBillingDate: core.NewDate(2024, 3, 1),
	}}}
	coll := memory.New()
	p := NewBillingProcessor(subs, coll)

	if _, err := p.ProcessDue(context.Background(), core.NewDate(2024, 3, 1)); err != nil {
		t.Fatalf("ProcessDue() error = %v", err)
	}
	if next := subs.subs[0].NextBillingDate.ISO(); next != "2025-03-01" {
		t.Errorf("next billing date = %s, want 2025-03-01", next)
	}
}

func TestProcessDueContinuesPastFailedSubscription(t *testing.T) {
	subs := &fakeSubscriptionSource{
		subs: []core.Subscription{
			monthlySub("sub-1", "user-1", 999, core.NewDate(2024, 3, 1)),
			monthlySub("sub-2", "user-2", 500, core.NewDate(2024, 3, 1)),
		},
	}
	coll := memory.New()
	coll.FailNextWrite(errors.New("remote unavailable"))
	p := NewBillingProcessor(subs, coll)

	created, err := p.ProcessDue(context.Background(), core.NewDate(2024, 3, 1))
	if err != nil {
		t.Fatalf("ProcessDue() error = %v", err)
	}
	// First insert failed, second subscription still billed.
	if created != 1 {
		t.Errorf("created = %d, want 1", created)
	}
	// Failed subscription keeps its billing date for the next run.
	if next := subs.subs[0].NextBillingDate.ISO(); next != "2024-03-01" {
		t.Errorf("failed sub billing date = %s, want unchanged", next)
	}
}

package core

import (
	"errors"
	"testing"
)

func scenarioSnapshot() Snapshot {
	return Aggregate([]Transaction{
		txn(Income, 500000),
		txn(Expense, 150000),
		txn(Expense, 20000),
	})
}

func TestReconcileIncomeRaise(t *testing.T) {
	snap := scenarioSnapshot()
	today := NewDate(2024, 3, 16)

	in, err := Reconcile(FieldIncome, Money{Cents: 600000}, snap, "u1", today)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if in == nil {
		t.Fatal("expected adjustment transaction")
	}
	if in.Type != Income || in.Amount.Cents != 100000 {
		t.Fatalf("expected +1000.00 income, got %+v", in)
	}
	if in.Description != "Manual Income Adjustment" || in.Category != "Adjustment" {
		t.Fatalf("unexpected labels: %+v", in)
	}
	if in.Date != today || in.UserID != "u1" {
		t.Fatalf("unexpected date/user: %+v", in)
	}
}

func TestReconcileClosesTheGap(t *testing.T) {
	ledger := []Transaction{
		txn(Income, 500000),
		txn(Expense, 150000),
		txn(Expense, 20000),
	}
	snap := Aggregate(ledger)

	// Raising the target adds income and the total climbs to it; lowering
	// adds an offsetting expense, so income stays put and savings absorbs
	// the difference instead.
	cases := []struct {
		target     int64
		wantIncome int64
	}{
		{600000, 600000},
		{400000, 500000},
		{0, 500000},
		{-5000, 500000},
		{500000, 500000},
	}
	for _, tc := range cases {
		in, err := Reconcile(FieldIncome, Money{Cents: tc.target}, snap, "u1", NewDate(2024, 3, 16))
		if err != nil {
			t.Fatalf("target %d: %v", tc.target, err)
		}
		if tc.target < snap.TotalIncome.Cents && (in == nil || in.Type != Expense) {
			t.Fatalf("target %d: expected expense adjustment, got %+v", tc.target, in)
		}

		next := ledger
		if in != nil {
			next = append(append([]Transaction(nil), ledger...), in.WithID("adj"))
		}
		got := Aggregate(next)
		if got.TotalIncome.Cents != tc.wantIncome {
			t.Fatalf("target %d: re-aggregated income %d, want %d", tc.target, got.TotalIncome.Cents, tc.wantIncome)
		}
		// Savings always moves by exactly the requested difference.
		wantSavings := snap.Savings.Cents + (tc.target - snap.TotalIncome.Cents)
		if got.Savings.Cents != wantSavings {
			t.Fatalf("target %d: re-aggregated savings %d, want %d", tc.target, got.Savings.Cents, wantSavings)
		}
	}
}

func TestReconcileSavings(t *testing.T) {
	snap := scenarioSnapshot() // savings = 3300.00
	in, err := Reconcile(FieldSavings, Money{Cents: 430000}, snap, "u1", NewDate(2024, 3, 16))
	if err != nil || in == nil {
		t.Fatalf("expected adjustment, got %+v err=%v", in, err)
	}
	if in.Type != Income || in.Amount.Cents != 100000 {
		t.Fatalf("expected +1000.00 income, got %+v", in)
	}
	if in.Description != "Manual Savings Adjustment" || in.Category != "Savings Adjustment" {
		t.Fatalf("unexpected labels: %+v", in)
	}

	// lowering savings yields an expense
	in, err = Reconcile(FieldSavings, Money{Cents: 300000}, snap, "u1", NewDate(2024, 3, 16))
	if err != nil || in == nil {
		t.Fatalf("expected adjustment, got %+v err=%v", in, err)
	}
	if in.Type != Expense || in.Amount.Cents != 30000 {
		t.Fatalf("expected -300.00 expense, got %+v", in)
	}
}

func TestReconcileNoOpOnEqualValue(t *testing.T) {
	snap := scenarioSnapshot()
	in, err := Reconcile(FieldIncome, snap.TotalIncome, snap, "u1", NewDate(2024, 3, 16))
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if in != nil {
		t.Fatalf("expected nil for equal target, got %+v", in)
	}
	in, err = Reconcile(FieldSavings, snap.Savings, snap, "u1", NewDate(2024, 3, 16))
	if err != nil || in != nil {
		t.Fatalf("expected nil no-op for savings, got %+v err=%v", in, err)
	}
}

func TestReconcileUnsupportedField(t *testing.T) {
	snap := scenarioSnapshot()
	if _, err := Reconcile(FieldExpenses, Money{Cents: 1}, snap, "u1", NewDate(2024, 3, 16)); !errors.Is(err, ErrUnsupportedField) {
		t.Fatalf("expected ErrUnsupportedField, got %v", err)
	}
	if _, err := Reconcile("net-worth", Money{Cents: 1}, snap, "u1", NewDate(2024, 3, 16)); !errors.Is(err, ErrUnsupportedField) {
		t.Fatalf("expected ErrUnsupportedField for unknown field, got %v", err)
	}
}

func TestReconcileRequiresUser(t *testing.T) {
	snap := scenarioSnapshot()
	if _, err := Reconcile(FieldIncome, Money{Cents: 1}, snap, "", NewDate(2024, 3, 16)); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

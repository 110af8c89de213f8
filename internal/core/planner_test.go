package core

import "testing"

func TestPlannedExpenseValidate(t *testing.T) {
	good := PlannedExpense{
		UserID:          "u1",
		Title:           "Insurance",
		Amount:          Money{Cents: 12000},
		Date:            NewDate(2024, 6, 1),
		RecurringMonths: 1,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []PlannedExpense{
		{Title: "x", Amount: Money{Cents: 1}, Date: NewDate(2024, 1, 1), RecurringMonths: 1},                // no user
		{UserID: "u1", Amount: Money{Cents: 1}, Date: NewDate(2024, 1, 1), RecurringMonths: 1},              // no title
		{UserID: "u1", Title: "x", Amount: Money{Cents: 0}, Date: NewDate(2024, 1, 1), RecurringMonths: 1},  // zero amount
		{UserID: "u1", Title: "x", Amount: Money{Cents: 1}, Date: NewDate(2024, 1, 1), RecurringMonths: 0},  // no months
		{UserID: "u1", Title: "x", Amount: Money{Cents: 1}, Date: NewDate(2024, 1, 1), RecurringMonths: 61}, // too many
	}
	for i, p := range bads {
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestPlannedExpenseOccurrences(t *testing.T) {
	p := PlannedExpense{
		UserID:          "u1",
		Title:           "Rent",
		Amount:          Money{Cents: 150000},
		Date:            NewDate(2024, 11, 15),
		RecurringMonths: 3,
	}
	dates := p.Occurrences()
	want := []string{"2024-11-15", "2024-12-15", "2025-01-15"}
	if len(dates) != len(want) {
		t.Fatalf("expected %d occurrences, got %d", len(want), len(dates))
	}
	for i, w := range want {
		if dates[i].ISO() != w {
			t.Fatalf("occurrence %d: expected %s, got %s", i, w, dates[i].ISO())
		}
	}
}

func TestPlannedExpenseOccurrencesMonthEnd(t *testing.T) {
	p := PlannedExpense{
		UserID:          "u1",
		Title:           "Rent",
		Amount:          Money{Cents: 150000},
		Date:            NewDate(2025, 1, 31),
		RecurringMonths: 4,
	}
	dates := p.Occurrences()
	// Anchored to day 31: the short months clamp, the long ones return to it.
	want := []string{"2025-01-31", "2025-02-28", "2025-03-31", "2025-04-30"}
	if len(dates) != len(want) {
		t.Fatalf("expected %d occurrences, got %d", len(want), len(dates))
	}
	for i, w := range want {
		if dates[i].ISO() != w {
			t.Fatalf("occurrence %d: expected %s, got %s", i, w, dates[i].ISO())
		}
	}

	p.Date = NewDate(2024, 1, 31)
	p.RecurringMonths = 2
	if got := p.Occurrences()[1]; got.ISO() != "2024-02-29" {
		t.Fatalf("leap February: expected 2024-02-29, got %s", got.ISO())
	}
}

func TestSubscriptionValidateAndNextAfter(t *testing.T) {
	sub := Subscription{
		UserID:          "u1",
		Name:            "Streaming",
		Amount:          Money{Cents: 999},
		BillingCycle:    MonthlyBilling,
		NextBillingDate: NewDate(2024, 1, 31),
	}
	if err := sub.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if got := sub.NextAfter(sub.NextBillingDate); got.ISO() != "2024-02-29" {
		// Jan 31 + 1 month clamps to the short month instead of rolling
		// into March.
		t.Fatalf("monthly advance: got %s", got.ISO())
	}
	if got := sub.NextAfter(NewDate(2023, 1, 31)); got.ISO() != "2023-02-28" {
		t.Fatalf("monthly advance, non-leap: got %s", got.ISO())
	}
	if got := sub.NextAfter(NewDate(2024, 4, 15)); got.ISO() != "2024-05-15" {
		t.Fatalf("monthly advance, plain date: got %s", got.ISO())
	}

	sub.BillingCycle = YearlyBilling
	if got := sub.NextAfter(NewDate(2024, 2, 29)); got.ISO() != "2025-02-28" {
		t.Fatalf("yearly advance over leap day: got %s", got.ISO())
	}

	sub.BillingCycle = "weekly"
	if err := sub.Validate(); err == nil {
		t.Fatal("expected error for invalid billing cycle")
	}
}

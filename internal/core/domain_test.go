package core

import (
	"testing"
	"time"
)

func TestNormalizeType(t *testing.T) {
	cases := []struct {
		in   string
		want TransactionType
	}{
		{"income", Income},
		{"expense", Expense},
		{"Income", Expense}, // only the exact tag counts
		{"transfer", Expense},
		{"", Expense},
	}
	for _, tc := range cases {
		if got := NormalizeType(tc.in); got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestParseDateAndISO(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.ISO() != "2024-03-15" {
		t.Fatalf("round trip mismatch: %q", d.ISO())
	}
	for _, bad := range []string{"", "15/03/2024", "2024-13-01", "yesterday"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
}

func TestTransactionInputValidate(t *testing.T) {
	good := TransactionInput{
		Description: "Salary",
		Amount:      Money{Cents: 500000},
		Type:        Income,
		Category:    "Income",
		Date:        NewDate(2024, 3, 15),
		UserID:      "u1",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []TransactionInput{
		{Description: "x", Amount: Money{Cents: 1}, Type: Income, Date: NewDate(2024, 1, 1)},               // no user
		{Description: "", Amount: Money{Cents: 1}, Type: Income, Date: NewDate(2024, 1, 1), UserID: "u1"},  // no description
		{Description: "x", Amount: Money{Cents: 0}, Type: Income, Date: NewDate(2024, 1, 1), UserID: "u1"}, // zero amount
		{Description: "x", Amount: Money{Cents: 1}, Type: "other", Date: NewDate(2024, 1, 1), UserID: "u1"},
		{Description: "x", Amount: Money{Cents: 1}, Type: Income, UserID: "u1"}, // zero date
	}
	for i, in := range bads {
		if err := in.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestNormalizedDefaults(t *testing.T) {
	now := time.Date(2024, 3, 15, 20, 30, 0, 0, time.UTC)
	in := TransactionInput{
		Description: "  Rent  ",
		Amount:      Money{Cents: 150000},
		Type:        "weird",
		Category:    " Housing ",
		UserID:      "u1",
	}
	got := in.Normalized(now)
	if got.Type != Expense {
		t.Fatalf("expected type coerced to expense, got %q", got.Type)
	}
	if got.Description != "Rent" || got.Category != "Housing" {
		t.Fatalf("expected trimmed fields, got %q/%q", got.Description, got.Category)
	}
	if got.Date.ISO() != "2024-03-15" {
		t.Fatalf("expected date defaulted to today, got %q", got.Date.ISO())
	}
}

func TestWithIDInputRoundTrip(t *testing.T) {
	in := TransactionInput{
		Description: "Groceries",
		Amount:      Money{Cents: 20000},
		Type:        Expense,
		Category:    "Food",
		Date:        NewDate(2024, 3, 13),
		UserID:      "u1",
	}
	txn := in.WithID("abc")
	if txn.ID != "abc" {
		t.Fatalf("expected id set, got %q", txn.ID)
	}
	if txn.Input() != in {
		t.Fatalf("input round trip mismatch: %+v", txn.Input())
	}
}

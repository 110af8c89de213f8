package memory

import (
	"context"
	"errors"
	"testing"

	"ledgerly/internal/core"
)

func TestAppendAndRows(t *testing.T) {
	s := New()
	ref, err := s.Append(context.Background(), core.Transaction{
		ID:          "t1",
		UserID:      "user-1",
		Type:        core.Expense,
		Amount:      core.Money{Cents: 1500},
		Description: "Coffee",
		Date:        core.NewDate(2024, 3, 15),
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}
	if rows := s.Rows(); len(rows) != 1 || rows[0].ID != "t1" {
		t.Errorf("Rows() = %+v", rows)
	}
}

func TestFailWith(t *testing.T) {
	s := New()
	boom := errors.New("sheet unavailable")
	s.FailWith(boom)
	if _, err := s.Append(context.Background(), core.Transaction{}); !errors.Is(err, boom) {
		t.Errorf("Append() error = %v, want injected failure", err)
	}
	s.FailWith(nil)
	if _, err := s.Append(context.Background(), core.Transaction{}); err != nil {
		t.Errorf("Append() error = %v after reset, want nil", err)
	}
}

package memory

import (
	"context"
	"errors"
	"testing"

	"ledgerly/internal/core"
)

func input(user string, cents int64) core.TransactionInput {
	return core.TransactionInput{
		Description: "t",
		Amount:      core.Money{Cents: cents},
		Type:        core.Expense,
		Category:    "Misc",
		Date:        core.NewDate(2024, 3, 15),
		UserID:      user,
	}
}

func TestInsertAssignsUniqueIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	a, err := s.Insert(ctx, input("u1", 100))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	b, err := s.Insert(ctx, input("u1", 200))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if a.ID == "" || b.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %q and %q", a.ID, b.ID)
	}
}

func TestQueryByUserIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.Insert(ctx, input("u1", 100)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := s.Insert(ctx, input("u2", 200)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.QueryByUser(ctx, "u1")
	if err != nil || len(got) != 1 || got[0].UserID != "u1" {
		t.Fatalf("expected only u1 records, got %v err=%v", got, err)
	}

	// no user, no data
	got, err = s.QueryByUser(ctx, "")
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty set for anonymous query, got %v err=%v", got, err)
	}
}

func TestUpdateMissingID(t *testing.T) {
	s := New()
	if _, err := s.Update(context.Background(), "nope", input("u1", 100)); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, _ := s.Insert(ctx, input("u1", 100))
	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("second delete should be a no-op, got %v", err)
	}
	got, _ := s.QueryByUser(ctx, "u1")
	if len(got) != 0 {
		t.Fatalf("expected empty ledger, got %v", got)
	}
}

func TestFailNextWriteIsOneShot(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")
	s.FailNextWrite(boom)

	if _, err := s.Insert(ctx, input("u1", 100)); !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	if _, err := s.Insert(ctx, input("u1", 100)); err != nil {
		t.Fatalf("expected recovery after one failure, got %v", err)
	}
}

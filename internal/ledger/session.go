// Package ledger holds the per-user transaction mirror and the mutation
// surface the API exposes. The remote collection is the source of truth;
// the session keeps an in-memory mirror for rendering and recomputes the
// aggregate snapshot on demand, never storing it.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ledgerly/internal/collection"
	"ledgerly/internal/core"
)

// Session owns one authenticated user's ledger mirror. It is created on
// login, discarded on logout, and rebuilt fresh on the next login; financial
// data is never cached across sessions.
type Session struct {
	mu     sync.Mutex
	coll   collection.Collection
	userID string
	txns   []core.Transaction
	closed bool
}

func NewSession(coll collection.Collection, userID string) *Session {
	return &Session{coll: coll, userID: userID}
}

func (s *Session) UserID() string {
	return s.userID
}

// Load fetches the user's transactions from the remote collection and
// installs them as the mirror. An empty userID yields the empty set without
// touching the remote store. A load that resolves after Close discards its
// result so a superseded session can never install another user's data.
func (s *Session) Load(ctx context.Context) error {
	if s.userID == "" {
		return nil
	}

	fetched, err := s.coll.QueryByUser(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("%w: query transactions: %v", core.ErrPersistence, err)
	}

	mirror := make([]core.Transaction, 0, len(fetched))
	for _, t := range fetched {
		mirror = append(mirror, normalizeRecord(t))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		slog.DebugContext(ctx, "Discarding stale load result", "user_id", s.userID, "count", len(mirror))
		return nil
	}
	s.txns = mirror
	return nil
}

// normalizeRecord is the single coercion point for raw external records:
// after it, the rest of the core can assume the data model invariants hold.
func normalizeRecord(t core.Transaction) core.Transaction {
	t.Type = core.NormalizeType(string(t.Type))
	t.Amount = t.Amount.Abs()
	if t.Date.IsZero() {
		t.Date = core.Today()
	}
	return t
}

// Transactions returns a copy of the mirror in display order.
func (s *Session) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.txns))
	copy(out, s.txns)
	return out
}

// Snapshot derives the aggregate totals from the current mirror. It is
// recomputed on every call; nothing is cached between mutations.
func (s *Session) Snapshot() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Aggregate(s.txns)
}

// Add persists a new transaction and appends it to the mirror. The write is
// two-phase: the remote insert happens first and the mirror is only touched
// on success, so a persistence failure leaves the mirror exactly as it was.
func (s *Session) Add(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if s.userID == "" {
		return core.Transaction{}, core.ErrUnauthenticated
	}
	in.UserID = s.userID
	in = in.Normalized(time.Now())
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.coll.Insert(ctx, in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: insert transaction: %v", core.ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns = append(s.txns, created)
	return created, nil
}

// Replace overwrites the transaction wholesale, keeping its id and display
// position. Fails with core.ErrNotFound when the id is not in the mirror.
func (s *Session) Replace(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	if s.userID == "" {
		return core.Transaction{}, core.ErrUnauthenticated
	}
	in.UserID = s.userID
	in = in.Normalized(time.Now())
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	s.mu.Unlock()
	if idx < 0 {
		return core.Transaction{}, core.ErrNotFound
	}

	updated, err := s.coll.Update(ctx, id, in)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Transaction{}, core.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("%w: update transaction %s: %v", core.ErrPersistence, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The mirror may have been reordered while the remote write was in
	// flight; locate the record again before committing.
	if idx = s.indexOf(id); idx >= 0 {
		s.txns[idx] = updated
	}
	return updated, nil
}

// Remove deletes by id. Removal is idempotent: an absent id is a successful
// no-op and the mirror stays byte-for-byte unchanged.
func (s *Session) Remove(ctx context.Context, id string) error {
	if s.userID == "" {
		return core.ErrUnauthenticated
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	s.mu.Unlock()
	if idx < 0 {
		return nil
	}

	if err := s.coll.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: delete transaction %s: %v", core.ErrPersistence, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if idx = s.indexOf(id); idx >= 0 {
		s.txns = append(s.txns[:idx], s.txns[idx+1:]...)
	}
	return nil
}

// Reorder moves a transaction between display positions. It is local-only
// state: aggregation is order-independent and the remote store never sees
// display order. Out-of-range indices fail without corrupting the list.
func (s *Session) Reorder(from, to int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.txns)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, core.ErrIndexOutOfRange
	}
	if from != to {
		moved := s.txns[from]
		s.txns = append(s.txns[:from], s.txns[from+1:]...)
		s.txns = append(s.txns[:to], append([]core.Transaction{moved}, s.txns[to:]...)...)
	}
	out := make([]core.Transaction, n)
	copy(out, s.txns)
	return out, nil
}

// SubmitTransaction is the form-facing entry point: an empty editID adds,
// a present one replaces that record.
func (s *Session) SubmitTransaction(ctx context.Context, in core.TransactionInput, editID string) (core.Transaction, error) {
	if editID == "" {
		return s.Add(ctx, in)
	}
	return s.Replace(ctx, editID, in)
}

// EditAggregate reconciles a direct edit of a derived total into an
// adjustment transaction and adds it to the ledger. Returns nil when the
// target already matches and nothing was inserted.
func (s *Session) EditAggregate(ctx context.Context, field core.AggregateField, target core.Money) (*core.Transaction, error) {
	in, err := core.Reconcile(field, target, s.Snapshot(), s.userID, core.Today())
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, nil
	}
	created, err := s.Add(ctx, *in)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Aggregate edit reconciled",
		"user_id", s.userID,
		"aggregate_field", string(field),
		"transaction_id", created.ID,
		"amount_cents", created.Amount.Cents,
		"type", string(created.Type))
	return &created, nil
}

// Close discards the mirror. Any in-flight load resolving afterwards is
// dropped.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.txns = nil
}

// indexOf must be called with s.mu held.
func (s *Session) indexOf(id string) int {
	for i, t := range s.txns {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Package memory provides an in-memory collection backend, used for local
// development and as the deterministic double in tests. Write failures can
// be injected to exercise the session's rollback path.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"ledgerly/internal/collection"
	"ledgerly/internal/core"
)

type Store struct {
	mu    sync.Mutex
	docs  []core.Transaction
	plans []core.PlannedExpense
	subs  []core.Subscription

	// failNext is returned by the next Insert/Update/Delete, then cleared.
	failNext error
}

var (
	_ collection.Collection        = (*Store)(nil)
	_ collection.PlannerStore      = (*Store)(nil)
	_ collection.SubscriptionStore = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// FailNextWrite makes the next Insert/Update/Delete return err, then
// clears itself.
func (s *Store) FailNextWrite(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

func (s *Store) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *Store) QueryByUser(_ context.Context, userID string) ([]core.Transaction, error) {
	if userID == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.docs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) Insert(_ context.Context, in core.TransactionInput) (core.Transaction, error) {
	in = in.Normalized(time.Now())
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return core.Transaction{}, err
	}
	t := in.WithID(uuid.NewString())
	s.docs = append(s.docs, t)
	return t, nil
}

func (s *Store) Update(_ context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	in = in.Normalized(time.Now())
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return core.Transaction{}, err
	}
	for i, t := range s.docs {
		if t.ID == id {
			s.docs[i] = in.WithID(id)
			return s.docs[i], nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	for i, t := range s.docs {
		if t.ID == id {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) PlansByUser(_ context.Context, userID string) ([]core.PlannedExpense, error) {
	if userID == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.PlannedExpense
	for _, p := range s.plans {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) InsertPlan(_ context.Context, p core.PlannedExpense) (core.PlannedExpense, error) {
	if err := p.Validate(); err != nil {
		return core.PlannedExpense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.NewString()
	s.plans = append(s.plans, p)
	return p, nil
}

func (s *Store) DeletePlan(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.plans {
		if p.ID == id && p.UserID == userID {
			s.plans = append(s.plans[:i], s.plans[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) SubscriptionsByUser(_ context.Context, userID string) ([]core.Subscription, error) {
	if userID == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Subscription
	for _, sub := range s.subs {
		if sub.UserID == userID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *Store) InsertSubscription(_ context.Context, sub core.Subscription) (core.Subscription, error) {
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sub.ID = uuid.NewString()
	s.subs = append(s.subs, sub)
	return sub, nil
}

func (s *Store) DeleteSubscription(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.ID == id && sub.UserID == userID {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return nil
		}
	}
	return nil
}

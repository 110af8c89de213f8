// Package memory is an in-process sheet stand-in for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"ledgerly/internal/core"
)

type Store struct {
	mu      sync.Mutex
	items   []core.Transaction
	failErr error
}

func New() *Store {
	return &Store{}
}

// FailWith makes every subsequent Append fail with err; nil restores normal
// operation.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Append stores the transaction and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, t core.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return "", s.failErr
	}
	s.items = append(s.items, t)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Rows returns the appended transactions in export order.
func (s *Store) Rows() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	return out
}

package session

import (
	"context"
	"sync"
	"time"

	"feedmart-pos/internal/cart"
)

type memoryLock struct {
	holder  string
	expires time.Time
}

// MemoryStore keeps sessions in process. It serves single-terminal setups
// without redis and tests.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[int64]cart.State
	locks map[int64]memoryLock
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts: make(map[int64]cart.State),
		locks: make(map[int64]memoryLock),
		now:   time.Now,
	}
}

func (s *MemoryStore) Load(ctx context.Context, cashierID int64) (cart.State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.carts[cashierID]
	return st, ok, nil
}

func (s *MemoryStore) Save(ctx context.Context, cashierID int64, state cart.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cashierID] = state
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, cashierID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, cashierID)
	return nil
}

func (s *MemoryStore) Lock(ctx context.Context, cashierID int64, attemptID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.locks[cashierID]; ok && s.now().Before(l.expires) {
		return false, nil
	}
	s.locks[cashierID] = memoryLock{holder: attemptID, expires: s.now().Add(ttl)}
	return true, nil
}

func (s *MemoryStore) Unlock(ctx context.Context, cashierID int64, attemptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.locks[cashierID]; ok && l.holder == attemptID {
		delete(s.locks, cashierID)
	}
	return nil
}

func (s *MemoryStore) LockHolder(ctx context.Context, cashierID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[cashierID]
	if !ok || !s.now().Before(l.expires) {
		return "", nil
	}
	return l.holder, nil
}

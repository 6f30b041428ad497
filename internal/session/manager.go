package session

import (
	"context"
	"sync"
	"time"

	"feedmart-pos/internal/cart"
)

// Manager serializes every cart operation of one cashier. Requests from
// different cashiers never block each other.
type Manager struct {
	store Store

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, locks: make(map[int64]*sync.Mutex)}
}

func (m *Manager) Store() Store {
	return m.store
}

func (m *Manager) cashierLock(cashierID int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[cashierID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[cashierID] = l
	}
	return l
}

func (m *Manager) load(ctx context.Context, cashierID int64) (*cart.Cart, error) {
	state, ok, err := m.store.Load(ctx, cashierID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return cart.New(), nil
	}
	return cart.Restore(state), nil
}

// Load returns a copy of the cashier's current cart. Changes to it are not
// persisted.
func (m *Manager) Load(ctx context.Context, cashierID int64) (*cart.Cart, error) {
	l := m.cashierLock(cashierID)
	l.Lock()
	defer l.Unlock()
	return m.load(ctx, cashierID)
}

// Mutate applies fn to the cashier's cart and saves the result. It refuses
// with ErrCheckoutInProgress while a checkout holds the cart. When fn
// returns an error nothing is saved.
func (m *Manager) Mutate(ctx context.Context, cashierID int64, fn func(*cart.Cart) error) (*cart.Cart, error) {
	l := m.cashierLock(cashierID)
	l.Lock()
	defer l.Unlock()

	holder, err := m.store.LockHolder(ctx, cashierID)
	if err != nil {
		return nil, err
	}
	if holder != "" {
		return nil, ErrCheckoutInProgress
	}

	c, err := m.load(ctx, cashierID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, cashierID, c.Snapshot()); err != nil {
		return nil, err
	}
	return c, nil
}

// WithCheckout claims the checkout lock for attemptID and runs fn with the
// cart as it was when the lock was taken. While the lock is held Mutate
// refuses, so the submitted cart cannot drift from what fn sees. reset clears
// the stored cart once the sale is confirmed.
func (m *Manager) WithCheckout(ctx context.Context, cashierID int64, attemptID string, ttl time.Duration, fn func(c *cart.Cart, reset func() error) error) error {
	l := m.cashierLock(cashierID)
	l.Lock()
	ok, err := m.store.Lock(ctx, cashierID, attemptID, ttl)
	if err != nil {
		l.Unlock()
		return err
	}
	if !ok {
		l.Unlock()
		return ErrCheckoutInProgress
	}
	c, err := m.load(ctx, cashierID)
	l.Unlock()

	// a fresh context so a cancelled request still frees the cart
	defer m.store.Unlock(context.Background(), cashierID, attemptID)
	if err != nil {
		return err
	}

	reset := func() error {
		l.Lock()
		defer l.Unlock()
		c.Reset()
		return m.store.Delete(context.Background(), cashierID)
	}
	return fn(c, reset)
}

package session

import (
	"context"
	"errors"
	"time"

	"feedmart-pos/internal/cart"
)

var ErrCheckoutInProgress = errors.New("checkout in progress")

// Store parks each cashier's cart between requests and holds the checkout
// lock that freezes the cart while a sale is being submitted.
type Store interface {
	Load(ctx context.Context, cashierID int64) (cart.State, bool, error)
	Save(ctx context.Context, cashierID int64, state cart.State) error
	Delete(ctx context.Context, cashierID int64) error

	// Lock claims the checkout lock for attemptID. It reports false when
	// another attempt already holds it.
	Lock(ctx context.Context, cashierID int64, attemptID string, ttl time.Duration) (bool, error)
	// Unlock releases the lock only if attemptID still holds it.
	Unlock(ctx context.Context, cashierID int64, attemptID string) error
	LockHolder(ctx context.Context, cashierID int64) (string, error)
}

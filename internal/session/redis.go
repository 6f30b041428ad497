package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"feedmart-pos/internal/cart"

	"github.com/go-redis/redis/v8"
)

const (
	CART_KEY_PREFIX     = "pos:cart:"
	CHECKOUT_KEY_PREFIX = "pos:checkout:"
	CART_TTL            = 12 * time.Hour
)

// releaseScript deletes the lock only when the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = CART_TTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func cartKey(cashierID int64) string {
	return fmt.Sprintf("%s%d", CART_KEY_PREFIX, cashierID)
}

func checkoutKey(cashierID int64) string {
	return fmt.Sprintf("%s%d", CHECKOUT_KEY_PREFIX, cashierID)
}

func (s *RedisStore) Load(ctx context.Context, cashierID int64) (cart.State, bool, error) {
	raw, err := s.client.Get(ctx, cartKey(cashierID)).Bytes()
	if err == redis.Nil {
		return cart.State{}, false, nil
	}
	if err != nil {
		return cart.State{}, false, fmt.Errorf("load cart %d: %w", cashierID, err)
	}

	var state cart.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return cart.State{}, false, fmt.Errorf("decode cart %d: %w", cashierID, err)
	}
	return state, true, nil
}

func (s *RedisStore) Save(ctx context.Context, cashierID int64, state cart.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode cart %d: %w", cashierID, err)
	}
	if err := s.client.Set(ctx, cartKey(cashierID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save cart %d: %w", cashierID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, cashierID int64) error {
	return s.client.Del(ctx, cartKey(cashierID)).Err()
}

func (s *RedisStore) Lock(ctx context.Context, cashierID int64, attemptID string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, checkoutKey(cashierID), attemptID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("lock checkout %d: %w", cashierID, err)
	}
	return ok, nil
}

func (s *RedisStore) Unlock(ctx context.Context, cashierID int64, attemptID string) error {
	if err := releaseScript.Run(ctx, s.client, []string{checkoutKey(cashierID)}, attemptID).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("unlock checkout %d: %w", cashierID, err)
	}
	return nil
}

func (s *RedisStore) LockHolder(ctx context.Context, cashierID int64) (string, error) {
	holder, err := s.client.Get(ctx, checkoutKey(cashierID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read checkout lock %d: %w", cashierID, err)
	}
	return holder, nil
}

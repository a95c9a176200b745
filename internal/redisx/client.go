package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// JSONCache stores values as JSON strings with a TTL.
type JSONCache struct {
	RDB *redis.Client
}

// GetJSON reports false without error on a cache miss.
func (c JSONCache) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	b, err := c.RDB.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c JSONCache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.RDB.Set(ctx, key, b, ttl).Err()
}

func (c JSONCache) Delete(ctx context.Context, keys ...string) error {
	return c.RDB.Del(ctx, keys...).Err()
}

// Dedup marks ids as processed using SETNX so concurrent workers agree on a single winner.
type Dedup struct {
	RDB     *redis.Client
	Service string
}

// FirstSeen returns true the first time key is observed within TTLDedup.
func (d Dedup) FirstSeen(ctx context.Context, id string) (bool, error) {
	return d.RDB.SetNX(ctx, dedupKey(d.Service, id), "1", TTLDedup).Result()
}

// Forget drops a marker so a failed message can be retried.
func (d Dedup) Forget(ctx context.Context, id string) error {
	return d.RDB.Del(ctx, dedupKey(d.Service, id)).Err()
}

// Idempotency remembers which order a checkout idempotency key produced.
type Idempotency struct {
	RDB *redis.Client
}

// Reserve claims the key with a pending marker. When the key is already taken it
// returns the stored value instead: IdemPending while that checkout runs, else the order id.
func (i Idempotency) Reserve(ctx context.Context, userID, key string) (string, bool, error) {
	k := CheckoutKey(userID, key)
	ok, err := i.RDB.SetNX(ctx, k, IdemPending, TTLIdemPending).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", true, nil
	}
	v, err := i.RDB.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; let the caller retry
		return IdemPending, false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, false, nil
}

// Remember replaces the pending marker with the placed order id.
func (i Idempotency) Remember(ctx context.Context, userID, key, orderID string) error {
	return i.RDB.Set(ctx, CheckoutKey(userID, key), orderID, TTLIdempotency).Err()
}

// Release frees a reserved key after a failed checkout so the client may retry it.
func (i Idempotency) Release(ctx context.Context, userID, key string) error {
	return i.RDB.Del(ctx, CheckoutKey(userID, key)).Err()
}

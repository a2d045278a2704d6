// Package dedup remembers processed provider events so redeliveries short-circuit.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyFormat is dedup:{service}:{event id}.
const keyFormat = "dedup:%s:%s"

// DefaultTTL outlives the provider's retry window.
const DefaultTTL = 72 * time.Hour

type Deduper interface {
	// Claim reports false when id was already claimed.
	Claim(ctx context.Context, id string) (bool, error)
	// Release forgets id so a failed event can be retried.
	Release(ctx context.Context, id string) error
}

type Redis struct {
	rdb     *redis.Client
	service string
	ttl     time.Duration
}

func NewRedis(addr, service string) *Redis {
	return &Redis{
		rdb:     redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 2 * time.Second}),
		service: service,
		ttl:     DefaultTTL,
	}
}

func (r *Redis) Key(id string) string {
	return fmt.Sprintf(keyFormat, r.service, id)
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) Claim(ctx context.Context, id string) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, r.Key(id), time.Now().Unix(), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim event %s: %w", id, err)
	}
	return ok, nil
}

func (r *Redis) Release(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, r.Key(id)).Err()
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

// Nop claims everything; order state alone keeps confirmation idempotent.
type Nop struct{}

func (Nop) Claim(context.Context, string) (bool, error) { return true, nil }
func (Nop) Release(context.Context, string) error       { return nil }

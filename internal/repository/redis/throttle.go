package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/port"
)

// ThrottleRepository persists login throttle state in Redis: a windowed
// failure counter plus a lock key per account, and a sliding-window sorted
// set per origin address. INCR and SET NX keep concurrent updates atomic
// per key without any cross-key locking.
type ThrottleRepository struct {
	client *redis.Client
	prefix string
}

// NewThrottleRepository constructs a repository using the provided Redis client.
func NewThrottleRepository(client *redis.Client, prefix string) *ThrottleRepository {
	return &ThrottleRepository{client: client, prefix: prefix}
}

// IncrementFailures atomically bumps the account failure counter and applies
// the window TTL when the counter is first created.
func (r *ThrottleRepository) IncrementFailures(ctx context.Context, email string, window time.Duration) (int, error) {
	if window <= 0 {
		return 0, errors.New("window must be positive")
	}

	key := r.key("failures", email)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr: %w", err)
	}

	// NX so later failures inside the window do not push the expiry out.
	if err := r.client.ExpireNX(ctx, key, window).Err(); err != nil {
		return 0, fmt.Errorf("redis expire: %w", err)
	}

	return int(count), nil
}

// ResetFailures clears the account failure counter.
func (r *ThrottleRepository) ResetFailures(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, r.key("failures", email)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// AcquireLock sets the account lock key if absent. Returns true when this
// call created the lock, so exactly one concurrent caller emits the lockout
// audit event.
func (r *ThrottleRepository) AcquireLock(ctx context.Context, email string, duration time.Duration) (bool, error) {
	if duration <= 0 {
		return false, errors.New("duration must be positive")
	}

	created, err := r.client.SetNX(ctx, r.key("lock", email), "1", duration).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}

	return created, nil
}

// LockRemaining reports whether the account lock is held and its remaining TTL.
func (r *ThrottleRepository) LockRemaining(ctx context.Context, email string) (bool, time.Duration, error) {
	ttl, err := r.client.PTTL(ctx, r.key("lock", email)).Result()
	if err != nil {
		return false, 0, fmt.Errorf("redis pttl: %w", err)
	}

	if ttl <= 0 {
		return false, 0, nil
	}

	return true, ttl, nil
}

// RecordAddressAttempt stores the attempt timestamp in the address window.
// The member carries a random suffix so concurrent attempts landing on the
// same nanosecond still count separately.
func (r *ThrottleRepository) RecordAddressAttempt(ctx context.Context, address string, at time.Time) error {
	key := r.key("ip", address)
	member := redis.Z{
		Score:  float64(at.UnixNano()),
		Member: fmt.Sprintf("%d:%s", at.UnixNano(), uuid.NewString()),
	}

	pipe := r.client.Pipeline()
	pipe.ZAdd(ctx, key, member)
	pipe.Expire(ctx, key, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis zadd: %w", err)
	}

	return nil
}

// CountAddressAttempts trims entries older than the window and returns how
// many attempts remain inside it.
func (r *ThrottleRepository) CountAddressAttempts(ctx context.Context, address string, window time.Duration, reference time.Time) (int, error) {
	if window <= 0 {
		return 0, errors.New("window must be positive")
	}

	key := r.key("ip", address)
	threshold := fmt.Sprintf("%d", reference.Add(-window).UnixNano())

	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", threshold)
	card := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis zcard: %w", err)
	}

	return int(card.Val()), nil
}

func (r *ThrottleRepository) key(kind, identifier string) string {
	if r.prefix == "" {
		return fmt.Sprintf("%s:%s", kind, identifier)
	}
	return fmt.Sprintf("%s:%s:%s", r.prefix, kind, identifier)
}

var _ port.ThrottleStore = (*ThrottleRepository)(nil)

package port

import (
	"context"
	"time"
)

// ThrottleStore holds per-account failure counters and per-address attempt
// windows. Increment operations must be atomic per key; two concurrent
// failures may never observe the same count.
type ThrottleStore interface {
	// IncrementFailures bumps the windowed failure counter for the account key
	// and returns the new count. The window TTL is applied on first increment.
	IncrementFailures(ctx context.Context, email string, window time.Duration) (int, error)
	// ResetFailures clears the account failure counter.
	ResetFailures(ctx context.Context, email string) error
	// AcquireLock sets the account lock if not already held. Returns true when
	// this call created the lock.
	AcquireLock(ctx context.Context, email string, duration time.Duration) (bool, error)
	// LockRemaining reports whether the account is locked and for how long.
	LockRemaining(ctx context.Context, email string) (bool, time.Duration, error)

	// RecordAddressAttempt stores an attempt timestamp for the address window.
	RecordAddressAttempt(ctx context.Context, address string, at time.Time) error
	// CountAddressAttempts trims entries older than the window and returns how
	// many attempts remain inside it.
	CountAddressAttempts(ctx context.Context, address string, window time.Duration, reference time.Time) (int, error)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/domain"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/port"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/config"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/logger"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/telemetry"
)

var (
	// ErrAccountThrottled indicates the account is temporarily locked after
	// repeated failures. Attempts during the lock window are denied
	// regardless of credential correctness.
	ErrAccountThrottled = errors.New("account temporarily locked, try again later")
	// ErrRateLimited indicates too many attempts from the origin address.
	ErrRateLimited = errors.New("too many requests, slow down")
)

// LoginThrottle tracks failed attempts per account and attempts per origin
// address, and decides lockout and rate-limit outcomes. Counter updates are
// atomic per key in the backing store; unrelated keys never contend.
type LoginThrottle struct {
	store   port.ThrottleStore
	audit   *AuditService
	metrics *telemetry.AuthMetrics
	cfg     config.ThrottleSettings
	logger  *zap.Logger
	now     func() time.Time
}

// NewLoginThrottle constructs the throttle with the supplied configuration.
func NewLoginThrottle(store port.ThrottleStore, audit *AuditService, metrics *telemetry.AuthMetrics, cfg config.ThrottleSettings, log *zap.Logger) *LoginThrottle {
	if log == nil {
		log = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NopAuthMetrics()
	}
	applyThrottleDefaults(&cfg)

	return &LoginThrottle{
		store:   store,
		audit:   audit,
		metrics: metrics,
		cfg:     cfg,
		logger:  log,
		now:     time.Now,
	}
}

func applyThrottleDefaults(cfg *config.ThrottleSettings) {
	if cfg.AccountMaxFailures <= 0 {
		cfg.AccountMaxFailures = 3
	}
	if cfg.AccountWindow <= 0 {
		cfg.AccountWindow = 15 * time.Minute
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 30 * time.Minute
	}
	if cfg.AddressMaxAttempts <= 0 {
		cfg.AddressMaxAttempts = 10
	}
	if cfg.AddressWindow <= 0 {
		cfg.AddressWindow = time.Minute
	}
}

// WithClock injects a custom clock, primarily for tests.
func (t *LoginThrottle) WithClock(now func() time.Time) *LoginThrottle {
	if now != nil {
		t.now = now
	}
	return t
}

// Check is consulted before credential work. It records the address attempt
// (every attempt counts toward the address window, successful or not) and
// denies when either the account lock or the address limit applies.
func (t *LoginThrottle) Check(ctx context.Context, email, address string) (domain.ThrottleDecision, error) {
	email = strings.ToLower(email)
	now := t.now()

	// Every attempt counts toward the address window, even ones denied by
	// an account lock below.
	if err := t.store.RecordAddressAttempt(ctx, address, now); err != nil {
		return domain.ThrottleDecision{}, fmt.Errorf("record address attempt: %w", err)
	}

	locked, remaining, err := t.store.LockRemaining(ctx, email)
	if err != nil {
		return domain.ThrottleDecision{}, fmt.Errorf("check account lock: %w", err)
	}
	if locked {
		return domain.ThrottleDecision{
			Reason:     domain.ThrottleDenyAccountLocked,
			RetryAfter: remaining,
		}, nil
	}

	count, err := t.store.CountAddressAttempts(ctx, address, t.cfg.AddressWindow, now)
	if err != nil {
		return domain.ThrottleDecision{}, fmt.Errorf("count address attempts: %w", err)
	}

	if count > t.cfg.AddressMaxAttempts {
		t.metrics.RateLimited.Inc()
		// Only the transition emits an audit entry, not every denied attempt.
		if count == t.cfg.AddressMaxAttempts+1 {
			trigger := fmt.Sprintf("%d_attempts_per_address_per_%s", t.cfg.AddressMaxAttempts, t.cfg.AddressWindow)
			t.audit.LogAccountLockout(ctx, email, address, 0, trigger)
		}
		t.logger.Warn("address rate limit exceeded",
			zap.String("address", logger.MaskIP(address)),
			zap.Int("attempts", count),
		)
		return domain.ThrottleDecision{
			Reason:     domain.ThrottleDenyRateLimited,
			RetryAfter: t.cfg.AddressWindow,
		}, nil
	}

	return domain.ThrottleDecision{Allowed: true}, nil
}

// RecordFailure reports a failed credential check. Crossing the configured
// threshold locks the account and emits the lockout audit entry exactly once.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email, address string) error {
	email = strings.ToLower(email)

	count, err := t.store.IncrementFailures(ctx, email, t.cfg.AccountWindow)
	if err != nil {
		return fmt.Errorf("increment failures: %w", err)
	}

	if count < t.cfg.AccountMaxFailures {
		return nil
	}

	created, err := t.store.AcquireLock(ctx, email, t.cfg.LockoutDuration)
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !created {
		return nil
	}

	minutes := int(t.cfg.LockoutDuration / time.Minute)
	trigger := fmt.Sprintf("%d_failed_logins", t.cfg.AccountMaxFailures)

	t.metrics.Lockouts.Inc()
	t.logger.Warn("account locked by throttle",
		zap.String("email", logger.MaskEmail(email)),
		zap.Int("failures", count),
		zap.Int("lockout_minutes", minutes),
	)
	t.audit.LogAccountLockout(ctx, email, address, minutes, trigger)

	return nil
}

// RecordSuccess resets the account failure counter. The address window is
// deliberately left alone: address limiting guards against distributed
// guessing across many accounts.
func (t *LoginThrottle) RecordSuccess(ctx context.Context, email string) error {
	if err := t.store.ResetFailures(ctx, strings.ToLower(email)); err != nil {
		return fmt.Errorf("reset failures: %w", err)
	}
	return nil
}

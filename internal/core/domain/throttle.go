package domain

import "time"

// ThrottleDenyReason distinguishes account lockout from address rate limiting.
type ThrottleDenyReason string

const (
	ThrottleDenyAccountLocked ThrottleDenyReason = "account_locked"
	ThrottleDenyRateLimited   ThrottleDenyReason = "rate_limited"
)

// ThrottleDecision is the outcome of consulting the login throttle before an attempt.
type ThrottleDecision struct {
	Allowed    bool
	Reason     ThrottleDenyReason
	RetryAfter time.Duration
}

package domain

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"time"
)

// AuditEventType enumerates authentication events recorded in the audit trail.
type AuditEventType string

const (
	AuditLoginSuccess   AuditEventType = "LOGIN_SUCCESS"
	AuditLoginFailure   AuditEventType = "LOGIN_FAILURE"
	AuditAccountLockout AuditEventType = "ACCOUNT_LOCKOUT"
)

// Failure reasons recorded on LOGIN_FAILURE events.
const (
	FailureReasonInvalidCredentials = "invalid_credentials"
	FailureReasonUserNotFound       = "user_not_found"
)

// AuditEvent is an append-only record of an authentication-relevant occurrence.
// Records are never mutated after insertion; IntegrityHash makes later
// alterations detectable.
type AuditEvent struct {
	ID                     int64
	UserID                 *string
	Email                  string
	IPAddress              string
	UserAgent              string
	Timestamp              time.Time
	EventType              AuditEventType
	FailureReason          *string
	LockoutDurationMinutes *int
	TriggerEvent           *string
	IntegrityHash          string
}

// ComputeIntegrityHash returns the SHA-256 digest over the event's semantic
// content: email, event type, failure reason, and trigger, pipe-separated.
// Absent fields contribute empty strings so the digest stays recomputable.
func (e AuditEvent) ComputeIntegrityHash() string {
	var reason, trigger string
	if e.FailureReason != nil {
		reason = *e.FailureReason
	}
	if e.TriggerEvent != nil {
		trigger = *e.TriggerEvent
	}

	canonical := strings.Join([]string{e.Email, string(e.EventType), reason, trigger}, "|")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// VerifyIntegrity recomputes the digest and compares it against the stored one.
func (e AuditEvent) VerifyIntegrity() bool {
	expected := e.ComputeIntegrityHash()
	return subtle.ConstantTimeCompare([]byte(expected), []byte(e.IntegrityHash)) == 1
}

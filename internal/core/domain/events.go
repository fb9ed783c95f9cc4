package domain

import "time"

// UserRegisteredEvent represents the payload for pfh.user.registered messages.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Email        string
	Role         string
	Status       string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// AuditRecordedEvent mirrors an audit trail entry onto the event bus so
// downstream compliance consumers receive a copy, and so entries that failed
// to persist still reach operators.
type AuditRecordedEvent struct {
	EventID       string
	UserID        *string
	Email         string
	IPAddress     string
	UserAgent     string
	Timestamp     time.Time
	EventType     string
	FailureReason *string
	Trigger       *string
	IntegrityHash string
	Degraded      bool
	Metadata      map[string]any
}

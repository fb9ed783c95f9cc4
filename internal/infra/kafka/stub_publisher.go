package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/domain"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/port"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without brokers.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(log *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: log}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs pfh.user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"email":         logger.MaskEmail(event.Email),
		"role":          event.Role,
		"status":        event.Status,
		"registered_at": event.RegisteredAt,
	}
	p.logEvent(topicUserRegistered, event.UserID, event.RegisteredAt, payload)
	return nil
}

// PublishAuditRecorded logs pfh.audit.recorded events.
func (p *StubPublisher) PublishAuditRecorded(_ context.Context, event domain.AuditRecordedEvent) error {
	var userID string
	if event.UserID != nil {
		userID = *event.UserID
	}

	payload := map[string]any{
		"email":          logger.MaskEmail(event.Email),
		"ip_address":     logger.MaskIP(event.IPAddress),
		"event_type":     event.EventType,
		"failure_reason": event.FailureReason,
		"trigger":        event.Trigger,
		"integrity_hash": event.IntegrityHash,
		"degraded":       event.Degraded,
	}
	p.logEvent(topicAuditRecorded, userID, event.Timestamp, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)

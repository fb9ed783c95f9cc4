package port

import (
	"context"

	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/domain"
)

// EventPublisher publishes domain events for downstream consumers.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishAuditRecorded(ctx context.Context, event domain.AuditRecordedEvent) error
}

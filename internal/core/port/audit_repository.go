package port

import (
	"context"

	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/domain"
)

// AuditLogRepository persists append-only audit events.
type AuditLogRepository interface {
	Append(ctx context.Context, event domain.AuditEvent) (int64, error)
	ListByEmail(ctx context.Context, email string, limit int) ([]domain.AuditEvent, error)
}

package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/domain"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/port"
)

// AuditLogRepository implements port.AuditLogRepository using PostgreSQL.
// The audit_logs table is append-only; no update or delete paths exist.
type AuditLogRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAuditLogRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewAuditLogRepository(exec pgExecutor) *AuditLogRepository {
	return &AuditLogRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Append inserts an audit event and returns its sequence identifier.
func (r *AuditLogRepository) Append(ctx context.Context, event domain.AuditEvent) (int64, error) {
	stmt, args, err := r.builder.Insert("audit_logs").
		Columns(
			"user_id",
			"email",
			"ip_address",
			"user_agent",
			"event_timestamp",
			"event_type",
			"failure_reason",
			"lockout_duration_minutes",
			"trigger_event",
			"integrity_hash",
		).
		Values(
			event.UserID,
			event.Email,
			event.IPAddress,
			event.UserAgent,
			event.Timestamp,
			event.EventType,
			event.FailureReason,
			event.LockoutDurationMinutes,
			event.TriggerEvent,
			event.IntegrityHash,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert audit sql: %w", err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert audit event: %w", err)
	}

	return id, nil
}

// ListByEmail returns the most recent audit events for the supplied email.
func (r *AuditLogRepository) ListByEmail(ctx context.Context, email string, limit int) ([]domain.AuditEvent, error) {
	query := r.builder.Select(
		"id",
		"user_id",
		"email",
		"ip_address",
		"user_agent",
		"event_timestamp",
		"event_type",
		"failure_reason",
		"lockout_duration_minutes",
		"trigger_event",
		"integrity_hash",
	).
		From("audit_logs").
		Where(squirrel.Eq{"email": email}).
		OrderBy("id DESC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list audit sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.AuditEvent, 0)
	for rows.Next() {
		var event domain.AuditEvent
		if err := rows.Scan(
			&event.ID,
			&event.UserID,
			&event.Email,
			&event.IPAddress,
			&event.UserAgent,
			&event.Timestamp,
			&event.EventType,
			&event.FailureReason,
			&event.LockoutDurationMinutes,
			&event.TriggerEvent,
			&event.IntegrityHash,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}

	return events, nil
}

var _ port.AuditLogRepository = (*AuditLogRepository)(nil)

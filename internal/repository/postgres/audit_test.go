package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/domain"
)

func TestAuditLogRepository_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAuditLogRepository(mock)

	userID := "user-1"
	reason := domain.FailureReasonInvalidCredentials
	timestamp := time.Now().UTC()
	event := domain.AuditEvent{
		UserID:        &userID,
		Email:         "alice@example.com",
		IPAddress:     "203.0.113.7",
		UserAgent:     "curl/8.0",
		Timestamp:     timestamp,
		EventType:     domain.AuditLoginFailure,
		FailureReason: &reason,
	}
	event.IntegrityHash = event.ComputeIntegrityHash()

	mock.ExpectQuery(`INSERT INTO audit_logs .+ RETURNING id`).
		WithArgs(
			&userID,
			event.Email,
			event.IPAddress,
			event.UserAgent,
			timestamp,
			event.EventType,
			&reason,
			(*int)(nil),
			(*string)(nil),
			event.IntegrityHash,
		).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := repo.Append(context.Background(), event)
	if err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuditLogRepository_ListByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAuditLogRepository(mock)

	trigger := "3_failed_logins"
	minutes := 30
	timestamp := time.Now().UTC()

	rows := pgxmock.NewRows([]string{
		"id", "user_id", "email", "ip_address", "user_agent", "event_timestamp",
		"event_type", "failure_reason", "lockout_duration_minutes", "trigger_event", "integrity_hash",
	}).AddRow(
		int64(2), nil, "alice@example.com", "203.0.113.7", "", timestamp,
		domain.AuditAccountLockout, nil, &minutes, &trigger, "digest",
	).AddRow(
		int64(1), nil, "alice@example.com", "203.0.113.7", "", timestamp.Add(-time.Minute),
		domain.AuditLoginFailure, nil, nil, nil, "digest",
	)

	mock.ExpectQuery(`SELECT .+ FROM audit_logs WHERE email = .+ ORDER BY id DESC LIMIT 10`).
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	events, err := repo.ListByEmail(context.Background(), "alice@example.com", 10)
	if err != nil {
		t.Fatalf("ListByEmail returned error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ID != 2 || events[0].EventType != domain.AuditAccountLockout {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[0].LockoutDurationMinutes == nil || *events[0].LockoutDurationMinutes != 30 {
		t.Fatal("lockout duration not scanned")
	}
	if events[1].ID != 1 || events[1].EventType != domain.AuditLoginFailure {
		t.Fatalf("unexpected second event: %+v", events[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

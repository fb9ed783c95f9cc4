package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/domain"
)

func TestAuditLogLoginSuccessRecordsDigest(t *testing.T) {
	repo := &stubAuditRepo{}
	publisher := &stubPublisher{}
	svc := NewAuditService(repo, publisher, nil, nil)

	svc.LogLoginSuccess(context.Background(), "user-1", "alice@example.com", "203.0.113.7", "curl/8.0")

	events := repo.recorded()
	if len(events) != 1 {
		t.Fatalf("expected 1 recorded event, got %d", len(events))
	}

	event := events[0]
	if event.EventType != domain.AuditLoginSuccess {
		t.Fatalf("unexpected event type: %s", event.EventType)
	}
	if event.UserID == nil || *event.UserID != "user-1" {
		t.Fatal("user id missing from success event")
	}
	if event.UserAgent != "curl/8.0" {
		t.Fatalf("unexpected user agent: %s", event.UserAgent)
	}
	if !svc.Verify(event) {
		t.Fatal("recorded event failed integrity verification")
	}

	mirrored := publisher.mirroredAudits()
	if len(mirrored) != 1 {
		t.Fatalf("expected 1 mirrored event, got %d", len(mirrored))
	}
	if mirrored[0].Degraded {
		t.Fatal("healthy write should not be flagged degraded")
	}
}

func TestAuditLogLoginFailureCarriesReason(t *testing.T) {
	repo := &stubAuditRepo{}
	svc := NewAuditService(repo, nil, nil, nil)

	svc.LogLoginFailure(context.Background(), "alice@example.com", "203.0.113.7", domain.FailureReasonUserNotFound)

	events := repo.recorded()
	if len(events) != 1 {
		t.Fatalf("expected 1 recorded event, got %d", len(events))
	}
	if events[0].FailureReason == nil || *events[0].FailureReason != domain.FailureReasonUserNotFound {
		t.Fatal("failure reason not recorded")
	}
	if !svc.Verify(events[0]) {
		t.Fatal("failure event failed integrity verification")
	}
}

func TestAuditLockoutOmitsZeroDuration(t *testing.T) {
	repo := &stubAuditRepo{}
	svc := NewAuditService(repo, nil, nil, nil)

	svc.LogAccountLockout(context.Background(), "alice@example.com", "203.0.113.7", 30, "3_failed_logins")
	svc.LogAccountLockout(context.Background(), "alice@example.com", "203.0.113.7", 0, "10_attempts_per_address_per_1m0s")

	events := repo.recorded()
	if len(events) != 2 {
		t.Fatalf("expected 2 recorded events, got %d", len(events))
	}

	if events[0].LockoutDurationMinutes == nil || *events[0].LockoutDurationMinutes != 30 {
		t.Fatal("lockout duration not recorded")
	}
	if events[0].TriggerEvent == nil || *events[0].TriggerEvent != "3_failed_logins" {
		t.Fatal("lockout trigger not recorded")
	}
	if events[1].LockoutDurationMinutes != nil {
		t.Fatal("zero duration should be omitted")
	}
}

func TestAuditDegradationMirrorsToPublisher(t *testing.T) {
	repo := &stubAuditRepo{appendErr: errors.New("connection refused")}
	publisher := &stubPublisher{}
	svc := NewAuditService(repo, publisher, nil, nil)

	svc.LogLoginFailure(context.Background(), "alice@example.com", "203.0.113.7", domain.FailureReasonInvalidCredentials)

	if len(repo.recorded()) != 0 {
		t.Fatal("append should have failed")
	}

	mirrored := publisher.mirroredAudits()
	if len(mirrored) != 1 {
		t.Fatalf("expected 1 mirrored event, got %d", len(mirrored))
	}
	if !mirrored[0].Degraded {
		t.Fatal("degraded write not flagged on mirror")
	}
	if mirrored[0].IntegrityHash == "" {
		t.Fatal("mirrored event missing integrity hash")
	}
}

func TestAuditUsesInjectedClock(t *testing.T) {
	fixed := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	repo := &stubAuditRepo{}
	svc := NewAuditService(repo, nil, nil, nil).WithClock(func() time.Time { return fixed })

	svc.LogLoginSuccess(context.Background(), "user-1", "alice@example.com", "", "")

	events := repo.recorded()
	if len(events) != 1 {
		t.Fatalf("expected 1 recorded event, got %d", len(events))
	}
	if !events[0].Timestamp.Equal(fixed) {
		t.Fatalf("expected timestamp %v, got %v", fixed, events[0].Timestamp)
	}
}

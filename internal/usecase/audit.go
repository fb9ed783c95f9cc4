package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/domain"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/port"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/logger"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/telemetry"
)

// AuditService appends tamper-evident records of authentication events.
//
// Writes never fail the operation that triggered them: when the store is
// unavailable the event is logged at error level and mirrored onto the event
// bus so operators see the degradation, but the login or registration outcome
// stands.
type AuditService struct {
	repo      port.AuditLogRepository
	publisher port.EventPublisher
	metrics   *telemetry.AuthMetrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuditService constructs the audit trail service.
func NewAuditService(repo port.AuditLogRepository, publisher port.EventPublisher, metrics *telemetry.AuthMetrics, log *zap.Logger) *AuditService {
	if log == nil {
		log = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NopAuthMetrics()
	}
	return &AuditService{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		logger:    log,
		now:       time.Now,
	}
}

// WithClock injects a custom clock, primarily for tests.
func (s *AuditService) WithClock(now func() time.Time) *AuditService {
	if now != nil {
		s.now = now
	}
	return s
}

// LogLoginSuccess records a successful authentication.
func (s *AuditService) LogLoginSuccess(ctx context.Context, userID, email, ip, userAgent string) {
	event := domain.AuditEvent{
		UserID:    &userID,
		Email:     email,
		IPAddress: ip,
		UserAgent: userAgent,
		Timestamp: s.now().UTC(),
		EventType: domain.AuditLoginSuccess,
	}
	s.record(ctx, event)
}

// LogLoginFailure records a failed authentication with its reason.
func (s *AuditService) LogLoginFailure(ctx context.Context, email, ip, reason string) {
	event := domain.AuditEvent{
		Email:         email,
		IPAddress:     ip,
		Timestamp:     s.now().UTC(),
		EventType:     domain.AuditLoginFailure,
		FailureReason: &reason,
	}
	s.record(ctx, event)
}

// LogAccountLockout records a throttle-driven lockout with its trigger and
// duration. Address rate-limit transitions pass a zero duration.
func (s *AuditService) LogAccountLockout(ctx context.Context, email, ip string, durationMinutes int, trigger string) {
	event := domain.AuditEvent{
		Email:        email,
		IPAddress:    ip,
		Timestamp:    s.now().UTC(),
		EventType:    domain.AuditAccountLockout,
		TriggerEvent: &trigger,
	}
	if durationMinutes > 0 {
		event.LockoutDurationMinutes = &durationMinutes
	}
	s.record(ctx, event)
}

func (s *AuditService) record(ctx context.Context, event domain.AuditEvent) {
	event.IntegrityHash = event.ComputeIntegrityHash()

	id, err := s.repo.Append(ctx, event)
	if err == nil {
		event.ID = id
		s.mirror(ctx, event, false)
		return
	}

	s.metrics.AuditDegraded.Inc()
	s.logger.Error("audit write degraded, mirroring to event bus",
		zap.Error(err),
		zap.String("event_type", string(event.EventType)),
		zap.String("email", logger.MaskEmail(event.Email)),
	)
	s.mirror(ctx, event, true)
}

func (s *AuditService) mirror(ctx context.Context, event domain.AuditEvent, degraded bool) {
	if s.publisher == nil {
		return
	}

	mirrored := domain.AuditRecordedEvent{
		EventID:       uuid.NewString(),
		UserID:        event.UserID,
		Email:         event.Email,
		IPAddress:     event.IPAddress,
		UserAgent:     event.UserAgent,
		Timestamp:     event.Timestamp,
		EventType:     string(event.EventType),
		FailureReason: event.FailureReason,
		Trigger:       event.TriggerEvent,
		IntegrityHash: event.IntegrityHash,
		Degraded:      degraded,
	}

	if err := s.publisher.PublishAuditRecorded(ctx, mirrored); err != nil {
		s.logger.Warn("audit event mirror failed",
			zap.Error(err),
			zap.String("event_type", string(event.EventType)),
		)
	}
}

// Verify recomputes the integrity digest of a stored event and reports
// whether the record still matches it.
func (s *AuditService) Verify(event domain.AuditEvent) bool {
	return event.VerifyIntegrity()
}

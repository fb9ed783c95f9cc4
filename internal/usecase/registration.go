package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/domain"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/port"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/logger"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/security"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/telemetry"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/repository"
)

var (
	// ErrPasswordMismatch indicates password and confirmation differ.
	ErrPasswordMismatch = errors.New("password confirmation does not match")
	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

// WeakPasswordError wraps a policy violation so transport can render the
// specific rule that failed.
type WeakPasswordError struct {
	Violation *security.PasswordValidationError
}

func (e *WeakPasswordError) Error() string {
	return fmt.Sprintf("weak password: %s", e.Violation.Message)
}

func (e *WeakPasswordError) Unwrap() error { return e.Violation }

// RegistrationInput carries a registration request into the service.
type RegistrationInput struct {
	Email           string
	Password        string
	ConfirmPassword string
}

// RegistrationResult is returned after a successful registration.
type RegistrationResult struct {
	UserID  string
	Email   string
	Message string
}

// RegistrationService validates, hashes and persists new accounts.
type RegistrationService struct {
	users     port.UserRepository
	validator *security.PasswordValidator
	hasher    *security.Hasher
	publisher port.EventPublisher
	metrics   *telemetry.AuthMetrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewRegistrationService wires the registration flow.
func NewRegistrationService(
	users port.UserRepository,
	validator *security.PasswordValidator,
	hasher *security.Hasher,
	publisher port.EventPublisher,
	metrics *telemetry.AuthMetrics,
	log *zap.Logger,
) *RegistrationService {
	if log == nil {
		log = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NopAuthMetrics()
	}
	return &RegistrationService{
		users:     users,
		validator: validator,
		hasher:    hasher,
		publisher: publisher,
		metrics:   metrics,
		logger:    log,
		now:       time.Now,
	}
}

// WithClock injects a custom clock, primarily for tests.
func (s *RegistrationService) WithClock(now func() time.Time) *RegistrationService {
	if now != nil {
		s.now = now
	}
	return s
}

// Register creates a new active account with the default user role. The
// password policy runs first: a weak password is reported as weak even when
// the confirmation also differs.
func (s *RegistrationService) Register(ctx context.Context, in RegistrationInput) (*RegistrationResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if err := s.validator.Validate(in.Password); err != nil {
		s.metrics.Registrations.WithLabelValues("weak_password").Inc()
		var violation *security.PasswordValidationError
		if errors.As(err, &violation) {
			return nil, &WeakPasswordError{Violation: violation}
		}
		return nil, fmt.Errorf("validate password: %w", err)
	}

	if in.Password != in.ConfirmPassword {
		s.metrics.Registrations.WithLabelValues("mismatch").Inc()
		return nil, ErrPasswordMismatch
	}

	// Cheap existence check before paying for a hash. The unique index on
	// email still arbitrates concurrent registrations at insert time.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		s.metrics.Registrations.WithLabelValues("duplicate").Inc()
		return nil, fmt.Errorf("%w: %s", ErrDuplicateEmail, email)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	encoded, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: encoded,
		Role:         domain.UserRoleUser,
		Status:       domain.UserStatusActive,
		RegisteredAt: s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.Registrations.WithLabelValues("duplicate").Inc()
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEmail, email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.Registrations.WithLabelValues("success").Inc()
	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(email)),
	)

	if s.publisher != nil {
		event := domain.UserRegisteredEvent{
			EventID:      uuid.NewString(),
			UserID:       user.ID,
			Email:        email,
			Role:         string(user.Role),
			Status:       string(user.Status),
			RegisteredAt: user.RegisteredAt,
		}
		if err := s.publisher.PublishUserRegistered(ctx, event); err != nil {
			s.logger.Error("publish user registered event", zap.Error(err))
		}
	}

	return &RegistrationResult{
		UserID:  user.ID,
		Email:   email,
		Message: "registration successful",
	}, nil
}

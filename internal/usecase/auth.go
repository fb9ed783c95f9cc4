package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/domain"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/port"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/logger"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/security"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/telemetry"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/repository"
)

// ErrInvalidCredentials is returned for both an unknown email and a wrong
// password, so responses never reveal whether an account exists.
var ErrInvalidCredentials = errors.New("invalid email or password")

// LoginInput carries a login attempt into the service.
type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// LoginResult is returned after successful authentication.
type LoginResult struct {
	Token     string
	Claims    *security.AccessTokenClaims
	ExpiresIn int64
}

// AuthService authenticates credentials and issues access tokens.
type AuthService struct {
	users    port.UserRepository
	hasher   *security.Hasher
	tokens   *security.JWTManager
	throttle *LoginThrottle
	audit    *AuditService
	metrics  *telemetry.AuthMetrics
	logger   *zap.Logger

	// dummyHash is a real Argon2id digest verified against on the
	// unknown-email path, so that path costs the same as a wrong password.
	dummyHash string
}

// NewAuthService wires the login flow.
func NewAuthService(
	users port.UserRepository,
	hasher *security.Hasher,
	tokens *security.JWTManager,
	throttle *LoginThrottle,
	audit *AuditService,
	metrics *telemetry.AuthMetrics,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NopAuthMetrics()
	}

	dummyHash, err := hasher.Hash("unknown-account-timing-filler")
	if err != nil {
		log.Error("precompute dummy digest", zap.Error(err))
	}

	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		throttle:  throttle,
		audit:     audit,
		metrics:   metrics,
		logger:    log,
		dummyHash: dummyHash,
	}
}

// Login runs the full authentication sequence: throttle gate, account lookup,
// account status gate, credential verification, token issuance. Unknown email
// and wrong password both surface ErrInvalidCredentials; the audit trail
// records which it was.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	decision, err := s.throttle.Check(ctx, email, in.IPAddress)
	if err != nil {
		return nil, fmt.Errorf("throttle check: %w", err)
	}
	if !decision.Allowed {
		s.metrics.Logins.WithLabelValues("throttled").Inc()
		if decision.Reason == domain.ThrottleDenyRateLimited {
			return nil, ErrRateLimited
		}
		return nil, ErrAccountThrottled
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Verify against a precomputed digest so timing does not
			// separate unknown accounts from wrong passwords.
			s.hasher.Verify(in.Password, s.dummyHash)
			s.failLogin(ctx, email, in.IPAddress, domain.FailureReasonUserNotFound)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if verdict := domain.CheckStatus(user.Status); !verdict.Allowed {
		s.metrics.Logins.WithLabelValues("denied_status").Inc()
		s.logger.Warn("login denied by account status",
			zap.String("email", logger.MaskEmail(email)),
			zap.String("status", string(user.Status)),
		)
		return nil, domain.NewStatusError(user.Status)
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		s.failLogin(ctx, email, in.IPAddress, domain.FailureReasonInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	if err := s.throttle.RecordSuccess(ctx, email); err != nil {
		s.logger.Error("reset failure counter", zap.Error(err))
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.RoleNames())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("parse issued token: %w", err)
	}

	s.metrics.Logins.WithLabelValues("success").Inc()
	s.audit.LogLoginSuccess(ctx, user.ID, user.Email, in.IPAddress, in.UserAgent)
	s.logger.Info("login succeeded",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(email)),
	)

	return &LoginResult{
		Token:     token,
		Claims:    claims,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
	}, nil
}

// VerifyToken parses and validates an access token.
func (s *AuthService) VerifyToken(token string) (*security.AccessTokenClaims, error) {
	return s.tokens.Parse(token)
}

func (s *AuthService) failLogin(ctx context.Context, email, address, reason string) {
	s.metrics.Logins.WithLabelValues("failure").Inc()
	s.audit.LogLoginFailure(ctx, email, address, reason)
	if err := s.throttle.RecordFailure(ctx, email, address); err != nil {
		s.logger.Error("record failed attempt", zap.Error(err))
	}
}

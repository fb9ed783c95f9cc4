package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/domain"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/security"
)

const authTestPassword = "Sup3r!SecurePass#7890"

type authFixture struct {
	svc      *AuthService
	users    *stubUserRepo
	store    *stubThrottleStore
	audit    *stubAuditRepo
	hasher   *security.Hasher
	tokens   *security.JWTManager
	throttle *LoginThrottle
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	hasher, err := security.NewHasher(security.DefaultArgon2Config())
	if err != nil {
		t.Fatalf("NewHasher returned error: %v", err)
	}
	tokens, err := security.NewJWTManager("0123456789abcdef0123456789abcdef", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewJWTManager returned error: %v", err)
	}

	users := newStubUserRepo()
	store := newStubThrottleStore()
	auditRepo := &stubAuditRepo{}
	auditSvc := NewAuditService(auditRepo, nil, nil, nil)
	throttle := NewLoginThrottle(store, auditSvc, nil, testThrottleConfig(), nil)

	return &authFixture{
		svc:      NewAuthService(users, hasher, tokens, throttle, auditSvc, nil, nil),
		users:    users,
		store:    store,
		audit:    auditRepo,
		hasher:   hasher,
		tokens:   tokens,
		throttle: throttle,
	}
}

func (f *authFixture) seedUser(t *testing.T, email string, status domain.UserStatus) domain.User {
	t.Helper()
	hash, err := f.hasher.Hash(authTestPassword)
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.UserRoleUser,
		Status:       status,
		RegisteredAt: time.Now().UTC(),
	}
	if err := f.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestAuthServicePrecomputesDummyDigest(t *testing.T) {
	f := newAuthFixture(t)

	// The unknown-email path verifies against this digest, so it has to be a
	// real Argon2id encoding that forces a full verification pass.
	if !strings.HasPrefix(f.svc.dummyHash, "argon2id$") {
		t.Fatalf("dummy digest is not an argon2id encoding: %q", f.svc.dummyHash)
	}
	if got := strings.Count(f.svc.dummyHash, "$"); got != 4 {
		t.Fatalf("dummy digest has %d separators, want 4", got)
	}
	if f.hasher.Verify(authTestPassword, f.svc.dummyHash) {
		t.Fatal("arbitrary password must not verify against the dummy digest")
	}
}

func TestLoginSuccessIssuesToken(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "alice@example.com", domain.UserStatusActive)

	result, err := f.svc.Login(context.Background(), LoginInput{
		Email:     "Alice@Example.com",
		Password:  authTestPassword,
		IPAddress: "203.0.113.7",
		UserAgent: "curl/8.0",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if result.Token == "" {
		t.Fatal("expected a signed token")
	}
	if result.Claims.Subject != user.ID {
		t.Fatalf("expected subject %s, got %s", user.ID, result.Claims.Subject)
	}
	if result.Claims.Email != "alice@example.com" {
		t.Fatalf("unexpected email claim: %s", result.Claims.Email)
	}
	if len(result.Claims.Roles) != 1 || result.Claims.Roles[0] != "user" {
		t.Fatalf("unexpected roles claim: %v", result.Claims.Roles)
	}
	if result.ExpiresIn != 900 {
		t.Fatalf("expected 900s lifetime, got %d", result.ExpiresIn)
	}

	events := f.audit.recorded()
	if len(events) != 1 || events[0].EventType != domain.AuditLoginSuccess {
		t.Fatalf("expected a single LOGIN_SUCCESS event, got %v", events)
	}
}

func TestLoginUnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "alice@example.com", domain.UserStatusActive)
	ctx := context.Background()

	_, unknownErr := f.svc.Login(ctx, LoginInput{
		Email:     "nobody@example.com",
		Password:  authTestPassword,
		IPAddress: "203.0.113.7",
	})
	_, wrongErr := f.svc.Login(ctx, LoginInput{
		Email:     "alice@example.com",
		Password:  "Wrong!Password#123",
		IPAddress: "203.0.113.7",
	})

	if !errors.Is(unknownErr, ErrInvalidCredentials) || !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("both failures must yield ErrInvalidCredentials, got %v and %v", unknownErr, wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatal("error detail must not reveal whether the account exists")
	}

	events := f.audit.recorded()
	if len(events) != 2 {
		t.Fatalf("expected 2 audit events, got %d", len(events))
	}
	if events[0].FailureReason == nil || *events[0].FailureReason != domain.FailureReasonUserNotFound {
		t.Fatalf("first failure should record user_not_found, got %v", events[0].FailureReason)
	}
	if events[1].FailureReason == nil || *events[1].FailureReason != domain.FailureReasonInvalidCredentials {
		t.Fatalf("second failure should record invalid_credentials, got %v", events[1].FailureReason)
	}
}

func TestLoginDeniedByAccountStatus(t *testing.T) {
	f := newAuthFixture(t)
	cases := []struct {
		status     domain.UserStatus
		httpStatus int
	}{
		{domain.UserStatusLocked, 423},
		{domain.UserStatusDisabled, 403},
		{domain.UserStatusSuspended, 403},
		{domain.UserStatusExpired, 401},
	}

	for i, tc := range cases {
		email := string(tc.status) + "@example.com"
		f.seedUser(t, email, tc.status)

		_, err := f.svc.Login(context.Background(), LoginInput{
			Email:     email,
			Password:  authTestPassword,
			IPAddress: "203.0.113.7",
		})

		var statusErr *domain.StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("case %d: expected StatusError, got %v", i, err)
		}
		if statusErr.Decision.HTTPStatus != tc.httpStatus {
			t.Fatalf("%s: expected %d, got %d", tc.status, tc.httpStatus, statusErr.Decision.HTTPStatus)
		}
	}
}

func TestLoginStatusGateIgnoresPasswordCorrectness(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "locked@example.com", domain.UserStatusLocked)

	// The status verdict comes before password verification, so even a
	// wrong password surfaces the locked outcome.
	_, err := f.svc.Login(context.Background(), LoginInput{
		Email:     "locked@example.com",
		Password:  "Wrong!Password#123",
		IPAddress: "203.0.113.7",
	})

	var statusErr *domain.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Decision.HTTPStatus != 423 {
		t.Fatalf("expected 423, got %d", statusErr.Decision.HTTPStatus)
	}
}

func TestLoginThrottledAccountIsDenied(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "alice@example.com", domain.UserStatusActive)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Login(ctx, LoginInput{
			Email:     "alice@example.com",
			Password:  "Wrong!Password#123",
			IPAddress: "203.0.113.7",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	// Even the correct password is rejected while the lock holds.
	_, err := f.svc.Login(ctx, LoginInput{
		Email:     "alice@example.com",
		Password:  authTestPassword,
		IPAddress: "203.0.113.7",
	})
	if !errors.Is(err, ErrAccountThrottled) {
		t.Fatalf("expected ErrAccountThrottled, got %v", err)
	}
}

func TestLoginSuccessResetsFailureCounter(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "alice@example.com", domain.UserStatusActive)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := f.svc.Login(ctx, LoginInput{
			Email:     "alice@example.com",
			Password:  "Wrong!Password#123",
			IPAddress: "203.0.113.7",
		}); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}

	if _, err := f.svc.Login(ctx, LoginInput{
		Email:     "alice@example.com",
		Password:  authTestPassword,
		IPAddress: "203.0.113.7",
	}); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if f.store.failures["alice@example.com"] != 0 {
		t.Fatal("failure counter should reset after a successful login")
	}
}

func TestLoginRateLimitedAddress(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "alice@example.com", domain.UserStatusActive)
	ctx := context.Background()

	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	f.throttle.WithClock(func() time.Time { return base })

	for i := 0; i < 10; i++ {
		f.store.RecordAddressAttempt(ctx, "203.0.113.7", base)
	}

	_, err := f.svc.Login(ctx, LoginInput{
		Email:     "alice@example.com",
		Password:  authTestPassword,
		IPAddress: "203.0.113.7",
	})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

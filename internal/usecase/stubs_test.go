package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/domain"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/repository"
)

type stubAuditRepo struct {
	mu        sync.Mutex
	appendErr error
	nextID    int64
	events    []domain.AuditEvent

	listResult []domain.AuditEvent
	listErr    error
}

func (s *stubAuditRepo) Append(_ context.Context, event domain.AuditEvent) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return 0, s.appendErr
	}
	s.nextID++
	event.ID = s.nextID
	s.events = append(s.events, event)
	return s.nextID, nil
}

func (s *stubAuditRepo) ListByEmail(context.Context, string, int) ([]domain.AuditEvent, error) {
	return s.listResult, s.listErr
}

func (s *stubAuditRepo) recorded() []domain.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuditEvent, len(s.events))
	copy(out, s.events)
	return out
}

type stubPublisher struct {
	mu         sync.Mutex
	registered []domain.UserRegisteredEvent
	audits     []domain.AuditRecordedEvent
	publishErr error
}

func (s *stubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publishErr != nil {
		return s.publishErr
	}
	s.registered = append(s.registered, event)
	return nil
}

func (s *stubPublisher) PublishAuditRecorded(_ context.Context, event domain.AuditRecordedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publishErr != nil {
		return s.publishErr
	}
	s.audits = append(s.audits, event)
	return nil
}

func (s *stubPublisher) mirroredAudits() []domain.AuditRecordedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuditRecordedEvent, len(s.audits))
	copy(out, s.audits)
	return out
}

// stubThrottleStore keeps counters in memory; windows are honored by the clock
// passed to CountAddressAttempts.
type stubThrottleStore struct {
	mu       sync.Mutex
	failures map[string]int
	locks    map[string]time.Duration
	attempts map[string][]time.Time

	incrementErr error
	lockErr      error
}

func newStubThrottleStore() *stubThrottleStore {
	return &stubThrottleStore{
		failures: make(map[string]int),
		locks:    make(map[string]time.Duration),
		attempts: make(map[string][]time.Time),
	}
}

func (s *stubThrottleStore) IncrementFailures(_ context.Context, email string, _ time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.incrementErr != nil {
		return 0, s.incrementErr
	}
	s.failures[email]++
	return s.failures[email], nil
}

func (s *stubThrottleStore) ResetFailures(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, email)
	return nil
}

func (s *stubThrottleStore) AcquireLock(_ context.Context, email string, duration time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lockErr != nil {
		return false, s.lockErr
	}
	if _, held := s.locks[email]; held {
		return false, nil
	}
	s.locks[email] = duration
	return true, nil
}

func (s *stubThrottleStore) LockRemaining(_ context.Context, email string) (bool, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining, held := s.locks[email]
	return held, remaining, nil
}

func (s *stubThrottleStore) RecordAddressAttempt(_ context.Context, address string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[address] = append(s.attempts[address], at)
	return nil
}

func (s *stubThrottleStore) CountAddressAttempts(_ context.Context, address string, window time.Duration, reference time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	threshold := reference.Add(-window)
	count := 0
	for _, at := range s.attempts[address] {
		if at.After(threshold) {
			count++
		}
	}
	return count, nil
}

type stubUserRepo struct {
	mu          sync.Mutex
	createErr   error
	createCalls int
	createdUser domain.User

	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (s *stubUserRepo) Create(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	s.createdUser = user
	if s.createErr != nil {
		return s.createErr
	}
	copied := user
	s.users[user.Email] = &copied
	return nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[email]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubUserRepo) UpdateStatus(_ context.Context, id string, status domain.UserStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			user.Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}


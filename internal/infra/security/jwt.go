package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"
)

const (
	minSecretLength = 32
	// maxAccessTokenTTL caps token lifetime; exp - iat never exceeds it.
	maxAccessTokenTTL = 15 * time.Minute
)

var (
	// ErrInvalidToken indicates the token is malformed, carries an invalid
	// signature, or its subject is not a user identifier.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates the token's signature is valid but it expired.
	ErrExpiredToken = errors.New("token expired")
)

// AccessTokenClaims carries the identity claims embedded in issued tokens.
type AccessTokenClaims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// JWTManager issues and parses HMAC-SHA256 signed bearer tokens.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTManager validates the signing secret and token lifetime. The secret
// must be at least 32 bytes; lifetimes above 15 minutes are clamped.
func NewJWTManager(secret string, ttl time.Duration) (*JWTManager, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("jwt: secret must be at least %d bytes", minSecretLength)
	}
	if ttl <= 0 || ttl > maxAccessTokenTTL {
		ttl = maxAccessTokenTTL
	}

	return &JWTManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock injects a custom clock, primarily for tests.
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	if now != nil {
		m.now = now
	}
	return m
}

// TTL returns the configured token lifetime.
func (m *JWTManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for the given user carrying email and role claims.
func (m *JWTManager) Issue(userID, email string, roles []string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("jwt: user id is required")
	}

	now := m.now().UTC()
	claims := AccessTokenClaims{
		Email: email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, nil
}

// Parse validates the token signature and structure and returns its claims.
// Expired tokens yield ErrExpiredToken; every other defect yields
// ErrInvalidToken without internal detail.
func (m *JWTManager) Parse(token string) (*AccessTokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &AccessTokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if parsed == nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// IsExpired reports whether the claims expired relative to the given instant.
// Pure function of the parsed expiration; signature validity is irrelevant.
func IsExpired(claims *AccessTokenClaims, at time.Time) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return !at.Before(claims.ExpiresAt.Time)
}

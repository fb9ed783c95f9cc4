package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/transport/http/middleware"
)

// ErrorResponse represents a generic error payload with a request ID for debugging.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse creates an error response carrying the request correlation ID.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:     errorMsg,
		RequestID: middleware.GetRequestID(c),
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterRequest defines the account registration payload.
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// RegisterResponse contains the registration result.
type RegisterResponse struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes a successful login.
type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int64    `json:"expires_in"`
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
}

// AuditEntryResponse is a single audit trail record.
type AuditEntryResponse struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	IPAddress      string    `json:"ip_address,omitempty"`
	EventType      string    `json:"event_type"`
	FailureReason  *string   `json:"failure_reason,omitempty"`
	LockoutMinutes *int      `json:"lockout_duration_minutes,omitempty"`
	TriggerEvent   *string   `json:"trigger_event,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	IntegrityOK    bool      `json:"integrity_ok"`
}

// HealthResponse reports liveness information.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports readiness of downstream dependencies.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

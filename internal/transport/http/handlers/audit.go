package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/port"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/usecase"
)

const defaultAuditPageSize = 50

// AuditHandler exposes read access to the authentication audit trail.
type AuditHandler struct {
	audit *usecase.AuditService
	repo  port.AuditLogRepository
}

// NewAuditHandler constructs AuditHandler.
func NewAuditHandler(audit *usecase.AuditService, repo port.AuditLogRepository) *AuditHandler {
	return &AuditHandler{audit: audit, repo: repo}
}

// RegisterRoutes binds audit endpoints.
func (h *AuditHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit", h.List)
}

// List returns the audit entries recorded for an email, newest first. Each
// entry carries the result of its integrity hash check so tampering is
// visible to reviewers.
func (h *AuditHandler) List(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email query parameter is required"))
		return
	}

	limit := defaultAuditPageSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	events, err := h.repo.ListByEmail(c.Request.Context(), strings.ToLower(email), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load audit trail"))
		return
	}

	entries := make([]AuditEntryResponse, 0, len(events))
	for _, event := range events {
		entries = append(entries, AuditEntryResponse{
			ID:             event.ID,
			Email:          event.Email,
			IPAddress:      event.IPAddress,
			EventType:      string(event.EventType),
			FailureReason:  event.FailureReason,
			LockoutMinutes: event.LockoutDurationMinutes,
			TriggerEvent:   event.TriggerEvent,
			Timestamp:      event.Timestamp,
			IntegrityOK:    h.audit.Verify(event),
		})
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

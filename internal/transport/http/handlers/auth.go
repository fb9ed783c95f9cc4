package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/domain"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/usecase"
)

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	auth *usecase.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes binds authentication routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/login", h.Login)
}

// Login authenticates credentials and returns an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	result, err := h.auth.Login(c.Request.Context(), usecase.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		var statusErr *domain.StatusError
		if errors.As(err, &statusErr) {
			c.JSON(statusErr.Decision.HTTPStatus, NewErrorResponse(c, statusErr.Decision.Message))
			return
		}

		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid email or password"},
			{Err: usecase.ErrAccountThrottled, Status: http.StatusLocked, Message: "account temporarily locked, try again later"},
			{Err: usecase.ErrRateLimited, Status: http.StatusTooManyRequests, Message: "too many requests, slow down", RetryAfter: time.Minute},
		}, http.StatusInternalServerError, "failed to process login")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: result.Token,
		TokenType:   "Bearer",
		ExpiresIn:   result.ExpiresIn,
		UserID:      result.Claims.Subject,
		Email:       result.Claims.Email,
		Roles:       result.Claims.Roles,
	})
}

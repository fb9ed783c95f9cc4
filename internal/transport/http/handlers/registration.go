package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/usecase"
)

// RegistrationHandler exposes the account registration endpoint.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registration *usecase.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

// RegisterRoutes binds registration endpoints.
func (h *RegistrationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.Register)
}

// Register creates a new account from the submitted credentials.
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	result, err := h.registration.Register(c.Request.Context(), usecase.RegistrationInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		var weak *usecase.WeakPasswordError
		if errors.As(err, &weak) {
			c.JSON(http.StatusUnprocessableEntity, NewErrorResponse(c, weak.Violation.Message))
			return
		}

		if errors.Is(err, usecase.ErrDuplicateEmail) {
			// The error text names the conflicting email; the caller
			// supplied it, so echoing it back leaks nothing.
			c.JSON(http.StatusConflict, NewErrorResponse(c, err.Error()))
			return
		}

		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPasswordMismatch, Status: http.StatusBadRequest, Message: "password confirmation does not match"},
		}, http.StatusInternalServerError, "failed to register user")
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		UserID:  result.UserID,
		Email:   result.Email,
		Message: result.Message,
	})
}

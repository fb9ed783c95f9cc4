package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err        error
	Status     int
	Message    string
	RetryAfter time.Duration
}

// RespondWithMappedError resolves the provided error against known cases or
// falls back to a generic response. Cases with a RetryAfter set the
// corresponding header on the response.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			if cs.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(cs.RetryAfter.Seconds())))
			}
			c.JSON(cs.Status, NewErrorResponse(c, cs.Message))
			return
		}
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}

package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-sports/service-booking/internal/domain"
)

// Body is the uniform JSON envelope for every endpoint.
type Body struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Message: message, Data: data})
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Error: message})
}

// Conflict reports a 409 carrying data describing the conflicting resource.
func Conflict(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusConflict, Body{Success: false, Error: message, Data: data})
}

// Error maps a domain error to its HTTP status. Unknown errors become 500
// with a generic message so internals never leak to clients.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var derr *domain.DomainError
	if errors.As(err, &derr) {
		message = derr.Message
		switch {
		case errors.Is(err, domain.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, domain.ErrConflict):
			status = http.StatusConflict
		case errors.Is(err, domain.ErrInvalidState):
			status = http.StatusConflict
		case errors.Is(err, domain.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, domain.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, domain.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, domain.ErrQuotaExceeded):
			status = http.StatusForbidden
		case errors.Is(err, domain.ErrRateLimited):
			status = http.StatusTooManyRequests
		default:
			message = "internal server error"
		}
	}

	c.JSON(status, Body{Success: false, Error: message})
}

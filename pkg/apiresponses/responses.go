package apiresponses

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Envelope is the standard response body shape shared by all endpoints.
// Successful submissions use a richer payload defined by the contact
// controller; every failure path uses this envelope so clients can always
// rely on isSuccess and message being present.
type Envelope struct {
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
}

// RespondValidationError sends a 400 with the first field violation.
func RespondValidationError(c *gin.Context, violation string) {
	c.JSON(http.StatusBadRequest, Envelope{
		Message: "Validation Error",
		Error:   violation,
	})
}

// RespondBadRequest sends a 400 for malformed request bodies.
func RespondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Message: message})
}

// RespondMethodNotAllowed sends a 405. Only POST and OPTIONS are accepted on
// the contact endpoint.
func RespondMethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, Envelope{Message: "Method not allowed"})
}

// RespondNotFound sends a 404 envelope.
func RespondNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, Envelope{Message: "Not found"})
}

// RespondTooManyRequests sends a 429 envelope.
func RespondTooManyRequests(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, Envelope{Message: "Rate limit exceeded, please try again later"})
}

// RespondInternalError sends a sanitized 500. The error is logged with full
// detail but never echoed to the client.
func RespondInternalError(c *gin.Context, operation string, err error, log *zap.SugaredLogger) {
	if log != nil {
		log.Errorw("Request failed", "operation", operation, "error", err)
	}
	c.JSON(http.StatusInternalServerError, Envelope{Message: "Internal Server Error"})
}

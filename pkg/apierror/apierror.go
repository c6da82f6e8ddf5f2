package apierror

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is an error with an HTTP status attached. Handlers pass any
// error to Write; errors without a status become 500s.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

func Unavailable(message string) *Error {
	return New(http.StatusBadGateway, message)
}

// Write renders err as the {"error": ...} JSON body and aborts the
// request.
func Write(c *gin.Context, err error) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr.Message})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

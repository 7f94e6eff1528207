package response

import (
	"errors"
	"fmt"
	"net/http"

	"restlab/logutils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// HTTPError is an error that already knows its status and client message.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

func NewError(status int, format string, args ...any) *HTTPError {
	return &HTTPError{Status: status, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *HTTPError {
	return NewError(http.StatusNotFound, format, args...)
}

func Conflict(format string, args ...any) *HTTPError {
	return NewError(http.StatusConflict, format, args...)
}

func BadRequest(format string, args ...any) *HTTPError {
	return NewError(http.StatusBadRequest, format, args...)
}

const internalMessage = "Internal server error"

// Abort maps err onto a response: *HTTPError keeps its status, validation
// errors become 400, gorm's not-found 404 and duplicate key 409. Anything
// else is logged and answered with 500.
func Abort(c *gin.Context, err error) {
	var httpErr *HTTPError
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &httpErr):
		Error(c, httpErr.Status, httpErr.Message)
	case errors.As(err, &validationErrs):
		ValidationError(c, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		Error(c, http.StatusNotFound, "Resource not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		Error(c, http.StatusConflict, "Resource already exists")
	default:
		Internal(c, err)
	}
}

// Internal logs err and answers 500 without leaking it.
func Internal(c *gin.Context, err error) {
	logutils.WithRequest(c).WithError(err).Errorf("%s %s", c.Request.Method, c.Request.URL.Path)
	_ = c.Error(err)
	Error(c, http.StatusInternalServerError, internalMessage)
}

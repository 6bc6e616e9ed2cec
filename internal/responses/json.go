package responses

import (
	"errors"

	"github.com/gin-gonic/gin"

	"datadesigner/internal/apperrors"
)

type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Success(c *gin.Context, statusCode int, data any, message string) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error writes a failure for a service error. The status and the error code
// come from its kind; internal causes are recorded on the context for the
// request logger and never sent to the client.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)

	kind := apperrors.KindOf(err)
	message := "internal server error"
	var appErr *apperrors.Error
	if kind != apperrors.KindInternal && errors.As(err, &appErr) {
		message = appErr.Message
	}

	c.AbortWithStatusJSON(apperrors.HTTPStatus(kind), APIResponse{
		Success: false,
		Message: message,
		Error:   string(kind),
	})
}

package handlers

import (
	"errors"
	"net/http"

	"quickbite-api/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    interface{}           `json:"data,omitempty"`
	Errors  []services.FieldError `json:"errors,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// respondError maps workflow errors to the envelope. Anything outside the
// taxonomy is logged with full detail and reported as a generic 500.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	if appErr, ok := services.AsError(err); ok {
		body := Response{Success: false, Message: appErr.Message, Errors: appErr.Fields}
		if appErr.Data != nil {
			body.Data = appErr.Data
		}
		c.JSON(appErr.HTTPStatus(), body)
		return
	}
	log.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, Response{Success: false, Message: "Something went wrong"})
}

// respondBindingError turns gin binding failures into field-level 400s.
func respondBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]services.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, services.FieldError{
				Field:   fe.Field(),
				Message: fieldErrorMessage(fe),
			})
		}
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Validation failed", Errors: fields})
		return
	}
	c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid request body"})
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Too short or too small (minimum " + fe.Param() + ")"
	case "max":
		return "Too long or too large (maximum " + fe.Param() + ")"
	case "datetime":
		return "Must match the 24-hour HH:MM format"
	case "gte":
		return "Must be at least " + fe.Param()
	default:
		return "Invalid value"
	}
}

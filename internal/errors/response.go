package errors

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Field errors are keyed by the JSON field name, not the Go field name.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// ErrorResponse is the uniform error payload for every non-2xx response.
// FieldErrors is present only for validation failures.
type ErrorResponse struct {
	Detail      string            `json:"detail"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

func respond(c *gin.Context, status int, detail string) {
	c.JSON(status, ErrorResponse{Detail: detail})
}

func BadRequest(c *gin.Context, detail string) {
	respond(c, http.StatusBadRequest, detail)
}

func Unauthorized(c *gin.Context, detail string) {
	respond(c, http.StatusUnauthorized, detail)
}

func PaymentRequired(c *gin.Context, detail string) {
	respond(c, http.StatusPaymentRequired, detail)
}

func Forbidden(c *gin.Context, detail string) {
	respond(c, http.StatusForbidden, detail)
}

func NotFound(c *gin.Context, detail string) {
	respond(c, http.StatusNotFound, detail)
}

func Conflict(c *gin.Context, detail string) {
	respond(c, http.StatusConflict, detail)
}

func InternalError(c *gin.Context, detail string) {
	respond(c, http.StatusInternalServerError, detail)
}

// ValidationError writes a 400 with per-field reasons. Binding errors from
// gin carry validator.ValidationErrors; anything else gets a generic detail.
func ValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fieldErrors := make(map[string]string, len(validationErrors))
		for _, fieldError := range validationErrors {
			fieldErrors[fieldError.Field()] = validationReason(fieldError)
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Detail:      "Validation failed",
			FieldErrors: fieldErrors,
		})
		return
	}
	respond(c, http.StatusBadRequest, "Invalid request body")
}

// FieldErrors writes a 400 with an explicit field error map.
func FieldErrors(c *gin.Context, fieldErrors map[string]string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Detail:      "Validation failed",
		FieldErrors: fieldErrors,
	})
}

func validationReason(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Must be at least " + fieldError.Param()
	case "max":
		return "Must be at most " + fieldError.Param()
	case "gt":
		return "Must be greater than " + fieldError.Param()
	case "gte":
		return "Must be greater than or equal to " + fieldError.Param()
	case "oneof":
		return "Must be one of: " + fieldError.Param()
	default:
		return "Invalid value"
	}
}

package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/t1tandr/uevent/internal/domain/company"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/infrastructure/logger"
	"github.com/t1tandr/uevent/internal/interfaces/http/dto"
)

// RequestIDKey is the header carrying the request ID
const RequestIDKey = "X-Request-ID"

// SetupValidator configures gin's validator: JSON field names in errors and
// the domain enum tags event_format, event_theme, event_status and company_role.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	enums := map[string]func(string) bool{
		"event_format": func(s string) bool { return event.Format(s).IsValid() },
		"event_theme":  func(s string) bool { return event.Theme(s).IsValid() },
		"event_status": func(s string) bool { return event.Status(s).IsValid() },
		"company_role": func(s string) bool { return company.Role(s).IsValid() },
	}
	for tag, valid := range enums {
		if err := v.RegisterValidation(tag, enumValidator(valid)); err != nil {
			return err
		}
	}
	return nil
}

func enumValidator(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return valid(fl.Field().String())
	}
}

// FormatValidationErrors turns a binding error into the 400 envelope. Field
// errors get one detail each; anything else (bad JSON, wrong types) is
// reported as malformed.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return dto.NewValidationErrorResponse("Malformed request: "+err.Error(), requestID, nil)
	}
	details := make([]dto.ValidationDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: describe(fe), Tag: fe.Tag()})
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes the 400 validation response
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, getRequestIDFromContext(c)))
}

func getRequestIDFromContext(c *gin.Context) string {
	if id := c.GetString(logger.GinRequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}

var fixedMessages = map[string]string{
	"required":     "This field is required",
	"email":        "Invalid email format",
	"uuid":         "Invalid UUID format",
	"url":          "Invalid URL format",
	"event_format": "Unknown event format",
	"event_theme":  "Unknown event theme",
	"event_status": "Must be one of: DRAFT, PUBLISHED, CANCELLED",
	"company_role": "Must be one of: OWNER, EDITOR, MEMBER",
}

func describe(fe validator.FieldError) string {
	if msg, ok := fixedMessages[fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "min":
		return "Must be at least " + fe.Param() + unit(fe.Kind())
	case "max":
		return "Must be at most " + fe.Param() + unit(fe.Kind())
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "datetime":
		return "Must be a date in format " + fe.Param()
	}
	return "Invalid value"
}

// unit names what min/max count for strings and slices
func unit(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	}
	return ""
}

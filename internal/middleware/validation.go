package middleware

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"carmine/internal/payment"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so clients can match them to inputs
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("cardnumber", stringRule(payment.ValidCardNumber))
	validate.RegisterValidation("cardexpiry", stringRule(payment.ValidExpiry))
	validate.RegisterValidation("cvv", stringRule(payment.ValidCVV))
}

func stringRule(ok func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return ok(fl.Field().String())
	}
}

// ValidateRequest validates the request body against a struct with validation tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// ValidationMiddleware rejects request bodies that are not JSON. Field
// validation happens in handlers via DecodeAndValidate.
func ValidationMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				if r.ContentLength != 0 && !isJSON(r.Header.Get("Content-Type")) {
					logger.Debug("Rejected non-JSON request body",
						zap.String("path", r.URL.Path),
						zap.String("content_type", r.Header.Get("Content-Type")),
					)
					RespondWithError(w, http.StatusUnsupportedMediaType, "content type must be application/json")
					return
				}
				r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}

// DecodeAndValidate decodes JSON request body and validates it
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return ValidateRequest(v)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// IsValidationError reports whether err came from struct validation rather
// than from decoding the body.
func IsValidationError(err error) bool {
	var ve validator.ValidationErrors
	return errors.As(err, &ve)
}

// FormatValidationErrors converts validator errors to a readable format
func FormatValidationErrors(err error) []ValidationError {
	var errors []ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			errors = append(errors, ValidationError{
				Field:   e.Field(),
				Message: getErrorMessage(e),
			})
		}
	}

	return errors
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "gt":
		return "Value must be greater than " + e.Param()
	case "lt":
		return "Value must be less than " + e.Param()
	case "cardnumber":
		return "Card number must be 16 digits"
	case "cardexpiry":
		return "Expiration date must be MM/YY"
	case "cvv":
		return "CVV must be 3 digits"
	case "uuid", "uuid4":
		return "Value must be a UUID"
	default:
		return "Invalid value"
	}
}

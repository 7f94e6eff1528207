package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const MissingField = "Missing data for required field."

var setupOnce sync.Once

// SetupValidator makes gin's validator report json field names.
func SetupValidator() {
	setupOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
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
		}
	})
}

// FieldErrors maps a field name to its problems.
type FieldErrors map[string][]string

func (f FieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

// ValidationError answers 400 for a failed bind. Validator and type errors
// become a FieldErrors message; other decode errors a plain string.
func ValidationError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &validationErrs):
		fields := FieldErrors{}
		for _, fe := range validationErrs {
			fields.add(fe.Field(), fieldMessage(fe))
		}
		Error(c, http.StatusBadRequest, fields)
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "_schema"
		}
		Error(c, http.StatusBadRequest, FieldErrors{field: {"Not a valid " + kindName(typeErr.Type) + "."}})
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		Error(c, http.StatusBadRequest, "Invalid JSON body")
	default:
		Error(c, http.StatusBadRequest, err.Error())
	}
}

func fieldMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required", "required_unless", "required_if":
		return MissingField
	case "email":
		return "Not a valid email address."
	case "max":
		if isString {
			return "Longer than maximum length " + fe.Param() + "."
		}
		return "Must be less than or equal to " + fe.Param() + "."
	case "min":
		if isString {
			return "Shorter than minimum length " + fe.Param() + "."
		}
		return "Must be greater than or equal to " + fe.Param() + "."
	case "gte":
		return "Must be greater than or equal to " + fe.Param() + "."
	case "lte":
		return "Must be less than or equal to " + fe.Param() + "."
	case "gt":
		return "Must be greater than " + fe.Param() + "."
	case "oneof":
		return "Must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ") + "."
	default:
		return "Invalid value."
	}
}

func kindName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	default:
		return "value"
	}
}

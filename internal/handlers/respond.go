package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/crucial707/blog-api/internal/apierr"
	"github.com/crucial707/blog-api/internal/store"
	"github.com/go-playground/validator/v10"
)

// validate is shared; validator caches struct metadata per type.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON (or query) name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	// singleline rejects control characters such as CR and LF.
	v.RegisterValidation("singleline", func(fl validator.FieldLevel) bool {
		return !strings.ContainsFunc(fl.Field().String(), unicode.IsControl)
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	apierr.JSON(w, status, v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apierr.Write(w, r, err)
}

// decodeJSON reads one JSON object from the body into dst. Unknown fields are ignored.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apierr.BadRequest("request body required")
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &tooLarge):
		return apierr.PayloadTooLarge()
	case errors.Is(err, io.EOF):
		return apierr.BadRequest("request body required")
	case errors.As(err, &typeErr):
		return apierr.Validation(apierr.FieldError{Field: typeErr.Field, Message: "has the wrong type"})
	default:
		return apierr.BadRequest("invalid JSON")
	}
}

// validateStruct runs the struct tags of v and converts failures to a 400 with details.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	details := make([]apierr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apierr.FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
	}
	return apierr.Validation(details...)
}

// fieldPath drops the root struct name from the namespace: "postInput.etiquetas[2]" -> "etiquetas[2]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s items", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s items", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return "must be a valid e-mail address"
	case "uuid":
		return "must be a valid id"
	case "singleline":
		return "must not contain line breaks or control characters"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

// storeError maps store sentinels to API errors. notFound is the 404 message.
func storeError(err error, notFound string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apierr.NotFound(notFound)
	case errors.Is(err, store.ErrConflict):
		return apierr.Conflict("resource already exists")
	default:
		return err
	}
}

// intParam parses an optional positive integer query parameter. Absent yields
// def; anything not parseable or outside [min, max] is a validation error.
func intParam(r *http.Request, name string, def, min, max int) (int, *apierr.FieldError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		msg := fmt.Sprintf("must be an integer between %d and %d", min, max)
		if max == maxInt {
			msg = fmt.Sprintf("must be an integer >= %d", min)
		}
		return 0, &apierr.FieldError{Field: name, Message: msg}
	}
	return n, nil
}

const maxInt = int(^uint(0) >> 1)

func logAndIgnore(msg string, err error, attrs ...any) {
	if err != nil {
		slog.Error(msg, append([]any{"error", err}, attrs...)...)
	}
}

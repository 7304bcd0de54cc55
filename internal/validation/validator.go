// Package validation checks decoded request payloads with go-playground/validator.
// Field names in messages are taken from the json tags.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/YusovID/service-requests/internal/apperrors"
	"github.com/go-playground/validator/v10"
)

var (
	validate = validator.New(validator.WithRequiredStructEnabled())

	phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{5,19}$`)
	codeRe  = regexp.MustCompile(`^[a-z0-9_-]+$`)
)

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	// Empty values are left to "required".
	rules := map[string]*regexp.Regexp{
		"phone": phoneRe,
		"code":  codeRe,
	}

	for tag, re := range rules {
		err := validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			v := fl.Field().String()
			return v == "" || re.MatchString(v)
		})
		if err != nil {
			panic(fmt.Sprintf("failed to register %s validation: %v", tag, err))
		}
	}
}

// ValidationError lists every failed field of a payload.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return strings.Join(v.Errors, ", ")
}

func (v *ValidationError) Is(target error) bool { return target == apperrors.ErrValidation }

// ValidateStruct returns a *ValidationError when s violates its validate tags.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}

	messages := make([]string, 0, len(fieldErrs))

	for _, fe := range fieldErrs {
		var message string

		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("field '%s' is required", fe.Field())
		case "phone":
			message = fmt.Sprintf("field '%s' must be a phone number", fe.Field())
		case "code":
			message = fmt.Sprintf("field '%s' must contain only lowercase letters, digits, hyphens and underscores", fe.Field())
		case "min", "max", "gte", "lte":
			message = fmt.Sprintf("field '%s' must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
		default:
			message = fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
		}

		messages = append(messages, message)
	}

	return &ValidationError{Errors: messages}
}

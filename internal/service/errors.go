package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports input the service refuses before any write.
type ValidationError struct {
	Message string
	err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.err
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

func invalidErr(err error) error {
	return &ValidationError{Message: err.Error(), err: err}
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// describe turns validator output into one readable sentence.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	var missing, problems []string
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			missing = append(missing, field)
		case "email":
			problems = append(problems, "invalid email format")
		case "gt":
			problems = append(problems, fmt.Sprintf("%s must be greater than %s", field, fe.Param()))
		case "gte":
			problems = append(problems, fmt.Sprintf("%s must not be negative", field))
		case "min":
			problems = append(problems, fmt.Sprintf("%s must contain at least %s entry", field, fe.Param()))
		default:
			problems = append(problems, fmt.Sprintf("%s is invalid", field))
		}
	}

	if len(missing) > 0 {
		problems = append([]string{"missing required fields: " + strings.Join(missing, ", ")}, problems...)
	}
	return strings.Join(problems, "; ")
}

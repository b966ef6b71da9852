package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxPasswordBytes is the longest password bcrypt accepts.
const maxPasswordBytes = 72

// usernamePattern allows letters, digits and @.+-_ like the usual web frameworks do.
var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// NewValidator returns a validator with the auth rules registered.
func NewValidator() *validator.Validate {
	validate := validator.New()

	validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	// bcrypt hashes at most 72 bytes; max counts characters.
	validate.RegisterValidation("bcrypt", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})

	return validate
}

// LoginRequest is the body of the token endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,max=128"`
}

// CreateUserRequest is used by the admin tool to add accounts.
type CreateUserRequest struct {
	Username string `validate:"required,min=3,max=150,username"`
	Password string `validate:"required,min=8,max=72,bcrypt"`
}

// RequestError reports a request that failed validation.
type RequestError struct {
	Fields  []string
	Message string
}

func (e *RequestError) Error() string {
	return "invalid request: " + e.Message
}

// newRequestError converts validator output into a RequestError.
func newRequestError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	fields := make([]string, 0, len(errs))
	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := strings.ToLower(fe.Field())
		fields = append(fields, field)

		var msg string
		switch fe.Tag() {
		case "required":
			msg = fmt.Sprintf("%s: this field is required", field)
		case "min":
			msg = fmt.Sprintf("%s: must be at least %s characters", field, fe.Param())
		case "max":
			msg = fmt.Sprintf("%s: must be at most %s characters", field, fe.Param())
		case "bcrypt":
			msg = fmt.Sprintf("%s: must be at most %d bytes", field, maxPasswordBytes)
		case "username":
			msg = fmt.Sprintf("%s: may contain only letters, digits and @/./+/-/_", field)
		default:
			msg = fmt.Sprintf("%s: failed %s", field, fe.Tag())
		}
		messages = append(messages, msg)
	}

	return &RequestError{Fields: fields, Message: strings.Join(messages, ", ")}
}

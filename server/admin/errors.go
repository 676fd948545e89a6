package admin

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrEmptyReply         = errors.New("reply text cannot be empty")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotStaff           = errors.New("user is not staff")
	ErrUnknownAction      = errors.New("unknown action")
)

// NotFoundError reports a missing row of the named entity. It matches ErrNotFound.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v not found", strings.ToLower(e.Entity))
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every invalid field of a submitted form.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("Error in %v: %v", field.Field, field.Message))
	}

	return strings.Join(msgs, " ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// MailError wraps a failure of the outbound mail transport.
type MailError struct {
	Err error
}

func (e *MailError) Error() string {
	return e.Err.Error()
}

func (e *MailError) Unwrap() error {
	return e.Err
}

func userNotice(err error) (string, bool) {
	var validationErr *ValidationError
	var notFoundErr *NotFoundError
	var mailErr *MailError

	switch {
	case errors.As(err, &validationErr):
		return validationErr.Error(), true
	case errors.As(err, &notFoundErr):
		return fmt.Sprintf("%v not found.", notFoundErr.Entity), true
	case errors.As(err, &mailErr):
		return fmt.Sprintf("Failed to send reply: %v", mailErr.Err), true
	case errors.Is(err, ErrDuplicateUsername):
		return "Username already exists.", true
	case errors.Is(err, ErrEmptyReply):
		return "Reply text cannot be empty.", true
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrNotStaff):
		return "Invalid credentials or not an admin user.", true
	}

	return "", false
}

package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/rbac-task-api/internal/models"
)

var (
	ErrTaskNotFound = errors.New("task not found")

	// ErrNotAuthorized is the parent of every per-operation denial.
	ErrNotAuthorized    = errors.New("not authorized")
	ErrTaskAccessDenied = fmt.Errorf("%w: task is not assigned to you", ErrNotAuthorized)
	ErrTaskUpdateDenied = fmt.Errorf("%w: only the assignee or an admin can update this task", ErrNotAuthorized)
	ErrTaskDeleteDenied = fmt.Errorf("%w: only the creator or an admin can delete this task", ErrNotAuthorized)
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

// ValidationError reports rejected input per JSON field.
type ValidationError struct {
	Fields models.FieldErrors
}

func (e *ValidationError) Error() string {
	return e.Fields.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Fields
}

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: models.FieldErrors{field: msg}}
}

// validateModel runs the model's tag validation and lifts field violations into a ValidationError.
func validateModel(model any) error {
	err := models.Validate(model)
	if err == nil {
		return nil
	}

	var fields models.FieldErrors
	if errors.As(err, &fields) {
		return &ValidationError{Fields: fields}
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

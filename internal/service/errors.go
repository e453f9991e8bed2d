package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrForbidden is returned when a record is addressed through a user that
// does not own it.
var ErrForbidden = errors.New("forbidden: resource belongs to another user")

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

func validationErr(errs []string) error {
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

type AuditEntry struct {
	UserID       uuid.UUID
	Action       string
	ResourceType string
	ResourceID   string
	Changes      map[string]any
}

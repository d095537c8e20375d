// Package common defines the sentinel errors shared by the store, service and
// HTTP layers. Callers match them with errors.Is.
package common

import (
	"errors"
	"strings"
)

var (
	// Store-level errors.
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already registered")

	// Authentication errors.
	ErrAuthFailed       = errors.New("incorrect username or password")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenInvalid     = errors.New("invalid token")

	// Authorization errors.
	ErrForbidden = errors.New("forbidden")

	// Request errors.
	ErrInvalidPagination    = errors.New("invalid pagination")
	ErrTaskAlreadyCompleted = errors.New("task is already completed")
)

// FieldIssue describes a single rejected field.
type FieldIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError is returned when input fails boundary validation. The request
// never reaches the store when it is returned.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, strings.Join(issue.Loc, ".")+": "+issue.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for one field.
func NewValidationError(loc []string, msg, kind string) *ValidationError {
	return &ValidationError{Issues: []FieldIssue{{Loc: loc, Msg: msg, Type: kind}}}
}

// PaginationError carries the user-facing reason for a rejected skip/limit pair.
type PaginationError struct {
	Reason string
}

func (e *PaginationError) Error() string { return e.Reason }

func (e *PaginationError) Unwrap() error { return ErrInvalidPagination }

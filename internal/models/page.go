package models

import "github.com/isdelr/taskapi/internal/common"

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination is a validated skip/limit window.
type Pagination struct {
	Skip  int
	Limit int
}

// Validate rejects negative skips and limits outside [1, MaxLimit].
func (p Pagination) Validate() error {
	if p.Skip < 0 {
		return &common.PaginationError{Reason: "Skip must be non-negative!"}
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		return &common.PaginationError{Reason: "Limit must be between 1 and 100 (inclusive)!"}
	}
	return nil
}

// Page is one window of a listing together with the unpaginated total.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// TaskFilter narrows a task listing.
type TaskFilter struct {
	Status *TaskStatus
}

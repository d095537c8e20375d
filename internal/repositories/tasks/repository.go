// Package tasks persists tasks.
package tasks

import (
	"context"
	"time"

	"github.com/isdelr/taskapi/internal/models"
)

// Repository is the task store. Single-row operations return
// common.ErrNotFound when the task does not exist.
type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	// UpdateFields applies the non-nil fields of patch in one statement.
	UpdateFields(ctx context.Context, id int64, patch models.TaskUpdate, updatedAt time.Time) error
	// SetStatus changes the status and reports whether the row changed; a task
	// already in status is left untouched.
	SetStatus(ctx context.Context, id int64, status models.TaskStatus, updatedAt time.Time) (bool, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.TaskFilter, skip, limit int) ([]models.Task, int, error)
	ListForUser(ctx context.Context, userID int64, skip, limit int) ([]models.Task, int, error)
}

// Package users persists user accounts.
package users

import (
	"context"

	"github.com/isdelr/taskapi/internal/models"
)

// Repository is the user store. Lookups return common.ErrNotFound when no row
// matches; Create returns common.ErrDuplicateUsername on a taken username.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

// Package events persists the per-user activity log.
package events

import (
	"context"

	"github.com/isdelr/taskapi/internal/models"
)

type Repository interface {
	Create(ctx context.Context, event *models.Event) error
	ListForUser(ctx context.Context, userID int64, limit int) ([]models.Event, error)
}

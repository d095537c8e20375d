package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/taskapi/internal/common"
	"github.com/isdelr/taskapi/internal/models"
	"github.com/isdelr/taskapi/internal/repositories/repomanager"
)

// Event types recorded for task activity.
const (
	EventTaskCreated   = "task.create"
	EventTaskUpdated   = "task.update"
	EventTaskCompleted = "task.complete"
	EventTaskDeleted   = "task.delete"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, userID int64, eventType, message string) error
	GetRecentEvents(ctx context.Context, identity models.User, limit int) ([]models.Event, error)
}

// EventService provides business logic for the per-user activity log.
type EventService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	now   func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB, repos repomanager.RepositoryManager) *EventService {
	return &EventService{
		db:    db,
		repos: repos,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateEvent logs a new event to the database.
func (s *EventService) CreateEvent(ctx context.Context, userID int64, eventType, message string) error {
	event := models.Event{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      eventType,
		Message:   message,
		CreatedAt: s.now(),
	}
	return s.repos.Events(s.db).Create(ctx, &event)
}

// GetRecentEvents retrieves the identity's most recent events.
func (s *EventService) GetRecentEvents(ctx context.Context, identity models.User, limit int) ([]models.Event, error) {
	if limit < 1 || limit > models.MaxLimit {
		return nil, &common.PaginationError{Reason: "Limit must be between 1 and 100 (inclusive)!"}
	}
	return s.repos.Events(s.db).ListForUser(ctx, identity.ID, limit)
}

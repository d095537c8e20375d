package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/isdelr/taskapi/internal/auth"
	"github.com/isdelr/taskapi/internal/common"
	"github.com/isdelr/taskapi/internal/database"
	"github.com/isdelr/taskapi/internal/models"
	"github.com/isdelr/taskapi/internal/repositories/repomanager"
	"github.com/isdelr/taskapi/internal/repositories/tasks"
	"github.com/rs/zerolog/log"
)

// TaskServiceProvider defines the interface for task services.
type TaskServiceProvider interface {
	CreateTask(ctx context.Context, identity models.User, input models.TaskCreate) (models.Task, error)
	GetTask(ctx context.Context, id int64) (models.Task, error)
	ListTasks(ctx context.Context, filter models.TaskFilter, page models.Pagination) (models.Page[models.Task], error)
	ListUserTasks(ctx context.Context, identity models.User, page models.Pagination) (models.Page[models.Task], error)
	UpdateTask(ctx context.Context, identity models.User, id int64, patch models.TaskUpdate) (models.Task, error)
	CompleteTask(ctx context.Context, identity models.User, id int64) (models.Task, error)
	DeleteTask(ctx context.Context, identity models.User, id int64) error
}

// TaskService provides business logic for task management. Every mutation
// checks existence, then ownership, then writes, inside one transaction.
type TaskService struct {
	db           *sql.DB
	repos        repomanager.RepositoryManager
	eventService EventServiceProvider
	now          func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(db *sql.DB, repos repomanager.RepositoryManager, eventService EventServiceProvider) *TaskService {
	return &TaskService{
		db:           db,
		repos:        repos,
		eventService: eventService,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateTask stores a new task owned by identity.
func (s *TaskService) CreateTask(ctx context.Context, identity models.User, input models.TaskCreate) (models.Task, error) {
	if err := input.Validate(); err != nil {
		return models.Task{}, err
	}

	now := s.now()
	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		UserID:      identity.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := database.WithTx(ctx, s.db, nil, func(ctx context.Context, tx database.DBTX) error {
		created, err := s.repos.Tasks(tx).Create(ctx, task)
		if err != nil {
			return err
		}
		task = created
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}

	s.recordEvent(ctx, identity.ID, EventTaskCreated, fmt.Sprintf("Task '%s' created.", task.Title))
	return *task, nil
}

// GetTask retrieves a single task by its ID.
func (s *TaskService) GetTask(ctx context.Context, id int64) (models.Task, error) {
	task, err := s.repos.Tasks(s.db).GetByID(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	return *task, nil
}

// ListTasks returns one page of all tasks, optionally filtered by status.
func (s *TaskService) ListTasks(ctx context.Context, filter models.TaskFilter, page models.Pagination) (models.Page[models.Task], error) {
	if err := page.Validate(); err != nil {
		return models.Page[models.Task]{}, err
	}
	items, total, err := s.repos.Tasks(s.db).List(ctx, filter, page.Skip, page.Limit)
	if err != nil {
		return models.Page[models.Task]{}, err
	}
	return models.Page[models.Task]{Items: items, Total: total, Skip: page.Skip, Limit: page.Limit}, nil
}

// ListUserTasks returns one page of the tasks owned by identity.
func (s *TaskService) ListUserTasks(ctx context.Context, identity models.User, page models.Pagination) (models.Page[models.Task], error) {
	if err := page.Validate(); err != nil {
		return models.Page[models.Task]{}, err
	}
	items, total, err := s.repos.Tasks(s.db).ListForUser(ctx, identity.ID, page.Skip, page.Limit)
	if err != nil {
		return models.Page[models.Task]{}, err
	}
	return models.Page[models.Task]{Items: items, Total: total, Skip: page.Skip, Limit: page.Limit}, nil
}

// UpdateTask applies patch to a task owned by identity. An empty patch
// returns the task unchanged.
func (s *TaskService) UpdateTask(ctx context.Context, identity models.User, id int64, patch models.TaskUpdate) (models.Task, error) {
	if err := patch.Validate(); err != nil {
		return models.Task{}, err
	}

	var updated *models.Task
	err := s.withOwnedTask(ctx, identity, id, func(ctx context.Context, repo tasks.Repository, task *models.Task) error {
		if patch.IsEmpty() {
			updated = task
			return nil
		}
		if err := repo.UpdateFields(ctx, id, patch, s.now()); err != nil {
			return err
		}
		var err error
		updated, err = repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return models.Task{}, err
	}

	if !patch.IsEmpty() {
		s.recordEvent(ctx, identity.ID, EventTaskUpdated, fmt.Sprintf("Task '%s' updated.", updated.Title))
	}
	return *updated, nil
}

// CompleteTask marks a task owned by identity as completed.
func (s *TaskService) CompleteTask(ctx context.Context, identity models.User, id int64) (models.Task, error) {
	var completed *models.Task
	err := s.withOwnedTask(ctx, identity, id, func(ctx context.Context, repo tasks.Repository, _ *models.Task) error {
		changed, err := repo.SetStatus(ctx, id, models.TaskStatusCompleted, s.now())
		if err != nil {
			return err
		}
		if !changed {
			return common.ErrTaskAlreadyCompleted
		}
		completed, err = repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return models.Task{}, err
	}

	s.recordEvent(ctx, identity.ID, EventTaskCompleted, fmt.Sprintf("Task '%s' completed.", completed.Title))
	return *completed, nil
}

// DeleteTask removes a task owned by identity.
func (s *TaskService) DeleteTask(ctx context.Context, identity models.User, id int64) error {
	var title string
	err := s.withOwnedTask(ctx, identity, id, func(ctx context.Context, repo tasks.Repository, task *models.Task) error {
		title = task.Title
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.recordEvent(ctx, identity.ID, EventTaskDeleted, fmt.Sprintf("Task '%s' deleted.", title))
	return nil
}

// withOwnedTask loads task id inside a transaction, checks that identity owns
// it and then runs fn against the same transaction.
func (s *TaskService) withOwnedTask(ctx context.Context, identity models.User, id int64,
	fn func(ctx context.Context, repo tasks.Repository, task *models.Task) error) error {
	return database.WithTx(ctx, s.db, nil, func(ctx context.Context, tx database.DBTX) error {
		repo := s.repos.Tasks(tx)
		task, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := auth.AuthorizeOwner(task.OwnerID(), identity); err != nil {
			return err
		}
		return fn(ctx, repo, task)
	})
}

// recordEvent writes to the activity log after the mutation has committed. A
// failure here never fails the request.
func (s *TaskService) recordEvent(ctx context.Context, userID int64, eventType, message string) {
	if s.eventService == nil {
		return
	}
	if err := s.eventService.CreateEvent(ctx, userID, eventType, message); err != nil {
		log.Error().Err(err).Str("type", eventType).Int64("user_id", userID).Msg("Failed to record event")
	}
}

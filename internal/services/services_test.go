package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/isdelr/taskapi/internal/auth"
	"github.com/isdelr/taskapi/internal/database"
	"github.com/isdelr/taskapi/internal/models"
	"github.com/isdelr/taskapi/internal/repositories/repomanager"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	db     *sql.DB
	tokens *auth.TokenService
	users  *UserService
	tasks  *TaskService
	events *EventService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.New(ctx, database.SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repos := repomanager.NewSQLRepositoryManager(database.SQLite)
	require.NoError(t, repos.RunMigrations(ctx, db))

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret: []byte("test-secret"), Algorithm: "HS256", TTL: 30 * time.Minute,
	})
	require.NoError(t, err)

	events := NewEventService(db, repos)
	return &testEnv{
		db:     db,
		tokens: tokens,
		users:  NewUserService(db, repos, auth.NewPasswordHasher(bcrypt.MinCost), tokens),
		tasks:  NewTaskService(db, repos, events),
		events: events,
	}
}

func (e *testEnv) register(t *testing.T, username string) models.User {
	t.Helper()
	user, err := e.users.CreateUser(context.Background(), models.UserCreate{
		FirstName: "First", Username: username, Password: "password123",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) createTask(t *testing.T, owner models.User, title string) models.Task {
	t.Helper()
	task, err := e.tasks.CreateTask(context.Background(), owner, models.TaskCreate{Title: title})
	require.NoError(t, err)
	return task
}

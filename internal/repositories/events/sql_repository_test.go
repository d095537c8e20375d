package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/isdelr/taskapi/internal/database"
	"github.com/isdelr/taskapi/internal/models"
	"github.com/isdelr/taskapi/internal/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndListForUser(t *testing.T) {
	ctx := context.Background()
	db, err := database.New(ctx, database.SQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(ctx, db, database.SQLite))

	owner, err := users.NewSQLRepository(db, database.SQLite).Create(ctx, &models.User{
		FirstName: "Ann", Username: "ann", PasswordHash: "h", CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	repo := NewSQLRepository(db, database.SQLite)
	base := time.Now().UTC()
	for i, typ := range []string{"task.create", "task.update", "task.complete"} {
		require.NoError(t, repo.Create(ctx, &models.Event{
			ID: uuid.New().String(), UserID: owner.ID, Type: typ, Message: typ,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := repo.ListForUser(ctx, owner.ID, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "task.complete", got[0].Type, "newest first")
	assert.Equal(t, "task.update", got[1].Type)

	none, err := repo.ListForUser(ctx, owner.ID+1, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCreate_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO events`).WillReturnError(errors.New("db down"))

	err = NewSQLRepository(db, database.Postgres).Create(context.Background(), &models.Event{ID: "e1", UserID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

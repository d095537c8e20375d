// Package repomanager vends repositories bound to either the connection pool
// or a transaction, so services can scope a unit of work explicitly.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/isdelr/taskapi/internal/database"
	"github.com/isdelr/taskapi/internal/repositories/events"
	"github.com/isdelr/taskapi/internal/repositories/tasks"
	"github.com/isdelr/taskapi/internal/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db database.DBTX) users.Repository
	Tasks(db database.DBTX) tasks.Repository
	Events(db database.DBTX) events.Repository
}

// SQLRepositoryManager builds SQL repositories for one dialect.
type SQLRepositoryManager struct {
	dialect database.Dialect
}

func NewSQLRepositoryManager(dialect database.Dialect) *SQLRepositoryManager {
	return &SQLRepositoryManager{dialect: dialect}
}

func (m *SQLRepositoryManager) Users(db database.DBTX) users.Repository {
	return users.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) Tasks(db database.DBTX) tasks.Repository {
	return tasks.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) Events(db database.DBTX) events.Repository {
	return events.NewSQLRepository(db, m.dialect)
}

// migrate is a seam for tests.
var migrate = database.Migrate

// RunMigrations applies the embedded schema for the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, m.dialect)
}

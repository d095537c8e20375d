package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/isdelr/taskapi/internal/common"
	"github.com/isdelr/taskapi/internal/database"
	"github.com/isdelr/taskapi/internal/models"
)

type SQLRepository struct {
	db      database.DBTX
	dialect database.Dialect
}

func NewSQLRepository(db database.DBTX, dialect database.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := r.dialect.Rebind(
		`INSERT INTO users (first_name, last_name, username, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`)

	err := r.db.QueryRowContext(ctx, query,
		user.FirstName, user.LastName, user.Username, user.PasswordHash, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *SQLRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := r.dialect.Rebind(
		`SELECT id, first_name, last_name, username, password_hash, created_at FROM users
		 WHERE username = ?`)
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := r.dialect.Rebind(
		`SELECT id, first_name, last_name, username, password_hash, created_at FROM users
		 WHERE id = ?`)
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// Delete removes the user; owned tasks and events go with it via ON DELETE CASCADE.
func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanUser(scanner interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	err := scanner.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

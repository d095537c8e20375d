package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/isdelr/taskapi/internal/common"
	"github.com/isdelr/taskapi/internal/database"
	"github.com/isdelr/taskapi/internal/models"
)

const taskColumns = `id, title, description, status, user_id, created_at, updated_at`

type SQLRepository struct {
	db      database.DBTX
	dialect database.Dialect
}

func NewSQLRepository(db database.DBTX, dialect database.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := r.dialect.Rebind(
		`INSERT INTO tasks (title, description, status, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING id`)

	err := r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, string(task.Status), task.UserID, task.CreatedAt, task.UpdatedAt).Scan(&task.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	query := r.dialect.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)
	return scanTask(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLRepository) UpdateFields(ctx context.Context, id int64, patch models.TaskUpdate, updatedAt time.Time) error {
	query := r.dialect.Rebind(
		`UPDATE tasks
		 SET title = COALESCE(?, title),
		     description = COALESCE(?, description),
		     status = COALESCE(?, status),
		     updated_at = ?
		 WHERE id = ?`)

	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	res, err := r.db.ExecContext(ctx, query, patch.Title, patch.Description, status, updatedAt, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *SQLRepository) SetStatus(ctx context.Context, id int64, status models.TaskStatus, updatedAt time.Time) (bool, error) {
	query := r.dialect.Rebind(
		`UPDATE tasks SET status = ?, updated_at = ?
		 WHERE id = ? AND status <> ?`)

	res, err := r.db.ExecContext(ctx, query, string(status), updatedAt, id, string(status))
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *SQLRepository) List(ctx context.Context, filter models.TaskFilter, skip, limit int) ([]models.Task, int, error) {
	where, args := "", []any{}
	if filter.Status != nil {
		where = ` WHERE status = ?`
		args = append(args, string(*filter.Status))
	}
	return r.page(ctx, where, args, skip, limit)
}

func (r *SQLRepository) ListForUser(ctx context.Context, userID int64, skip, limit int) ([]models.Task, int, error) {
	return r.page(ctx, ` WHERE user_id = ?`, []any{userID}, skip, limit)
}

// page returns one window of tasks matching where, ordered by id, plus the
// total number of matches.
func (r *SQLRepository) page(ctx context.Context, where string, args []any, skip, limit int) ([]models.Task, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(`SELECT COUNT(*) FROM tasks`+where), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := r.dialect.Rebind(`SELECT ` + taskColumns + ` FROM tasks` + where + ` ORDER BY id LIMIT ? OFFSET ?`)
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, skip)...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return items, total, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanTask(scanner interface{ Scan(...any) error }) (*models.Task, error) {
	task := &models.Task{}
	var status string
	err := scanner.Scan(&task.ID, &task.Title, &task.Description, &status, &task.UserID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	task.Status = models.TaskStatus(status)
	return task, nil
}

package events

import (
	"context"
	"fmt"

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

func (r *SQLRepository) Create(ctx context.Context, event *models.Event) error {
	query := r.dialect.Rebind(
		`INSERT INTO events (id, user_id, type, message, created_at)
		 VALUES (?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query, event.ID, event.UserID, event.Type, event.Message, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListForUser returns the user's most recent events, newest first.
func (r *SQLRepository) ListForUser(ctx context.Context, userID int64, limit int) ([]models.Event, error) {
	query := r.dialect.Rebind(
		`SELECT id, user_id, type, message, created_at FROM events
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id
		 LIMIT ?`)

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.UserID, &event.Type, &event.Message, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return events, nil
}

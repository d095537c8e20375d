package models

import "time"

// Event represents an entry in a user's activity log.
type Event struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"` // e.g., "task.create", "task.complete"
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

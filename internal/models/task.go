package models

import "time"

// TaskStatus is the lifecycle state of a task. It is serialised by name.
type TaskStatus string

const (
	TaskStatusNew        TaskStatus = "NEW"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

// ParseTaskStatus accepts only the exact status names.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch TaskStatus(s) {
	case TaskStatusNew, TaskStatusInProgress, TaskStatusCompleted:
		return TaskStatus(s), true
	}
	return "", false
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      TaskStatus `json:"status"`
	UserID      int64      `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// OwnerID returns the id of the user allowed to mutate the task.
func (t Task) OwnerID() int64 { return t.UserID }

// TaskCreate is the payload for creating a task. Status defaults to NEW.
type TaskCreate struct {
	Title       string     `json:"title" validate:"required,max=100"`
	Description *string    `json:"description" validate:"omitempty,max=500"`
	Status      TaskStatus `json:"status" validate:"omitempty,oneof=NEW IN_PROGRESS COMPLETED"`
}

// Validate checks field constraints and fills in the default status.
func (t *TaskCreate) Validate() error {
	if err := validateStruct(t); err != nil {
		return err
	}
	if t.Status == "" {
		t.Status = TaskStatusNew
	}
	return nil
}

// TaskUpdate is a partial update; nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string     `json:"title" validate:"omitempty,min=1,max=100"`
	Description *string     `json:"description" validate:"omitempty,max=500"`
	Status      *TaskStatus `json:"status" validate:"omitempty,oneof=NEW IN_PROGRESS COMPLETED"`
}

// Validate checks field constraints of the fields that are present.
func (t TaskUpdate) Validate() error {
	return validateStruct(t)
}

// IsEmpty reports whether the update changes nothing.
func (t TaskUpdate) IsEmpty() bool {
	return t.Title == nil && t.Description == nil && t.Status == nil
}

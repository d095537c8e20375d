package handlers

import (
	"net/http"

	"github.com/isdelr/taskapi/internal/auth"
	"github.com/isdelr/taskapi/internal/common"
	"github.com/isdelr/taskapi/internal/models"
	"github.com/isdelr/taskapi/internal/services"
	"github.com/rs/zerolog/log"
)

// TaskHandler handles HTTP requests related to tasks.
type TaskHandler struct {
	service services.TaskServiceProvider
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service services.TaskServiceProvider) *TaskHandler {
	return &TaskHandler{service: service}
}

// GetAll lists every task, optionally filtered by ?status=.
func (h *TaskHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	page, err := pagination(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var filter models.TaskFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := models.ParseTaskStatus(raw)
		if !ok {
			WriteError(w, r, common.NewValidationError([]string{"query", "status"},
				"Input should be 'NEW', 'IN_PROGRESS' or 'COMPLETED'", "enum"))
			return
		}
		filter.Status = &status
	}

	result, err := h.service.ListTasks(r.Context(), filter, page)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetMine lists the authenticated user's tasks.
func (h *TaskHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		WriteError(w, r, common.ErrNotAuthenticated)
		return
	}
	page, err := pagination(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	result, err := h.service.ListUserTasks(r.Context(), identity, page)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Get handles the request to get a single task by its ID.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "task_id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	task, err := h.service.GetTask(r.Context(), id)
	if err != nil {
		writeError(w, r, err, taskErrors)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Create handles the request to create a new task owned by the caller.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		WriteError(w, r, common.ErrNotAuthenticated)
		return
	}
	var payload models.TaskCreate
	if !decodeJSON(w, r, &payload) {
		return
	}

	task, err := h.service.CreateTask(r.Context(), identity, payload)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Update applies a partial update to a task owned by the caller.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		WriteError(w, r, common.ErrNotAuthenticated)
		return
	}
	id, err := pathID(r, "task_id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var payload models.TaskUpdate
	if !decodeJSON(w, r, &payload) {
		return
	}

	task, err := h.service.UpdateTask(r.Context(), identity, id, payload)
	if err != nil {
		log.Debug().Err(err).Int64("task_id", id).Int64("user_id", identity.ID).Msg("Task update rejected")
		writeError(w, r, err, taskErrors)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Complete marks a task owned by the caller as completed.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		WriteError(w, r, common.ErrNotAuthenticated)
		return
	}
	id, err := pathID(r, "task_id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	task, err := h.service.CompleteTask(r.Context(), identity, id)
	if err != nil {
		writeError(w, r, err, taskErrors)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete removes a task owned by the caller.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		WriteError(w, r, common.ErrNotAuthenticated)
		return
	}
	id, err := pathID(r, "task_id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.service.DeleteTask(r.Context(), identity, id); err != nil {
		log.Debug().Err(err).Int64("task_id", id).Int64("user_id", identity.ID).Msg("Task delete rejected")
		writeError(w, r, err, taskDeleteErrors)
		return
	}
	writeDetail(w, http.StatusOK, "Task deleted!")
}

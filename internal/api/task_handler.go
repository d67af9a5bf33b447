package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fatihgnc/taskman-api/internal/api/shared"
	"github.com/fatihgnc/taskman-api/internal/domain"
	"github.com/fatihgnc/taskman-api/internal/service"
	"github.com/fatihgnc/taskman-api/internal/store"
)

// sortFields maps the sortBy query field names onto store sort keys. Both
// the snake_case column name and the camelCase client spelling are accepted.
var sortFields = map[string]string{
	"created_at":  store.SortByCreatedAt,
	"createdAt":   store.SortByCreatedAt,
	"description": store.SortByDescription,
	"completed":   store.SortByCompleted,
}

// TaskHandler handles task-related API requests. Every route is
// authenticated and operates on the acting user's own tasks.
type TaskHandler struct {
	tasks     service.TaskService
	validator *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(tasks service.TaskService) *TaskHandler {
	return &TaskHandler{
		tasks:     tasks,
		validator: validator.New(),
	}
}

// Create handles POST /tasks. The owner is always the authenticated user;
// any owner field in the payload is ignored by the request model.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.tasks.Create(r.Context(), user.ID, req.Description, req.Completed)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewTaskResponse(task))
}

// List handles GET /tasks with optional completed, sortBy, limit, and skip
// query parameters. sortBy takes the form "field:asc" or "field:desc".
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	opts, err := parseListOptions(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.tasks.List(r.Context(), user.ID, opts)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskListResponse(tasks))
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.Get(r.Context(), user.ID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Update handles PATCH /tasks/{id}. Only description and completed may be
// updated; any other key rejects the whole request without mutating anything.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateTaskRequest
	if err := decodeStrict(r, allowedTaskUpdateFields, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.Update(r.Context(), user.ID, taskID, service.TaskUpdate{
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Delete handles DELETE /tasks/{id}. The response echoes the removed task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.Delete(r.Context(), user.ID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// parseListOptions extracts filtering, sorting, and pagination from the
// query string. Malformed values wrap domain.ErrValidation and map to a 400.
func parseListOptions(r *http.Request) (store.ListOptions, error) {
	var opts store.ListOptions
	query := r.URL.Query()

	if raw := query.Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, domain.NewValidationError("completed", "must be true or false", domain.ErrValidation)
		}
		opts.Completed = &completed
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return opts, domain.NewValidationError("limit", "must be a non-negative integer", domain.ErrValidation)
		}
		opts.Limit = limit
	}

	if raw := query.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return opts, domain.NewValidationError("skip", "must be a non-negative integer", domain.ErrValidation)
		}
		opts.Skip = skip
	}

	if raw := query.Get("sortBy"); raw != "" {
		field := raw
		direction := "asc"
		if idx := strings.IndexByte(raw, ':'); idx >= 0 {
			field = raw[:idx]
			direction = raw[idx+1:]
		}

		sortBy, ok := sortFields[field]
		if !ok {
			return opts, domain.NewValidationError("sortBy", "names an unknown field", domain.ErrValidation)
		}
		opts.SortBy = sortBy

		switch strings.ToLower(direction) {
		case "asc":
			opts.Descending = false
		case "desc":
			opts.Descending = true
		default:
			return opts, domain.NewValidationError("sortBy", "direction must be asc or desc", domain.ErrValidation)
		}
	}

	return opts, nil
}

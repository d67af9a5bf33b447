package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/fatihgnc/taskman-api/internal/domain"
	"github.com/fatihgnc/taskman-api/internal/store"
)

// TaskUpdate carries the updatable task fields. Nil pointers mean "leave
// unchanged"; the handler layer has already rejected unknown fields.
type TaskUpdate struct {
	Description *string
	Completed   *bool
}

// TaskService provides the owner-scoped task CRUD. The acting user's ID
// always comes from the authenticated request context; task IDs supplied by
// clients resolve only within that user's tasks.
type TaskService interface {
	// Create makes a new task owned by ownerID. Any owner supplied by the
	// client has already been discarded by the handler.
	Create(ctx context.Context, ownerID uuid.UUID, description string, completed *bool) (*domain.Task, error)

	// List returns the owner's tasks per the given options.
	List(ctx context.Context, ownerID uuid.UUID, opts store.ListOptions) ([]*domain.Task, error)

	// Get returns a single owned task; foreign or missing tasks both yield
	// store.ErrTaskNotFound.
	Get(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// Update applies the allowed task fields and revalidates.
	Update(ctx context.Context, ownerID, taskID uuid.UUID, update TaskUpdate) (*domain.Task, error)

	// Delete removes an owned task and returns it.
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)
}

// TaskServiceImpl implements the TaskService interface.
type TaskServiceImpl struct {
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewTaskService creates a TaskService.
func NewTaskService(tasks store.TaskStore, logger *slog.Logger) *TaskServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskServiceImpl{
		tasks:  tasks,
		logger: logger.With("component", "task_service"),
	}
}

// Ensure TaskServiceImpl implements TaskService.
var _ TaskService = (*TaskServiceImpl)(nil)

// Create implements TaskService.Create.
func (s *TaskServiceImpl) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	description string,
	completed *bool,
) (*domain.Task, error) {
	task, err := domain.NewTask(ownerID, description, completed)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		s.logger.Error("failed to create task", "error", err, "owner_id", ownerID)
		return nil, err
	}

	return task, nil
}

// List implements TaskService.List.
func (s *TaskServiceImpl) List(
	ctx context.Context,
	ownerID uuid.UUID,
	opts store.ListOptions,
) ([]*domain.Task, error) {
	return s.tasks.List(ctx, ownerID, opts)
}

// Get implements TaskService.Get.
func (s *TaskServiceImpl) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, ownerID, taskID)
}

// Update implements TaskService.Update.
func (s *TaskServiceImpl) Update(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	update TaskUpdate,
) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	if update.Description != nil {
		task.Description = strings.TrimSpace(*update.Description)
	}
	if update.Completed != nil {
		task.Completed = *update.Completed
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// Delete implements TaskService.Delete.
func (s *TaskServiceImpl) Delete(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
) (*domain.Task, error) {
	return s.tasks.Delete(ctx, ownerID, taskID)
}

package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/fatihgnc/taskman-api/internal/domain"
)

// Task list sort fields accepted by ListOptions.
const (
	SortByCreatedAt   = "created_at"
	SortByDescription = "description"
	SortByCompleted   = "completed"
)

// DefaultListLimit caps unpaginated task listings.
const DefaultListLimit = 50

// ListOptions describes filtering, sorting, and pagination for task listings.
// The zero value lists the newest tasks first with the default limit.
type ListOptions struct {
	// Completed filters by completion state when non-nil.
	Completed *bool

	// SortBy must be one of the SortBy* constants; empty means created_at.
	SortBy string

	// Descending reverses the sort order.
	Descending bool

	// Limit caps the number of rows returned; non-positive means
	// DefaultListLimit.
	Limit int

	// Skip is the number of rows to skip for pagination.
	Skip int
}

// TaskStore defines the interface for task persistence. Every read and
// mutation is scoped to the owning user: a task ID belonging to someone else
// behaves exactly like a missing task.
type TaskStore interface {
	// Create saves a new task after validating it.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves one task owned by ownerID.
	// Returns ErrTaskNotFound when absent or foreign-owned.
	GetByID(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// List returns the owner's tasks per the given options. The result is an
	// empty slice, never nil, when nothing matches.
	List(ctx context.Context, ownerID uuid.UUID, opts ListOptions) ([]*domain.Task, error)

	// Update persists changes to a task's description/completed fields,
	// scoped to the task's owner.
	// Returns ErrTaskNotFound when absent or foreign-owned.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes one task owned by ownerID and returns the deleted task.
	// Returns ErrTaskNotFound when absent or foreign-owned.
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// DeleteByOwner removes every task owned by ownerID, returning the count.
	// Used by the account deletion cascade.
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// WithTx returns a TaskStore bound to the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}

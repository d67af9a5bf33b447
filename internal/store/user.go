package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/fatihgnc/taskman-api/internal/domain"
)

// UserStore defines the interface for user data persistence, including the
// session token set and the avatar blob.
type UserStore interface {
	// Create saves a new user to the store. It validates the user and hashes
	// the plaintext password before persistence.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	// The avatar blob is not populated; use GetAvatar.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their normalized email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByIDWithToken retrieves a user only when the exact token string is
	// still present in that user's session set. A token removed by logout
	// must not resolve the user even if its signature would still verify.
	// Returns ErrUserNotFound otherwise.
	GetByIDWithToken(ctx context.Context, id uuid.UUID, token string) (*domain.User, error)

	// Update modifies an existing user's profile fields. If a plaintext
	// Password is set it is hashed and the stored hash replaced; otherwise
	// the existing hash is kept untouched (no double hashing).
	// Returns ErrUserNotFound if the user does not exist and ErrEmailExists
	// when updating to an already-registered email.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user by ID. Sessions and tasks referencing the user
	// are removed by the database cascade; callers that need the cascade to
	// be one logical unit should run inside a transaction via WithTx.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddToken appends a newly issued session token to the user's set.
	AddToken(ctx context.Context, userID uuid.UUID, token string) error

	// RemoveToken removes exactly one token from the user's set.
	RemoveToken(ctx context.Context, userID uuid.UUID, token string) error

	// RemoveAllTokens empties the user's session set.
	RemoveAllTokens(ctx context.Context, userID uuid.UUID) error

	// UpdateAvatar stores the normalized avatar image for the user.
	UpdateAvatar(ctx context.Context, userID uuid.UUID, avatar []byte) error

	// GetAvatar returns the stored avatar bytes.
	// Returns ErrUserNotFound if the user does not exist and ErrAvatarNotFound
	// if the user has no avatar.
	GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error)

	// ClearAvatar removes the user's avatar.
	ClearAvatar(ctx context.Context, userID uuid.UUID) error

	// WithTx returns a UserStore bound to the provided transaction so several
	// operations can commit or roll back as one unit.
	WithTx(tx *sql.Tx) UserStore
}

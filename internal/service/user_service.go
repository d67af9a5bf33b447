package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/fatihgnc/taskman-api/internal/avatar"
	"github.com/fatihgnc/taskman-api/internal/domain"
	"github.com/fatihgnc/taskman-api/internal/service/auth"
	"github.com/fatihgnc/taskman-api/internal/store"
)

// MailDispatcher is the fire-and-forget notification hook. Enqueues never
// block and their outcome is never observed by the request path.
type MailDispatcher interface {
	EnqueueWelcome(email, name string)
	EnqueueCancellation(email, name string)
}

// ProfileUpdate carries the updatable profile fields. Nil pointers mean
// "leave unchanged"; the handler layer has already rejected unknown fields.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// UserService provides account operations: signup, login, session
// management, profile mutation, avatars, and account deletion with its task
// cascade.
type UserService interface {
	// SignUp registers a new account, issues its first session token, and
	// schedules the welcome email.
	SignUp(ctx context.Context, name, email, password string, age *int) (*domain.User, string, error)

	// Login verifies credentials and issues an additional session token;
	// existing sessions stay valid. Any credential failure returns
	// ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)

	// Logout revokes exactly the token used on this request.
	Logout(ctx context.Context, userID uuid.UUID, token string) error

	// LogoutAll revokes every session token the user holds.
	LogoutAll(ctx context.Context, userID uuid.UUID) error

	// GetProfile returns the acting user.
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UpdateProfile applies the allowed profile fields and revalidates.
	UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.User, error)

	// DeleteAccount removes the user and all owned tasks as one logical
	// unit, then schedules the cancellation email.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error

	// UploadAvatar normalizes and stores an avatar image.
	UploadAvatar(ctx context.Context, userID uuid.UUID, data []byte, filename string) error

	// DeleteAvatar clears the stored avatar.
	DeleteAvatar(ctx context.Context, userID uuid.UUID) error

	// GetAvatar returns the stored avatar bytes; it is a public read.
	GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error)
}

// UserServiceImpl implements the UserService interface.
type UserServiceImpl struct {
	db       *sql.DB
	users    store.UserStore
	tasks    store.TaskStore
	jwt      auth.JWTService
	verifier auth.PasswordVerifier
	avatars  *avatar.Processor
	mail     MailDispatcher
	logger   *slog.Logger

	// runTx is a seam for testing the cascade without a live database.
	runTx func(ctx context.Context, db *sql.DB, fn store.TxFn) error
}

// NewUserService creates a UserService.
func NewUserService(
	db *sql.DB,
	users store.UserStore,
	tasks store.TaskStore,
	jwtService auth.JWTService,
	verifier auth.PasswordVerifier,
	mail MailDispatcher,
	logger *slog.Logger,
) *UserServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		db:       db,
		users:    users,
		tasks:    tasks,
		jwt:      jwtService,
		verifier: verifier,
		avatars:  avatar.NewProcessor(),
		mail:     mail,
		logger:   logger.With("component", "user_service"),
		runTx:    store.RunInTransaction,
	}
}

// Ensure UserServiceImpl implements UserService.
var _ UserService = (*UserServiceImpl)(nil)

// SetRunTx replaces the transaction runner. Tests use this to exercise the
// deletion cascade against mock stores without a live database.
func (s *UserServiceImpl) SetRunTx(runTx func(ctx context.Context, db *sql.DB, fn store.TxFn) error) {
	s.runTx = runTx
}

// SignUp implements UserService.SignUp.
func (s *UserServiceImpl) SignUp(
	ctx context.Context,
	name, email, password string,
	age *int,
) (*domain.User, string, error) {
	user, err := domain.NewUser(name, email, password, age)
	if err != nil {
		return nil, "", err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			s.logger.Debug("signup with already-registered email")
		} else {
			s.logger.Error("failed to create user", "error", err)
		}
		return nil, "", err
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.mail.EnqueueWelcome(user.Email, user.Name)

	s.logger.Info("user signed up", "user_id", user.ID)
	return user, token, nil
}

// Login implements UserService.Login.
func (s *UserServiceImpl) Login(
	ctx context.Context,
	email, password string,
) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		s.logger.Error("failed to look up user for login", "error", err)
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// issueToken signs a fresh token and appends it to the user's session set.
func (s *UserServiceImpl) issueToken(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := s.jwt.GenerateToken(ctx, userID)
	if err != nil {
		s.logger.Error("failed to generate token", "error", err, "user_id", userID)
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.users.AddToken(ctx, userID, token); err != nil {
		s.logger.Error("failed to persist token", "error", err, "user_id", userID)
		return "", fmt.Errorf("failed to persist token: %w", err)
	}

	return token, nil
}

// Logout implements UserService.Logout.
func (s *UserServiceImpl) Logout(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.users.RemoveToken(ctx, userID, token); err != nil {
		s.logger.Error("failed to revoke token", "error", err, "user_id", userID)
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// LogoutAll implements UserService.LogoutAll.
func (s *UserServiceImpl) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.RemoveAllTokens(ctx, userID); err != nil {
		s.logger.Error("failed to revoke tokens", "error", err, "user_id", userID)
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	return nil
}

// GetProfile implements UserService.GetProfile.
func (s *UserServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile implements UserService.UpdateProfile. Only touched fields
// change; in particular the password is rehashed only when supplied.
func (s *UserServiceImpl) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	update ProfileUpdate,
) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.Email != nil {
		user.Email = domain.NormalizeEmail(*update.Email)
	}
	if update.Password != nil {
		// Set the plaintext; the store hashes it on update.
		user.Password = *update.Password
	}
	if update.Age != nil {
		user.Age = update.Age
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", "user_id", user.ID)
	return user, nil
}

// DeleteAccount implements UserService.DeleteAccount. The task cascade and
// the user row removal commit together; a failed cascade aborts the whole
// deletion, never stranding orphaned tasks.
func (s *UserServiceImpl) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	err = s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.tasks.WithTx(tx).DeleteByOwner(ctx, userID); err != nil {
			return fmt.Errorf("failed to cascade-delete tasks: %w", err)
		}
		return s.users.WithTx(tx).Delete(ctx, userID)
	})
	if err != nil {
		s.logger.Error("failed to delete account", "error", err, "user_id", userID)
		return err
	}

	s.mail.EnqueueCancellation(user.Email, user.Name)

	s.logger.Info("account deleted", "user_id", userID)
	return nil
}

// UploadAvatar implements UserService.UploadAvatar.
func (s *UserServiceImpl) UploadAvatar(
	ctx context.Context,
	userID uuid.UUID,
	data []byte,
	filename string,
) error {
	normalized, err := s.avatars.Normalize(data, filename)
	if err != nil {
		return err
	}

	if err := s.users.UpdateAvatar(ctx, userID, normalized); err != nil {
		s.logger.Error("failed to store avatar", "error", err, "user_id", userID)
		return err
	}

	s.logger.Info("avatar uploaded", "user_id", userID, "bytes", len(normalized))
	return nil
}

// DeleteAvatar implements UserService.DeleteAvatar.
func (s *UserServiceImpl) DeleteAvatar(ctx context.Context, userID uuid.UUID) error {
	return s.users.ClearAvatar(ctx, userID)
}

// GetAvatar implements UserService.GetAvatar.
func (s *UserServiceImpl) GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	return s.users.GetAvatar(ctx, userID)
}

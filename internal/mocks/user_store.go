package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/fatihgnc/taskman-api/internal/domain"
	"github.com/fatihgnc/taskman-api/internal/store"
)

// MockUserStore implements store.UserStore for testing. The default
// behavior is a small in-memory store; any method can be overridden with
// its Fn field.
type MockUserStore struct {
	mu sync.Mutex

	// Function fields for customizable behavior
	CreateFn           func(ctx context.Context, user *domain.User) error
	GetByIDFn          func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn       func(ctx context.Context, email string) (*domain.User, error)
	GetByIDWithTokenFn func(ctx context.Context, id uuid.UUID, token string) (*domain.User, error)
	UpdateFn           func(ctx context.Context, user *domain.User) error
	DeleteFn           func(ctx context.Context, id uuid.UUID) error
	AddTokenFn         func(ctx context.Context, userID uuid.UUID, token string) error
	RemoveTokenFn      func(ctx context.Context, userID uuid.UUID, token string) error
	RemoveAllTokensFn  func(ctx context.Context, userID uuid.UUID) error
	UpdateAvatarFn     func(ctx context.Context, userID uuid.UUID, avatar []byte) error
	GetAvatarFn        func(ctx context.Context, userID uuid.UUID) ([]byte, error)
	ClearAvatarFn      func(ctx context.Context, userID uuid.UUID) error

	// Data for the default in-memory implementation
	Users   map[uuid.UUID]*domain.User
	Tokens  map[uuid.UUID][]string
	Avatars map[uuid.UUID][]byte

	// Errors returned by the default implementation when set
	CreateError error
	UpdateError error
	DeleteError error
	TokenError  error
}

// NewMockUserStore creates a new mock store with initialized defaults.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		Users:   make(map[uuid.UUID]*domain.User),
		Tokens:  make(map[uuid.UUID][]string),
		Avatars: make(map[uuid.UUID][]byte),
	}
}

// Ensure MockUserStore implements store.UserStore.
var _ store.UserStore = (*MockUserStore)(nil)

// Create implements the store.UserStore interface. The default behavior
// simulates hashing by moving the plaintext password into HashedPassword.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	if m.CreateError != nil {
		return m.CreateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	if user.Password != "" {
		user.HashedPassword = "hashed:" + user.Password
		user.Password = ""
	}
	m.Users[user.ID] = user
	return nil
}

// GetByID implements the store.UserStore interface.
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.Users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// GetByEmail implements the store.UserStore interface.
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.Users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByIDWithToken implements the store.UserStore interface.
func (m *MockUserStore) GetByIDWithToken(
	ctx context.Context,
	id uuid.UUID,
	token string,
) (*domain.User, error) {
	if m.GetByIDWithTokenFn != nil {
		return m.GetByIDWithTokenFn(ctx, id, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.Users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	for _, t := range m.Tokens[id] {
		if t == token {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// Update implements the store.UserStore interface.
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}
	if m.UpdateError != nil {
		return m.UpdateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	for id, existing := range m.Users {
		if id != user.ID && existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	if user.Password != "" {
		user.HashedPassword = "hashed:" + user.Password
		user.Password = ""
	}
	m.Users[user.ID] = user
	return nil
}

// Delete implements the store.UserStore interface.
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.Users, id)
	delete(m.Tokens, id)
	delete(m.Avatars, id)
	return nil
}

// AddToken implements the store.UserStore interface.
func (m *MockUserStore) AddToken(ctx context.Context, userID uuid.UUID, token string) error {
	if m.AddTokenFn != nil {
		return m.AddTokenFn(ctx, userID, token)
	}
	if m.TokenError != nil {
		return m.TokenError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[userID]; !ok {
		return store.ErrUserNotFound
	}
	m.Tokens[userID] = append(m.Tokens[userID], token)
	return nil
}

// RemoveToken implements the store.UserStore interface.
func (m *MockUserStore) RemoveToken(ctx context.Context, userID uuid.UUID, token string) error {
	if m.RemoveTokenFn != nil {
		return m.RemoveTokenFn(ctx, userID, token)
	}
	if m.TokenError != nil {
		return m.TokenError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.Tokens[userID][:0]
	for _, t := range m.Tokens[userID] {
		if t != token {
			kept = append(kept, t)
		}
	}
	m.Tokens[userID] = kept
	return nil
}

// RemoveAllTokens implements the store.UserStore interface.
func (m *MockUserStore) RemoveAllTokens(ctx context.Context, userID uuid.UUID) error {
	if m.RemoveAllTokensFn != nil {
		return m.RemoveAllTokensFn(ctx, userID)
	}
	if m.TokenError != nil {
		return m.TokenError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tokens[userID] = nil
	return nil
}

// UpdateAvatar implements the store.UserStore interface.
func (m *MockUserStore) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatar []byte) error {
	if m.UpdateAvatarFn != nil {
		return m.UpdateAvatarFn(ctx, userID, avatar)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[userID]; !ok {
		return store.ErrUserNotFound
	}
	m.Avatars[userID] = avatar
	return nil
}

// GetAvatar implements the store.UserStore interface.
func (m *MockUserStore) GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	if m.GetAvatarFn != nil {
		return m.GetAvatarFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[userID]; !ok {
		return nil, store.ErrUserNotFound
	}
	avatar, ok := m.Avatars[userID]
	if !ok || len(avatar) == 0 {
		return nil, store.ErrAvatarNotFound
	}
	return avatar, nil
}

// ClearAvatar implements the store.UserStore interface.
func (m *MockUserStore) ClearAvatar(ctx context.Context, userID uuid.UUID) error {
	if m.ClearAvatarFn != nil {
		return m.ClearAvatarFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[userID]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.Avatars, userID)
	return nil
}

// WithTx implements the store.UserStore interface. The mock has no real
// transactions, so it returns itself.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

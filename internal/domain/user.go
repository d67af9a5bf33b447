package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Common validation errors for users.
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyName           = errors.New("name cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 7 characters long")
	ErrPasswordForbidden   = errors.New(`password must not contain the word "password"`)
	ErrNegativeAge         = errors.New("age must be a non-negative number")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 7

// emailValidator is used for RFC-style email grammar checks.
var emailValidator = validator.New()

// User represents a registered account. A user may hold several concurrent
// session tokens (multi-device); the token set lives in the sessions table
// and is managed through the user store, not on this struct.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext, present only transiently during signup/updates
	HashedPassword string    `json:"-"` // Never exposed in JSON
	Age            *int      `json:"age,omitempty"`
	Avatar         []byte    `json:"-"` // Served only through the dedicated avatar endpoint
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a User from signup input. Name and email are normalized
// (trimmed, email lowercased) before validation. The plaintext password is
// kept on the struct; the store hashes it before persistence.
func NewUser(name, email, password string, age *int) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Password:  password,
		Age:       age,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// NormalizeEmail lowercases and trims an email address so uniqueness checks
// are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks the user's fields against the account rules.
// A plaintext password, when present, is validated for strength; when absent
// the user must already carry a hash (the loaded-from-storage case).
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}
	if err := emailValidator.Var(u.Email, "email"); err != nil {
		return ErrInvalidEmail
	}

	if u.Password != "" {
		if err := ValidatePassword(u.Password); err != nil {
			return err
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	if u.Age != nil && *u.Age < 0 {
		return ErrNegativeAge
	}

	return nil
}

// ValidatePassword enforces the plaintext password rules: minimum length and
// a case-insensitive ban on the substring "password".
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return ErrPasswordForbidden
	}
	return nil
}

package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatihgnc/taskman-api/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestNewUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		age      *int
		wantErr  error
	}{
		{
			name:     "valid user",
			userName: "fatih young",
			email:    "young@example.com",
			password: "computer098",
			wantErr:  nil,
		},
		{
			name:     "valid user with age",
			userName: "fatih young",
			email:    "young@example.com",
			password: "computer098",
			age:      intPtr(27),
			wantErr:  nil,
		},
		{
			name:     "empty name",
			userName: "   ",
			email:    "young@example.com",
			password: "computer098",
			wantErr:  domain.ErrEmptyName,
		},
		{
			name:     "empty email",
			userName: "fatih",
			email:    "",
			password: "computer098",
			wantErr:  domain.ErrEmptyEmail,
		},
		{
			name:     "malformed email",
			userName: "fatih",
			email:    "example!example.com",
			password: "computer098",
			wantErr:  domain.ErrInvalidEmail,
		},
		{
			name:     "password too short",
			userName: "fatih",
			email:    "asd@example.com",
			password: "123456",
			wantErr:  domain.ErrPasswordTooShort,
		},
		{
			name:     "password contains the word password",
			userName: "fatih",
			email:    "asd@example.com",
			password: "myPassWord1",
			wantErr:  domain.ErrPasswordForbidden,
		},
		{
			name:     "negative age",
			userName: "fatih",
			email:    "asd@example.com",
			password: "computer098",
			age:      intPtr(-1),
			wantErr:  domain.ErrNegativeAge,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			user, err := domain.NewUser(tt.userName, tt.email, tt.password, tt.age)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, user)
			assert.NotEqual(t, "", user.ID.String())
			assert.Equal(t, tt.password, user.Password, "plaintext kept for the store to hash")
			assert.Empty(t, user.HashedPassword)
		})
	}
}

func TestNewUserNormalizesInput(t *testing.T) {
	t.Parallel()

	user, err := domain.NewUser("  Fatih  ", "  Young@Example.COM ", "computer098", nil)
	require.NoError(t, err)

	assert.Equal(t, "Fatih", user.Name)
	assert.Equal(t, "young@example.com", user.Email)
}

func TestValidateExistingUserWithoutPlaintext(t *testing.T) {
	t.Parallel()

	user, err := domain.NewUser("fatih", "young@example.com", "computer098", nil)
	require.NoError(t, err)

	// Simulate a user loaded from storage: hash present, plaintext gone.
	user.HashedPassword = "$2a$08$notarealhashnotarealhashnotarealha"
	user.Password = ""
	assert.NoError(t, user.Validate())

	user.HashedPassword = ""
	assert.ErrorIs(t, user.Validate(), domain.ErrEmptyPassword)
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	assert.NoError(t, domain.ValidatePassword("computer098"))
	assert.ErrorIs(t, domain.ValidatePassword("short"), domain.ErrPasswordTooShort)
	assert.ErrorIs(t, domain.ValidatePassword("PASSWORD123"), domain.ErrPasswordForbidden)
	assert.ErrorIs(t, domain.ValidatePassword("xxpassword"), domain.ErrPasswordForbidden)
}

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatihgnc/taskman-api/internal/config"
	"github.com/fatihgnc/taskman-api/internal/service/auth"
)

const testSecret = "thisisasecretkeythatis32charslong!!"

func newTestService(t *testing.T, lifetimeMinutes int) auth.JWTService {
	t.Helper()

	svc, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            testSecret,
		TokenLifetimeMinutes: lifetimeMinutes,
	})
	require.NoError(t, err)
	return svc
}

func TestNewJWTServiceRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "short",
		TokenLifetimeMinutes: 60,
	})
	assert.Error(t, err)
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, 60)
	ctx := context.Background()
	userID := uuid.New()

	token, err := svc.GenerateToken(ctx, userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 2*time.Minute)
}

func TestTokensAreUniquePerIssue(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, 60)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.GenerateToken(ctx, userID)
	require.NoError(t, err)
	second, err := svc.GenerateToken(ctx, userID)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "each login must get a distinct token")
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, 60)
	ctx := context.Background()

	_, err := svc.ValidateToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	svc := newTestService(t, 60)
	token, err := svc.GenerateToken(ctx, userID)
	require.NoError(t, err)

	other, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "adifferentsecretkeythatis32charslong",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	_, err = other.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

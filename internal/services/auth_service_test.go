package services

import (
	"context"
	"testing"
	"time"

	chat_errors "github.com/emanuuele/girls-chat-api/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Alice@Example.com", "secret123", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Empty(t, u.PasswordHash)

	// Duplicate email conflicts.
	_, err = svc.Register(ctx, "alice@example.com", "secret123", "Alice Again")
	assert.ErrorIs(t, err, chat_errors.ErrAlreadyExists)

	logged, token, err := svc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, u.ID, logged.ID)

	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.LastLoginAt.Valid)

	claims, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "secret123", "Alice")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, chat_errors.ErrUnauthorized)

	_, _, err = svc.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, chat_errors.ErrUnauthorized)
}

func TestRegisterValidatesInput(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), "test-secret", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "not-an-email", "secret123", "X")
	assert.ErrorIs(t, err, chat_errors.ErrInvalidInput)

	_, err = svc.Register(ctx, "short@example.com", "abc", "X")
	assert.ErrorIs(t, err, chat_errors.ErrInvalidInput)
}

func TestParseAccessTokenRejectsForgedAndExpired(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)
	other := NewAuthService(repo, "other-secret", time.Hour)
	expired := NewAuthService(repo, "test-secret", -time.Hour)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice@example.com", "secret123", "Alice")
	require.NoError(t, err)

	forged, err := other.issueToken(u.ID)
	require.NoError(t, err)
	_, err = svc.ParseAccessToken(forged)
	assert.ErrorIs(t, err, chat_errors.ErrUnauthorized)

	stale, err := expired.issueToken(u.ID)
	require.NoError(t, err)
	_, err = svc.ParseAccessToken(stale)
	assert.ErrorIs(t, err, chat_errors.ErrUnauthorized)

	_, err = svc.ParseAccessToken("")
	assert.ErrorIs(t, err, chat_errors.ErrUnauthorized)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/daniyal-sudo/heraklean-backend/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo, "test-secret", time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Cleo Client", "cleo@example.com", "hunter2hunter2", domain.RoleClient)
	require.NoError(t, err)
	assert.False(t, user.ID.IsZero())
	assert.Equal(t, domain.RoleClient, user.Role)
	assert.Empty(t, user.PasswordHash, "response must not carry the hash")

	token, loggedIn, err := svc.Login(ctx, "cleo@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.Empty(t, loggedIn.PasswordHash)

	// The token must parse with our secret and carry id and role claims.
	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, domain.RoleClient, claims.Role)
	assert.Equal(t, "heraklean", claims.Issuer)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo, "test-secret", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Cleo", "cleo@example.com", "hunter2hunter2", domain.RoleClient)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other Cleo", "cleo@example.com", "different-pass", domain.RoleTrainer)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginWrongPassword(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo, "test-secret", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Cleo", "cleo@example.com", "hunter2hunter2", domain.RoleClient)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "cleo@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), "test-secret", time.Hour)

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestRegisterRejectsEmptyFields(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), "test-secret", time.Hour)

	_, err := svc.Register(context.Background(), "", "cleo@example.com", "pass", domain.RoleClient)
	assert.Error(t, err)
}

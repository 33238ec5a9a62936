package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), "test-secret", time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ana", "ana@example.com", "segredo123")
	require.NoError(t, err)
	assert.False(t, user.ID.IsZero())
	assert.Empty(t, user.PasswordHash, "hash must not leave the service")

	_, err = svc.Register(ctx, "Other", "ana@example.com", "different1")
	require.ErrorIs(t, err, ErrUserAlreadyExists)

	token, loggedIn, err := svc.Login(ctx, "ana@example.com", "segredo123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.Empty(t, loggedIn.PasswordHash)

	// the token must carry the user id and verify against the secret
	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), "test-secret", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ana", "ana@example.com", "segredo123")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "ana@example.com", "wrong password")
	require.ErrorIs(t, err, ErrAuthenticationFailed)

	// unknown emails produce the same error as bad passwords
	_, _, err = svc.Login(ctx, "nobody@example.com", "segredo123")
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

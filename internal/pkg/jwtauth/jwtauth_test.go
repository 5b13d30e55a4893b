//go:build unit

package jwtauth_test

import (
	"testing"
	"time"

	"rentflow/internal/pkg/jwtauth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := jwtauth.NewService("test-secret", time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateToken(userID, jwtauth.RoleStaff)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, jwtauth.RoleStaff, claims.Role)
}

func TestValidateToken(t *testing.T) {
	svc := jwtauth.NewService("test-secret", time.Hour)

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		require.ErrorIs(t, err, jwtauth.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := jwtauth.NewService("other-secret", time.Hour)
		token, err := other.GenerateToken(uuid.New(), jwtauth.RoleCustomer)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.ErrorIs(t, err, jwtauth.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		shortLived := jwtauth.NewService("test-secret", -time.Minute)
		token, err := shortLived.GenerateToken(uuid.New(), jwtauth.RoleCustomer)
		require.NoError(t, err)

		_, err = shortLived.ValidateToken(token)
		require.ErrorIs(t, err, jwtauth.ErrExpiredToken)
	})
}

func TestRoleIsStaff(t *testing.T) {
	assert.False(t, jwtauth.RoleCustomer.IsStaff())
	assert.True(t, jwtauth.RoleStaff.IsStaff())
	assert.True(t, jwtauth.RoleAdmin.IsStaff())
	assert.False(t, jwtauth.Role("stranger").IsStaff())
}

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "support-system/pkg/errors"
)

func TestGenerateAndValidateTokens(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute, time.Hour, zap.NewNop())

	access, refresh, err := svc.GenerateTokens(7, "client@example.com", "Иван Петров", "customer")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.UserID)
	assert.Equal(t, "client@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)
	assert.False(t, claims.IsRefreshToken)

	refreshClaims, err := svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.True(t, refreshClaims.IsRefreshToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", time.Minute, time.Hour, zap.NewNop())
	verifier := NewJWTService("secret-b", time.Minute, time.Hour, zap.NewNop())

	access, _, err := issuer.GenerateTokens(1, "admin@example.com", "Админ", "admin")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute, time.Hour, zap.NewNop())

	access, _, err := svc.GenerateTokens(1, "admin@example.com", "Админ", "admin")
	require.NoError(t, err)

	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute, time.Hour, zap.NewNop())

	_, err := svc.ValidateToken("не токен вовсе")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

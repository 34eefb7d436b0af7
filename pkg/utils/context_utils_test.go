package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-system/internal/dto"
	"support-system/pkg/constants"
	"support-system/pkg/contextkeys"
	apperrors "support-system/pkg/errors"
)

func TestGetClaimsFromCtx(t *testing.T) {
	principal := &dto.UserClaims{UserID: 7, Email: "client@example.com", Role: constants.RoleCustomer}
	ctx := context.WithValue(context.Background(), contextkeys.UserClaimsKey, principal)

	claims, err := GetClaimsFromCtx(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.UserID)

	_, err = GetClaimsFromCtx(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, IsAdmin(&dto.UserClaims{Role: constants.RoleAdmin}))
	assert.False(t, IsAdmin(&dto.UserClaims{Role: constants.RoleCustomer}))
	assert.False(t, IsAdmin(nil))
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"support-system/internal/dto"
	"support-system/internal/entities"
	"support-system/pkg/constants"
	apperrors "support-system/pkg/errors"
	"support-system/pkg/service"
)

func newAuthServiceForTest(t *testing.T) (AuthServiceInterface, *fakeCacheRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	userRepo := newFakeUserRepo(entities.User{
		ID:           7,
		Email:        "client@example.com",
		Name:         "Иван Петров",
		Role:         constants.RoleCustomer,
		PasswordHash: string(hash),
	})
	cacheRepo := newFakeCacheRepo()
	jwtSvc := service.NewJWTService("test-secret", time.Minute, time.Hour, zap.NewNop())
	return NewAuthService(userRepo, cacheRepo, jwtSvc, zap.NewNop()), cacheRepo
}

func TestLogin(t *testing.T) {
	svc, cacheRepo := newAuthServiceForTest(t)

	pair, err := svc.Login(context.Background(), dto.LoginDTO{
		Email:    "client@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, uint64(7), pair.User.ID)

	// Refresh-токен должен лежать в хранилище.
	stored, err := cacheRepo.Get(context.Background(), refreshTokenKey(7))
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, stored)
}

// Неизвестный email и неверный пароль дают одинаковую ошибку.
func TestLoginInvalidCredentials(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)

	_, err := svc.Login(context.Background(), dto.LoginDTO{
		Email:    "nobody@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginDTO{
		Email:    "client@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)

	pair, err := svc.Login(context.Background(), dto.LoginDTO{
		Email:    "client@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	renewed, err := svc.Refresh(context.Background(), dto.RefreshDTO{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, renewed.AccessToken)
	assert.Equal(t, uint64(7), renewed.User.ID)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)

	pair, err := svc.Login(context.Background(), dto.LoginDTO{
		Email:    "client@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), dto.RefreshDTO{RefreshToken: pair.AccessToken})
	assert.ErrorIs(t, err, apperrors.ErrTokenIsNotRefresh)
}

// После выхода refresh-токен теряет силу, даже если сам по себе валиден.
func TestRefreshAfterLogout(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)

	pair, err := svc.Login(context.Background(), dto.LoginDTO{
		Email:    "client@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), 7))

	_, err = svc.Refresh(context.Background(), dto.RefreshDTO{RefreshToken: pair.RefreshToken})
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestMe(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)

	user, err := svc.Me(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "client@example.com", user.Email)
	assert.Equal(t, constants.RoleCustomer, user.Role)

	_, err = svc.Me(context.Background(), 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

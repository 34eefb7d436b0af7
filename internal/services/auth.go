package services

import (
	"context"
	"fmt"

	"support-system/internal/dto"
	"support-system/internal/repositories"
	apperrors "support-system/pkg/errors"
	"support-system/pkg/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, error)
	Refresh(ctx context.Context, payload dto.RefreshDTO) (*dto.TokenPairDTO, error)
	Logout(ctx context.Context, userID uint64) error
	Me(ctx context.Context, userID uint64) (*dto.UserDTO, error)
}

type AuthService struct {
	userRepo   repositories.UserRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:   userRepo,
		cacheRepo:  cacheRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

func refreshTokenKey(userID uint64) string {
	return fmt.Sprintf("refresh_token:%d", userID)
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, error) {
	user, err := s.userRepo.FindByEmail(ctx, payload.Email)
	if err != nil {
		// Не раскрываем, существует ли такой email.
		s.logger.Warn("Попытка входа с неизвестным email", zap.String("email", payload.Email))
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		s.logger.Warn("Неверный пароль", zap.Uint64("user_id", user.ID))
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user.ID, user.Email, user.Name, user.Role)
}

func (s *AuthService) Refresh(ctx context.Context, payload dto.RefreshDTO) (*dto.TokenPairDTO, error) {
	claims, err := s.jwtService.ValidateToken(payload.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotRefresh
	}

	stored, err := s.cacheRepo.Get(ctx, refreshTokenKey(claims.UserID))
	if err != nil || stored != payload.RefreshToken {
		s.logger.Warn("Refresh-токен не найден в хранилище или не совпадает",
			zap.Uint64("user_id", claims.UserID))
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	return s.issueTokens(ctx, user.ID, user.Email, user.Name, user.Role)
}

func (s *AuthService) issueTokens(ctx context.Context, userID uint64, email, name, role string) (*dto.TokenPairDTO, error) {
	accessToken, refreshToken, err := s.jwtService.GenerateTokens(userID, email, name, role)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации токенов: %w", err)
	}

	if err := s.cacheRepo.Set(ctx, refreshTokenKey(userID), refreshToken, s.jwtService.GetRefreshTokenTTL()); err != nil {
		return nil, fmt.Errorf("ошибка сохранения refresh-токена: %w", err)
	}

	return &dto.TokenPairDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserDTO{
			ID:    userID,
			Email: email,
			Name:  name,
			Role:  role,
		},
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uint64) error {
	if err := s.cacheRepo.Del(ctx, refreshTokenKey(userID)); err != nil {
		return fmt.Errorf("ошибка удаления refresh-токена: %w", err)
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID uint64) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.UserDTO{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}, nil
}

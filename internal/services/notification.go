package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"support-system/internal/dto"
	"support-system/internal/repositories"
)

type NotificationServiceInterface interface {
	GetNotifications(ctx context.Context, unreadOnly bool, limit, offset uint64) ([]dto.NotificationDTO, uint64, error)
	MarkRead(ctx context.Context, id uint64) error
	MarkAllRead(ctx context.Context) (int64, error)
}

type NotificationService struct {
	notificationRepo repositories.NotificationRepositoryInterface
	logger           *zap.Logger
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepositoryInterface,
	logger *zap.Logger,
) NotificationServiceInterface {
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

func (s *NotificationService) GetNotifications(ctx context.Context, unreadOnly bool, limit, offset uint64) ([]dto.NotificationDTO, uint64, error) {
	notifications, total, err := s.notificationRepo.GetNotifications(ctx, unreadOnly, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		result = append(result, toNotificationDTO(n))
	}
	return result, total, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id uint64) error {
	return s.notificationRepo.MarkRead(ctx, id, time.Now())
}

func (s *NotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, time.Now())
}

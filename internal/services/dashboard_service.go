package services

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"support-system/internal/dto"
	"support-system/internal/repositories"
	apperrors "support-system/pkg/errors"
)

type DashboardServiceInterface interface {
	GetStats(ctx context.Context) (*dto.DashboardStatsDTO, error)
	GetResolutionStats(ctx context.Context, period, fromStr, toStr string) (*dto.ResolutionStatsDTO, error)
}

type DashboardService struct {
	dashboardRepo repositories.DashboardRepositoryInterface
	logger        *zap.Logger
}

func NewDashboardService(
	dashboardRepo repositories.DashboardRepositoryInterface,
	logger *zap.Logger,
) DashboardServiceInterface {
	return &DashboardService{
		dashboardRepo: dashboardRepo,
		logger:        logger,
	}
}

// GetStats собирает счетчики для админ-панели. Все считается на
// каждый запрос заново, без кеширования.
func (s *DashboardService) GetStats(ctx context.Context) (*dto.DashboardStatsDTO, error) {
	byStatus, err := s.dashboardRepo.CountTicketsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.dashboardRepo.CountTicketsByPriority(ctx)
	if err != nil {
		return nil, err
	}
	urgent, err := s.dashboardRepo.CountUrgentOpen(ctx)
	if err != nil {
		return nil, err
	}
	activeChats, err := s.dashboardRepo.CountActiveChats(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardStatsDTO{
		TicketsByStatus:   byStatus,
		TicketsByPriority: byPriority,
		UrgentCount:       urgent,
		ActiveChatCount:   activeChats,
	}, nil
}

// parsePeriod преобразует период из запроса в пару границ окна.
// Принимается либо именованный период (7d/30d/90d/1y), либо явная
// пара from/to в формате 2006-01-02.
func parsePeriod(period, fromStr, toStr string, now time.Time) (time.Time, time.Time, error) {
	if fromStr != "" || toStr != "" {
		from, err := time.ParseInLocation("2006-01-02", fromStr, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.ErrBadRequest
		}
		to, err := time.ParseInLocation("2006-01-02", toStr, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.ErrBadRequest
		}
		// Правая граница включает весь день.
		to = to.Add(24*time.Hour - time.Nanosecond)
		if to.Before(from) {
			return time.Time{}, time.Time{}, apperrors.ErrBadRequest
		}
		return from, to, nil
	}

	switch period {
	case "", "30d":
		return now.AddDate(0, 0, -30), now, nil
	case "7d":
		return now.AddDate(0, 0, -7), now, nil
	case "90d":
		return now.AddDate(0, 0, -90), now, nil
	case "1y":
		return now.AddDate(-1, 0, 0), now, nil
	}
	return time.Time{}, time.Time{}, apperrors.ErrBadRequest
}

func (s *DashboardService) GetResolutionStats(ctx context.Context, period, fromStr, toStr string) (*dto.ResolutionStatsDTO, error) {
	from, to, err := parsePeriod(period, fromStr, toStr, time.Now())
	if err != nil {
		return nil, err
	}

	row, err := s.dashboardRepo.ResolutionStats(ctx, from, to)
	if err != nil {
		return nil, err
	}

	// Доля решенных: решено-в-окне к создано-в-окне. Когорты
	// намеренно разные, см. комментарий к ResolutionStatsDTO.
	rate := 0.0
	if row.CreatedCount > 0 {
		rate = float64(row.ResolvedCount) / float64(row.CreatedCount) * 100
		rate = math.Round(rate*100) / 100
	}

	return &dto.ResolutionStatsDTO{
		From:                 formatTime(from),
		To:                   formatTime(to),
		CreatedCount:         row.CreatedCount,
		ResolvedCount:        row.ResolvedCount,
		ResolutionRate:       rate,
		AvgResolutionSeconds: row.AvgResolutionSeconds,
	}, nil
}

package services

import (
	"context"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"support-system/internal/dto"
	"support-system/internal/entities"
	"support-system/internal/repositories"
)

type TicketCategoryServiceInterface interface {
	GetTicketCategories(ctx context.Context, activeOnly bool) ([]dto.TicketCategoryDTO, error)
	FindTicketCategory(ctx context.Context, id uint64) (*dto.TicketCategoryDTO, error)
	CreateTicketCategory(ctx context.Context, payload dto.CreateTicketCategoryDTO) (*dto.TicketCategoryDTO, error)
	UpdateTicketCategory(ctx context.Context, id uint64, payload dto.UpdateTicketCategoryDTO) (*dto.TicketCategoryDTO, error)
	DeleteTicketCategory(ctx context.Context, id uint64) error
}

type TicketCategoryService struct {
	categoryRepo repositories.TicketCategoryRepositoryInterface
	logger       *zap.Logger
}

func NewTicketCategoryService(
	categoryRepo repositories.TicketCategoryRepositoryInterface,
	logger *zap.Logger,
) TicketCategoryServiceInterface {
	return &TicketCategoryService{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

func (s *TicketCategoryService) GetTicketCategories(ctx context.Context, activeOnly bool) ([]dto.TicketCategoryDTO, error) {
	categories, err := s.categoryRepo.GetTicketCategories(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	result := make([]dto.TicketCategoryDTO, 0, len(categories))
	for _, c := range categories {
		result = append(result, toTicketCategoryDTO(c))
	}
	return result, nil
}

func (s *TicketCategoryService) FindTicketCategory(ctx context.Context, id uint64) (*dto.TicketCategoryDTO, error) {
	category, err := s.categoryRepo.FindTicketCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	categoryDTO := toTicketCategoryDTO(*category)
	return &categoryDTO, nil
}

func (s *TicketCategoryService) CreateTicketCategory(ctx context.Context, payload dto.CreateTicketCategoryDTO) (*dto.TicketCategoryDTO, error) {
	category := &entities.TicketCategory{
		Name:     payload.Name,
		Color:    null.StringFromPtr(payload.Color),
		IsActive: true,
	}
	if payload.IsActive != nil {
		category.IsActive = *payload.IsActive
	}
	if payload.SortOrder != nil {
		category.SortOrder = *payload.SortOrder
	}

	id, err := s.categoryRepo.CreateTicketCategory(ctx, category)
	if err != nil {
		s.logger.Error("ошибка при создании категории", zap.Error(err))
		return nil, err
	}
	category.ID = id

	categoryDTO := toTicketCategoryDTO(*category)
	return &categoryDTO, nil
}

func (s *TicketCategoryService) UpdateTicketCategory(ctx context.Context, id uint64, payload dto.UpdateTicketCategoryDTO) (*dto.TicketCategoryDTO, error) {
	category, err := s.categoryRepo.FindTicketCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload.Name != nil {
		category.Name = *payload.Name
	}
	if payload.Color != nil {
		category.Color = null.StringFrom(*payload.Color)
	}
	if payload.IsActive != nil {
		category.IsActive = *payload.IsActive
	}
	if payload.SortOrder != nil {
		category.SortOrder = *payload.SortOrder
	}

	if err := s.categoryRepo.UpdateTicketCategory(ctx, category); err != nil {
		return nil, err
	}
	categoryDTO := toTicketCategoryDTO(*category)
	return &categoryDTO, nil
}

func (s *TicketCategoryService) DeleteTicketCategory(ctx context.Context, id uint64) error {
	return s.categoryRepo.DeleteTicketCategory(ctx, id)
}

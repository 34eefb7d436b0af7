package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"support-system/internal/dto"
	"support-system/internal/services"
	"support-system/pkg/utils"
)

type TicketCategoryController struct {
	categoryService services.TicketCategoryServiceInterface
	logger          *zap.Logger
}

func NewTicketCategoryController(
	categoryService services.TicketCategoryServiceInterface,
	logger *zap.Logger,
) *TicketCategoryController {
	return &TicketCategoryController{categoryService: categoryService, logger: logger}
}

func (c *TicketCategoryController) GetTicketCategories(ctx echo.Context) error {
	activeOnly := ctx.QueryParam("active_only") == "true"

	res, err := c.categoryService.GetTicketCategories(ctx.Request().Context(), activeOnly)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Список категорий получен", http.StatusOK)
}

func (c *TicketCategoryController) FindTicketCategory(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.categoryService.FindTicketCategory(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Категория найдена", http.StatusOK)
}

func (c *TicketCategoryController) CreateTicketCategory(ctx echo.Context) error {
	var payload dto.CreateTicketCategoryDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.categoryService.CreateTicketCategory(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Категория создана", http.StatusCreated)
}

func (c *TicketCategoryController) UpdateTicketCategory(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.UpdateTicketCategoryDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.categoryService.UpdateTicketCategory(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Категория обновлена", http.StatusOK)
}

func (c *TicketCategoryController) DeleteTicketCategory(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if err := c.categoryService.DeleteTicketCategory(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Категория удалена", http.StatusOK)
}

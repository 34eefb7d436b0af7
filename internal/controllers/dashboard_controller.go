package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"support-system/internal/services"
	"support-system/pkg/utils"
)

type DashboardController struct {
	dashboardService services.DashboardServiceInterface
	logger           *zap.Logger
}

func NewDashboardController(
	dashboardService services.DashboardServiceInterface,
	logger *zap.Logger,
) *DashboardController {
	return &DashboardController{dashboardService: dashboardService, logger: logger}
}

func (c *DashboardController) GetStats(ctx echo.Context) error {
	res, err := c.dashboardService.GetStats(ctx.Request().Context())
	if err != nil {
		c.logger.Error("ошибка получения статистики панели", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Статистика получена", http.StatusOK)
}

func (c *DashboardController) GetResolutionStats(ctx echo.Context) error {
	values := ctx.Request().URL.Query()

	res, err := c.dashboardService.GetResolutionStats(ctx.Request().Context(),
		values.Get("period"), values.Get("from"), values.Get("to"))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Метрики решения получены", http.StatusOK)
}

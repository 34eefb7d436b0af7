package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"support-system/internal/services"
	apperrors "support-system/pkg/errors"
	"support-system/pkg/utils"
)

type NotificationController struct {
	notificationService services.NotificationServiceInterface
	logger              *zap.Logger
}

func NewNotificationController(
	notificationService services.NotificationServiceInterface,
	logger *zap.Logger,
) *NotificationController {
	return &NotificationController{notificationService: notificationService, logger: logger}
}

func (c *NotificationController) GetNotifications(ctx echo.Context) error {
	values := ctx.Request().URL.Query()
	limit, offset, _ := utils.ParsePaginationParams(values)
	unreadOnly := values.Get("unread_only") == "true"

	res, total, err := c.notificationService.GetNotifications(ctx.Request().Context(), unreadOnly, limit, offset)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Список уведомлений получен", http.StatusOK, total)
}

func (c *NotificationController) MarkRead(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный ID", err, nil))
	}

	if err := c.notificationService.MarkRead(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Уведомление прочитано", http.StatusOK)
}

func (c *NotificationController) MarkAllRead(ctx echo.Context) error {
	count, err := c.notificationService.MarkAllRead(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, map[string]int64{"marked_count": count},
		"Все уведомления прочитаны", http.StatusOK)
}

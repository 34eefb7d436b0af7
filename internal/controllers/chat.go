package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"support-system/internal/dto"
	"support-system/internal/services"
	"support-system/pkg/types"
	"support-system/pkg/utils"
)

type ChatController struct {
	chatService services.ChatServiceInterface
	logger      *zap.Logger
}

func NewChatController(chatService services.ChatServiceInterface, logger *zap.Logger) *ChatController {
	return &ChatController{chatService: chatService, logger: logger}
}

// --- Клиентские операции ---

func (c *ChatController) StartSession(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.StartChatDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.chatService.StartSession(reqCtx, claims, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Чат начат", http.StatusCreated)
}

func (c *ChatController) GetMySessions(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	limit, offset, _ := utils.ParsePaginationParams(ctx.Request().URL.Query())
	res, total, err := c.chatService.GetMySessions(reqCtx, claims, limit, offset)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Список чатов получен", http.StatusOK, total)
}

func (c *ChatController) FindMySession(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.chatService.FindMySession(reqCtx, claims, ctx.Param("ref"))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Чат найден", http.StatusOK)
}

func (c *ChatController) SendMessage(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.SendChatMessageDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.chatService.SendCustomerMessage(reqCtx, claims, ctx.Param("ref"), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Сообщение отправлено", http.StatusCreated)
}

// --- Админские операции ---

func (c *ChatController) GetSessions(ctx echo.Context) error {
	values := ctx.Request().URL.Query()
	limit, offset, _ := utils.ParsePaginationParams(values)
	filter := types.ChatFilter{
		Status: values.Get("status"),
		Limit:  limit,
		Offset: offset,
	}
	if v := values.Get("admin_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			filter.AdminID = id
		}
	}

	res, total, err := c.chatService.GetSessions(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Список чатов получен", http.StatusOK, total)
}

func (c *ChatController) FindSession(ctx echo.Context) error {
	res, err := c.chatService.FindSession(ctx.Request().Context(), ctx.Param("ref"))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Чат найден", http.StatusOK)
}

func (c *ChatController) SendAdminMessage(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.AdminSendChatMessageDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.chatService.SendAdminMessage(reqCtx, claims, ctx.Param("ref"), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Сообщение отправлено", http.StatusCreated)
}

func (c *ChatController) JoinSession(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.chatService.JoinSession(reqCtx, claims, ctx.Param("ref"))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Администратор присоединился к чату", http.StatusOK)
}

func (c *ChatController) EndSession(ctx echo.Context) error {
	res, err := c.chatService.EndSession(ctx.Request().Context(), ctx.Param("ref"))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Чат завершен", http.StatusOK)
}

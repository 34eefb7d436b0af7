package controllers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"support-system/internal/dto"
	"support-system/internal/services"
	apperrors "support-system/pkg/errors"
	"support-system/pkg/types"
	"support-system/pkg/utils"
)

type TicketController struct {
	ticketService services.TicketServiceInterface
	exportService services.ExportServiceInterface
	logger        *zap.Logger
}

func NewTicketController(
	ticketService services.TicketServiceInterface,
	exportService services.ExportServiceInterface,
	logger *zap.Logger,
) *TicketController {
	return &TicketController{
		ticketService: ticketService,
		exportService: exportService,
		logger:        logger,
	}
}

func parseIDParam(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, "Неверный ID", err, nil)
	}
	return id, nil
}

// parseTicketFilter собирает фильтр админского списка из query-параметров.
func parseTicketFilter(values url.Values) types.TicketFilter {
	limit, offset, _ := utils.ParsePaginationParams(values)
	filter := types.TicketFilter{
		Status:   values.Get("status"),
		Priority: values.Get("priority"),
		Search:   values.Get("search"),
		Limit:    limit,
		Offset:   offset,
	}
	if v := values.Get("category_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			filter.CategoryID = id
		}
	}
	if v := values.Get("assigned_to"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			filter.AssignedTo = id
		}
	}
	if v := values.Get("date_from"); v != "" {
		if t, err := time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
			filter.DateFrom = &t
		}
	}
	if v := values.Get("date_to"); v != "" {
		if t, err := time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			filter.DateTo = &end
		}
	}
	return filter
}

// --- Клиентские операции ---

func (c *TicketController) CreateTicket(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.CreateTicketDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.ticketService.CreateTicket(reqCtx, claims, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Заявка успешно создана", http.StatusCreated)
}

func (c *TicketController) GetMyTickets(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	values := ctx.Request().URL.Query()
	limit, offset, _ := utils.ParsePaginationParams(values)

	res, total, err := c.ticketService.GetMyTickets(reqCtx, claims, values.Get("status"), limit, offset)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Список заявок получен", http.StatusOK, total)
}

func (c *TicketController) FindMyTicket(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.ticketService.FindMyTicket(reqCtx, claims, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Заявка найдена", http.StatusOK)
}

func (c *TicketController) AddMessage(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.AddTicketMessageDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.ticketService.AddCustomerMessage(reqCtx, claims, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Сообщение добавлено", http.StatusCreated)
}

// --- Админские операции ---

func (c *TicketController) GetTickets(ctx echo.Context) error {
	filter := parseTicketFilter(ctx.Request().URL.Query())

	res, total, err := c.ticketService.GetTickets(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Список заявок получен", http.StatusOK, total)
}

func (c *TicketController) FindTicket(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.ticketService.FindTicket(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Заявка найдена", http.StatusOK)
}

func (c *TicketController) AddAdminMessage(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	id, err := parseIDParam(ctx)
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

	res, err := c.ticketService.AddAdminMessage(reqCtx, claims, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Ответ добавлен", http.StatusCreated)
}

func (c *TicketController) AssignTicket(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.AssignTicketDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.ticketService.AssignTicket(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Заявка назначена", http.StatusOK)
}

func (c *TicketController) UpdateTicketStatus(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.UpdateTicketStatusDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.ticketService.UpdateTicketStatus(reqCtx, claims, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Статус заявки обновлен", http.StatusOK)
}

func (c *TicketController) UpdateTicket(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.UpdateTicketDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.ticketService.UpdateTicket(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Заявка обновлена", http.StatusOK)
}

func (c *TicketController) BulkUpdateTickets(ctx echo.Context) error {
	var payload dto.BulkUpdateTicketsDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.ticketService.BulkUpdateTickets(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Массовое обновление выполнено", http.StatusOK)
}

func (c *TicketController) ExportTickets(ctx echo.Context) error {
	values := ctx.Request().URL.Query()
	filter := parseTicketFilter(values)

	res, err := c.exportService.ExportTickets(ctx.Request().Context(), filter, values.Get("format"))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, res.FileName))
	return ctx.Blob(http.StatusOK, res.ContentType, res.Data)
}

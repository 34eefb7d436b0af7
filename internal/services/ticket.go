package services

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"support-system/internal/dto"
	"support-system/internal/entities"
	"support-system/internal/events"
	"support-system/internal/repositories"
	"support-system/pkg/constants"
	"support-system/pkg/eventbus"
	apperrors "support-system/pkg/errors"
	"support-system/pkg/types"
)

const ticketNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type TicketServiceInterface interface {
	CreateTicket(ctx context.Context, claims *dto.UserClaims, payload dto.CreateTicketDTO) (*dto.TicketDTO, error)
	GetMyTickets(ctx context.Context, claims *dto.UserClaims, status string, limit, offset uint64) ([]dto.TicketDTO, uint64, error)
	FindMyTicket(ctx context.Context, claims *dto.UserClaims, id uint64) (*dto.TicketDTO, error)
	AddCustomerMessage(ctx context.Context, claims *dto.UserClaims, id uint64, payload dto.AddTicketMessageDTO) (*dto.MessageDTO, error)

	GetTickets(ctx context.Context, filter types.TicketFilter) ([]dto.TicketDTO, uint64, error)
	FindTicket(ctx context.Context, id uint64) (*dto.TicketDTO, error)
	AddAdminMessage(ctx context.Context, claims *dto.UserClaims, id uint64, payload dto.AdminSendChatMessageDTO) (*dto.MessageDTO, error)
	AssignTicket(ctx context.Context, id uint64, payload dto.AssignTicketDTO) (*dto.TicketDTO, error)
	UpdateTicketStatus(ctx context.Context, claims *dto.UserClaims, id uint64, payload dto.UpdateTicketStatusDTO) (*dto.TicketDTO, error)
	UpdateTicket(ctx context.Context, id uint64, payload dto.UpdateTicketDTO) (*dto.TicketDTO, error)
	BulkUpdateTickets(ctx context.Context, payload dto.BulkUpdateTicketsDTO) (*dto.BulkUpdateResultDTO, error)
}

type TicketService struct {
	ticketRepo  repositories.TicketRepositoryInterface
	messageRepo repositories.MessageRepositoryInterface
	bus         *eventbus.Bus
	logger      *zap.Logger
}

func NewTicketService(
	ticketRepo repositories.TicketRepositoryInterface,
	messageRepo repositories.MessageRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) TicketServiceInterface {
	return &TicketService{
		ticketRepo:  ticketRepo,
		messageRepo: messageRepo,
		bus:         bus,
		logger:      logger,
	}
}

// generateTicketNumber строит человекочитаемый номер заявки.
// Уникальность best-effort: миллисекундная метка плюс случайный
// суффикс, без проверки коллизий в базе.
func generateTicketNumber(now time.Time) string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = ticketNumberCharset[rand.Intn(len(ticketNumberCharset))]
	}
	return fmt.Sprintf("TKT-%d-%s", now.UnixMilli(), string(suffix))
}

func (s *TicketService) CreateTicket(ctx context.Context, claims *dto.UserClaims, payload dto.CreateTicketDTO) (*dto.TicketDTO, error) {
	if claims == nil {
		return nil, apperrors.ErrUnauthorized
	}

	now := time.Now()
	priority := payload.Priority
	if priority == "" {
		priority = constants.TicketPriorityMedium
	}

	ticket := &entities.Ticket{
		TicketNumber:  generateTicketNumber(now),
		Subject:       payload.Subject,
		Description:   payload.Description,
		Status:        constants.TicketStatusOpen,
		Priority:      priority,
		CategoryID:    null.Uint64FromPtr(payload.CategoryID),
		CustomerID:    claims.UserID,
		CustomerEmail: claims.Email,
		CustomerName:  claims.Name,
		OrderID:       null.Uint64FromPtr(payload.OrderID),
		ServiceID:     null.Uint64FromPtr(payload.ServiceID),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	id, err := s.ticketRepo.CreateTicket(ctx, ticket)
	if err != nil {
		s.logger.Error("ошибка при создании заявки", zap.Error(err))
		return nil, err
	}
	ticket.ID = id

	// Первое сообщение пишется отдельно и не транзакционно: если
	// вставка не удалась, заявка все равно остается созданной.
	initialMessage := &entities.Message{
		TicketID:    null.Uint64From(id),
		Content:     payload.Description,
		SenderType:  constants.SenderTypeCustomer,
		SenderID:    null.Uint64From(claims.UserID),
		SenderEmail: null.StringFrom(claims.Email),
		SenderName:  null.StringFrom(claims.Name),
		CreatedAt:   now,
	}
	var messages []entities.Message
	if msgID, err := s.messageRepo.CreateMessage(ctx, initialMessage); err != nil {
		s.logger.Error("не удалось записать первое сообщение заявки",
			zap.Uint64("ticket_id", id), zap.Error(err))
	} else {
		initialMessage.ID = msgID
		messages = append(messages, *initialMessage)
	}

	s.bus.Publish(ctx, events.TicketCreatedEvent{
		TicketID:      id,
		TicketNumber:  ticket.TicketNumber,
		Subject:       ticket.Subject,
		Priority:      ticket.Priority,
		CustomerName:  ticket.CustomerName,
		CustomerEmail: ticket.CustomerEmail,
	})

	s.logger.Info("Заявка создана",
		zap.Uint64("ticket_id", id),
		zap.String("ticket_number", ticket.TicketNumber))
	return toTicketDTO(ticket, messages), nil
}

func (s *TicketService) GetMyTickets(ctx context.Context, claims *dto.UserClaims, status string, limit, offset uint64) ([]dto.TicketDTO, uint64, error) {
	if claims == nil {
		return nil, 0, apperrors.ErrUnauthorized
	}
	tickets, total, err := s.ticketRepo.GetTicketsForCustomer(ctx, claims.UserID, claims.Email, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return toTicketDTOs(tickets), total, nil
}

func (s *TicketService) FindMyTicket(ctx context.Context, claims *dto.UserClaims, id uint64) (*dto.TicketDTO, error) {
	if claims == nil {
		return nil, apperrors.ErrUnauthorized
	}
	ticket, err := s.ticketRepo.FindOwnedTicket(ctx, id, claims.UserID, claims.Email)
	if err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.GetTicketMessages(ctx, id, false)
	if err != nil {
		return nil, err
	}
	return toTicketDTO(ticket, messages), nil
}

func (s *TicketService) AddCustomerMessage(ctx context.Context, claims *dto.UserClaims, id uint64, payload dto.AddTicketMessageDTO) (*dto.MessageDTO, error) {
	if claims == nil {
		return nil, apperrors.ErrUnauthorized
	}
	ticket, err := s.ticketRepo.FindOwnedTicket(ctx, id, claims.UserID, claims.Email)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	message := &entities.Message{
		TicketID:    null.Uint64From(ticket.ID),
		Content:     payload.Content,
		SenderType:  constants.SenderTypeCustomer,
		SenderID:    null.Uint64From(claims.UserID),
		SenderEmail: null.StringFrom(claims.Email),
		SenderName:  null.StringFrom(claims.Name),
		CreatedAt:   now,
	}
	msgID, err := s.messageRepo.CreateMessage(ctx, message)
	if err != nil {
		return nil, err
	}
	message.ID = msgID

	// Ответ клиента на решенную заявку открывает ее заново.
	reopened := false
	if ticket.Status == constants.TicketStatusResolved {
		ticket.Status = constants.TicketStatusOpen
		ticket.ResolvedAt = null.Time{}
		reopened = true
	}
	ticket.LastCustomerReplyAt = null.TimeFrom(now)
	ticket.UpdatedAt = now
	if err := s.ticketRepo.UpdateTicket(ctx, ticket); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.TicketCustomerReplyEvent{
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Subject:      ticket.Subject,
		CustomerName: ticket.CustomerName,
		Reopened:     reopened,
	})

	msgDTO := toMessageDTO(*message)
	return &msgDTO, nil
}

func (s *TicketService) GetTickets(ctx context.Context, filter types.TicketFilter) ([]dto.TicketDTO, uint64, error) {
	tickets, total, err := s.ticketRepo.GetTickets(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return toTicketDTOs(tickets), total, nil
}

func (s *TicketService) FindTicket(ctx context.Context, id uint64) (*dto.TicketDTO, error) {
	ticket, err := s.ticketRepo.FindTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.GetTicketMessages(ctx, id, true)
	if err != nil {
		return nil, err
	}
	return toTicketDTO(ticket, messages), nil
}

func (s *TicketService) AddAdminMessage(ctx context.Context, claims *dto.UserClaims, id uint64, payload dto.AdminSendChatMessageDTO) (*dto.MessageDTO, error) {
	if claims == nil {
		return nil, apperrors.ErrUnauthorized
	}
	ticket, err := s.ticketRepo.FindTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	message := &entities.Message{
		TicketID:    null.Uint64From(ticket.ID),
		Content:     payload.Content,
		SenderType:  constants.SenderTypeAdmin,
		IsInternal:  payload.IsInternal,
		SenderID:    null.Uint64From(claims.UserID),
		SenderEmail: null.StringFrom(claims.Email),
		SenderName:  null.StringFrom(claims.Name),
		CreatedAt:   now,
	}
	msgID, err := s.messageRepo.CreateMessage(ctx, message)
	if err != nil {
		return nil, err
	}
	message.ID = msgID

	// Внутренние заметки не считаются ответом клиенту.
	if !payload.IsInternal {
		ticket.LastAdminReplyAt = null.TimeFrom(now)
	}
	ticket.UpdatedAt = now
	if err := s.ticketRepo.UpdateTicket(ctx, ticket); err != nil {
		return nil, err
	}

	msgDTO := toMessageDTO(*message)
	return &msgDTO, nil
}

func (s *TicketService) AssignTicket(ctx context.Context, id uint64, payload dto.AssignTicketDTO) (*dto.TicketDTO, error) {
	ticket, err := s.ticketRepo.FindTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ticket.AssignedTo = null.Uint64From(payload.AdminID)
	ticket.AssignedAt = null.TimeFrom(now)
	// Назначение означает, что работа началась.
	if ticket.Status == constants.TicketStatusOpen {
		ticket.Status = constants.TicketStatusInProgress
	}
	ticket.UpdatedAt = now
	if err := s.ticketRepo.UpdateTicket(ctx, ticket); err != nil {
		return nil, err
	}
	return toTicketDTO(ticket, nil), nil
}

func (s *TicketService) UpdateTicketStatus(ctx context.Context, claims *dto.UserClaims, id uint64, payload dto.UpdateTicketStatusDTO) (*dto.TicketDTO, error) {
	ticket, err := s.ticketRepo.FindTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ticket.Status = payload.Status
	switch payload.Status {
	case constants.TicketStatusResolved:
		ticket.ResolvedAt = null.TimeFrom(now)
	case constants.TicketStatusClosed:
		ticket.ClosedAt = null.TimeFrom(now)
		if !ticket.ResolvedAt.Valid {
			ticket.ResolvedAt = null.TimeFrom(now)
		}
	default:
		ticket.ResolvedAt = null.Time{}
	}
	ticket.UpdatedAt = now
	if err := s.ticketRepo.UpdateTicket(ctx, ticket); err != nil {
		return nil, err
	}

	// Заметка к смене статуса пишется как внутреннее сообщение,
	// best-effort: ее потеря не откатывает смену статуса.
	if payload.Notes != nil && *payload.Notes != "" {
		note := &entities.Message{
			TicketID:   null.Uint64From(ticket.ID),
			Content:    *payload.Notes,
			SenderType: constants.SenderTypeAdmin,
			IsInternal: true,
			CreatedAt:  now,
		}
		if claims != nil {
			note.SenderID = null.Uint64From(claims.UserID)
			note.SenderEmail = null.StringFrom(claims.Email)
			note.SenderName = null.StringFrom(claims.Name)
		}
		if _, err := s.messageRepo.CreateMessage(ctx, note); err != nil {
			s.logger.Error("не удалось записать заметку к смене статуса",
				zap.Uint64("ticket_id", ticket.ID), zap.Error(err))
		}
	}

	return toTicketDTO(ticket, nil), nil
}

// UpdateTicket - частичное обновление заявки. Переход в resolved
// выставляет resolved_at, переход в любой другой статус (включая
// closed) сбрасывает его. Путь UpdateTicketStatus ведет себя иначе:
// два пути исторически расходятся, поведение сохранено как есть.
func (s *TicketService) UpdateTicket(ctx context.Context, id uint64, payload dto.UpdateTicketDTO) (*dto.TicketDTO, error) {
	ticket, err := s.ticketRepo.FindTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload.Subject != nil {
		ticket.Subject = *payload.Subject
	}
	if payload.Description != nil {
		ticket.Description = *payload.Description
	}
	if payload.Priority != nil {
		ticket.Priority = *payload.Priority
	}
	if payload.CategoryID != nil {
		ticket.CategoryID = null.Uint64From(*payload.CategoryID)
	}
	if payload.AssignedTo != nil {
		ticket.AssignedTo = null.Uint64From(*payload.AssignedTo)
	}
	if payload.Status != nil {
		ticket.Status = *payload.Status
		if *payload.Status == constants.TicketStatusResolved {
			ticket.ResolvedAt = null.TimeFrom(time.Now())
		} else {
			ticket.ResolvedAt = null.Time{}
		}
	}

	ticket.UpdatedAt = time.Now()
	if err := s.ticketRepo.UpdateTicket(ctx, ticket); err != nil {
		return nil, err
	}
	return toTicketDTO(ticket, nil), nil
}

func (s *TicketService) BulkUpdateTickets(ctx context.Context, payload dto.BulkUpdateTicketsDTO) (*dto.BulkUpdateResultDTO, error) {
	if len(payload.TicketIDs) == 0 || len(payload.TicketIDs) > constants.BulkMaxTickets {
		return nil, apperrors.ErrBadRequest
	}

	var column string
	var value interface{}

	switch payload.Action {
	case constants.BulkActionAssign:
		column = "assigned_to"
		if payload.Value == constants.BulkValueUnassign {
			value = nil
		} else {
			adminID, err := strconv.ParseUint(payload.Value, 10, 64)
			if err != nil {
				return nil, apperrors.ErrBadRequest
			}
			value = adminID
		}
	case constants.BulkActionStatus:
		if !isValidTicketStatus(payload.Value) {
			return nil, apperrors.ErrBadRequest
		}
		column = "status"
		value = payload.Value
	case constants.BulkActionPriority:
		if !isValidTicketPriority(payload.Value) {
			return nil, apperrors.ErrBadRequest
		}
		column = "priority"
		value = payload.Value
	case constants.BulkActionCategory:
		column = "category_id"
		if payload.Value == constants.BulkValueNone {
			value = nil
		} else {
			categoryID, err := strconv.ParseUint(payload.Value, 10, 64)
			if err != nil {
				return nil, apperrors.ErrBadRequest
			}
			value = categoryID
		}
	default:
		return nil, apperrors.ErrBadRequest
	}

	updated, err := s.ticketRepo.BulkUpdateTickets(ctx, payload.TicketIDs, column, value)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Массовое обновление заявок выполнено",
		zap.String("action", payload.Action),
		zap.Int("requested", len(payload.TicketIDs)),
		zap.Int64("updated", updated))
	return &dto.BulkUpdateResultDTO{UpdatedCount: updated}, nil
}

func isValidTicketStatus(status string) bool {
	switch status {
	case constants.TicketStatusOpen, constants.TicketStatusInProgress, constants.TicketStatusWaiting,
		constants.TicketStatusResolved, constants.TicketStatusClosed:
		return true
	}
	return false
}

func isValidTicketPriority(priority string) bool {
	switch priority {
	case constants.TicketPriorityLow, constants.TicketPriorityMedium,
		constants.TicketPriorityHigh, constants.TicketPriorityUrgent:
		return true
	}
	return false
}

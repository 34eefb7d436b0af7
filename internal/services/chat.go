package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
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

type ChatServiceInterface interface {
	StartSession(ctx context.Context, claims *dto.UserClaims, payload dto.StartChatDTO) (*dto.ChatSessionDTO, error)
	GetMySessions(ctx context.Context, claims *dto.UserClaims, limit, offset uint64) ([]dto.ChatSessionDTO, uint64, error)
	FindMySession(ctx context.Context, claims *dto.UserClaims, ref string) (*dto.ChatSessionDTO, error)
	SendCustomerMessage(ctx context.Context, claims *dto.UserClaims, ref string, payload dto.SendChatMessageDTO) (*dto.MessageDTO, error)

	GetSessions(ctx context.Context, filter types.ChatFilter) ([]dto.ChatSessionDTO, uint64, error)
	FindSession(ctx context.Context, ref string) (*dto.ChatSessionDTO, error)
	SendAdminMessage(ctx context.Context, claims *dto.UserClaims, ref string, payload dto.AdminSendChatMessageDTO) (*dto.MessageDTO, error)
	JoinSession(ctx context.Context, claims *dto.UserClaims, ref string) (*dto.ChatSessionDTO, error)
	EndSession(ctx context.Context, ref string) (*dto.ChatSessionDTO, error)
}

type ChatService struct {
	chatRepo    repositories.ChatRepositoryInterface
	messageRepo repositories.MessageRepositoryInterface
	bus         *eventbus.Bus
	logger      *zap.Logger
}

func NewChatService(
	chatRepo repositories.ChatRepositoryInterface,
	messageRepo repositories.MessageRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) ChatServiceInterface {
	return &ChatService{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		bus:         bus,
		logger:      logger,
	}
}

// findSessionByRef принимает либо числовой первичный ключ, либо
// человекочитаемый код сессии. Сначала пробуем ключ, затем код.
func (s *ChatService) findSessionByRef(ctx context.Context, ref string) (*entities.ChatSession, error) {
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		session, err := s.chatRepo.FindSessionByID(ctx, id)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}
	return s.chatRepo.FindSessionByCode(ctx, ref)
}

func (s *ChatService) StartSession(ctx context.Context, claims *dto.UserClaims, payload dto.StartChatDTO) (*dto.ChatSessionDTO, error) {
	if claims == nil {
		return nil, apperrors.ErrUnauthorized
	}

	now := time.Now()
	session := &entities.ChatSession{
		SessionCode:    uuid.NewString(),
		Subject:        null.NewString(payload.Subject, payload.Subject != ""),
		CustomerID:     claims.UserID,
		CustomerEmail:  claims.Email,
		CustomerName:   claims.Name,
		Status:         constants.ChatStatusActive,
		StartedAt:      now,
		LastActivityAt: now,
	}

	id, err := s.chatRepo.CreateSession(ctx, session)
	if err != nil {
		s.logger.Error("ошибка при создании чат-сессии", zap.Error(err))
		return nil, err
	}
	session.ID = id

	// Первое сообщение пишется отдельно; его потеря не откатывает
	// создание сессии.
	initialMessage := &entities.Message{
		ChatSessionID: null.Uint64From(id),
		Content:       payload.Message,
		SenderType:    constants.SenderTypeCustomer,
		SenderID:      null.Uint64From(claims.UserID),
		SenderEmail:   null.StringFrom(claims.Email),
		SenderName:    null.StringFrom(claims.Name),
		CreatedAt:     now,
	}
	var messages []entities.Message
	if msgID, err := s.messageRepo.CreateMessage(ctx, initialMessage); err != nil {
		s.logger.Error("не удалось записать первое сообщение чата",
			zap.Uint64("chat_session_id", id), zap.Error(err))
	} else {
		initialMessage.ID = msgID
		messages = append(messages, *initialMessage)
	}

	s.bus.Publish(ctx, events.ChatStartedEvent{
		ChatSessionID: id,
		SessionCode:   session.SessionCode,
		CustomerName:  session.CustomerName,
		FirstMessage:  payload.Message,
	})

	s.logger.Info("Чат-сессия создана",
		zap.Uint64("chat_session_id", id),
		zap.String("session_code", session.SessionCode))
	return toChatSessionDTO(session, messages), nil
}

func (s *ChatService) GetMySessions(ctx context.Context, claims *dto.UserClaims, limit, offset uint64) ([]dto.ChatSessionDTO, uint64, error) {
	if claims == nil {
		return nil, 0, apperrors.ErrUnauthorized
	}
	sessions, total, err := s.chatRepo.GetSessionsForCustomer(ctx, claims.UserID, claims.Email, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return toChatSessionDTOs(sessions), total, nil
}

// ownedSessionByRef повторяет findSessionByRef, но дополнительно
// проверяет владельца. Чужая сессия отдается как ErrNotFound.
func (s *ChatService) ownedSessionByRef(ctx context.Context, claims *dto.UserClaims, ref string) (*entities.ChatSession, error) {
	session, err := s.findSessionByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if session.CustomerID != claims.UserID && session.CustomerEmail != claims.Email {
		return nil, apperrors.ErrNotFound
	}
	return session, nil
}

func (s *ChatService) FindMySession(ctx context.Context, claims *dto.UserClaims, ref string) (*dto.ChatSessionDTO, error) {
	if claims == nil {
		return nil, apperrors.ErrUnauthorized
	}
	session, err := s.ownedSessionByRef(ctx, claims, ref)
	if err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.GetSessionMessages(ctx, session.ID, false)
	if err != nil {
		return nil, err
	}
	return toChatSessionDTO(session, messages), nil
}

func (s *ChatService) SendCustomerMessage(ctx context.Context, claims *dto.UserClaims, ref string, payload dto.SendChatMessageDTO) (*dto.MessageDTO, error) {
	if claims == nil {
		return nil, apperrors.ErrUnauthorized
	}
	session, err := s.ownedSessionByRef(ctx, claims, ref)
	if err != nil {
		return nil, err
	}

	message := &entities.Message{
		Content:     payload.Content,
		SenderType:  constants.SenderTypeCustomer,
		SenderID:    null.Uint64From(claims.UserID),
		SenderEmail: null.StringFrom(claims.Email),
		SenderName:  null.StringFrom(claims.Name),
	}
	return s.appendSessionMessage(ctx, session, message)
}

func (s *ChatService) SendAdminMessage(ctx context.Context, claims *dto.UserClaims, ref string, payload dto.AdminSendChatMessageDTO) (*dto.MessageDTO, error) {
	if claims == nil {
		return nil, apperrors.ErrUnauthorized
	}
	session, err := s.findSessionByRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	message := &entities.Message{
		Content:     payload.Content,
		SenderType:  constants.SenderTypeAdmin,
		IsInternal:  payload.IsInternal,
		SenderID:    null.Uint64From(claims.UserID),
		SenderEmail: null.StringFrom(claims.Email),
		SenderName:  null.StringFrom(claims.Name),
	}
	return s.appendSessionMessage(ctx, session, message)
}

// appendSessionMessage выполняет общую часть отправки: запрет записи
// в закрытую сессию, вставку сообщения и сдвиг last_activity_at.
func (s *ChatService) appendSessionMessage(ctx context.Context, session *entities.ChatSession, message *entities.Message) (*dto.MessageDTO, error) {
	if session.Status == constants.ChatStatusClosed {
		return nil, apperrors.ErrBadRequest
	}

	now := time.Now()
	message.ChatSessionID = null.Uint64From(session.ID)
	message.CreatedAt = now

	msgID, err := s.messageRepo.CreateMessage(ctx, message)
	if err != nil {
		return nil, err
	}
	message.ID = msgID

	session.LastActivityAt = now
	if err := s.chatRepo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}

	msgDTO := toMessageDTO(*message)
	return &msgDTO, nil
}

func (s *ChatService) GetSessions(ctx context.Context, filter types.ChatFilter) ([]dto.ChatSessionDTO, uint64, error) {
	sessions, total, err := s.chatRepo.GetSessions(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return toChatSessionDTOs(sessions), total, nil
}

func (s *ChatService) FindSession(ctx context.Context, ref string) (*dto.ChatSessionDTO, error) {
	session, err := s.findSessionByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.GetSessionMessages(ctx, session.ID, true)
	if err != nil {
		return nil, err
	}
	return toChatSessionDTO(session, messages), nil
}

func (s *ChatService) JoinSession(ctx context.Context, claims *dto.UserClaims, ref string) (*dto.ChatSessionDTO, error) {
	if claims == nil {
		return nil, apperrors.ErrUnauthorized
	}
	session, err := s.findSessionByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if session.Status == constants.ChatStatusClosed {
		return nil, apperrors.ErrBadRequest
	}

	now := time.Now()
	session.AdminID = null.Uint64From(claims.UserID)
	session.AdminJoinedAt = null.TimeFrom(now)
	session.LastActivityAt = now
	if err := s.chatRepo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}

	// Системное сообщение о входе админа, best-effort.
	joinMessage := &entities.Message{
		ChatSessionID: null.Uint64From(session.ID),
		Content:       claims.Name + " присоединился к чату",
		SenderType:    constants.SenderTypeSystem,
		IsAutomated:   true,
		CreatedAt:     now,
	}
	if _, err := s.messageRepo.CreateMessage(ctx, joinMessage); err != nil {
		s.logger.Error("не удалось записать системное сообщение о входе админа",
			zap.Uint64("chat_session_id", session.ID), zap.Error(err))
	}

	return toChatSessionDTO(session, nil), nil
}

func (s *ChatService) EndSession(ctx context.Context, ref string) (*dto.ChatSessionDTO, error) {
	session, err := s.findSessionByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if session.Status == constants.ChatStatusClosed {
		return nil, apperrors.ErrBadRequest
	}

	now := time.Now()
	session.Status = constants.ChatStatusClosed
	session.EndedAt = null.TimeFrom(now)
	session.LastActivityAt = now
	if err := s.chatRepo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Чат-сессия завершена", zap.Uint64("chat_session_id", session.ID))
	return toChatSessionDTO(session, nil), nil
}

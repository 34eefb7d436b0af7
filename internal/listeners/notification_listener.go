package listeners

import (
	"context"
	"fmt"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"support-system/internal/entities"
	"support-system/internal/events"
	"support-system/internal/repositories"
	"support-system/pkg/constants"
	"support-system/pkg/eventbus"
	"support-system/pkg/websocket"
)

// NotificationListener превращает события заявок и чатов в строки
// уведомлений и толкает их подключенным админам по websocket.
// Вся цепочка best-effort: ошибка здесь никогда не доходит до
// инициатора события.
type NotificationListener struct {
	notificationRepo repositories.NotificationRepositoryInterface
	hub              *websocket.Hub
	logger           *zap.Logger
}

func NewNotificationListener(
	notificationRepo repositories.NotificationRepositoryInterface,
	hub *websocket.Hub,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		notificationRepo: notificationRepo,
		hub:              hub,
		logger:           logger,
	}
}

// Subscribe регистрирует обработчики на шине событий.
func (l *NotificationListener) Subscribe(bus *eventbus.Bus) {
	bus.Subscribe(events.TicketCreatedEventName, l.onTicketCreated)
	bus.Subscribe(events.TicketCustomerReplyEventName, l.onTicketCustomerReply)
	bus.Subscribe(events.ChatStartedEventName, l.onChatStarted)
}

func (l *NotificationListener) onTicketCreated(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.TicketCreatedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}

	title := fmt.Sprintf("Новая заявка %s", e.TicketNumber)
	body := fmt.Sprintf("%s: %s (приоритет %s)", e.CustomerName, e.Subject, e.Priority)
	return l.deliver(ctx, &entities.Notification{
		Type:      constants.NotificationTicketCreated,
		Title:     title,
		Body:      body,
		TicketID:  null.Uint64From(e.TicketID),
		CreatedAt: time.Now(),
	})
}

func (l *NotificationListener) onTicketCustomerReply(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.TicketCustomerReplyEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}

	title := fmt.Sprintf("Ответ клиента по заявке %s", e.TicketNumber)
	body := fmt.Sprintf("%s ответил по теме: %s", e.CustomerName, e.Subject)
	if e.Reopened {
		title = fmt.Sprintf("Заявка %s переоткрыта клиентом", e.TicketNumber)
	}
	return l.deliver(ctx, &entities.Notification{
		Type:      constants.NotificationTicketReply,
		Title:     title,
		Body:      body,
		TicketID:  null.Uint64From(e.TicketID),
		CreatedAt: time.Now(),
	})
}

func (l *NotificationListener) onChatStarted(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.ChatStartedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}

	return l.deliver(ctx, &entities.Notification{
		Type:          constants.NotificationChatStarted,
		Title:         "Новый чат от " + e.CustomerName,
		Body:          e.FirstMessage,
		ChatSessionID: null.Uint64From(e.ChatSessionID),
		CreatedAt:     time.Now(),
	})
}

// deliver сохраняет уведомление и рассылает его по websocket.
// Ошибка вставки не отменяет push и наоборот.
func (l *NotificationListener) deliver(ctx context.Context, notification *entities.Notification) error {
	id, err := l.notificationRepo.CreateNotification(ctx, notification)
	if err != nil {
		l.logger.Error("не удалось сохранить уведомление",
			zap.String("type", notification.Type), zap.Error(err))
	} else {
		notification.ID = id
	}

	payload := websocket.NotificationPayload{
		EventID:       uuid.NewString(),
		Type:          notification.Type,
		Title:         notification.Title,
		Body:          notification.Body,
		TicketID:      notification.TicketID.Ptr(),
		ChatSessionID: notification.ChatSessionID.Ptr(),
		CreatedAt:     notification.CreatedAt,
	}
	if err := l.hub.BroadcastPayload(payload, "notification"); err != nil {
		l.logger.Error("не удалось разослать уведомление по websocket", zap.Error(err))
	}
	return nil
}

package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"support-system/internal/dto"
	"support-system/internal/entities"
	"support-system/pkg/constants"
	"support-system/pkg/eventbus"
	apperrors "support-system/pkg/errors"
)

func newChatServiceForTest() (ChatServiceInterface, *fakeChatRepo, *fakeMessageRepo) {
	chatRepo := newFakeChatRepo()
	messageRepo := newFakeMessageRepo()
	svc := NewChatService(chatRepo, messageRepo, eventbus.New(zap.NewNop()), zap.NewNop())
	return svc, chatRepo, messageRepo
}

func seedSession(t *testing.T, repo *fakeChatRepo, mutate func(*entities.ChatSession)) *entities.ChatSession {
	t.Helper()
	now := time.Now()
	session := &entities.ChatSession{
		SessionCode:    "11111111-2222-3333-4444-555555555555",
		CustomerID:     7,
		CustomerEmail:  "client@example.com",
		CustomerName:   "Иван Петров",
		Status:         constants.ChatStatusActive,
		StartedAt:      now,
		LastActivityAt: now,
	}
	if mutate != nil {
		mutate(session)
	}
	id, err := repo.CreateSession(context.Background(), session)
	require.NoError(t, err)
	session.ID = id
	return session
}

func TestStartSession(t *testing.T) {
	svc, chatRepo, messageRepo := newChatServiceForTest()

	res, err := svc.StartSession(context.Background(), customerClaims(), dto.StartChatDTO{
		Subject: "Вопрос по доставке",
		Message: "Где мой заказ?",
	})
	require.NoError(t, err)
	assert.Equal(t, constants.ChatStatusActive, res.Status)
	assert.NotEmpty(t, res.SessionCode)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, constants.SenderTypeCustomer, res.Messages[0].SenderType)
	assert.Equal(t, "Где мой заказ?", res.Messages[0].Content)
	assert.Len(t, chatRepo.sessions, 1)
	assert.Len(t, messageRepo.messages, 1)
}

func TestStartSessionSurvivesMessageFailure(t *testing.T) {
	svc, chatRepo, messageRepo := newChatServiceForTest()
	messageRepo.failCreate = true

	res, err := svc.StartSession(context.Background(), customerClaims(), dto.StartChatDTO{
		Message: "Привет",
	})
	require.NoError(t, err)
	assert.Empty(t, res.Messages)
	assert.Len(t, chatRepo.sessions, 1)
}

// Сессию можно найти и по первичному ключу, и по коду.
func TestFindSessionByEitherIdentifier(t *testing.T) {
	svc, chatRepo, _ := newChatServiceForTest()
	session := seedSession(t, chatRepo, nil)

	byID, err := svc.FindSession(context.Background(), strconv.FormatUint(session.ID, 10))
	require.NoError(t, err)
	assert.Equal(t, session.ID, byID.ID)

	byCode, err := svc.FindSession(context.Background(), session.SessionCode)
	require.NoError(t, err)
	assert.Equal(t, session.ID, byCode.ID)

	_, err = svc.FindSession(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSendMessageToClosedSessionFails(t *testing.T) {
	svc, chatRepo, messageRepo := newChatServiceForTest()
	session := seedSession(t, chatRepo, func(s *entities.ChatSession) {
		s.Status = constants.ChatStatusClosed
		s.EndedAt = null.TimeFrom(time.Now())
	})

	_, err := svc.SendCustomerMessage(context.Background(), customerClaims(),
		strconv.FormatUint(session.ID, 10), dto.SendChatMessageDTO{Content: "еще вопрос"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	// Сообщение не должно быть записано.
	assert.Empty(t, messageRepo.messages)

	// Для админа закрытая сессия так же неизменяема.
	_, err = svc.SendAdminMessage(context.Background(), adminClaims(),
		strconv.FormatUint(session.ID, 10), dto.AdminSendChatMessageDTO{Content: "ответ"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Empty(t, messageRepo.messages)
}

func TestSendMessageBumpsLastActivity(t *testing.T) {
	svc, chatRepo, _ := newChatServiceForTest()
	session := seedSession(t, chatRepo, func(s *entities.ChatSession) {
		s.LastActivityAt = time.Now().Add(-time.Hour)
	})

	_, err := svc.SendCustomerMessage(context.Background(), customerClaims(),
		strconv.FormatUint(session.ID, 10), dto.SendChatMessageDTO{Content: "ау"})
	require.NoError(t, err)

	stored, err := chatRepo.FindSessionByID(context.Background(), session.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), stored.LastActivityAt, time.Minute)
}

func TestCustomerCannotMessageForeignSession(t *testing.T) {
	svc, chatRepo, _ := newChatServiceForTest()
	session := seedSession(t, chatRepo, nil)

	stranger := &dto.UserClaims{UserID: 99, Email: "other@example.com", Name: "Чужой", Role: constants.RoleCustomer}
	_, err := svc.SendCustomerMessage(context.Background(), stranger,
		strconv.FormatUint(session.ID, 10), dto.SendChatMessageDTO{Content: "привет"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestJoinSessionWritesSystemMessage(t *testing.T) {
	svc, chatRepo, messageRepo := newChatServiceForTest()
	session := seedSession(t, chatRepo, nil)

	res, err := svc.JoinSession(context.Background(), adminClaims(), strconv.FormatUint(session.ID, 10))
	require.NoError(t, err)
	require.NotNil(t, res.AdminID)
	assert.Equal(t, uint64(1), *res.AdminID)
	assert.NotNil(t, res.AdminJoinedAt)

	messages, err := messageRepo.GetSessionMessages(context.Background(), session.ID, true)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, constants.SenderTypeSystem, messages[0].SenderType)
	assert.True(t, messages[0].IsAutomated)
}

func TestEndSessionIsTerminal(t *testing.T) {
	svc, chatRepo, _ := newChatServiceForTest()
	session := seedSession(t, chatRepo, nil)
	ref := strconv.FormatUint(session.ID, 10)

	res, err := svc.EndSession(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, constants.ChatStatusClosed, res.Status)
	assert.NotNil(t, res.EndedAt)

	// Повторное завершение - ошибка.
	_, err = svc.EndSession(context.Background(), ref)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	// Вход в закрытую сессию тоже запрещен.
	_, err = svc.JoinSession(context.Background(), adminClaims(), ref)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

// Сценарий целиком: клиент начинает чат, админ присоединяется, чат
// завершается. Журнал хранит исходное сообщение и системное о входе.
func TestChatLifecycleMessageOrder(t *testing.T) {
	svc, _, messageRepo := newChatServiceForTest()

	started, err := svc.StartSession(context.Background(), customerClaims(), dto.StartChatDTO{
		Message: "Здравствуйте",
	})
	require.NoError(t, err)

	_, err = svc.JoinSession(context.Background(), adminClaims(), started.SessionCode)
	require.NoError(t, err)

	ended, err := svc.EndSession(context.Background(), started.SessionCode)
	require.NoError(t, err)
	assert.Equal(t, constants.ChatStatusClosed, ended.Status)
	assert.NotNil(t, ended.EndedAt)

	messages, err := messageRepo.GetSessionMessages(context.Background(), started.ID, true)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, constants.SenderTypeCustomer, messages[0].SenderType)
	assert.Equal(t, constants.SenderTypeSystem, messages[1].SenderType)
}

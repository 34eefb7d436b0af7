package repositories

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-system/internal/entities"
	"support-system/migrations"
	"support-system/pkg/constants"
	"support-system/pkg/database/postgresql"
	apperrors "support-system/pkg/errors"
)

var testPool *pgxpool.Pool

// TestMain поднимает соединение с тестовой БД и накатывает миграции.
// Без TEST_DATABASE_URL интеграционные тесты пропускаются.
func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		os.Exit(m.Run())
	}

	var err error
	testPool, err = pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatalf("Не удалось подключиться к тестовой БД: %v", err)
	}
	defer testPool.Close()

	if err := postgresql.MigrateUp(dsn, migrations.FS); err != nil {
		log.Fatalf("Не удалось применить миграции: %v", err)
	}

	os.Exit(m.Run())
}

func requireTestPool(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_URL не задан, интеграционный тест пропущен")
	}
}

// cleanupTables очищает таблицы для изоляции тестов.
func cleanupTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`TRUNCATE TABLE notifications, messages, chat_sessions, tickets, ticket_categories, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "Не удалось очистить таблицы")
}

func seedTestTicket(t *testing.T, repo TicketRepositoryInterface, number string, customerID uint64, email string) uint64 {
	t.Helper()
	now := time.Now()
	id, err := repo.CreateTicket(context.Background(), &entities.Ticket{
		TicketNumber:  number,
		Subject:       "Интеграционная заявка",
		Description:   "Описание",
		Status:        constants.TicketStatusOpen,
		Priority:      constants.TicketPriorityMedium,
		CustomerID:    customerID,
		CustomerEmail: email,
		CustomerName:  "Иван Петров",
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	require.NoError(t, err)
	return id
}

func TestTicketRepository_Integration_CreateAndFind(t *testing.T) {
	requireTestPool(t)
	cleanupTables(t, testPool)
	repo := NewTicketRepository(testPool)

	id := seedTestTicket(t, repo, "TKT-1-AAAAAA", 7, "client@example.com")

	found, err := repo.FindTicket(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "TKT-1-AAAAAA", found.TicketNumber)
	assert.Equal(t, constants.TicketStatusOpen, found.Status)
	assert.False(t, found.ResolvedAt.Valid)

	_, err = repo.FindTicket(context.Background(), 99999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// Владелец находится и по id, и по email; чужая заявка дает NotFound.
func TestTicketRepository_Integration_OwnedLookup(t *testing.T) {
	requireTestPool(t)
	cleanupTables(t, testPool)
	repo := NewTicketRepository(testPool)

	id := seedTestTicket(t, repo, "TKT-2-AAAAAA", 7, "client@example.com")

	byID, err := repo.FindOwnedTicket(context.Background(), id, 7, "другой@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, byID.ID)

	byEmail, err := repo.FindOwnedTicket(context.Background(), id, 0, "client@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)

	_, err = repo.FindOwnedTicket(context.Background(), id, 99, "stranger@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTicketRepository_Integration_CustomerPagination(t *testing.T) {
	requireTestPool(t)
	cleanupTables(t, testPool)
	repo := NewTicketRepository(testPool)

	for i := 0; i < 3; i++ {
		seedTestTicket(t, repo, fmt.Sprintf("TKT-3-AAAAA%d", i), 7, "client@example.com")
		time.Sleep(10 * time.Millisecond)
	}
	seedTestTicket(t, repo, "TKT-3-ZZZZZZ", 99, "stranger@example.com")

	tickets, total, err := repo.GetTicketsForCustomer(context.Background(), 7, "client@example.com", "", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total, "Чужая заявка не должна попадать в подсчет")
	assert.Len(t, tickets, 2)
}

func TestTicketRepository_Integration_BulkUpdate(t *testing.T) {
	requireTestPool(t)
	cleanupTables(t, testPool)
	repo := NewTicketRepository(testPool)

	first := seedTestTicket(t, repo, "TKT-4-AAAAAA", 7, "client@example.com")
	second := seedTestTicket(t, repo, "TKT-4-BBBBBB", 7, "client@example.com")

	updated, err := repo.BulkUpdateTickets(context.Background(),
		[]uint64{first, second, 99999}, "priority", constants.TicketPriorityUrgent)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated, "Несуществующий id пропускается молча")

	found, err := repo.FindTicket(context.Background(), first)
	require.NoError(t, err)
	assert.Equal(t, constants.TicketPriorityUrgent, found.Priority)
}

// Репозиторий работает и поверх транзакции: запись, сделанная внутри
// отмененной транзакции, не видна через пул.
func TestTicketRepository_Integration_TransactionalQuerier(t *testing.T) {
	requireTestPool(t)
	cleanupTables(t, testPool)

	tx, err := testPool.Begin(context.Background())
	require.NoError(t, err)
	defer tx.Rollback(context.Background())

	txRepo := NewTicketRepository(tx)
	id := seedTestTicket(t, txRepo, "TKT-6-AAAAAA", 7, "client@example.com")

	inTx, err := txRepo.FindTicket(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "TKT-6-AAAAAA", inTx.TicketNumber)

	require.NoError(t, tx.Rollback(context.Background()))

	poolRepo := NewTicketRepository(testPool)
	_, err = poolRepo.FindTicket(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// БД сама отклоняет сообщение без родителя или с двумя родителями.
func TestMessageRepository_Integration_ExactlyOneParent(t *testing.T) {
	requireTestPool(t)
	cleanupTables(t, testPool)
	ticketRepo := NewTicketRepository(testPool)
	messageRepo := NewMessageRepository(testPool)

	ticketID := seedTestTicket(t, ticketRepo, "TKT-5-AAAAAA", 7, "client@example.com")

	_, err := messageRepo.CreateMessage(context.Background(), &entities.Message{
		Content:    "сирота",
		SenderType: constants.SenderTypeCustomer,
		CreatedAt:  time.Now(),
	})
	assert.Error(t, err, "Сообщение без родителя должно нарушать CHECK")

	_, err = messageRepo.CreateMessage(context.Background(), &entities.Message{
		TicketID:   null.Uint64From(ticketID),
		Content:    "нормальное сообщение",
		SenderType: constants.SenderTypeCustomer,
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)

	messages, err := messageRepo.GetTicketMessages(context.Background(), ticketID, true)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "нормальное сообщение", messages[0].Content)
}

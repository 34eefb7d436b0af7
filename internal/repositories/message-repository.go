package repositories

import (
	"context"
	"fmt"

	"support-system/internal/entities"

	"github.com/jackc/pgx/v5"
)

const messageFields = `id, ticket_id, chat_session_id, content, sender_type,
	is_internal, is_automated, sender_id, sender_email, sender_name, created_at`

type MessageRepositoryInterface interface {
	CreateMessage(ctx context.Context, message *entities.Message) (uint64, error)
	GetTicketMessages(ctx context.Context, ticketID uint64, includeInternal bool) ([]entities.Message, error)
	GetSessionMessages(ctx context.Context, sessionID uint64, includeInternal bool) ([]entities.Message, error)
}

type messageRepository struct {
	storage Querier
}

func NewMessageRepository(storage Querier) MessageRepositoryInterface {
	return &messageRepository{storage: storage}
}

func (r *messageRepository) CreateMessage(ctx context.Context, message *entities.Message) (uint64, error) {
	query := `
		INSERT INTO messages (
			ticket_id, chat_session_id, content, sender_type, is_internal,
			is_automated, sender_id, sender_email, sender_name, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	var id uint64
	err := r.storage.QueryRow(ctx, query,
		message.TicketID, message.ChatSessionID, message.Content, message.SenderType,
		message.IsInternal, message.IsAutomated, message.SenderID, message.SenderEmail,
		message.SenderName, message.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания сообщения: %w", err)
	}
	return id, nil
}

func (r *messageRepository) GetTicketMessages(ctx context.Context, ticketID uint64, includeInternal bool) ([]entities.Message, error) {
	return r.getMessages(ctx, "ticket_id", ticketID, includeInternal)
}

func (r *messageRepository) GetSessionMessages(ctx context.Context, sessionID uint64, includeInternal bool) ([]entities.Message, error) {
	return r.getMessages(ctx, "chat_session_id", sessionID, includeInternal)
}

func (r *messageRepository) getMessages(ctx context.Context, parentColumn string, parentID uint64, includeInternal bool) ([]entities.Message, error) {
	internalClause := ""
	if !includeInternal {
		internalClause = "AND is_internal = FALSE"
	}
	query := fmt.Sprintf(`
		SELECT %s FROM messages
		WHERE %s = $1 %s
		ORDER BY created_at ASC, id ASC`, messageFields, parentColumn, internalClause)

	rows, err := r.storage.Query(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения сообщений: %w", err)
	}
	defer rows.Close()

	return collectMessages(rows)
}

func collectMessages(rows pgx.Rows) ([]entities.Message, error) {
	messages := make([]entities.Message, 0)
	for rows.Next() {
		var m entities.Message
		err := rows.Scan(
			&m.ID, &m.TicketID, &m.ChatSessionID, &m.Content, &m.SenderType,
			&m.IsInternal, &m.IsAutomated, &m.SenderID, &m.SenderEmail, &m.SenderName,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования сообщения: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обхода сообщений: %w", err)
	}
	return messages, nil
}

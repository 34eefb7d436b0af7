package repositories

import (
	"context"
	"errors"
	"fmt"

	"support-system/internal/entities"
	apperrors "support-system/pkg/errors"
	"support-system/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

const (
	chatSessionTable  = "chat_sessions"
	chatSessionFields = `id, session_code, subject, customer_id, customer_email, customer_name,
		admin_id, status, started_at, last_activity_at, admin_joined_at, ended_at`
)

type ChatRepositoryInterface interface {
	CreateSession(ctx context.Context, session *entities.ChatSession) (uint64, error)
	FindSessionByID(ctx context.Context, id uint64) (*entities.ChatSession, error)
	FindSessionByCode(ctx context.Context, code string) (*entities.ChatSession, error)
	FindOwnedSession(ctx context.Context, id uint64, customerID uint64, customerEmail string) (*entities.ChatSession, error)
	GetSessionsForCustomer(ctx context.Context, customerID uint64, customerEmail string, limit, offset uint64) ([]entities.ChatSession, uint64, error)
	GetSessions(ctx context.Context, filter types.ChatFilter) ([]entities.ChatSession, uint64, error)
	UpdateSession(ctx context.Context, session *entities.ChatSession) error
}

type chatRepository struct {
	storage Querier
}

func NewChatRepository(storage Querier) ChatRepositoryInterface {
	return &chatRepository{storage: storage}
}

func scanChatSession(row pgx.Row) (*entities.ChatSession, error) {
	var s entities.ChatSession
	err := row.Scan(
		&s.ID, &s.SessionCode, &s.Subject, &s.CustomerID, &s.CustomerEmail, &s.CustomerName,
		&s.AdminID, &s.Status, &s.StartedAt, &s.LastActivityAt, &s.AdminJoinedAt, &s.EndedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения чат-сессии: %w", err)
	}
	return &s, nil
}

func (r *chatRepository) CreateSession(ctx context.Context, session *entities.ChatSession) (uint64, error) {
	query := `
		INSERT INTO chat_sessions (
			session_code, subject, customer_id, customer_email, customer_name,
			status, started_at, last_activity_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	var id uint64
	err := r.storage.QueryRow(ctx, query,
		session.SessionCode, session.Subject, session.CustomerID, session.CustomerEmail,
		session.CustomerName, session.Status, session.StartedAt, session.LastActivityAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания чат-сессии: %w", err)
	}
	return id, nil
}

func (r *chatRepository) FindSessionByID(ctx context.Context, id uint64) (*entities.ChatSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, chatSessionFields, chatSessionTable)
	return scanChatSession(r.storage.QueryRow(ctx, query, id))
}

func (r *chatRepository) FindSessionByCode(ctx context.Context, code string) (*entities.ChatSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE session_code = $1`, chatSessionFields, chatSessionTable)
	return scanChatSession(r.storage.QueryRow(ctx, query, code))
}

// FindOwnedSession ищет сессию с проверкой владельца одним запросом.
// Владелец определяется по id клиента или по email.
// Чужая сессия неотличима от несуществующей.
func (r *chatRepository) FindOwnedSession(ctx context.Context, id uint64, customerID uint64, customerEmail string) (*entities.ChatSession, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1 AND (customer_id = $2 OR customer_email = $3)`, chatSessionFields, chatSessionTable)
	return scanChatSession(r.storage.QueryRow(ctx, query, id, customerID, customerEmail))
}

func (r *chatRepository) GetSessionsForCustomer(ctx context.Context, customerID uint64, customerEmail string, limit, offset uint64) ([]entities.ChatSession, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx,
		`SELECT COUNT(*) FROM chat_sessions WHERE customer_id = $1 OR customer_email = $2`,
		customerID, customerEmail,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета чат-сессий клиента: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE customer_id = $1 OR customer_email = $2
		ORDER BY started_at DESC
		LIMIT $3 OFFSET $4`, chatSessionFields, chatSessionTable)

	rows, err := r.storage.Query(ctx, query, customerID, customerEmail, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения чат-сессий клиента: %w", err)
	}
	defer rows.Close()

	return collectChatSessions(rows, total)
}

func (r *chatRepository) GetSessions(ctx context.Context, filter types.ChatFilter) ([]entities.ChatSession, uint64, error) {
	conds := make([]sq.Sqlizer, 0)
	if filter.Status != "" {
		conds = append(conds, sq.Eq{"status": filter.Status})
	}
	if filter.CustomerID != 0 {
		conds = append(conds, sq.Eq{"customer_id": filter.CustomerID})
	}
	if filter.AdminID != 0 {
		conds = append(conds, sq.Eq{"admin_id": filter.AdminID})
	}

	countBuilder := sq.Select("COUNT(*)").From(chatSessionTable)
	listBuilder := sq.Select(chatSessionFields).From(chatSessionTable)
	for _, cond := range conds {
		countBuilder = countBuilder.Where(cond)
		listBuilder = listBuilder.Where(cond)
	}

	countSQL, countArgs, err := countBuilder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса подсчета чат-сессий: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета чат-сессий: %w", err)
	}

	listBuilder = listBuilder.OrderBy("last_activity_at DESC")
	if filter.Limit > 0 {
		listBuilder = listBuilder.Limit(filter.Limit).Offset(filter.Offset)
	}
	listSQL, listArgs, err := listBuilder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса списка чат-сессий: %w", err)
	}

	rows, err := r.storage.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка чат-сессий: %w", err)
	}
	defer rows.Close()

	return collectChatSessions(rows, total)
}

func collectChatSessions(rows pgx.Rows, total uint64) ([]entities.ChatSession, uint64, error) {
	sessions := make([]entities.ChatSession, 0)
	for rows.Next() {
		var s entities.ChatSession
		err := rows.Scan(
			&s.ID, &s.SessionCode, &s.Subject, &s.CustomerID, &s.CustomerEmail, &s.CustomerName,
			&s.AdminID, &s.Status, &s.StartedAt, &s.LastActivityAt, &s.AdminJoinedAt, &s.EndedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования чат-сессии: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка обхода чат-сессий: %w", err)
	}
	return sessions, total, nil
}

func (r *chatRepository) UpdateSession(ctx context.Context, session *entities.ChatSession) error {
	query := `
		UPDATE chat_sessions SET
			subject = $1, admin_id = $2, status = $3, last_activity_at = $4,
			admin_joined_at = $5, ended_at = $6
		WHERE id = $7`

	tag, err := r.storage.Exec(ctx, query,
		session.Subject, session.AdminID, session.Status, session.LastActivityAt,
		session.AdminJoinedAt, session.EndedAt, session.ID,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления чат-сессии: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

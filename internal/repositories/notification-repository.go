package repositories

import (
	"context"
	"fmt"
	"time"

	"support-system/internal/entities"
	apperrors "support-system/pkg/errors"
)

const notificationFields = `id, type, title, body, ticket_id, chat_session_id, is_read, read_at, created_at`

type NotificationRepositoryInterface interface {
	CreateNotification(ctx context.Context, notification *entities.Notification) (uint64, error)
	GetNotifications(ctx context.Context, unreadOnly bool, limit, offset uint64) ([]entities.Notification, uint64, error)
	MarkRead(ctx context.Context, id uint64, readAt time.Time) error
	MarkAllRead(ctx context.Context, readAt time.Time) (int64, error)
}

type notificationRepository struct {
	storage Querier
}

func NewNotificationRepository(storage Querier) NotificationRepositoryInterface {
	return &notificationRepository{storage: storage}
}

func (r *notificationRepository) CreateNotification(ctx context.Context, notification *entities.Notification) (uint64, error) {
	query := `
		INSERT INTO notifications (type, title, body, ticket_id, chat_session_id, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
		RETURNING id`

	var id uint64
	err := r.storage.QueryRow(ctx, query,
		notification.Type, notification.Title, notification.Body,
		notification.TicketID, notification.ChatSessionID, notification.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания уведомления: %w", err)
	}
	return id, nil
}

func (r *notificationRepository) GetNotifications(ctx context.Context, unreadOnly bool, limit, offset uint64) ([]entities.Notification, uint64, error) {
	whereClause := ""
	if unreadOnly {
		whereClause = "WHERE is_read = FALSE"
	}

	var total uint64
	if err := r.storage.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM notifications %s`, whereClause),
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета уведомлений: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM notifications %s
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, notificationFields, whereClause)

	rows, err := r.storage.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения уведомлений: %w", err)
	}
	defer rows.Close()

	notifications := make([]entities.Notification, 0)
	for rows.Next() {
		var n entities.Notification
		err := rows.Scan(
			&n.ID, &n.Type, &n.Title, &n.Body, &n.TicketID, &n.ChatSessionID,
			&n.IsRead, &n.ReadAt, &n.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования уведомления: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка обхода уведомлений: %w", err)
	}
	return notifications, total, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uint64, readAt time.Time) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = $1 WHERE id = $2`, readAt, id)
	if err != nil {
		return fmt.Errorf("ошибка отметки уведомления прочитанным: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, readAt time.Time) (int64, error) {
	tag, err := r.storage.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = $1 WHERE is_read = FALSE`, readAt)
	if err != nil {
		return 0, fmt.Errorf("ошибка массовой отметки уведомлений: %w", err)
	}
	return tag.RowsAffected(), nil
}

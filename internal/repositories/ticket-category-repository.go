package repositories

import (
	"context"
	"errors"
	"fmt"

	"support-system/internal/entities"
	apperrors "support-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	ticketCategoryTable  = "ticket_categories"
	ticketCategoryFields = "id, name, color, is_active, sort_order"
)

type TicketCategoryRepositoryInterface interface {
	GetTicketCategories(ctx context.Context, activeOnly bool) ([]entities.TicketCategory, error)
	FindTicketCategory(ctx context.Context, id uint64) (*entities.TicketCategory, error)
	CreateTicketCategory(ctx context.Context, category *entities.TicketCategory) (uint64, error)
	UpdateTicketCategory(ctx context.Context, category *entities.TicketCategory) error
	DeleteTicketCategory(ctx context.Context, id uint64) error
}

type ticketCategoryRepository struct {
	storage Querier
}

func NewTicketCategoryRepository(storage Querier) TicketCategoryRepositoryInterface {
	return &ticketCategoryRepository{storage: storage}
}

func (r *ticketCategoryRepository) GetTicketCategories(ctx context.Context, activeOnly bool) ([]entities.TicketCategory, error) {
	whereClause := ""
	if activeOnly {
		whereClause = "WHERE is_active = TRUE"
	}
	query := fmt.Sprintf(`
		SELECT %s FROM %s %s
		ORDER BY sort_order ASC, name ASC`, ticketCategoryFields, ticketCategoryTable, whereClause)

	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения категорий: %w", err)
	}
	defer rows.Close()

	categories := make([]entities.TicketCategory, 0)
	for rows.Next() {
		var c entities.TicketCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.IsActive, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("ошибка сканирования категории: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обхода категорий: %w", err)
	}
	return categories, nil
}

func (r *ticketCategoryRepository) FindTicketCategory(ctx context.Context, id uint64) (*entities.TicketCategory, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, ticketCategoryFields, ticketCategoryTable)

	var c entities.TicketCategory
	err := r.storage.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Color, &c.IsActive, &c.SortOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения категории: %w", err)
	}
	return &c, nil
}

func (r *ticketCategoryRepository) CreateTicketCategory(ctx context.Context, category *entities.TicketCategory) (uint64, error) {
	query := `
		INSERT INTO ticket_categories (name, color, is_active, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id uint64
	err := r.storage.QueryRow(ctx, query,
		category.Name, category.Color, category.IsActive, category.SortOrder,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, apperrors.ErrConflict
		}
		return 0, fmt.Errorf("ошибка создания категории: %w", err)
	}
	return id, nil
}

func (r *ticketCategoryRepository) UpdateTicketCategory(ctx context.Context, category *entities.TicketCategory) error {
	query := `
		UPDATE ticket_categories SET name = $1, color = $2, is_active = $3, sort_order = $4
		WHERE id = $5`

	tag, err := r.storage.Exec(ctx, query,
		category.Name, category.Color, category.IsActive, category.SortOrder, category.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("ошибка обновления категории: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteTicketCategory удаляет категорию. Если на нее ссылаются
// заявки, база вернет нарушение внешнего ключа - отдаем конфликт.
func (r *ticketCategoryRepository) DeleteTicketCategory(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx, `DELETE FROM ticket_categories WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("ошибка удаления категории: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

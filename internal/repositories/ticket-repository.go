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
	ticketTable  = "tickets"
	ticketFields = `id, ticket_number, subject, description, status, priority, category_id,
		customer_id, customer_email, customer_name, assigned_to, order_id, service_id,
		created_at, updated_at, assigned_at, resolved_at, closed_at,
		last_customer_reply_at, last_admin_reply_at`
)

type TicketRepositoryInterface interface {
	CreateTicket(ctx context.Context, ticket *entities.Ticket) (uint64, error)
	FindTicket(ctx context.Context, id uint64) (*entities.Ticket, error)
	FindOwnedTicket(ctx context.Context, id uint64, customerID uint64, customerEmail string) (*entities.Ticket, error)
	GetTicketsForCustomer(ctx context.Context, customerID uint64, customerEmail string, status string, limit, offset uint64) ([]entities.Ticket, uint64, error)
	GetTickets(ctx context.Context, filter types.TicketFilter) ([]entities.Ticket, uint64, error)
	UpdateTicket(ctx context.Context, ticket *entities.Ticket) error
	BulkUpdateTickets(ctx context.Context, ids []uint64, column string, value interface{}) (int64, error)
}

type ticketRepository struct {
	storage Querier
}

func NewTicketRepository(storage Querier) TicketRepositoryInterface {
	return &ticketRepository{storage: storage}
}

func scanTicket(row pgx.Row) (*entities.Ticket, error) {
	var t entities.Ticket
	err := row.Scan(
		&t.ID, &t.TicketNumber, &t.Subject, &t.Description, &t.Status, &t.Priority, &t.CategoryID,
		&t.CustomerID, &t.CustomerEmail, &t.CustomerName, &t.AssignedTo, &t.OrderID, &t.ServiceID,
		&t.CreatedAt, &t.UpdatedAt, &t.AssignedAt, &t.ResolvedAt, &t.ClosedAt,
		&t.LastCustomerReplyAt, &t.LastAdminReplyAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения заявки: %w", err)
	}
	return &t, nil
}

func (r *ticketRepository) CreateTicket(ctx context.Context, ticket *entities.Ticket) (uint64, error) {
	query := `
		INSERT INTO tickets (
			ticket_number, subject, description, status, priority, category_id,
			customer_id, customer_email, customer_name, order_id, service_id,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	var id uint64
	err := r.storage.QueryRow(ctx, query,
		ticket.TicketNumber, ticket.Subject, ticket.Description, ticket.Status, ticket.Priority,
		ticket.CategoryID, ticket.CustomerID, ticket.CustomerEmail, ticket.CustomerName,
		ticket.OrderID, ticket.ServiceID, ticket.CreatedAt, ticket.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания заявки: %w", err)
	}
	return id, nil
}

func (r *ticketRepository) FindTicket(ctx context.Context, id uint64) (*entities.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, ticketFields, ticketTable)
	return scanTicket(r.storage.QueryRow(ctx, query, id))
}

// FindOwnedTicket ищет заявку с проверкой владельца одним запросом.
// Владелец определяется по id клиента или по email (для гостевых заявок).
// Чужая заявка неотличима от несуществующей - оба случая дают ErrNotFound.
func (r *ticketRepository) FindOwnedTicket(ctx context.Context, id uint64, customerID uint64, customerEmail string) (*entities.Ticket, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1 AND (customer_id = $2 OR customer_email = $3)`, ticketFields, ticketTable)
	return scanTicket(r.storage.QueryRow(ctx, query, id, customerID, customerEmail))
}

func (r *ticketRepository) GetTicketsForCustomer(ctx context.Context, customerID uint64, customerEmail string, status string, limit, offset uint64) ([]entities.Ticket, uint64, error) {
	ownerCond := sq.Or{
		sq.Eq{"customer_id": customerID},
		sq.Eq{"customer_email": customerEmail},
	}
	countBuilder := sq.Select("COUNT(*)").From(ticketTable).Where(ownerCond)
	listBuilder := sq.Select(ticketFields).From(ticketTable).Where(ownerCond)
	if status != "" {
		countBuilder = countBuilder.Where(sq.Eq{"status": status})
		listBuilder = listBuilder.Where(sq.Eq{"status": status})
	}

	countSQL, countArgs, err := countBuilder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса подсчета заявок клиента: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета заявок клиента: %w", err)
	}

	listSQL, listArgs, err := listBuilder.
		OrderBy("created_at DESC").
		Limit(limit).Offset(offset).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса заявок клиента: %w", err)
	}

	rows, err := r.storage.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения заявок клиента: %w", err)
	}
	defer rows.Close()

	return collectTickets(rows, total)
}

func ticketFilterConditions(filter types.TicketFilter) []sq.Sqlizer {
	conds := make([]sq.Sqlizer, 0)
	if filter.Status != "" {
		conds = append(conds, sq.Eq{"status": filter.Status})
	}
	if filter.Priority != "" {
		conds = append(conds, sq.Eq{"priority": filter.Priority})
	}
	if filter.CategoryID != 0 {
		conds = append(conds, sq.Eq{"category_id": filter.CategoryID})
	}
	if filter.AssignedTo != 0 {
		conds = append(conds, sq.Eq{"assigned_to": filter.AssignedTo})
	}
	if filter.CustomerID != 0 {
		conds = append(conds, sq.Eq{"customer_id": filter.CustomerID})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		conds = append(conds, sq.Or{
			sq.ILike{"subject": pattern},
			sq.ILike{"description": pattern},
			sq.ILike{"ticket_number": pattern},
			sq.ILike{"customer_email": pattern},
		})
	}
	if filter.DateFrom != nil {
		conds = append(conds, sq.GtOrEq{"created_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		conds = append(conds, sq.LtOrEq{"created_at": *filter.DateTo})
	}
	return conds
}

func (r *ticketRepository) GetTickets(ctx context.Context, filter types.TicketFilter) ([]entities.Ticket, uint64, error) {
	countBuilder := sq.Select("COUNT(*)").From(ticketTable)
	listBuilder := sq.Select(ticketFields).From(ticketTable)
	for _, cond := range ticketFilterConditions(filter) {
		countBuilder = countBuilder.Where(cond)
		listBuilder = listBuilder.Where(cond)
	}

	countSQL, countArgs, err := countBuilder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса подсчета заявок: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета заявок: %w", err)
	}

	listBuilder = listBuilder.OrderBy("created_at DESC")
	if filter.Limit > 0 {
		listBuilder = listBuilder.Limit(filter.Limit).Offset(filter.Offset)
	}
	listSQL, listArgs, err := listBuilder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса списка заявок: %w", err)
	}

	rows, err := r.storage.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка заявок: %w", err)
	}
	defer rows.Close()

	return collectTickets(rows, total)
}

func collectTickets(rows pgx.Rows, total uint64) ([]entities.Ticket, uint64, error) {
	tickets := make([]entities.Ticket, 0)
	for rows.Next() {
		var t entities.Ticket
		err := rows.Scan(
			&t.ID, &t.TicketNumber, &t.Subject, &t.Description, &t.Status, &t.Priority, &t.CategoryID,
			&t.CustomerID, &t.CustomerEmail, &t.CustomerName, &t.AssignedTo, &t.OrderID, &t.ServiceID,
			&t.CreatedAt, &t.UpdatedAt, &t.AssignedAt, &t.ResolvedAt, &t.ClosedAt,
			&t.LastCustomerReplyAt, &t.LastAdminReplyAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования заявки: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка обхода заявок: %w", err)
	}
	return tickets, total, nil
}

// UpdateTicket сохраняет заявку целиком. Поля и метки времени
// выставляет сервисный слой, репозиторий их не трогает.
func (r *ticketRepository) UpdateTicket(ctx context.Context, ticket *entities.Ticket) error {
	query := `
		UPDATE tickets SET
			subject = $1, description = $2, status = $3, priority = $4, category_id = $5,
			assigned_to = $6, updated_at = $7, assigned_at = $8, resolved_at = $9,
			closed_at = $10, last_customer_reply_at = $11, last_admin_reply_at = $12
		WHERE id = $13`

	tag, err := r.storage.Exec(ctx, query,
		ticket.Subject, ticket.Description, ticket.Status, ticket.Priority, ticket.CategoryID,
		ticket.AssignedTo, ticket.UpdatedAt, ticket.AssignedAt, ticket.ResolvedAt,
		ticket.ClosedAt, ticket.LastCustomerReplyAt, ticket.LastAdminReplyAt,
		ticket.ID,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления заявки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// BulkUpdateTickets меняет одну колонку у пачки заявок.
// Возвращает фактическое число обновленных строк: несуществующие
// идентификаторы молча пропускаются.
func (r *ticketRepository) BulkUpdateTickets(ctx context.Context, ids []uint64, column string, value interface{}) (int64, error) {
	builder := sq.Update(ticketTable).
		Set(column, value).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": ids})

	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки массового обновления: %w", err)
	}

	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("ошибка массового обновления заявок: %w", err)
	}
	return tag.RowsAffected(), nil
}

package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// ResolutionRow - сырые метрики решения за окно времени.
// CreatedCount считается по created_at, ResolvedCount и средняя
// длительность - по resolved_at. Когорты разные, это осознанно.
type ResolutionRow struct {
	CreatedCount         uint64
	ResolvedCount        uint64
	AvgResolutionSeconds float64
}

type DashboardRepositoryInterface interface {
	CountTicketsByStatus(ctx context.Context) (map[string]uint64, error)
	CountTicketsByPriority(ctx context.Context) (map[string]uint64, error)
	CountUrgentOpen(ctx context.Context) (uint64, error)
	CountActiveChats(ctx context.Context) (uint64, error)
	ResolutionStats(ctx context.Context, from, to time.Time) (*ResolutionRow, error)
}

type dashboardRepository struct {
	storage Querier
}

func NewDashboardRepository(storage Querier) DashboardRepositoryInterface {
	return &dashboardRepository{storage: storage}
}

func (r *dashboardRepository) countByColumn(ctx context.Context, column string) (map[string]uint64, error) {
	query := fmt.Sprintf(`SELECT %s, COUNT(*) FROM tickets GROUP BY %s`, column, column)

	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчета заявок по %s: %w", column, err)
	}
	defer rows.Close()

	counts := make(map[string]uint64)
	for rows.Next() {
		var key string
		var count uint64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("ошибка сканирования счетчика: %w", err)
		}
		counts[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обхода счетчиков: %w", err)
	}
	return counts, nil
}

func (r *dashboardRepository) CountTicketsByStatus(ctx context.Context) (map[string]uint64, error) {
	return r.countByColumn(ctx, "status")
}

func (r *dashboardRepository) CountTicketsByPriority(ctx context.Context) (map[string]uint64, error) {
	return r.countByColumn(ctx, "priority")
}

func (r *dashboardRepository) CountUrgentOpen(ctx context.Context) (uint64, error) {
	query, args, err := sq.Select("COUNT(*)").From("tickets").
		Where(sq.Eq{"priority": "urgent"}).
		Where(sq.NotEq{"status": []string{"resolved", "closed"}}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса срочных заявок: %w", err)
	}

	var count uint64
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчета срочных заявок: %w", err)
	}
	return count, nil
}

func (r *dashboardRepository) CountActiveChats(ctx context.Context) (uint64, error) {
	var count uint64
	err := r.storage.QueryRow(ctx,
		`SELECT COUNT(*) FROM chat_sessions WHERE status = 'active'`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета активных чатов: %w", err)
	}
	return count, nil
}

func (r *dashboardRepository) ResolutionStats(ctx context.Context, from, to time.Time) (*ResolutionRow, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM tickets WHERE created_at >= $1 AND created_at <= $2),
			COUNT(*),
			COALESCE(AVG(EXTRACT(EPOCH FROM (resolved_at - created_at))), 0)
		FROM tickets
		WHERE resolved_at IS NOT NULL AND resolved_at >= $1 AND resolved_at <= $2`

	row := &ResolutionRow{}
	err := r.storage.QueryRow(ctx, query, from, to).Scan(
		&row.CreatedCount, &row.ResolvedCount, &row.AvgResolutionSeconds)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения метрик решения: %w", err)
	}
	return row, nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"support-system/internal/entities"
	apperrors "support-system/pkg/errors"

	"github.com/jackc/pgx/v5"
)

const userFields = "id, email, password_hash, name, role, created_at"

type UserRepositoryInterface interface {
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	FindByID(ctx context.Context, id uint64) (*entities.User, error)
}

type userRepository struct {
	storage Querier
}

func NewUserRepository(storage Querier) UserRepositoryInterface {
	return &userRepository{storage: storage}
}

func (r *userRepository) scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения пользователя: %w", err)
	}
	return &u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userFields)
	return r.scanUser(r.storage.QueryRow(ctx, query, email))
}

func (r *userRepository) FindByID(ctx context.Context, id uint64) (*entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userFields)
	return r.scanUser(r.storage.QueryRow(ctx, query, id))
}

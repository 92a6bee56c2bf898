// Package postgres - UserRepository implementation.
package postgres

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nissmart/ledger/internal/application/ports"
	"github.com/nissmart/ledger/internal/domain/entities"
	domainErrors "github.com/nissmart/ledger/internal/domain/errors"
)

// Compile-time check
var _ ports.UserRepository = (*UserRepository)(nil)

// UserRepository реализует ports.UserRepository для PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository создаёт новый UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Insert сохраняет нового пользователя.
func (r *UserRepository) Insert(ctx context.Context, user *entities.User) error {
	q := getQuerier(ctx, r.pool)

	query := `
		INSERT INTO users (id, email, full_name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := q.Exec(ctx, query,
		user.ID(),
		user.Email(),
		user.FullName(),
		user.IsActive(),
		user.CreatedAt(),
		user.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err, "users_email") {
			return domainErrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// FindByID загружает пользователя по ID.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	q := getQuerier(ctx, r.pool)

	query := `
		SELECT id, email, full_name, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	return scanUser(q.QueryRow(ctx, query, id))
}

// FindByEmail загружает пользователя по email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	q := getQuerier(ctx, r.pool)

	query := `
		SELECT id, email, full_name, is_active, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	return scanUser(q.QueryRow(ctx, query, email))
}

// List возвращает пользователей с пагинацией, старые первыми.
func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]*entities.User, error) {
	q := getQuerier(ctx, r.pool)

	query := `
		SELECT id, email, full_name, is_active, created_at, updated_at
		FROM users
		ORDER BY created_at, id
		OFFSET $1 LIMIT $2
	`

	rows, err := q.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*entities.User
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Count возвращает общее число пользователей.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	q := getQuerier(ctx, r.pool)

	var count int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func scanUser(row pgx.Row) (*entities.User, error) {
	user, err := scanUserRow(row)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrEntityNotFound
		}
		return nil, err
	}
	return user, nil
}

func scanUserRow(row pgx.Row) (*entities.User, error) {
	var (
		id                   uuid.UUID
		email, fullName      string
		isActive             bool
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &email, &fullName, &isActive, &createdAt, &updatedAt); err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return entities.ReconstructUser(id, email, fullName, isActive, createdAt, updatedAt), nil
}

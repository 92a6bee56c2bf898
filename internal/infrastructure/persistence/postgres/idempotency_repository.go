// Package postgres - IdempotencyRepository implementation.
//
// Конкурентная модель ключей:
//   - FindByKey берёт FOR UPDATE: конкурентные acquire на один ключ
//     сериализуются на row-level блокировке
//   - Гонка вставки (два запроса с новым ключом одновременно) отдаётся
//     как ConcurrencyError; координатор повторяет транзакцию и второй
//     попыткой видит запись победителя
//   - Unique-индекс на request_hash ловит один payload под двумя ключами
package postgres

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nissmart/ledger/internal/application/ports"
	"github.com/nissmart/ledger/internal/domain/entities"
	domainErrors "github.com/nissmart/ledger/internal/domain/errors"
)

// Compile-time check
var _ ports.IdempotencyRepository = (*IdempotencyRepository)(nil)

// IdempotencyRepository реализует ports.IdempotencyRepository для PostgreSQL.
type IdempotencyRepository struct {
	pool *pgxpool.Pool
}

// NewIdempotencyRepository создаёт новый IdempotencyRepository.
func NewIdempotencyRepository(pool *pgxpool.Pool) *IdempotencyRepository {
	return &IdempotencyRepository{pool: pool}
}

// Insert сохраняет новую запись.
func (r *IdempotencyRepository) Insert(ctx context.Context, record *entities.IdempotencyRecord) error {
	q := getQuerier(ctx, r.pool)

	query := `
		INSERT INTO idempotency_keys (
			key, request_hash, response_code, response_body, recovery_point,
			locked_at, locked_by, expires_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := q.Exec(ctx, query,
		record.Key(),
		record.RequestHash(),
		record.ResponseCode(),
		responseBodyArg(record.ResponseBody()),
		record.RecoveryPoint(),
		record.LockedAt(),
		record.LockedBy(),
		record.ExpiresAt(),
		record.CreatedAt(),
		record.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err, "idempotency_keys_request_hash") {
			return domainErrors.ErrIdempotencyConflict
		}
		if isUniqueViolation(err, "") {
			// Гонка по самому ключу (duplicate PK)
			return domainErrors.NewConcurrencyError(
				"IdempotencyRecord",
				record.Key(),
				"idempotency key was inserted by a concurrent transaction",
			)
		}
		return fmt.Errorf("failed to insert idempotency record: %w", err)
	}

	return nil
}

// FindByKey загружает запись с блокировкой FOR UPDATE.
func (r *IdempotencyRepository) FindByKey(ctx context.Context, key string) (*entities.IdempotencyRecord, error) {
	q := getQuerier(ctx, r.pool)

	query := `
		SELECT key, request_hash, response_code, response_body, recovery_point,
		       locked_at, locked_by, expires_at, created_at, updated_at
		FROM idempotency_keys
		WHERE key = $1
		FOR UPDATE
	`

	var (
		recordKey, requestHash     string
		responseCode               *int
		responseBody               *string
		recoveryPoint, lockedBy    *string
		lockedAt, expiresAt        *time.Time
		createdAt, updatedAt       time.Time
	)

	err := q.QueryRow(ctx, query, key).Scan(
		&recordKey, &requestHash, &responseCode, &responseBody, &recoveryPoint,
		&lockedAt, &lockedBy, &expiresAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrEntityNotFound
		}
		return nil, fmt.Errorf("failed to load idempotency record: %w", err)
	}

	var body []byte
	if responseBody != nil {
		body = []byte(*responseBody)
	}

	return entities.ReconstructIdempotencyRecord(
		recordKey, requestHash,
		responseCode, body, recoveryPoint,
		lockedAt, lockedBy, expiresAt,
		createdAt, updatedAt,
	), nil
}

// Update сохраняет изменённую запись (refresh lock, reclaim, settle).
func (r *IdempotencyRepository) Update(ctx context.Context, record *entities.IdempotencyRecord) error {
	q := getQuerier(ctx, r.pool)

	query := `
		UPDATE idempotency_keys SET
			request_hash = $2,
			response_code = $3,
			response_body = $4,
			recovery_point = $5,
			locked_at = $6,
			locked_by = $7,
			expires_at = $8,
			updated_at = $9
		WHERE key = $1
	`

	result, err := q.Exec(ctx, query,
		record.Key(),
		record.RequestHash(),
		record.ResponseCode(),
		responseBodyArg(record.ResponseBody()),
		record.RecoveryPoint(),
		record.LockedAt(),
		record.LockedBy(),
		record.ExpiresAt(),
		record.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err, "idempotency_keys_request_hash") {
			return domainErrors.ErrIdempotencyConflict
		}
		return fmt.Errorf("failed to update idempotency record: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domainErrors.ErrEntityNotFound
	}

	return nil
}

// responseBodyArg маппит пустое тело в NULL.
// Тело хранится как TEXT, а не JSONB: replay обязан быть байт-в-байт,
// а JSONB перенормализует ключи при чтении.
func responseBodyArg(body []byte) *string {
	if body == nil {
		return nil
	}
	s := string(body)
	return &s
}

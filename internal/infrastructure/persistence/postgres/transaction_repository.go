// Package postgres - TransactionRepository implementation.
package postgres

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nissmart/ledger/internal/application/ports"
	"github.com/nissmart/ledger/internal/domain/entities"
	domainErrors "github.com/nissmart/ledger/internal/domain/errors"
	"github.com/nissmart/ledger/internal/domain/valueobjects"
)

// Compile-time check
var _ ports.TransactionRepository = (*TransactionRepository)(nil)

// TransactionRepository реализует ports.TransactionRepository для PostgreSQL.
// Транзакции append-only: UPDATE отсутствует намеренно.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository создаёт новый TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `
	id, reference, user_id, account_id, type, status,
	amount::text, currency, description, context_data,
	occurred_at, created_at, updated_at`

// Insert сохраняет транзакцию.
func (r *TransactionRepository) Insert(ctx context.Context, tx *entities.Transaction) error {
	q := getQuerier(ctx, r.pool)

	metadata, err := json.Marshal(tx.Metadata())
	if err != nil {
		return fmt.Errorf("failed to marshal transaction metadata: %w", err)
	}

	query := `
		INSERT INTO transactions (
			id, reference, user_id, account_id, type, status,
			amount, currency, description, context_data,
			occurred_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	var description *string
	if d := tx.Description(); d != "" {
		description = &d
	}

	_, err = q.Exec(ctx, query,
		tx.ID(),
		tx.Reference(),
		tx.UserID(),
		tx.AccountID(),
		string(tx.Type()),
		string(tx.Status()),
		tx.Amount().String(),
		tx.Currency().Code(),
		description,
		metadata,
		tx.OccurredAt(),
		tx.CreatedAt(),
		tx.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err, "transactions_reference") {
			return domainErrors.ErrReferenceConflict
		}
		if isForeignKeyViolation(err) {
			return domainErrors.ErrEntityNotFound
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// FindByID загружает транзакцию по ID.
func (r *TransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	q := getQuerier(ctx, r.pool)

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(q.QueryRow(ctx, query, id))
}

// FindByReference находит транзакцию по уникальному reference.
func (r *TransactionRepository) FindByReference(ctx context.Context, reference string) (*entities.Transaction, error) {
	q := getQuerier(ctx, r.pool)

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reference = $1`
	return scanTransaction(q.QueryRow(ctx, query, reference))
}

// List возвращает транзакции под фильтром, новые первыми.
func (r *TransactionRepository) List(ctx context.Context, filter ports.TransactionFilter, offset, limit int) ([]*entities.Transaction, error) {
	q := getQuerier(ctx, r.pool)

	where, args := buildTransactionWhere(filter)
	query := `SELECT ` + transactionColumns + ` FROM transactions` + where +
		` ORDER BY occurred_at DESC, id DESC` +
		` OFFSET $` + strconv.Itoa(len(args)+1) + ` LIMIT $` + strconv.Itoa(len(args)+2)
	args = append(args, offset, limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*entities.Transaction
	for rows.Next() {
		tx, err := scanTransactionRow(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, tx)
	}
	return txns, rows.Err()
}

// Count возвращает число транзакций под фильтром.
func (r *TransactionRepository) Count(ctx context.Context, filter ports.TransactionFilter) (int64, error) {
	q := getQuerier(ctx, r.pool)

	where, args := buildTransactionWhere(filter)
	var count int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// CountByType возвращает число транзакций данного типа.
func (r *TransactionRepository) CountByType(ctx context.Context, txType entities.TransactionType) (int64, error) {
	return r.Count(ctx, ports.TransactionFilter{Type: &txType})
}

// SumAmountByType возвращает суммарный объём транзакций данного типа.
func (r *TransactionRepository) SumAmountByType(ctx context.Context, txType entities.TransactionType) (float64, error) {
	q := getQuerier(ctx, r.pool)

	var total float64
	query := `SELECT COALESCE(SUM(amount), 0)::float8 FROM transactions WHERE type = $1`
	if err := q.QueryRow(ctx, query, string(txType)).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum transaction amounts: %w", err)
	}
	return total, nil
}

// buildTransactionWhere собирает WHERE из непустых полей фильтра.
func buildTransactionWhere(filter ports.TransactionFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	add := func(condition string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filter.UserID != nil {
		add("user_id = $%d", *filter.UserID)
	}
	if filter.AccountID != nil {
		add("account_id = $%d", *filter.AccountID)
	}
	if filter.Type != nil {
		add("type = $%d", string(*filter.Type))
	}
	if filter.Status != nil {
		add("status = $%d", string(*filter.Status))
	}
	if filter.StartDate != nil {
		add("occurred_at >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("occurred_at <= $%d", *filter.EndDate)
	}

	if len(conditions) == 0 {
		return "", nil
	}

	where := " WHERE " + conditions[0]
	for _, c := range conditions[1:] {
		where += " AND " + c
	}
	return where, args
}

func scanTransaction(row pgx.Row) (*entities.Transaction, error) {
	tx, err := scanTransactionRow(row)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrEntityNotFound
		}
		return nil, err
	}
	return tx, nil
}

func scanTransactionRow(row pgx.Row) (*entities.Transaction, error) {
	var (
		id, accountID                    uuid.UUID
		userID                           *uuid.UUID
		reference, txType, status        string
		amountStr, currencyCode          string
		description                      *string
		metadataRaw                      []byte
		occurredAt, createdAt, updatedAt time.Time
	)

	err := row.Scan(
		&id, &reference, &userID, &accountID, &txType, &status,
		&amountStr, &currencyCode, &description, &metadataRaw,
		&occurredAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	currency, err := valueobjects.NewCurrency(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("invalid currency in database: %w", err)
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount in database: %w", err)
	}

	var metadata map[string]any
	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &metadata); err != nil {
			return nil, fmt.Errorf("invalid transaction metadata in database: %w", err)
		}
	}

	return entities.ReconstructTransaction(
		id,
		reference,
		userID,
		accountID,
		entities.TransactionType(txType),
		entities.TransactionStatus(status),
		valueobjects.NewMoneyFromDecimal(amount),
		currency,
		strFromPtr(description),
		metadata,
		occurredAt,
		createdAt,
		updatedAt,
	), nil
}

func strFromPtr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Package postgres - AccountRepository implementation.
//
// Конкурентная модель:
//   - Pessimistic: LockByIDs берёт SELECT ... FOR UPDATE в порядке
//     возрастания ID (защита от deadlock между встречными переводами)
//   - Optimistic: Update проверяет колонку version
package postgres

import (
	"context"
	stderrors "errors"
	"fmt"
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
var _ ports.AccountRepository = (*AccountRepository)(nil)

// AccountRepository реализует ports.AccountRepository для PostgreSQL.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository создаёт новый AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `
	id, user_id, name, currency, type, status,
	balance::text, available_balance::text, version,
	created_at, updated_at`

// Insert сохраняет новый счёт.
// Проигранная гонка создания (unique-индексы на (user_id, currency) для
// USER и на currency для TREASURY/EXTERNAL) возвращается как
// ConcurrencyError: в PostgreSQL нарушение уникальности абортирует
// транзакцию, поэтому вызывающий повторяет её целиком.
func (r *AccountRepository) Insert(ctx context.Context, account *entities.Account) error {
	q := getQuerier(ctx, r.pool)

	query := `
		INSERT INTO accounts (
			id, user_id, name, currency, type, status,
			balance, available_balance, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := q.Exec(ctx, query,
		account.ID(),
		account.OwnerUserID(),
		account.Name(),
		account.Currency().Code(),
		string(account.Type()),
		string(account.Status()),
		account.Balance().String(),
		account.AvailableBalance().String(),
		account.Version(),
		account.CreatedAt(),
		account.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return domainErrors.NewConcurrencyError(
				"Account",
				account.ID().String(),
				"account was created by a concurrent transaction",
			)
		}
		if isForeignKeyViolation(err) {
			return domainErrors.ErrEntityNotFound
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// Update сохраняет мутированный счёт с optimistic locking.
//
// Версия в entity уже увеличена мутацией, поэтому ожидаемая версия
// в БД = текущая - 1. RowsAffected == 0 означает проигранную гонку.
func (r *AccountRepository) Update(ctx context.Context, account *entities.Account) error {
	q := getQuerier(ctx, r.pool)

	query := `
		UPDATE accounts SET
			status = $2,
			balance = $3,
			available_balance = $4,
			version = $5,
			updated_at = $6
		WHERE id = $1 AND version = $7
	`

	expectedVersion := account.Version() - 1

	result, err := q.Exec(ctx, query,
		account.ID(),
		string(account.Status()),
		account.Balance().String(),
		account.AvailableBalance().String(),
		account.Version(),
		account.UpdatedAt(),
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domainErrors.NewConcurrencyError(
			"Account",
			account.ID().String(),
			fmt.Sprintf("account was modified by another transaction (expected version: %d)", expectedVersion),
		)
	}

	return nil
}

// FindByID загружает счёт по ID.
func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	q := getQuerier(ctx, r.pool)

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(q.QueryRow(ctx, query, id))
}

// FindByOwnerAndCurrency находит USER счёт пользователя для валюты.
func (r *AccountRepository) FindByOwnerAndCurrency(ctx context.Context, ownerUserID uuid.UUID, currency valueobjects.Currency) (*entities.Account, error) {
	q := getQuerier(ctx, r.pool)

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE user_id = $1 AND currency = $2 AND type = $3
	`
	return scanAccount(q.QueryRow(ctx, query, ownerUserID, currency.Code(), string(entities.AccountTypeUser)))
}

// FindSystemByCurrency находит системный счёт (TREASURY/EXTERNAL) валюты.
func (r *AccountRepository) FindSystemByCurrency(ctx context.Context, accountType entities.AccountType, currency valueobjects.Currency) (*entities.Account, error) {
	q := getQuerier(ctx, r.pool)

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE type = $1 AND currency = $2
	`
	return scanAccount(q.QueryRow(ctx, query, string(accountType), currency.Code()))
}

// FindByOwner возвращает все счета пользователя, упорядоченные по валюте.
func (r *AccountRepository) FindByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]*entities.Account, error) {
	q := getQuerier(ctx, r.pool)

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE user_id = $1
		ORDER BY currency, created_at
	`

	rows, err := q.Query(ctx, query, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// LockByIDs берёт эксклюзивные row-level блокировки на счета.
//
// ORDER BY id внутри запроса гарантирует, что блокировки берутся
// в одном и том же порядке независимо от порядка аргументов.
// Результат возвращается в порядке запрошенных ID.
func (r *AccountRepository) LockByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Account, error) {
	q := getQuerier(ctx, r.pool)

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	defer rows.Close()

	locked, err := scanAccounts(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*entities.Account, len(locked))
	for _, account := range locked {
		byID[account.ID()] = account
	}

	result := make([]*entities.Account, len(ids))
	for i, id := range ids {
		account, ok := byID[id]
		if !ok {
			return nil, domainErrors.ErrEntityNotFound
		}
		result[i] = account
	}
	return result, nil
}

// SumBalancesByType возвращает сумму балансов счетов данного типа.
func (r *AccountRepository) SumBalancesByType(ctx context.Context, accountType entities.AccountType) (float64, error) {
	q := getQuerier(ctx, r.pool)

	var total float64
	query := `SELECT COALESCE(SUM(balance), 0)::float8 FROM accounts WHERE type = $1`
	if err := q.QueryRow(ctx, query, string(accountType)).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum balances: %w", err)
	}
	return total, nil
}

func scanAccount(row pgx.Row) (*entities.Account, error) {
	account, err := scanAccountRow(row)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrEntityNotFound
		}
		return nil, err
	}
	return account, nil
}

func scanAccountRow(row pgx.Row) (*entities.Account, error) {
	var (
		id                        uuid.UUID
		userID                    *uuid.UUID
		name                      string
		currencyCode              string
		accountType, status       string
		balanceStr, availableStr  string
		version                   int64
		createdAt, updatedAt      time.Time
	)

	err := row.Scan(
		&id, &userID, &name, &currencyCode, &accountType, &status,
		&balanceStr, &availableStr, &version, &createdAt, &updatedAt,
	)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	currency, err := valueobjects.NewCurrency(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("invalid currency in database: %w", err)
	}
	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("invalid balance in database: %w", err)
	}
	available, err := decimal.NewFromString(availableStr)
	if err != nil {
		return nil, fmt.Errorf("invalid available balance in database: %w", err)
	}

	return entities.ReconstructAccount(
		id,
		userID,
		name,
		currency,
		entities.AccountType(accountType),
		entities.AccountStatus(status),
		valueobjects.NewMoneyFromDecimal(balance),
		valueobjects.NewMoneyFromDecimal(available),
		version,
		createdAt,
		updatedAt,
	), nil
}

func scanAccounts(rows pgx.Rows) ([]*entities.Account, error) {
	var accounts []*entities.Account
	for rows.Next() {
		account, err := scanAccountRow(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

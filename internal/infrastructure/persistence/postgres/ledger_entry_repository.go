// Package postgres - LedgerEntryRepository implementation.
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
var _ ports.LedgerEntryRepository = (*LedgerEntryRepository)(nil)

// LedgerEntryRepository реализует ports.LedgerEntryRepository для PostgreSQL.
// Проводки append-only.
type LedgerEntryRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerEntryRepository создаёт новый LedgerEntryRepository.
func NewLedgerEntryRepository(pool *pgxpool.Pool) *LedgerEntryRepository {
	return &LedgerEntryRepository{pool: pool}
}

const entryColumns = `
	id, transaction_id, account_id, direction,
	amount::text, balance_after::text, available_balance_after::text,
	created_at`

// InsertPair сохраняет обе ноги проводки одним запросом.
func (r *LedgerEntryRepository) InsertPair(ctx context.Context, debit, credit *entities.LedgerEntry) error {
	if debit.Direction() != entities.EntryDirectionDebit || credit.Direction() != entities.EntryDirectionCredit {
		return fmt.Errorf("entry pair must be exactly one DEBIT and one CREDIT")
	}
	if !debit.Amount().Equals(credit.Amount()) {
		return fmt.Errorf("entry pair amounts must match: %s != %s", debit.Amount(), credit.Amount())
	}

	q := getQuerier(ctx, r.pool)

	query := `
		INSERT INTO ledger_entries (
			id, transaction_id, account_id, direction,
			amount, balance_after, available_balance_after, created_at
		) VALUES
			($1, $2, $3, $4, $5, $6, $7, $8),
			($9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := q.Exec(ctx, query,
		debit.ID(), debit.TransactionID(), debit.AccountID(), string(debit.Direction()),
		debit.Amount().String(), debit.BalanceAfter().String(), debit.AvailableBalanceAfter().String(), debit.CreatedAt(),
		credit.ID(), credit.TransactionID(), credit.AccountID(), string(credit.Direction()),
		credit.Amount().String(), credit.BalanceAfter().String(), credit.AvailableBalanceAfter().String(), credit.CreatedAt(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domainErrors.ErrEntityNotFound
		}
		return fmt.Errorf("failed to insert ledger entries: %w", err)
	}

	return nil
}

// FindByTransactionID возвращает проводки транзакции.
func (r *LedgerEntryRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*entities.LedgerEntry, error) {
	q := getQuerier(ctx, r.pool)

	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE transaction_id = $1
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// FindByAccountID возвращает проводки счёта, новые первыми.
func (r *LedgerEntryRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]*entities.LedgerEntry, error) {
	q := getQuerier(ctx, r.pool)

	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3
	`

	rows, err := q.Query(ctx, query, accountID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]*entities.LedgerEntry, error) {
	var entries []*entities.LedgerEntry
	for rows.Next() {
		entry, err := scanEntryRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntryRow(row pgx.Row) (*entities.LedgerEntry, error) {
	var (
		id, transactionID, accountID          uuid.UUID
		direction                             string
		amountStr, balanceStr, availableStr   string
		createdAt                             time.Time
	)

	err := row.Scan(
		&id, &transactionID, &accountID, &direction,
		&amountStr, &balanceStr, &availableStr, &createdAt,
	)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrEntityNotFound
		}
		return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount in database: %w", err)
	}
	balanceAfter, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("invalid balance_after in database: %w", err)
	}
	availableAfter, err := decimal.NewFromString(availableStr)
	if err != nil {
		return nil, fmt.Errorf("invalid available_balance_after in database: %w", err)
	}

	return entities.ReconstructLedgerEntry(
		id,
		transactionID,
		accountID,
		entities.EntryDirection(direction),
		valueobjects.NewMoneyFromDecimal(amount),
		valueobjects.NewMoneyFromDecimal(balanceAfter),
		valueobjects.NewMoneyFromDecimal(availableAfter),
		createdAt,
	), nil
}

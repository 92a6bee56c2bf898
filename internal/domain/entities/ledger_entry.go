package entities

import (
	"time"

	"github.com/google/uuid"

	"github.com/nissmart/ledger/internal/domain/errors"
	"github.com/nissmart/ledger/internal/domain/valueobjects"
)

// EntryDirection is the side of a double-entry posting.
type EntryDirection string

const (
	EntryDirectionDebit  EntryDirection = "DEBIT"
	EntryDirectionCredit EntryDirection = "CREDIT"
)

// SignedAmount returns amount with the ledger sign convention applied:
// CREDIT is positive, DEBIT is negative. Summing signed amounts per account
// reproduces user and external balances; treasury stores the magnitude of
// its (negative) signed sum, so its stored balance equals minus this sum.
func (d EntryDirection) SignedAmount(amount valueobjects.Money) valueobjects.Money {
	if d == EntryDirectionDebit {
		return amount.Neg()
	}
	return amount
}

// LedgerEntry is one leg of a double-entry posting. Every transaction
// produces exactly two: one DEBIT and one CREDIT of equal amount.
//
// balanceAfter and availableBalanceAfter snapshot the account's balances as
// observed under the posting's row lock, immediately after applying this
// entry. They make per-account history auditable without replaying entries.
type LedgerEntry struct {
	id                    uuid.UUID
	transactionID         uuid.UUID
	accountID             uuid.UUID
	direction             EntryDirection
	amount                valueobjects.Money
	balanceAfter          valueobjects.Money
	availableBalanceAfter valueobjects.Money
	createdAt             time.Time
}

// NewLedgerEntry creates an entry snapshotting the account's post-application
// balances. Call after the account mutation has been applied.
func NewLedgerEntry(
	transactionID uuid.UUID,
	account *Account,
	direction EntryDirection,
	amount valueobjects.Money,
) (*LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}
	return &LedgerEntry{
		id:                    uuid.New(),
		transactionID:         transactionID,
		accountID:             account.ID(),
		direction:             direction,
		amount:                amount,
		balanceAfter:          account.Balance(),
		availableBalanceAfter: account.AvailableBalance(),
		createdAt:             time.Now().UTC(),
	}, nil
}

// ReconstructLedgerEntry rebuilds a LedgerEntry from stored data.
func ReconstructLedgerEntry(
	id uuid.UUID,
	transactionID uuid.UUID,
	accountID uuid.UUID,
	direction EntryDirection,
	amount valueobjects.Money,
	balanceAfter valueobjects.Money,
	availableBalanceAfter valueobjects.Money,
	createdAt time.Time,
) *LedgerEntry {
	return &LedgerEntry{
		id:                    id,
		transactionID:         transactionID,
		accountID:             accountID,
		direction:             direction,
		amount:                amount,
		balanceAfter:          balanceAfter,
		availableBalanceAfter: availableBalanceAfter,
		createdAt:             createdAt,
	}
}

func (e *LedgerEntry) ID() uuid.UUID                              { return e.id }
func (e *LedgerEntry) TransactionID() uuid.UUID                   { return e.transactionID }
func (e *LedgerEntry) AccountID() uuid.UUID                       { return e.accountID }
func (e *LedgerEntry) Direction() EntryDirection                  { return e.direction }
func (e *LedgerEntry) Amount() valueobjects.Money                 { return e.amount }
func (e *LedgerEntry) BalanceAfter() valueobjects.Money           { return e.balanceAfter }
func (e *LedgerEntry) AvailableBalanceAfter() valueobjects.Money  { return e.availableBalanceAfter }
func (e *LedgerEntry) CreatedAt() time.Time                       { return e.createdAt }

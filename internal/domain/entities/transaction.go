package entities

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/nissmart/ledger/internal/domain/errors"
	"github.com/nissmart/ledger/internal/domain/valueobjects"
)

// TransactionType is the kind of monetary operation.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
)

// TransactionStatus is the lifecycle state of a transaction.
// Postings commit atomically, so every persisted transaction is COMPLETED;
// PENDING and FAILED exist for forward compatibility with async rails.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Metadata keys the engine writes into a transaction's context map.
const (
	MetaTreasuryAccountID    = "treasury_account_id"
	MetaDestinationAccountID = "destination_account_id"
	MetaExternalAccountID    = "external_account_id"
)

// Transaction records a completed monetary operation. The account it anchors
// to is the "primary" account: the user's account for deposits and
// withdrawals, the source account for transfers.
//
// Transactions are immutable after creation. Balance effects live in the
// ledger entries, never here.
type Transaction struct {
	id          uuid.UUID
	reference   string
	userID      *uuid.UUID
	accountID   uuid.UUID
	txType      TransactionType
	status      TransactionStatus
	amount      valueobjects.Money
	currency    valueobjects.Currency
	description string
	metadata    map[string]any
	occurredAt  time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// NewTransaction creates a COMPLETED transaction. Reference defaults to a
// server-generated opaque token when empty.
func NewTransaction(
	reference string,
	userID *uuid.UUID,
	accountID uuid.UUID,
	txType TransactionType,
	amount valueobjects.Money,
	currency valueobjects.Currency,
	description string,
	metadata map[string]any,
) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}
	if reference == "" {
		reference = GenerateReference()
	}
	if metadata == nil {
		metadata = map[string]any{}
	}

	now := time.Now().UTC()
	return &Transaction{
		id:          uuid.New(),
		reference:   reference,
		userID:      userID,
		accountID:   accountID,
		txType:      txType,
		status:      TransactionStatusCompleted,
		amount:      amount,
		currency:    currency,
		description: description,
		metadata:    metadata,
		occurredAt:  now,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructTransaction rebuilds a Transaction from stored data.
func ReconstructTransaction(
	id uuid.UUID,
	reference string,
	userID *uuid.UUID,
	accountID uuid.UUID,
	txType TransactionType,
	status TransactionStatus,
	amount valueobjects.Money,
	currency valueobjects.Currency,
	description string,
	metadata map[string]any,
	occurredAt, createdAt, updatedAt time.Time,
) *Transaction {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &Transaction{
		id:          id,
		reference:   reference,
		userID:      userID,
		accountID:   accountID,
		txType:      txType,
		status:      status,
		amount:      amount,
		currency:    currency,
		description: description,
		metadata:    metadata,
		occurredAt:  occurredAt,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// GenerateReference produces an opaque unique reference token
// (a UUID rendered as 32 hex characters, no hyphens).
func GenerateReference() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

func (t *Transaction) ID() uuid.UUID                 { return t.id }
func (t *Transaction) Reference() string             { return t.reference }
func (t *Transaction) UserID() *uuid.UUID            { return t.userID }
func (t *Transaction) AccountID() uuid.UUID          { return t.accountID }
func (t *Transaction) Type() TransactionType         { return t.txType }
func (t *Transaction) Status() TransactionStatus     { return t.status }
func (t *Transaction) Amount() valueobjects.Money    { return t.amount }
func (t *Transaction) Currency() valueobjects.Currency { return t.currency }
func (t *Transaction) Description() string           { return t.description }
func (t *Transaction) Metadata() map[string]any      { return t.metadata }
func (t *Transaction) OccurredAt() time.Time         { return t.occurredAt }
func (t *Transaction) CreatedAt() time.Time          { return t.createdAt }
func (t *Transaction) UpdatedAt() time.Time          { return t.updatedAt }

package entities

import (
	"time"

	"github.com/google/uuid"

	"github.com/nissmart/ledger/internal/domain/errors"
	"github.com/nissmart/ledger/internal/domain/valueobjects"
)

// AccountType distinguishes user wallets from system-owned accounts.
type AccountType string

const (
	AccountTypeUser     AccountType = "USER"
	AccountTypeTreasury AccountType = "TREASURY"
	AccountTypeEscrow   AccountType = "ESCROW"
	AccountTypeExternal AccountType = "EXTERNAL"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
	AccountStatusClosed    AccountStatus = "CLOSED"
)

// Account is a balance-bearing ledger account.
//
// Balance rules enforced here, not in the store:
//   - balance never goes negative
//   - 0 <= available_balance <= balance
//
// The version field implements optimistic locking: every mutation bumps it,
// and the repository compares it on UPDATE. A mismatch means another
// transaction won the race and the posting must retry.
type Account struct {
	id               uuid.UUID
	ownerUserID      *uuid.UUID // nil for TREASURY/EXTERNAL
	name             string
	currency         valueobjects.Currency
	accountType      AccountType
	status           AccountStatus
	balance          valueobjects.Money
	availableBalance valueobjects.Money
	version          int64
	createdAt        time.Time
	updatedAt        time.Time
}

// NewUserAccount creates an active zero-balance wallet for a user.
func NewUserAccount(ownerUserID uuid.UUID, currency valueobjects.Currency) *Account {
	return newAccount(&ownerUserID, currency.Code()+" Wallet", AccountTypeUser, currency)
}

// NewTreasuryAccount creates the system treasury account for a currency.
// Treasury is the issuing side of every deposit.
func NewTreasuryAccount(currency valueobjects.Currency) *Account {
	return newAccount(nil, "Treasury "+currency.Code(), AccountTypeTreasury, currency)
}

// NewExternalAccount creates the off-system settlement account for a currency.
// Withdrawals credit this account.
func NewExternalAccount(currency valueobjects.Currency) *Account {
	return newAccount(nil, "External Settlement "+currency.Code(), AccountTypeExternal, currency)
}

func newAccount(owner *uuid.UUID, name string, accountType AccountType, currency valueobjects.Currency) *Account {
	now := time.Now().UTC()
	return &Account{
		id:               uuid.New(),
		ownerUserID:      owner,
		name:             name,
		currency:         currency,
		accountType:      accountType,
		status:           AccountStatusActive,
		balance:          valueobjects.ZeroMoney(),
		availableBalance: valueobjects.ZeroMoney(),
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}
}

// ReconstructAccount rebuilds an Account from stored data.
func ReconstructAccount(
	id uuid.UUID,
	ownerUserID *uuid.UUID,
	name string,
	currency valueobjects.Currency,
	accountType AccountType,
	status AccountStatus,
	balance valueobjects.Money,
	availableBalance valueobjects.Money,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Account {
	return &Account{
		id:               id,
		ownerUserID:      ownerUserID,
		name:             name,
		currency:         currency,
		accountType:      accountType,
		status:           status,
		balance:          balance,
		availableBalance: availableBalance,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// Credit increases both balance and available balance.
// System accounts (treasury, external) accept credits regardless of status;
// user accounts must be ACTIVE.
func (a *Account) Credit(amount valueobjects.Money) error {
	if !amount.IsPositive() {
		return errors.ErrInvalidAmount
	}
	if a.accountType == AccountTypeUser && a.status != AccountStatusActive {
		return errors.ErrAccountNotActive
	}
	a.balance = a.balance.Add(amount)
	a.availableBalance = a.availableBalance.Add(amount)
	a.touch()
	return nil
}

// Debit decreases both balance and available balance.
// User accounts require sufficient available balance. System accounts carry
// no overdraft check: their balances are unsigned accumulators (treasury
// balance grows on deposits despite the DEBIT entry, see the posting
// conventions in the engine) and are never balance-debited by the core.
func (a *Account) Debit(amount valueobjects.Money) error {
	if !amount.IsPositive() {
		return errors.ErrInvalidAmount
	}
	if a.accountType == AccountTypeUser {
		if a.status != AccountStatusActive {
			return errors.ErrAccountNotActive
		}
		if a.availableBalance.LessThan(amount) {
			return errors.ErrInsufficientFunds
		}
	}
	a.balance = a.balance.Sub(amount)
	a.availableBalance = a.availableBalance.Sub(amount)
	a.touch()
	return nil
}

// CanDebit reports whether a debit of amount would succeed, without mutating.
func (a *Account) CanDebit(amount valueobjects.Money) bool {
	if !amount.IsPositive() {
		return false
	}
	if a.accountType != AccountTypeUser {
		return true
	}
	return a.status == AccountStatusActive && a.availableBalance.GreaterThanOrEqual(amount)
}

// IsSystemOwned reports whether the account has no owning user.
func (a *Account) IsSystemOwned() bool {
	return a.ownerUserID == nil
}

func (a *Account) touch() {
	a.version++
	a.updatedAt = time.Now().UTC()
}

func (a *Account) ID() uuid.UUID                            { return a.id }
func (a *Account) OwnerUserID() *uuid.UUID                  { return a.ownerUserID }
func (a *Account) Name() string                             { return a.name }
func (a *Account) Currency() valueobjects.Currency          { return a.currency }
func (a *Account) Type() AccountType                        { return a.accountType }
func (a *Account) Status() AccountStatus                    { return a.status }
func (a *Account) Balance() valueobjects.Money              { return a.balance }
func (a *Account) AvailableBalance() valueobjects.Money     { return a.availableBalance }
func (a *Account) Version() int64                           { return a.version }
func (a *Account) CreatedAt() time.Time                     { return a.createdAt }
func (a *Account) UpdatedAt() time.Time                     { return a.updatedAt }

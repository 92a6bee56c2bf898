// Package ledger содержит posting engine и write use cases бухгалтерского ядра:
// deposit, transfer, withdraw и запрос балансов.
package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nissmart/ledger/internal/application/ports"
	"github.com/nissmart/ledger/internal/domain/entities"
	"github.com/nissmart/ledger/internal/domain/errors"
	"github.com/nissmart/ledger/internal/domain/events"
	"github.com/nissmart/ledger/internal/domain/valueobjects"
)

// AccountRegistry находит или материализует счета по (владелец, валюта).
//
// Гонка создания разрешается через unique-индексы: проигравший Insert
// возвращает ConcurrencyError, координатор перезапускает всю транзакцию
// (в PostgreSQL нарушение уникальности абортирует текущую транзакцию,
// поэтому повторный lookup внутри неё невозможен), и вторая попытка
// находит уже существующий счёт.
type AccountRegistry struct {
	accounts  ports.AccountRepository
	publisher ports.EventPublisher
}

// NewAccountRegistry создаёт реестр счетов.
func NewAccountRegistry(accounts ports.AccountRepository, publisher ports.EventPublisher) *AccountRegistry {
	return &AccountRegistry{accounts: accounts, publisher: publisher}
}

// GetOrCreateUserAccount возвращает USER счёт пользователя для валюты,
// создавая его с нулевыми балансами при первом обращении.
func (r *AccountRegistry) GetOrCreateUserAccount(ctx context.Context, userID uuid.UUID, currency valueobjects.Currency) (*entities.Account, error) {
	account, err := r.accounts.FindByOwnerAndCurrency(ctx, userID, currency)
	if err == nil {
		return account, nil
	}
	if !errors.IsNotFound(err) {
		return nil, fmt.Errorf("lookup user account: %w", err)
	}
	return r.create(ctx, entities.NewUserAccount(userID, currency))
}

// GetOrCreateTreasuryAccount возвращает TREASURY счёт валюты (singleton).
func (r *AccountRegistry) GetOrCreateTreasuryAccount(ctx context.Context, currency valueobjects.Currency) (*entities.Account, error) {
	return r.getOrCreateSystem(ctx, entities.AccountTypeTreasury, currency)
}

// GetOrCreateExternalAccount возвращает EXTERNAL счёт валюты (singleton).
func (r *AccountRegistry) GetOrCreateExternalAccount(ctx context.Context, currency valueobjects.Currency) (*entities.Account, error) {
	return r.getOrCreateSystem(ctx, entities.AccountTypeExternal, currency)
}

func (r *AccountRegistry) getOrCreateSystem(ctx context.Context, accountType entities.AccountType, currency valueobjects.Currency) (*entities.Account, error) {
	account, err := r.accounts.FindSystemByCurrency(ctx, accountType, currency)
	if err == nil {
		return account, nil
	}
	if !errors.IsNotFound(err) {
		return nil, fmt.Errorf("lookup %s account: %w", accountType, err)
	}

	switch accountType {
	case entities.AccountTypeTreasury:
		account = entities.NewTreasuryAccount(currency)
	case entities.AccountTypeExternal:
		account = entities.NewExternalAccount(currency)
	default:
		return nil, fmt.Errorf("unsupported system account type %q", accountType)
	}
	return r.create(ctx, account)
}

func (r *AccountRegistry) create(ctx context.Context, account *entities.Account) (*entities.Account, error) {
	if err := r.accounts.Insert(ctx, account); err != nil {
		return nil, err
	}
	event := events.NewAccountOpened(account.ID(), account.OwnerUserID(), string(account.Type()), account.Currency())
	if err := r.publisher.Publish(ctx, event); err != nil {
		return nil, fmt.Errorf("publish account opened: %w", err)
	}
	return account, nil
}

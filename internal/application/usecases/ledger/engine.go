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

// PostingEngine применяет double-entry проводки.
//
// Дисциплина: каждая операция даёт ровно две ноги (DEBIT и CREDIT равной
// суммы), мутируемые счета блокируются FOR UPDATE до чтения балансов,
// снимки balance_after в ногах делаются под этой блокировкой.
//
// Конвенция знаков: балансы счетов хранятся беззнаково. Пользовательские
// балансы совпадают со знаковой суммой своих ног (CREDIT плюс, DEBIT минус).
// Системные счета - накопители: treasury растёт на каждый deposit (нога
// DEBIT, эмиссия в сторону пользователя), external растёт на каждый
// withdraw (нога CREDIT). Инвариант сохранения:
// Σ USER balance + Σ EXTERNAL balance == Σ TREASURY balance.
//
// Все методы вызываются внутри транзакции координатора.
type PostingEngine struct {
	users     ports.UserRepository
	accounts  ports.AccountRepository
	txns      ports.TransactionRepository
	entries   ports.LedgerEntryRepository
	registry  *AccountRegistry
	publisher ports.EventPublisher
}

// NewPostingEngine создаёт posting engine.
func NewPostingEngine(
	users ports.UserRepository,
	accounts ports.AccountRepository,
	txns ports.TransactionRepository,
	entries ports.LedgerEntryRepository,
	registry *AccountRegistry,
	publisher ports.EventPublisher,
) *PostingEngine {
	return &PostingEngine{
		users:     users,
		accounts:  accounts,
		txns:      txns,
		entries:   entries,
		registry:  registry,
		publisher: publisher,
	}
}

// postingSpec - разобранные и провалидированные параметры операции.
type postingSpec struct {
	userID      uuid.UUID
	amount      valueobjects.Money
	currency    valueobjects.Currency
	description string
	reference   string
}

// transferSpec - параметры перевода между пользователями.
type transferSpec struct {
	sourceUserID      uuid.UUID
	destinationUserID uuid.UUID
	amount            valueobjects.Money
	currency          valueobjects.Currency
	description       string
	reference         string
}

// Deposit зачисляет средства пользователю из казначейства.
// Ноги: user CREDIT, treasury DEBIT.
func (e *PostingEngine) Deposit(ctx context.Context, spec postingSpec) (*entities.Transaction, error) {
	if err := e.ensureUserExists(ctx, spec.userID); err != nil {
		return nil, err
	}

	userAccount, err := e.registry.GetOrCreateUserAccount(ctx, spec.userID, spec.currency)
	if err != nil {
		return nil, err
	}
	treasury, err := e.registry.GetOrCreateTreasuryAccount(ctx, spec.currency)
	if err != nil {
		return nil, err
	}

	// Блокируем оба счёта до чтения балансов
	locked, err := e.accounts.LockByIDs(ctx, []uuid.UUID{userAccount.ID(), treasury.ID()})
	if err != nil {
		return nil, err
	}
	userAccount, treasury = locked[0], locked[1]

	if !userAccount.Currency().Equals(spec.currency) || !treasury.Currency().Equals(spec.currency) {
		return nil, errors.ErrCurrencyMismatch
	}

	if err := userAccount.Credit(spec.amount); err != nil {
		return nil, err
	}
	// Treasury - беззнаковый накопитель эмиссии: баланс растёт,
	// хотя нога по нему - DEBIT
	if err := treasury.Credit(spec.amount); err != nil {
		return nil, err
	}

	if err := e.saveAccounts(ctx, userAccount, treasury); err != nil {
		return nil, err
	}

	userID := spec.userID
	transaction, err := entities.NewTransaction(
		spec.reference,
		&userID,
		userAccount.ID(),
		entities.TransactionTypeDeposit,
		spec.amount,
		spec.currency,
		spec.description,
		map[string]any{entities.MetaTreasuryAccountID: treasury.ID().String()},
	)
	if err != nil {
		return nil, err
	}
	if err := e.txns.Insert(ctx, transaction); err != nil {
		return nil, err
	}

	if err := e.postPair(ctx, transaction, treasury, userAccount, spec.amount); err != nil {
		return nil, err
	}
	return transaction, e.publishPosted(ctx, transaction)
}

// Transfer переводит средства между пользователями в одной валюте.
// Ноги: source DEBIT, destination CREDIT.
func (e *PostingEngine) Transfer(ctx context.Context, spec transferSpec) (*entities.Transaction, error) {
	if err := e.ensureUserExists(ctx, spec.sourceUserID); err != nil {
		return nil, err
	}
	if err := e.ensureUserExists(ctx, spec.destinationUserID); err != nil {
		return nil, err
	}

	source, err := e.registry.GetOrCreateUserAccount(ctx, spec.sourceUserID, spec.currency)
	if err != nil {
		return nil, err
	}
	destination, err := e.registry.GetOrCreateUserAccount(ctx, spec.destinationUserID, spec.currency)
	if err != nil {
		return nil, err
	}
	if source.ID() == destination.ID() {
		return nil, errors.ErrSameAccount
	}

	// LockByIDs сортирует порядок взятия блокировок по ID, поэтому
	// встречные переводы A->B и B->A не взаимоблокируются
	locked, err := e.accounts.LockByIDs(ctx, []uuid.UUID{source.ID(), destination.ID()})
	if err != nil {
		return nil, err
	}
	source, destination = locked[0], locked[1]

	if !source.Currency().Equals(spec.currency) || !destination.Currency().Equals(spec.currency) {
		return nil, errors.ErrCurrencyMismatch
	}

	if err := source.Debit(spec.amount); err != nil {
		return nil, err
	}
	if err := destination.Credit(spec.amount); err != nil {
		return nil, err
	}

	if err := e.saveAccounts(ctx, source, destination); err != nil {
		return nil, err
	}

	sourceUserID := spec.sourceUserID
	transaction, err := entities.NewTransaction(
		spec.reference,
		&sourceUserID,
		source.ID(),
		entities.TransactionTypeTransfer,
		spec.amount,
		spec.currency,
		spec.description,
		map[string]any{entities.MetaDestinationAccountID: destination.ID().String()},
	)
	if err != nil {
		return nil, err
	}
	if err := e.txns.Insert(ctx, transaction); err != nil {
		return nil, err
	}

	if err := e.postPair(ctx, transaction, source, destination, spec.amount); err != nil {
		return nil, err
	}
	return transaction, e.publishPosted(ctx, transaction)
}

// Withdraw выводит средства пользователя на внешний расчётный счёт.
// Ноги: user DEBIT, external CREDIT.
func (e *PostingEngine) Withdraw(ctx context.Context, spec postingSpec) (*entities.Transaction, error) {
	if err := e.ensureUserExists(ctx, spec.userID); err != nil {
		return nil, err
	}

	userAccount, err := e.registry.GetOrCreateUserAccount(ctx, spec.userID, spec.currency)
	if err != nil {
		return nil, err
	}
	external, err := e.registry.GetOrCreateExternalAccount(ctx, spec.currency)
	if err != nil {
		return nil, err
	}

	locked, err := e.accounts.LockByIDs(ctx, []uuid.UUID{userAccount.ID(), external.ID()})
	if err != nil {
		return nil, err
	}
	userAccount, external = locked[0], locked[1]

	if !userAccount.Currency().Equals(spec.currency) || !external.Currency().Equals(spec.currency) {
		return nil, errors.ErrCurrencyMismatch
	}

	if err := userAccount.Debit(spec.amount); err != nil {
		return nil, err
	}
	if err := external.Credit(spec.amount); err != nil {
		return nil, err
	}

	if err := e.saveAccounts(ctx, userAccount, external); err != nil {
		return nil, err
	}

	userID := spec.userID
	transaction, err := entities.NewTransaction(
		spec.reference,
		&userID,
		userAccount.ID(),
		entities.TransactionTypeWithdrawal,
		spec.amount,
		spec.currency,
		spec.description,
		map[string]any{entities.MetaExternalAccountID: external.ID().String()},
	)
	if err != nil {
		return nil, err
	}
	if err := e.txns.Insert(ctx, transaction); err != nil {
		return nil, err
	}

	if err := e.postPair(ctx, transaction, userAccount, external, spec.amount); err != nil {
		return nil, err
	}
	return transaction, e.publishPosted(ctx, transaction)
}

func (e *PostingEngine) ensureUserExists(ctx context.Context, userID uuid.UUID) error {
	if _, err := e.users.FindByID(ctx, userID); err != nil {
		return err
	}
	return nil
}

func (e *PostingEngine) saveAccounts(ctx context.Context, accounts ...*entities.Account) error {
	for _, account := range accounts {
		if err := e.accounts.Update(ctx, account); err != nil {
			return err
		}
	}
	return nil
}

// postPair пишет обе ноги проводки: DEBIT на debited, CREDIT на credited.
// Счета уже мутированы, поэтому снимки balance_after корректны.
func (e *PostingEngine) postPair(ctx context.Context, transaction *entities.Transaction, debited, credited *entities.Account, amount valueobjects.Money) error {
	debit, err := entities.NewLedgerEntry(transaction.ID(), debited, entities.EntryDirectionDebit, amount)
	if err != nil {
		return err
	}
	credit, err := entities.NewLedgerEntry(transaction.ID(), credited, entities.EntryDirectionCredit, amount)
	if err != nil {
		return err
	}
	if err := e.entries.InsertPair(ctx, debit, credit); err != nil {
		return fmt.Errorf("insert ledger entries: %w", err)
	}
	return nil
}

func (e *PostingEngine) publishPosted(ctx context.Context, transaction *entities.Transaction) error {
	event := events.NewTransactionPosted(
		transaction.ID(),
		transaction.Reference(),
		string(transaction.Type()),
		transaction.Amount(),
		transaction.Currency(),
		transaction.UserID(),
		transaction.AccountID(),
	)
	if err := e.publisher.Publish(ctx, event); err != nil {
		return fmt.Errorf("publish transaction posted: %w", err)
	}
	return nil
}

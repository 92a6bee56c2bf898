// Package ports определяет интерфейсы (порты) для внешних зависимостей.
// Эти интерфейсы реализуются в Infrastructure Layer.
//
// Pattern: Repository Pattern + Ports & Adapters (Hexagonal Architecture)
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nissmart/ledger/internal/domain/entities"
	"github.com/nissmart/ledger/internal/domain/valueobjects"
)

// UserRepository определяет контракт для хранения пользователей.
type UserRepository interface {
	// Insert сохраняет нового пользователя.
	// При нарушении уникальности email возвращает ErrEmailAlreadyExists.
	Insert(ctx context.Context, user *entities.User) error

	// FindByID загружает пользователя по ID.
	// Возвращает ErrEntityNotFound если не найден.
	FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error)

	// FindByEmail загружает пользователя по email (уникален в системе).
	FindByEmail(ctx context.Context, email string) (*entities.User, error)

	// List возвращает пользователей с пагинацией, упорядоченных по created_at.
	List(ctx context.Context, offset, limit int) ([]*entities.User, error)

	// Count возвращает общее число пользователей.
	Count(ctx context.Context) (int64, error)
}

// AccountRepository определяет контракт для хранения счетов.
//
// Счёт - единица конкурентного доступа: балансы мутируются только
// под row-level блокировкой (LockByIDs) и сохраняются через Update
// с проверкой версии (optimistic locking).
type AccountRepository interface {
	// Insert сохраняет новый счёт.
	// Нарушение частичных unique-индексов (один USER счёт на
	// (owner, currency); один TREASURY/EXTERNAL на currency)
	// возвращается как ConcurrencyError - вызывающий повторяет lookup.
	Insert(ctx context.Context, account *entities.Account) error

	// Update сохраняет мутированный счёт с проверкой версии.
	// Entity уже инкрементировала version; UPDATE сравнивает с version-1.
	// При несовпадении возвращает ConcurrencyError.
	Update(ctx context.Context, account *entities.Account) error

	// FindByID загружает счёт по ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Account, error)

	// FindByOwnerAndCurrency находит USER счёт пользователя для валюты.
	FindByOwnerAndCurrency(ctx context.Context, ownerUserID uuid.UUID, currency valueobjects.Currency) (*entities.Account, error)

	// FindSystemByCurrency находит системный счёт (TREASURY/EXTERNAL) для валюты.
	FindSystemByCurrency(ctx context.Context, accountType entities.AccountType, currency valueobjects.Currency) (*entities.Account, error)

	// FindByOwner возвращает все счета пользователя.
	FindByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]*entities.Account, error)

	// LockByIDs берёт SELECT ... FOR UPDATE на указанные счета.
	// Блокировки берутся в порядке возрастания ID (отсортированных байтов
	// UUID) независимо от порядка аргументов - иначе deadlock между
	// встречными переводами. Возвращает счета в порядке запрошенных ID.
	LockByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Account, error)

	// SumBalancesByType агрегирует балансы по типу счёта (admin summary,
	// проверка consistency).
	SumBalancesByType(ctx context.Context, accountType entities.AccountType) (float64, error)
}

// TransactionRepository определяет контракт для хранения транзакций.
type TransactionRepository interface {
	// Insert сохраняет транзакцию.
	// При коллизии reference возвращает ErrReferenceConflict.
	Insert(ctx context.Context, tx *entities.Transaction) error

	// FindByID загружает транзакцию по ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)

	// FindByReference находит транзакцию по уникальному reference.
	FindByReference(ctx context.Context, reference string) (*entities.Transaction, error)

	// List возвращает транзакции с фильтрацией и пагинацией,
	// упорядоченные по occurred_at DESC.
	List(ctx context.Context, filter TransactionFilter, offset, limit int) ([]*entities.Transaction, error)

	// Count возвращает число транзакций под фильтром.
	Count(ctx context.Context, filter TransactionFilter) (int64, error)

	// CountByType возвращает число транзакций данного типа.
	CountByType(ctx context.Context, txType entities.TransactionType) (int64, error)

	// SumAmountByType возвращает суммарный объём транзакций данного типа.
	SumAmountByType(ctx context.Context, txType entities.TransactionType) (float64, error)
}

// TransactionFilter определяет критерии фильтрации для транзакций.
type TransactionFilter struct {
	UserID    *uuid.UUID
	AccountID *uuid.UUID
	Type      *entities.TransactionType
	Status    *entities.TransactionStatus
	StartDate *time.Time // occurred_at >= StartDate
	EndDate   *time.Time // occurred_at <= EndDate
}

// LedgerEntryRepository определяет контракт для хранения проводок.
// Проводки immutable: только Insert и чтение.
type LedgerEntryRepository interface {
	// InsertPair сохраняет обе ноги проводки атомарно.
	// Вызывается строго с одной DEBIT и одной CREDIT ногой равной суммы.
	InsertPair(ctx context.Context, debit, credit *entities.LedgerEntry) error

	// FindByTransactionID возвращает проводки транзакции.
	FindByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*entities.LedgerEntry, error)

	// FindByAccountID возвращает проводки счёта, новые первыми.
	FindByAccountID(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]*entities.LedgerEntry, error)
}

// IdempotencyRepository определяет контракт для хранения идемпотентных записей.
// Все операции выполняются внутри транзакции координатора.
type IdempotencyRepository interface {
	// Insert сохраняет новую запись.
	// Гонка по ключу (duplicate PK) возвращается как ConcurrencyError -
	// координатор повторит acquire. Нарушение уникальности request_hash
	// возвращается как ErrIdempotencyConflict.
	Insert(ctx context.Context, record *entities.IdempotencyRecord) error

	// FindByKey загружает запись по ключу с блокировкой FOR UPDATE,
	// чтобы конкурентные acquire на один ключ сериализовались.
	FindByKey(ctx context.Context, key string) (*entities.IdempotencyRecord, error)

	// Update сохраняет изменённую запись (refresh lock, reclaim, settle).
	Update(ctx context.Context, record *entities.IdempotencyRecord) error
}

package ledger

// In-memory реализации портов для тестов бухгалтерского ядра.
// LockByIDs и Find* возвращают копии entity: мутации видны хранилищу
// только через Update, как в реальной транзакции. Update проверяет
// версию - optimistic locking работает и в тестах.

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nissmart/ledger/internal/application/idempotency"
	"github.com/nissmart/ledger/internal/application/ports"
	"github.com/nissmart/ledger/internal/domain/entities"
	domainerrors "github.com/nissmart/ledger/internal/domain/errors"
	"github.com/nissmart/ledger/internal/domain/events"
	"github.com/nissmart/ledger/internal/domain/valueobjects"
)

// ============================================
// Users
// ============================================

type memUserRepo struct {
	users map[uuid.UUID]*entities.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[uuid.UUID]*entities.User{}}
}

func (r *memUserRepo) Insert(_ context.Context, user *entities.User) error {
	for _, existing := range r.users {
		if existing.Email() == user.Email() {
			return domainerrors.ErrEmailAlreadyExists
		}
	}
	r.users[user.ID()] = user
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, domainerrors.ErrEntityNotFound
	}
	return user, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	for _, user := range r.users {
		if user.Email() == email {
			return user, nil
		}
	}
	return nil, domainerrors.ErrEntityNotFound
}

func (r *memUserRepo) List(_ context.Context, offset, limit int) ([]*entities.User, error) {
	all := make([]*entities.User, 0, len(r.users))
	for _, user := range r.users {
		all = append(all, user)
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

// ============================================
// Accounts
// ============================================

type memAccountRepo struct {
	accounts map[uuid.UUID]*entities.Account
	// updateFailures инжектирует проигранные optimistic-гонки:
	// первые N Update возвращают ConcurrencyError
	updateFailures int
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: map[uuid.UUID]*entities.Account{}}
}

func copyAccount(a *entities.Account) *entities.Account {
	return entities.ReconstructAccount(
		a.ID(), a.OwnerUserID(), a.Name(), a.Currency(), a.Type(), a.Status(),
		a.Balance(), a.AvailableBalance(), a.Version(), a.CreatedAt(), a.UpdatedAt(),
	)
}

func (r *memAccountRepo) Insert(_ context.Context, account *entities.Account) error {
	for _, existing := range r.accounts {
		if !existing.Currency().Equals(account.Currency()) || existing.Type() != account.Type() {
			continue
		}
		switch account.Type() {
		case entities.AccountTypeUser:
			if existing.OwnerUserID() != nil && account.OwnerUserID() != nil &&
				*existing.OwnerUserID() == *account.OwnerUserID() {
				return domainerrors.NewConcurrencyError("Account", account.ID().String(), "duplicate user account")
			}
		default:
			return domainerrors.NewConcurrencyError("Account", account.ID().String(), "duplicate system account")
		}
	}
	r.accounts[account.ID()] = copyAccount(account)
	return nil
}

func (r *memAccountRepo) Update(_ context.Context, account *entities.Account) error {
	if r.updateFailures > 0 {
		r.updateFailures--
		return domainerrors.NewConcurrencyError("Account", account.ID().String(), "version mismatch")
	}
	stored, ok := r.accounts[account.ID()]
	if !ok {
		return domainerrors.ErrEntityNotFound
	}
	if stored.Version() != account.Version()-1 {
		return domainerrors.NewConcurrencyError("Account", account.ID().String(), "version mismatch")
	}
	r.accounts[account.ID()] = copyAccount(account)
	return nil
}

func (r *memAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Account, error) {
	account, ok := r.accounts[id]
	if !ok {
		return nil, domainerrors.ErrEntityNotFound
	}
	return copyAccount(account), nil
}

func (r *memAccountRepo) FindByOwnerAndCurrency(_ context.Context, ownerUserID uuid.UUID, currency valueobjects.Currency) (*entities.Account, error) {
	for _, account := range r.accounts {
		if account.Type() == entities.AccountTypeUser &&
			account.OwnerUserID() != nil && *account.OwnerUserID() == ownerUserID &&
			account.Currency().Equals(currency) {
			return copyAccount(account), nil
		}
	}
	return nil, domainerrors.ErrEntityNotFound
}

func (r *memAccountRepo) FindSystemByCurrency(_ context.Context, accountType entities.AccountType, currency valueobjects.Currency) (*entities.Account, error) {
	for _, account := range r.accounts {
		if account.Type() == accountType && account.Currency().Equals(currency) {
			return copyAccount(account), nil
		}
	}
	return nil, domainerrors.ErrEntityNotFound
}

func (r *memAccountRepo) FindByOwner(_ context.Context, ownerUserID uuid.UUID) ([]*entities.Account, error) {
	var result []*entities.Account
	for _, account := range r.accounts {
		if account.OwnerUserID() != nil && *account.OwnerUserID() == ownerUserID {
			result = append(result, copyAccount(account))
		}
	}
	return result, nil
}

func (r *memAccountRepo) LockByIDs(_ context.Context, ids []uuid.UUID) ([]*entities.Account, error) {
	result := make([]*entities.Account, len(ids))
	for i, id := range ids {
		account, ok := r.accounts[id]
		if !ok {
			return nil, domainerrors.ErrEntityNotFound
		}
		result[i] = copyAccount(account)
	}
	return result, nil
}

func (r *memAccountRepo) SumBalancesByType(_ context.Context, accountType entities.AccountType) (float64, error) {
	var sum float64
	for _, account := range r.accounts {
		if account.Type() == accountType {
			sum += account.Balance().Float64()
		}
	}
	return sum, nil
}

// ============================================
// Transactions
// ============================================

type memTransactionRepo struct {
	txns  map[uuid.UUID]*entities.Transaction
	byRef map[string]*entities.Transaction
}

func newMemTransactionRepo() *memTransactionRepo {
	return &memTransactionRepo{
		txns:  map[uuid.UUID]*entities.Transaction{},
		byRef: map[string]*entities.Transaction{},
	}
}

func (r *memTransactionRepo) Insert(_ context.Context, tx *entities.Transaction) error {
	if _, exists := r.byRef[tx.Reference()]; exists {
		return domainerrors.ErrReferenceConflict
	}
	r.txns[tx.ID()] = tx
	r.byRef[tx.Reference()] = tx
	return nil
}

func (r *memTransactionRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Transaction, error) {
	tx, ok := r.txns[id]
	if !ok {
		return nil, domainerrors.ErrEntityNotFound
	}
	return tx, nil
}

func (r *memTransactionRepo) FindByReference(_ context.Context, reference string) (*entities.Transaction, error) {
	tx, ok := r.byRef[reference]
	if !ok {
		return nil, domainerrors.ErrEntityNotFound
	}
	return tx, nil
}

func (r *memTransactionRepo) List(_ context.Context, filter ports.TransactionFilter, offset, limit int) ([]*entities.Transaction, error) {
	var result []*entities.Transaction
	for _, tx := range r.txns {
		if matchesFilter(tx, filter) {
			result = append(result, tx)
		}
	}
	if offset >= len(result) {
		return nil, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}

func (r *memTransactionRepo) Count(_ context.Context, filter ports.TransactionFilter) (int64, error) {
	var count int64
	for _, tx := range r.txns {
		if matchesFilter(tx, filter) {
			count++
		}
	}
	return count, nil
}

func (r *memTransactionRepo) CountByType(_ context.Context, txType entities.TransactionType) (int64, error) {
	var count int64
	for _, tx := range r.txns {
		if tx.Type() == txType {
			count++
		}
	}
	return count, nil
}

func (r *memTransactionRepo) SumAmountByType(_ context.Context, txType entities.TransactionType) (float64, error) {
	var sum float64
	for _, tx := range r.txns {
		if tx.Type() == txType {
			sum += tx.Amount().Float64()
		}
	}
	return sum, nil
}

func matchesFilter(tx *entities.Transaction, filter ports.TransactionFilter) bool {
	if filter.UserID != nil && (tx.UserID() == nil || *tx.UserID() != *filter.UserID) {
		return false
	}
	if filter.Type != nil && tx.Type() != *filter.Type {
		return false
	}
	if filter.Status != nil && tx.Status() != *filter.Status {
		return false
	}
	if filter.StartDate != nil && tx.OccurredAt().Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && tx.OccurredAt().After(*filter.EndDate) {
		return false
	}
	return true
}

// ============================================
// Ledger Entries
// ============================================

type memEntryRepo struct {
	entries []*entities.LedgerEntry
}

func (r *memEntryRepo) InsertPair(_ context.Context, debit, credit *entities.LedgerEntry) error {
	r.entries = append(r.entries, debit, credit)
	return nil
}

func (r *memEntryRepo) FindByTransactionID(_ context.Context, transactionID uuid.UUID) ([]*entities.LedgerEntry, error) {
	var result []*entities.LedgerEntry
	for _, entry := range r.entries {
		if entry.TransactionID() == transactionID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (r *memEntryRepo) FindByAccountID(_ context.Context, accountID uuid.UUID, offset, limit int) ([]*entities.LedgerEntry, error) {
	var result []*entities.LedgerEntry
	for _, entry := range r.entries {
		if entry.AccountID() == accountID {
			result = append(result, entry)
		}
	}
	return result, nil
}

// ============================================
// Events
// ============================================

type memPublisher struct {
	published []events.DomainEvent
}

func (p *memPublisher) Publish(_ context.Context, event events.DomainEvent) error {
	p.published = append(p.published, event)
	return nil
}

func (p *memPublisher) PublishBatch(_ context.Context, batch []events.DomainEvent) error {
	p.published = append(p.published, batch...)
	return nil
}

func (p *memPublisher) eventsOfType(eventType string) []events.DomainEvent {
	var result []events.DomainEvent
	for _, event := range p.published {
		if event.EventType() == eventType {
			result = append(result, event)
		}
	}
	return result
}

// ============================================
// Unit of Work
// ============================================

type memUnitOfWork struct{}

func (memUnitOfWork) Execute(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (memUnitOfWork) ExecuteWithRetry(ctx context.Context, maxAttempts int, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil || !domainerrors.IsConcurrency(err) {
			return err
		}
	}
	return err
}

// ============================================
// Idempotency store
// ============================================

type memIdempotencyRepo struct {
	records map[string]*entities.IdempotencyRecord
}

func newMemIdempotencyRepo() *memIdempotencyRepo {
	return &memIdempotencyRepo{records: map[string]*entities.IdempotencyRecord{}}
}

func (r *memIdempotencyRepo) Insert(_ context.Context, record *entities.IdempotencyRecord) error {
	if _, exists := r.records[record.Key()]; exists {
		return domainerrors.NewConcurrencyError("IdempotencyRecord", record.Key(), "duplicate key")
	}
	for _, existing := range r.records {
		if existing.RequestHash() == record.RequestHash() {
			return domainerrors.ErrIdempotencyConflict
		}
	}
	r.records[record.Key()] = record
	return nil
}

func (r *memIdempotencyRepo) FindByKey(_ context.Context, key string) (*entities.IdempotencyRecord, error) {
	record, ok := r.records[key]
	if !ok {
		return nil, domainerrors.ErrEntityNotFound
	}
	return record, nil
}

func (r *memIdempotencyRepo) Update(_ context.Context, record *entities.IdempotencyRecord) error {
	r.records[record.Key()] = record
	return nil
}

// ============================================
// Fixture
// ============================================

type ledgerFixture struct {
	users     *memUserRepo
	accounts  *memAccountRepo
	txns      *memTransactionRepo
	entries   *memEntryRepo
	publisher *memPublisher
	idemRepo  *memIdempotencyRepo
	gate      *idempotency.Gate
	engine    *PostingEngine

	deposit  *DepositUseCase
	transfer *TransferUseCase
	withdraw *WithdrawUseCase
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		users:     newMemUserRepo(),
		accounts:  newMemAccountRepo(),
		txns:      newMemTransactionRepo(),
		entries:   &memEntryRepo{},
		publisher: &memPublisher{},
		idemRepo:  newMemIdempotencyRepo(),
	}
	f.gate = idempotency.NewGate(f.idemRepo, time.Hour, "test-worker")
	registry := NewAccountRegistry(f.accounts, f.publisher)
	f.engine = NewPostingEngine(f.users, f.accounts, f.txns, f.entries, registry, f.publisher)

	uow := memUnitOfWork{}
	f.deposit = NewDepositUseCase(f.engine, f.gate, uow)
	f.transfer = NewTransferUseCase(f.engine, f.gate, uow)
	f.withdraw = NewWithdrawUseCase(f.engine, f.gate, uow)
	return f
}

func (f *ledgerFixture) addUser(t *testing.T, email string) *entities.User {
	t.Helper()
	user, err := entities.NewUser(email, "Test User")
	require.NoError(t, err)
	require.NoError(t, f.users.Insert(context.Background(), user))
	return user
}

func (f *ledgerFixture) userBalance(t *testing.T, userID uuid.UUID, currency valueobjects.Currency) string {
	t.Helper()
	account, err := f.accounts.FindByOwnerAndCurrency(context.Background(), userID, currency)
	require.NoError(t, err)
	return account.Balance().String()
}

func (f *ledgerFixture) systemBalance(t *testing.T, accountType entities.AccountType, currency valueobjects.Currency) string {
	t.Helper()
	account, err := f.accounts.FindSystemByCurrency(context.Background(), accountType, currency)
	require.NoError(t, err)
	return account.Balance().String()
}

func strPtr(s string) *string { return &s }

package idempotency

import (
	"context"
	"strconv"
	"time"

	"github.com/nissmart/ledger/internal/application/ports"
	"github.com/nissmart/ledger/internal/domain/entities"
	"github.com/nissmart/ledger/internal/domain/errors"
)

// DefaultTTL - срок жизни блокировки ключа по умолчанию.
const DefaultTTL = 600 * time.Second

// MaxKeyLength - максимальная длина Idempotency-Key; ширина колонки
// idempotency_records.key.
const MaxKeyLength = 128

// ValidateKey проверяет ключ до обращения к хранилищу: пустой и
// не влезающий в колонку ключ отклоняются как ошибка клиента.
func ValidateKey(key string) error {
	if key == "" {
		return errors.ErrMissingIdempotencyKey
	}
	if len(key) > MaxKeyLength {
		return errors.ValidationError{
			Field:   "Idempotency-Key",
			Message: "must be at most " + strconv.Itoa(MaxKeyLength) + " characters",
		}
	}
	return nil
}

// Acquisition - результат захвата ключа.
// Replay=true означает, что ключ уже settled: вызывающий обязан отдать
// сохранённый ответ байт-в-байт и не входить в posting engine.
type Acquisition struct {
	Record *entities.IdempotencyRecord
	Replay bool
}

// Gate управляет жизненным циклом идемпотентных ключей.
// Все методы вызываются внутри транзакции координатора: FindByKey берёт
// FOR UPDATE, поэтому конкурентные acquire на один ключ сериализуются.
type Gate struct {
	repo  ports.IdempotencyRepository
	ttl   time.Duration
	owner string
}

// NewGate создаёт Gate. При ttl <= 0 используется DefaultTTL.
// owner идентифицирует держателя блокировки (instance id) в поле locked_by.
func NewGate(repo ports.IdempotencyRepository, ttl time.Duration, owner string) *Gate {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Gate{repo: repo, ttl: ttl, owner: owner}
}

// Acquire проводит ключ через state machine:
//
//   - ключа нет: вставляется новая LOCKED запись
//   - settled, тот же хеш: Replay=true, ответ отдаётся из записи
//   - settled, другой хеш: ErrIdempotencyConflict
//   - блокировка истекла без ответа: запись перехватывается новым payload
//   - в полёте, тот же хеш: блокировка продлевается (ретрай владельца)
//   - в полёте, другой хеш: ErrIdempotencyConflict
//
// Гонка вставки по ключу приходит из репозитория как ConcurrencyError;
// координатор повторяет всю транзакцию и на второй попытке видит запись.
func (g *Gate) Acquire(ctx context.Context, key, requestHash string) (*Acquisition, error) {
	record, err := g.repo.FindByKey(ctx, key)
	if err != nil {
		if errors.IsNotFound(err) {
			record = entities.NewIdempotencyRecord(key, requestHash, g.owner, g.ttl)
			if err := g.repo.Insert(ctx, record); err != nil {
				return nil, err
			}
			return &Acquisition{Record: record}, nil
		}
		return nil, err
	}

	if record.IsSettled() {
		if !record.MatchesHash(requestHash) {
			return nil, errors.ErrIdempotencyConflict
		}
		return &Acquisition{Record: record, Replay: true}, nil
	}

	if record.IsExpired(time.Now().UTC()) {
		record.Reclaim(requestHash, g.owner, g.ttl)
		if err := g.repo.Update(ctx, record); err != nil {
			return nil, err
		}
		return &Acquisition{Record: record}, nil
	}

	if !record.MatchesHash(requestHash) {
		return nil, errors.ErrIdempotencyConflict
	}

	record.RefreshLock(g.owner, g.ttl)
	if err := g.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	return &Acquisition{Record: record}, nil
}

// StoreResponse записывает терминальный ответ и снимает блокировку.
// Вызывается до commit той же транзакции, в которой выполнялась операция;
// доменная ошибка откатывает и запись ключа.
func (g *Gate) StoreResponse(ctx context.Context, record *entities.IdempotencyRecord, code int, body []byte) error {
	record.Settle(code, body, nil)
	return g.repo.Update(ctx, record)
}

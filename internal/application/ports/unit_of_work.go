// Package ports - UnitOfWork паттерн для управления транзакциями.
//
// Pattern: Unit of Work
// - Один UnitOfWork.Execute = одна БД-транзакция
// - Автоматический rollback при ошибке
package ports

import "context"

// UnitOfWork определяет контракт для управления транзакциями.
//
// Переданный в fn context содержит транзакцию; все repository-вызовы
// внутри fn обязаны использовать именно его.
//
// Пример:
//
//	err := uow.Execute(ctx, func(txCtx context.Context) error {
//	    accounts, err := accountRepo.LockByIDs(txCtx, ids)
//	    if err != nil {
//	        return err // автоматический rollback
//	    }
//	    ...
//	    return accountRepo.Update(txCtx, accounts[0])
//	})
type UnitOfWork interface {
	// Execute выполняет fn внутри транзакции.
	// fn вернула error - ROLLBACK; nil - COMMIT.
	Execute(ctx context.Context, fn func(context.Context) error) error

	// ExecuteWithRetry выполняет fn внутри транзакции, повторяя её
	// при ConcurrencyError (проигранная optimistic-гонка) и при
	// serialization/deadlock ошибках БД. Каждая попытка - свежая
	// транзакция. После maxAttempts ошибка отдаётся вызывающему.
	ExecuteWithRetry(ctx context.Context, maxAttempts int, fn func(context.Context) error) error
}

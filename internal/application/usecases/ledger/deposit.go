package ledger

import (
	"context"

	"github.com/nissmart/ledger/internal/application/dtos"
	"github.com/nissmart/ledger/internal/application/idempotency"
	"github.com/nissmart/ledger/internal/application/ports"
	"github.com/nissmart/ledger/internal/domain/entities"
)

// DepositUseCase - идемпотентное пополнение счёта пользователя.
type DepositUseCase struct {
	engine *PostingEngine
	gate   *idempotency.Gate
	uow    ports.UnitOfWork
}

// NewDepositUseCase создаёт новый use case.
func NewDepositUseCase(engine *PostingEngine, gate *idempotency.Gate, uow ports.UnitOfWork) *DepositUseCase {
	return &DepositUseCase{engine: engine, gate: gate, uow: uow}
}

// Execute выполняет deposit под idempotency-ключом.
func (uc *DepositUseCase) Execute(ctx context.Context, idempotencyKey string, cmd dtos.DepositCommand) (dtos.LedgerResult, error) {
	spec, err := parsePosting(cmd.UserID, cmd.Amount, cmd.Currency, cmd.Description, cmd.Reference)
	if err != nil {
		return dtos.LedgerResult{}, err
	}
	return runIdempotentPosting(ctx, uc.uow, uc.gate, idempotencyKey, cmd, func(txCtx context.Context) (*entities.Transaction, error) {
		return uc.engine.Deposit(txCtx, spec)
	})
}

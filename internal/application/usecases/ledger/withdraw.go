package ledger

import (
	"context"

	"github.com/nissmart/ledger/internal/application/dtos"
	"github.com/nissmart/ledger/internal/application/idempotency"
	"github.com/nissmart/ledger/internal/application/ports"
	"github.com/nissmart/ledger/internal/domain/entities"
)

// WithdrawUseCase - идемпотентный вывод средств на внешний счёт.
type WithdrawUseCase struct {
	engine *PostingEngine
	gate   *idempotency.Gate
	uow    ports.UnitOfWork
}

// NewWithdrawUseCase создаёт новый use case.
func NewWithdrawUseCase(engine *PostingEngine, gate *idempotency.Gate, uow ports.UnitOfWork) *WithdrawUseCase {
	return &WithdrawUseCase{engine: engine, gate: gate, uow: uow}
}

// Execute выполняет withdraw под idempotency-ключом.
func (uc *WithdrawUseCase) Execute(ctx context.Context, idempotencyKey string, cmd dtos.WithdrawCommand) (dtos.LedgerResult, error) {
	spec, err := parsePosting(cmd.UserID, cmd.Amount, cmd.Currency, cmd.Description, cmd.Reference)
	if err != nil {
		return dtos.LedgerResult{}, err
	}
	return runIdempotentPosting(ctx, uc.uow, uc.gate, idempotencyKey, cmd, func(txCtx context.Context) (*entities.Transaction, error) {
		return uc.engine.Withdraw(txCtx, spec)
	})
}

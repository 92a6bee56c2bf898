package ledger

import (
	"context"

	"github.com/nissmart/ledger/internal/application/dtos"
	"github.com/nissmart/ledger/internal/application/idempotency"
	"github.com/nissmart/ledger/internal/application/ports"
	"github.com/nissmart/ledger/internal/domain/entities"
)

// TransferUseCase - идемпотентный перевод между пользователями.
type TransferUseCase struct {
	engine *PostingEngine
	gate   *idempotency.Gate
	uow    ports.UnitOfWork
}

// NewTransferUseCase создаёт новый use case.
func NewTransferUseCase(engine *PostingEngine, gate *idempotency.Gate, uow ports.UnitOfWork) *TransferUseCase {
	return &TransferUseCase{engine: engine, gate: gate, uow: uow}
}

// Execute выполняет transfer под idempotency-ключом.
func (uc *TransferUseCase) Execute(ctx context.Context, idempotencyKey string, cmd dtos.TransferCommand) (dtos.LedgerResult, error) {
	spec, err := parseTransfer(cmd)
	if err != nil {
		return dtos.LedgerResult{}, err
	}
	return runIdempotentPosting(ctx, uc.uow, uc.gate, idempotencyKey, cmd, func(txCtx context.Context) (*entities.Transaction, error) {
		return uc.engine.Transfer(txCtx, spec)
	})
}

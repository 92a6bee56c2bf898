// Package user - use cases для регистрации и чтения пользователей.
package user

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nissmart/ledger/internal/application/dtos"
	"github.com/nissmart/ledger/internal/application/idempotency"
	"github.com/nissmart/ledger/internal/application/ports"
	"github.com/nissmart/ledger/internal/domain/entities"
	"github.com/nissmart/ledger/internal/domain/events"
)

// maxCreateAttempts - число попыток при гонках вставки idempotency-ключа.
const maxCreateAttempts = 3

// CreateUserUseCase - идемпотентная регистрация пользователя.
//
// Write-путь тот же, что у ledger-операций: Gate.Acquire -> операция ->
// StoreResponse в одной транзакции; повтор с тем же ключом и payload
// отдаёт сохранённый ответ байт-в-байт.
type CreateUserUseCase struct {
	users     ports.UserRepository
	publisher ports.EventPublisher
	gate      *idempotency.Gate
	uow       ports.UnitOfWork
}

// NewCreateUserUseCase создаёт новый use case.
func NewCreateUserUseCase(users ports.UserRepository, publisher ports.EventPublisher, gate *idempotency.Gate, uow ports.UnitOfWork) *CreateUserUseCase {
	return &CreateUserUseCase{users: users, publisher: publisher, gate: gate, uow: uow}
}

// Execute регистрирует пользователя под idempotency-ключом.
func (uc *CreateUserUseCase) Execute(ctx context.Context, idempotencyKey string, cmd dtos.CreateUserCommand) (dtos.LedgerResult, error) {
	if err := idempotency.ValidateKey(idempotencyKey); err != nil {
		return dtos.LedgerResult{}, err
	}
	hash, err := idempotency.RequestHash(cmd)
	if err != nil {
		return dtos.LedgerResult{}, err
	}

	var result dtos.LedgerResult
	err = uc.uow.ExecuteWithRetry(ctx, maxCreateAttempts, func(txCtx context.Context) error {
		acq, err := uc.gate.Acquire(txCtx, idempotencyKey, hash)
		if err != nil {
			return err
		}
		if acq.Replay {
			result = dtos.LedgerResult{
				StatusCode: *acq.Record.ResponseCode(),
				Body:       acq.Record.ResponseBody(),
				Replayed:   true,
			}
			return nil
		}

		user, err := entities.NewUser(cmd.Email, cmd.FullName)
		if err != nil {
			return err
		}
		if err := uc.users.Insert(txCtx, user); err != nil {
			return err
		}
		if err := uc.publisher.Publish(txCtx, events.NewUserRegistered(user.ID(), user.Email(), user.FullName())); err != nil {
			return fmt.Errorf("publish user registered: %w", err)
		}

		body, err := json.Marshal(dtos.ToUserResponse(user))
		if err != nil {
			return fmt.Errorf("serialize user response: %w", err)
		}
		if err := uc.gate.StoreResponse(txCtx, acq.Record, http.StatusCreated, body); err != nil {
			return err
		}
		result = dtos.LedgerResult{StatusCode: http.StatusCreated, Body: body}
		return nil
	})
	if err != nil {
		return dtos.LedgerResult{}, err
	}
	return result, nil
}

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/nissmart/ledger/internal/application/dtos"
	"github.com/nissmart/ledger/internal/application/idempotency"
	"github.com/nissmart/ledger/internal/application/ports"
	"github.com/nissmart/ledger/internal/domain/entities"
	"github.com/nissmart/ledger/internal/domain/errors"
	"github.com/nissmart/ledger/internal/domain/valueobjects"
)

// maxPostingAttempts - число попыток транзакции при проигранных
// optimistic-гонках и serialization-ошибках БД.
const maxPostingAttempts = 3

// postFunc - engine-вызов внутри транзакции координатора.
type postFunc func(txCtx context.Context) (*entities.Transaction, error)

// runIdempotentPosting - общий write-путь координатора:
//
//  1. каноническое хеширование payload
//  2. транзакция: Gate.Acquire -> engine -> сериализация ответа ->
//     Gate.StoreResponse -> commit
//  3. повтор всей транзакции при concurrency-ошибках (до maxPostingAttempts)
//
// Доменная ошибка откатывает транзакцию целиком, включая idempotency-запись:
// отказ по предусловию - свойство payload, а не ключа, и повтор с тем же
// ключом вправе преуспеть, когда предусловие станет истинным.
func runIdempotentPosting(
	ctx context.Context,
	uow ports.UnitOfWork,
	gate *idempotency.Gate,
	key string,
	payload idempotency.Payload,
	post postFunc,
) (dtos.LedgerResult, error) {
	if err := idempotency.ValidateKey(key); err != nil {
		return dtos.LedgerResult{}, err
	}
	hash, err := idempotency.RequestHash(payload)
	if err != nil {
		return dtos.LedgerResult{}, err
	}

	var result dtos.LedgerResult
	err = uow.ExecuteWithRetry(ctx, maxPostingAttempts, func(txCtx context.Context) error {
		acq, err := gate.Acquire(txCtx, key, hash)
		if err != nil {
			return err
		}
		if acq.Replay {
			// Ключ settled: отдаём сохранённый ответ байт-в-байт,
			// engine не вызывается
			result = dtos.LedgerResult{
				StatusCode: *acq.Record.ResponseCode(),
				Body:       acq.Record.ResponseBody(),
				Replayed:   true,
			}
			return nil
		}

		transaction, err := post(txCtx)
		if err != nil {
			return err
		}

		body, err := json.Marshal(dtos.ToTransactionResponse(transaction))
		if err != nil {
			return fmt.Errorf("serialize transaction response: %w", err)
		}
		if err := gate.StoreResponse(txCtx, acq.Record, http.StatusCreated, body); err != nil {
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

// parsePosting валидирует общие поля deposit/withdraw команд.
func parsePosting(userID, amount, currency string, description, reference *string) (postingSpec, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return postingSpec{}, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}
	money, ccy, err := parseAmount(amount, currency)
	if err != nil {
		return postingSpec{}, err
	}
	return postingSpec{
		userID:      uid,
		amount:      money,
		currency:    ccy,
		description: strDeref(description),
		reference:   strDeref(reference),
	}, nil
}

func parseTransfer(cmd dtos.TransferCommand) (transferSpec, error) {
	sourceID, err := uuid.Parse(cmd.SourceUserID)
	if err != nil {
		return transferSpec{}, errors.ValidationError{Field: "source_user_id", Message: "invalid UUID"}
	}
	destinationID, err := uuid.Parse(cmd.DestinationUserID)
	if err != nil {
		return transferSpec{}, errors.ValidationError{Field: "destination_user_id", Message: "invalid UUID"}
	}
	money, ccy, err := parseAmount(cmd.Amount, cmd.Currency)
	if err != nil {
		return transferSpec{}, err
	}
	return transferSpec{
		sourceUserID:      sourceID,
		destinationUserID: destinationID,
		amount:            money,
		currency:          ccy,
		description:       strDeref(cmd.Description),
		reference:         strDeref(cmd.Reference),
	}, nil
}

func parseAmount(amount, currency string) (valueobjects.Money, valueobjects.Currency, error) {
	money, err := valueobjects.NewMoney(amount)
	if err != nil || !money.IsPositive() {
		return valueobjects.Money{}, "", errors.ErrInvalidAmount
	}
	ccy, err := valueobjects.NewCurrency(currency)
	if err != nil {
		return valueobjects.Money{}, "", errors.ValidationError{Field: "currency", Message: err.Error()}
	}
	return money, ccy, nil
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Package transaction - read use cases для истории транзакций.
package transaction

import (
	"context"

	"github.com/google/uuid"

	"github.com/nissmart/ledger/internal/application/dtos"
	"github.com/nissmart/ledger/internal/application/ports"
	"github.com/nissmart/ledger/internal/domain/entities"
	"github.com/nissmart/ledger/internal/domain/errors"
)

// ListTransactionsUseCase возвращает страницу транзакций под фильтром.
type ListTransactionsUseCase struct {
	txns ports.TransactionRepository
}

// NewListTransactionsUseCase создаёт новый use case.
func NewListTransactionsUseCase(txns ports.TransactionRepository) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{txns: txns}
}

// Execute возвращает транзакции, новые первыми. Total считается без
// date-окна: это размер всей истории под фильтром user/type/status,
// окно режет только выдачу.
func (uc *ListTransactionsUseCase) Execute(ctx context.Context, query dtos.ListTransactionsQuery) (dtos.TransactionListResponse, error) {
	filter, err := buildFilter(query)
	if err != nil {
		return dtos.TransactionListResponse{}, err
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	txns, err := uc.txns.List(ctx, filter, offset, limit)
	if err != nil {
		return dtos.TransactionListResponse{}, err
	}
	countFilter := filter
	countFilter.StartDate = nil
	countFilter.EndDate = nil
	total, err := uc.txns.Count(ctx, countFilter)
	if err != nil {
		return dtos.TransactionListResponse{}, err
	}
	return dtos.TransactionListResponse{
		Items: dtos.ToTransactionResponseList(txns),
		Total: total,
	}, nil
}

func buildFilter(query dtos.ListTransactionsQuery) (ports.TransactionFilter, error) {
	var filter ports.TransactionFilter

	if query.UserID != nil {
		uid, err := uuid.Parse(*query.UserID)
		if err != nil {
			return filter, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
		}
		filter.UserID = &uid
	}
	if query.Type != nil {
		txType := entities.TransactionType(*query.Type)
		switch txType {
		case entities.TransactionTypeDeposit, entities.TransactionTypeTransfer, entities.TransactionTypeWithdrawal:
			filter.Type = &txType
		default:
			return filter, errors.ValidationError{Field: "type", Message: "unknown transaction type"}
		}
	}
	if query.Status != nil {
		status := entities.TransactionStatus(*query.Status)
		switch status {
		case entities.TransactionStatusPending, entities.TransactionStatusCompleted, entities.TransactionStatusFailed:
			filter.Status = &status
		default:
			return filter, errors.ValidationError{Field: "status", Message: "unknown transaction status"}
		}
	}
	filter.StartDate = query.StartDate
	filter.EndDate = query.EndDate
	return filter, nil
}

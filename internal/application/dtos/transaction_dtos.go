// Package dtos - Transaction DTOs.
package dtos

import "time"

// ============================================
// Queries (Read операции)
// ============================================

// ListTransactionsQuery - запрос списка транзакций с фильтрацией.
type ListTransactionsQuery struct {
	UserID    *string    `json:"user_id,omitempty" validate:"omitempty,uuid"`
	Type      *string    `json:"type,omitempty" validate:"omitempty,oneof=DEPOSIT TRANSFER WITHDRAWAL"`
	Status    *string    `json:"status,omitempty" validate:"omitempty,oneof=PENDING COMPLETED FAILED"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Offset    int        `json:"offset" validate:"min=0"`
	Limit     int        `json:"limit" validate:"min=1,max=100"`
}

// ============================================
// Responses
// ============================================

// TransactionResponse - представление транзакции в API.
// Именно эта структура сериализуется в idempotency-запись,
// поэтому её форма - часть внешнего контракта.
type TransactionResponse struct {
	ID          string         `json:"id"`
	Reference   string         `json:"reference"`
	UserID      *string        `json:"user_id"`
	AccountID   string         `json:"account_id"`
	Type        string         `json:"type"`
	Status      string         `json:"status"`
	Amount      string         `json:"amount"`
	Currency    string         `json:"currency"`
	Description *string        `json:"description"`
	ContextData map[string]any `json:"context_data"`
	OccurredAt  time.Time      `json:"occurred_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TransactionListResponse - страница транзакций.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Total int64                 `json:"total"`
}

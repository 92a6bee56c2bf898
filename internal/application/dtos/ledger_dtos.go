// Package dtos - команды и ответы ledger-операций (deposit, transfer, withdraw).
package dtos

import "time"

// ============================================
// Commands (Write операции)
// ============================================

// DepositCommand - команда пополнения счёта пользователя.
// Amount передаётся decimal-строкой ("150.00"), максимум 2 знака после точки.
type DepositCommand struct {
	UserID      string  `json:"user_id" validate:"required,uuid"`
	Amount      string  `json:"amount" validate:"required"`
	Currency    string  `json:"currency" validate:"required,len=3"`
	Description *string `json:"description,omitempty"`
	Reference   *string `json:"reference,omitempty"`
}

// TransferCommand - команда перевода между пользователями.
type TransferCommand struct {
	SourceUserID      string  `json:"source_user_id" validate:"required,uuid"`
	DestinationUserID string  `json:"destination_user_id" validate:"required,uuid"`
	Amount            string  `json:"amount" validate:"required"`
	Currency          string  `json:"currency" validate:"required,len=3"`
	Description       *string `json:"description,omitempty"`
	Reference         *string `json:"reference,omitempty"`
}

// WithdrawCommand - команда вывода средств на внешний счёт.
type WithdrawCommand struct {
	UserID      string  `json:"user_id" validate:"required,uuid"`
	Amount      string  `json:"amount" validate:"required"`
	Currency    string  `json:"currency" validate:"required,len=3"`
	Description *string `json:"description,omitempty"`
	Reference   *string `json:"reference,omitempty"`
}

// CanonicalPayload возвращает поля команды для канонического хеширования.
// Отсутствующие опциональные поля сериализуются как null.
func (c DepositCommand) CanonicalPayload() map[string]any {
	return map[string]any{
		"user_id":     c.UserID,
		"amount":      c.Amount,
		"currency":    c.Currency,
		"description": optString(c.Description),
		"reference":   optString(c.Reference),
	}
}

// CanonicalPayload возвращает поля команды для канонического хеширования.
func (c TransferCommand) CanonicalPayload() map[string]any {
	return map[string]any{
		"source_user_id":      c.SourceUserID,
		"destination_user_id": c.DestinationUserID,
		"amount":              c.Amount,
		"currency":            c.Currency,
		"description":         optString(c.Description),
		"reference":           optString(c.Reference),
	}
}

// CanonicalPayload возвращает поля команды для канонического хеширования.
func (c WithdrawCommand) CanonicalPayload() map[string]any {
	return map[string]any{
		"user_id":     c.UserID,
		"amount":      c.Amount,
		"currency":    c.Currency,
		"description": optString(c.Description),
		"reference":   optString(c.Reference),
	}
}

func optString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// ============================================
// Responses
// ============================================

// AccountResponse - представление счёта в API.
type AccountResponse struct {
	ID               string    `json:"id"`
	UserID           *string   `json:"user_id"`
	Name             string    `json:"name"`
	Currency         string    `json:"currency"`
	Type             string    `json:"type"`
	Status           string    `json:"status"`
	Balance          string    `json:"balance"`
	AvailableBalance string    `json:"available_balance"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CurrencyTotal - суммарные балансы пользователя по одной валюте.
type CurrencyTotal struct {
	Currency         string `json:"currency"`
	Balance          string `json:"balance"`
	AvailableBalance string `json:"available_balance"`
}

// UserBalanceResponse - все счета пользователя с итогами по валютам.
type UserBalanceResponse struct {
	UserID   string            `json:"user_id"`
	Accounts []AccountResponse `json:"accounts"`
	Totals   []CurrencyTotal   `json:"totals"`
}

// LedgerResult - результат write-операции: статус и сериализованное тело.
// Тело хранится в idempotency-записи и при повторе отдаётся байт-в-байт.
// Replayed выставляется когда ответ пришёл из idempotency-кеша,
// а не из свежего выполнения операции.
type LedgerResult struct {
	StatusCode int
	Body       []byte
	Replayed   bool
}
